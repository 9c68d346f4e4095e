package workpool

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrPoisoned is returned by Submit once a task has failed.
	ErrPoisoned = errors.New("work pool is poisoned by an earlier failure")
	// ErrClosed is returned by Submit after Wait has returned.
	ErrClosed = errors.New("work pool is closed")
)

// Task is a unit of work. It receives the pool context, which is cancelled
// once any task fails.
type Task func(ctx context.Context) error

// Pool is a bounded, fail-fast worker pool.
//
// The first task error poisons the pool: the pool context is cancelled,
// later submissions are rejected with ErrPoisoned, and Wait returns that
// first error. Errors from tasks that were already running are logged and
// discarded. A task accepted by Submit always runs, possibly with an
// already cancelled context.
//
// A pool is single use: once Wait returns, Submit fails with ErrClosed.
type Pool struct {
	group  *errgroup.Group
	slots  chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger

	mu       sync.Mutex
	firstErr error
	closed   bool
}

// New creates a pool running at most workers tasks at once. A workers value
// below one means unlimited.
func New(ctx context.Context, workers int, logger *zap.Logger) *Pool {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(ctx)
	p := &Pool{group: &errgroup.Group{}, ctx: ctx, cancel: cancel, logger: logger}
	if workers > 0 {
		p.slots = make(chan struct{}, workers)
	}
	return p
}

// Submit schedules task for asynchronous execution. It blocks while all
// workers are busy. If the pool is poisoned before a worker frees up, Submit
// returns ErrPoisoned and the task never runs. If the parent context is
// cancelled, its error is returned instead.
func (p *Pool) Submit(task Task) error {
	if err := p.rejection(); err != nil {
		return err
	}

	if p.slots != nil {
		select {
		case p.slots <- struct{}{}:
		case <-p.ctx.Done():
			return p.rejection()
		}
		// Both cases may have been ready; a free slot does not win over a failure.
		if err := p.rejection(); err != nil {
			<-p.slots
			return err
		}
	}

	p.group.Go(func() error {
		if p.slots != nil {
			defer func() { <-p.slots }()
		}
		if err := task(p.ctx); err != nil {
			p.fail(err)
		}
		return nil
	})
	return nil
}

// Wait blocks until every accepted task has returned, then returns the first
// recorded task error. If no task failed but the parent context was
// cancelled, the context error is returned.
func (p *Pool) Wait() error {
	_ = p.group.Wait()

	p.mu.Lock()
	p.closed = true
	err := p.firstErr
	p.mu.Unlock()

	if err == nil {
		err = p.ctx.Err()
	}
	p.cancel()
	return err
}

// Poisoned reports whether a task has failed.
func (p *Pool) Poisoned() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.firstErr != nil
}

// rejection returns the reason a new task cannot be accepted, if any.
func (p *Pool) rejection() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case p.closed:
		return ErrClosed
	case p.firstErr != nil:
		return ErrPoisoned
	}
	return p.ctx.Err()
}

// fail records err if it is the first failure and shuts the pool down.
func (p *Pool) fail(err error) {
	p.mu.Lock()
	if p.firstErr != nil {
		p.mu.Unlock()
		p.logger.Debug("Discarding error from poisoned work pool", zap.Error(err))
		return
	}
	p.firstErr = err
	p.mu.Unlock()

	p.cancel()
}
