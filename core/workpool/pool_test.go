package workpool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_AllSucceed(t *testing.T) {
	pool := New(context.Background(), 4, nil)

	var count atomic.Int32
	for i := 0; i < 100; i++ {
		require.NoError(t, pool.Submit(func(ctx context.Context) error {
			count.Add(1)
			return nil
		}))
	}

	assert.NoError(t, pool.Wait())
	assert.Equal(t, int32(100), count.Load())
	assert.False(t, pool.Poisoned())
}

func TestPool_FirstErrorWins(t *testing.T) {
	const failAt = 3
	pool := New(context.Background(), 1, nil)

	var (
		mu  sync.Mutex
		ran []int
	)
	var rejected bool
	for i := 1; i <= 10; i++ {
		i := i
		err := pool.Submit(func(ctx context.Context) error {
			mu.Lock()
			ran = append(ran, i)
			mu.Unlock()
			if i >= failAt {
				return fmt.Errorf("task %d failed", i)
			}
			return nil
		})
		if err != nil {
			assert.ErrorIs(t, err, ErrPoisoned)
			rejected = true
		}
	}

	err := pool.Wait()
	require.Error(t, err)
	assert.EqualError(t, err, "task 3 failed")
	assert.True(t, rejected, "submissions after poisoning must be rejected")
	assert.True(t, pool.Poisoned())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2, 3}, ran)
}

func TestPool_ConcurrentFailuresRecordOne(t *testing.T) {
	pool := New(context.Background(), 8, nil)

	start := make(chan struct{})
	errs := make(map[error]bool)
	for i := 0; i < 8; i++ {
		err := fmt.Errorf("worker %d", i)
		errs[err] = true
		require.NoError(t, pool.Submit(func(ctx context.Context) error {
			<-start
			return err
		}))
	}
	close(start)

	got := pool.Wait()
	require.Error(t, got)
	assert.True(t, errs[got], "returned error must be one of the task errors, got %v", got)
}

func TestPool_RunningTasksSeeCancellation(t *testing.T) {
	pool := New(context.Background(), 2, nil)
	boom := errors.New("boom")

	cancelled := make(chan struct{})
	require.NoError(t, pool.Submit(func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			close(cancelled)
			return ctx.Err()
		case <-time.After(5 * time.Second):
			return nil
		}
	}))
	require.NoError(t, pool.Submit(func(ctx context.Context) error {
		return boom
	}))

	assert.ErrorIs(t, pool.Wait(), boom)
	select {
	case <-cancelled:
	default:
		t.Fatal("long-running task was not cancelled")
	}
}

func TestPool_ParentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool := New(ctx, 2, nil)
	var ran atomic.Bool
	err := pool.Submit(func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)

	assert.ErrorIs(t, pool.Wait(), context.Canceled)
	assert.False(t, ran.Load())
}

func TestPool_BlockedSubmitRejectedOnFailure(t *testing.T) {
	pool := New(context.Background(), 1, nil)
	boom := errors.New("boom")

	release := make(chan struct{})
	require.NoError(t, pool.Submit(func(ctx context.Context) error {
		<-release
		return boom
	}))

	var ran atomic.Bool
	result := make(chan error, 1)
	go func() {
		result <- pool.Submit(func(ctx context.Context) error {
			ran.Store(true)
			return nil
		})
	}()

	// Give the second Submit time to block on the busy worker.
	time.Sleep(20 * time.Millisecond)
	close(release)

	select {
	case err := <-result:
		assert.ErrorIs(t, err, ErrPoisoned)
	case <-time.After(5 * time.Second):
		t.Fatal("Submit did not return after the running task failed")
	}
	assert.ErrorIs(t, pool.Wait(), boom)
	assert.False(t, ran.Load())
}

func TestPool_AcceptedTasksRun(t *testing.T) {
	pool := New(context.Background(), 2, nil)
	boom := errors.New("boom")

	var accepted, ran atomic.Int32
	for i := 0; i < 50; i++ {
		fail := i == 10
		err := pool.Submit(func(ctx context.Context) error {
			ran.Add(1)
			if fail {
				return boom
			}
			return nil
		})
		if err != nil {
			assert.ErrorIs(t, err, ErrPoisoned)
			break
		}
		accepted.Add(1)
	}

	assert.ErrorIs(t, pool.Wait(), boom)
	assert.Equal(t, accepted.Load(), ran.Load())
}

func TestPool_SubmitAfterWait(t *testing.T) {
	pool := New(context.Background(), 2, nil)
	require.NoError(t, pool.Submit(func(ctx context.Context) error { return nil }))
	require.NoError(t, pool.Wait())

	var ran atomic.Bool
	err := pool.Submit(func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})
	assert.ErrorIs(t, err, ErrClosed)
	assert.False(t, ran.Load())
}
