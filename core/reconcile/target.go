package reconcile

import (
	"context"
	"fmt"

	"cloud-manager/core/logger"
	"cloud-manager/core/status"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Options controls classification and sync behavior for one resource type.
type Options struct {
	// IncludeUnmanaged reports remote resources that are not declared locally.
	IncludeUnmanaged bool
	// CreateEnabled allows the sync driver to create missing resources.
	CreateEnabled bool
}

// Deps bundles the shared collaborators of a Target.
type Deps struct {
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
	// Status defaults to status.Global.
	Status *status.Aggregator
	// Journal is optional.
	Journal Recorder
}

// Target runs reconciliation for one resource type without exposing the
// type's local and remote representations.
type Target interface {
	// Name returns the resource type name.
	Name() string
	// Diff classifies and reports differences without mutating anything.
	Diff(ctx context.Context) (*Report, error)
	// Sync classifies, reports, then creates and updates resources.
	Sync(ctx context.Context) (*Report, error)
}

// Report is the serialisable result of a reconciliation run.
type Report struct {
	// RunID correlates the report with log lines and journal entries.
	RunID string `json:"run_id"`
	// ResourceType is the manager name.
	ResourceType string `json:"resource_type"`
	// Entries holds one entry per changed key, sorted by key.
	Entries []ReportEntry `json:"entries"`
	// Summary provides aggregate counts.
	Summary Summary `json:"summary"`
}

// ReportEntry describes the change set for one key.
type ReportEntry struct {
	Key   string      `json:"key"`
	Kind  string      `json:"kind"`
	Diffs []DiffEntry `json:"diffs,omitempty"`
}

// DiffEntry is the display form of a Diff.
type DiffEntry struct {
	Description   string `json:"description"`
	Informational bool   `json:"informational,omitempty"`
}

// Summary provides aggregate statistics for a report.
type Summary struct {
	Added     int          `json:"added"`
	Unmanaged int          `json:"unmanaged"`
	Modified  int          `json:"modified"`
	Sync      *SyncSummary `json:"sync,omitempty"`
}

// HasDrift reports whether any entry is actionable.
func (r *Report) HasDrift() bool {
	for _, e := range r.Entries {
		if e.Kind != Modified.String() {
			return true
		}
		for _, d := range e.Diffs {
			if !d.Informational {
				return true
			}
		}
	}
	return false
}

type target[L, R any] struct {
	manager Manager[L, R]
	opts    Options
	deps    Deps
}

// NewTarget wraps a manager into a Target.
func NewTarget[L, R any](m Manager[L, R], opts Options, deps Deps) Target {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Status == nil {
		deps.Status = status.Global
	}
	return &target[L, R]{manager: m, opts: opts, deps: deps}
}

func (t *target[L, R]) Name() string {
	return t.manager.Name()
}

func (t *target[L, R]) Diff(ctx context.Context) (*Report, error) {
	runID := uuid.NewString()
	changes, err := t.plan(ctx, runID)
	if err != nil {
		return nil, err
	}
	return t.report(runID, changes), nil
}

func (t *target[L, R]) Sync(ctx context.Context) (*Report, error) {
	runID := uuid.NewString()
	changes, err := t.plan(ctx, runID)
	if err != nil {
		return nil, err
	}
	report := t.report(runID, changes)

	syncer := &Syncer[L, R]{
		Manager:       t.manager,
		CreateEnabled: t.opts.CreateEnabled,
		Status:        t.deps.Status,
		Journal:       t.deps.Journal,
		Logger:        logger.WithRunID(t.deps.Logger, runID),
		RunID:         runID,
	}
	summary, err := syncer.Sync(ctx, changes)
	report.Summary.Sync = &summary
	return report, err
}

// plan fetches both snapshots once, concurrently, and classifies them.
func (t *target[L, R]) plan(ctx context.Context, runID string) ([]ChangeSet[L, R], error) {
	var (
		locals  map[string]L
		remotes map[string]R
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		locals, err = t.manager.LocalResources(gctx)
		if err != nil {
			return fmt.Errorf("failed to load local %s: %w", t.manager.Name(), err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		remotes, err = t.manager.RemoteResources(gctx)
		if err != nil {
			return fmt.Errorf("failed to fetch remote %s: %w", t.manager.Name(), err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		t.deps.Status.Raise(status.Fatal)
		return nil, err
	}

	logger.WithRunID(t.deps.Logger, runID).Debug("Snapshots loaded",
		zap.String("resource", t.manager.Name()),
		zap.Int("local", len(locals)),
		zap.Int("remote", len(remotes)),
	)

	return Classify(locals, remotes, t.manager.Compare, t.opts.IncludeUnmanaged), nil
}

// report builds the report, logs every entry and raises DiffsFound when any
// change set is actionable.
func (t *target[L, R]) report(runID string, changes []ChangeSet[L, R]) *Report {
	l := logger.WithRunID(t.deps.Logger, runID).With(zap.String("resource", t.manager.Name()))

	report := &Report{
		RunID:        runID,
		ResourceType: t.manager.Name(),
		Entries:      make([]ReportEntry, 0, len(changes)),
	}

	for _, change := range changes {
		entry := ReportEntry{Key: change.Key, Kind: change.Kind.String()}

		switch change.Kind {
		case Added:
			report.Summary.Added++
			l.Info("Resource missing remotely", zap.String("key", change.Key))
		case Unmanaged:
			report.Summary.Unmanaged++
			l.Info("Resource not managed locally", zap.String("key", change.Key))
		case Modified:
			report.Summary.Modified++
			for _, d := range change.Diffs {
				entry.Diffs = append(entry.Diffs, DiffEntry{Description: d.String(), Informational: d.Informational()})
				l.Info("Resource differs",
					zap.String("key", change.Key),
					zap.String("diff", d.String()),
					zap.Bool("informational", d.Informational()),
				)
			}
		}

		if change.Actionable() {
			t.deps.Status.Raise(status.DiffsFound)
		}
		report.Entries = append(report.Entries, entry)
	}

	l.Info("Reconciliation report",
		zap.Int("added", report.Summary.Added),
		zap.Int("unmanaged", report.Summary.Unmanaged),
		zap.Int("modified", report.Summary.Modified),
	)

	return report
}
