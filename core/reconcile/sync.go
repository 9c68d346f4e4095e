package reconcile

import (
	"context"
	"fmt"

	"cloud-manager/core/status"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

// SyncSummary counts what a sync pass did.
type SyncSummary struct {
	// Created counts resources created.
	Created int `json:"created"`
	// Updated counts resources updated.
	Updated int `json:"updated"`
	// CreateSkipped counts missing resources left alone because creation is disabled.
	CreateSkipped int `json:"create_skipped"`
	// Unmanaged counts remote-only resources that were reported and left untouched.
	Unmanaged int `json:"unmanaged"`
	// Failed counts resources whose create or update returned an error.
	Failed int `json:"failed"`
}

// Syncer drives create and update calls for a classified set of changes.
//
// Unmanaged resources are never deleted or mutated. Each key is isolated:
// an error from one key is logged, recorded, escalates the status to Fatal
// and is returned combined with the others once every key has been processed.
type Syncer[L, R any] struct {
	Manager       Manager[L, R]
	CreateEnabled bool
	Status        *status.Aggregator
	Journal       Recorder
	Logger        *zap.Logger
	RunID         string
}

// Sync processes changes in key order.
func (s *Syncer[L, R]) Sync(ctx context.Context, changes []ChangeSet[L, R]) (SyncSummary, error) {
	var (
		summary SyncSummary
		result  *multierror.Error
	)

	log := s.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if s.Status == nil {
		s.Status = status.Global
	}

	for _, change := range changes {
		l := log.With(zap.String("resource", s.Manager.Name()), zap.String("key", change.Key))

		switch change.Kind {
		case Unmanaged:
			summary.Unmanaged++
			l.Warn("Unmanaged resource left untouched")
			continue

		case Added:
			if !s.CreateEnabled {
				summary.CreateSkipped++
				l.Warn("Resource creation disabled, skipping")
				continue
			}
			l.Info("Creating resource")
			err := s.Manager.Create(ctx, change.Key, change.Local)
			s.record(ctx, l, change.Key, ActionCreate, err)
			if err != nil {
				summary.Failed++
				result = multierror.Append(result, fmt.Errorf("create %s %s: %w", s.Manager.Name(), change.Key, err))
				continue
			}
			summary.Created++

		case Modified:
			if !hasActionable(change.Diffs) {
				continue
			}
			l.Info("Updating resource", zap.Int("diffs", len(change.Diffs)))
			err := s.Manager.Update(ctx, change.Key, change.Local, change.Diffs)
			s.record(ctx, l, change.Key, ActionUpdate, err)
			if err != nil {
				summary.Failed++
				result = multierror.Append(result, fmt.Errorf("update %s %s: %w", s.Manager.Name(), change.Key, err))
				continue
			}
			summary.Updated++
		}
	}

	return summary, result.ErrorOrNil()
}

// record logs an outcome, escalates the status and writes the journal entry.
func (s *Syncer[L, R]) record(ctx context.Context, l *zap.Logger, key string, action Action, err error) {
	if err != nil {
		l.Error("Sync failed", zap.String("action", string(action)), zap.Error(err))
		s.Status.Raise(status.Fatal)
	} else {
		s.Status.Raise(status.DiffsSynced)
	}

	if s.Journal == nil {
		return
	}
	outcome := Outcome{
		RunID:        s.RunID,
		ResourceType: s.Manager.Name(),
		Key:          key,
		Action:       action,
		Err:          err,
	}
	if jerr := s.Journal.Record(ctx, outcome); jerr != nil {
		l.Warn("Failed to record sync outcome", zap.Error(jerr))
	}
}
