package changes

import (
	"context"
	"errors"
	"sort"

	"cloud-manager/core/journal"
	"cloud-manager/core/reconcile"

	"go.uber.org/zap"
)

var (
	// ErrUnknownType is returned for a resource type with no registered target.
	ErrUnknownType = errors.New("unknown resource type")
	// ErrNoHistory is returned when no sync journal is configured.
	ErrNoHistory = errors.New("sync journal is not enabled")
)

// History reads past sync outcomes. *journal.Journal implements it.
type History interface {
	Recent(ctx context.Context, resourceType, key string, limit int) ([]journal.Entry, error)
}

var _ History = (*journal.Journal)(nil)

// Service computes classification reports. It never syncs.
type Service struct {
	targets map[string]reconcile.Target
	history History
	logger  *zap.Logger
}

// NewService creates a service over targets, keyed by their names. history
// may be nil.
func NewService(targets []reconcile.Target, history History, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := make(map[string]reconcile.Target, len(targets))
	for _, t := range targets {
		m[t.Name()] = t
	}
	return &Service{targets: m, history: history, logger: logger}
}

// Types returns the registered resource types in sorted order.
func (s *Service) Types() []string {
	out := make([]string, 0, len(s.targets))
	for name := range s.targets {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Report classifies the given resource type against live state.
func (s *Service) Report(ctx context.Context, resourceType string) (*reconcile.Report, error) {
	t, ok := s.targets[resourceType]
	if !ok {
		return nil, ErrUnknownType
	}
	return t.Diff(ctx)
}

// History returns the most recent sync outcomes recorded for one resource.
func (s *Service) History(ctx context.Context, resourceType, key string, limit int) ([]journal.Entry, error) {
	if _, ok := s.targets[resourceType]; !ok {
		return nil, ErrUnknownType
	}
	if s.history == nil {
		return nil, ErrNoHistory
	}
	return s.history.Recent(ctx, resourceType, key, limit)
}
