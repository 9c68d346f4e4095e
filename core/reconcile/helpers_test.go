package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// fieldDiff is a test diff describing a single integer field change.
type fieldDiff struct {
	local, remote int
	info          bool
}

func (d fieldDiff) String() string      { return fmt.Sprintf("field: %d -> %d", d.remote, d.local) }
func (d fieldDiff) Informational() bool { return d.info }

type cfg struct {
	Field int
	Info  bool
}

type res struct {
	Field int
}

func compareCfg(l cfg, r res) []Diff {
	if l.Field == r.Field {
		return nil
	}
	return []Diff{fieldDiff{local: l.Field, remote: r.Field, info: l.Info}}
}

// fakeManager records every collaborator call.
type fakeManager struct {
	locals    map[string]cfg
	remotes   map[string]res
	localErr  error
	remoteErr error
	failOn    map[string]error

	created []string
	updated map[string][]Diff
	order   []string
}

func newFakeManager(locals map[string]cfg, remotes map[string]res) *fakeManager {
	return &fakeManager{locals: locals, remotes: remotes, updated: map[string][]Diff{}, failOn: map[string]error{}}
}

func (m *fakeManager) Name() string { return "fake" }

func (m *fakeManager) LocalResources(ctx context.Context) (map[string]cfg, error) {
	return m.locals, m.localErr
}

func (m *fakeManager) RemoteResources(ctx context.Context) (map[string]res, error) {
	return m.remotes, m.remoteErr
}

func (m *fakeManager) Compare(l cfg, r res) []Diff { return compareCfg(l, r) }

func (m *fakeManager) Create(ctx context.Context, key string, local cfg) error {
	m.order = append(m.order, key)
	if err := m.failOn[key]; err != nil {
		return err
	}
	m.created = append(m.created, key)
	return nil
}

func (m *fakeManager) Update(ctx context.Context, key string, local cfg, diffs []Diff) error {
	m.order = append(m.order, key)
	if err := m.failOn[key]; err != nil {
		return err
	}
	m.updated[key] = diffs
	return nil
}

type memoryRecorder struct {
	outcomes []Outcome
	err      error
}

func (r *memoryRecorder) Record(ctx context.Context, o Outcome) error {
	r.outcomes = append(r.outcomes, o)
	return r.err
}

var errRejected = errors.New("provider rejected request")

func keysOf[L, R any](changes []ChangeSet[L, R]) []string {
	keys := make([]string, 0, len(changes))
	for _, c := range changes {
		keys = append(keys, c.Key)
	}
	return keys
}

func isSorted(keys []string) bool {
	return sort.StringsAreSorted(keys)
}
