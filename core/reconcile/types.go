package reconcile

import "context"

// ChangeKind classifies how a resource key differs between the local catalog
// and the remote snapshot.
type ChangeKind int

const (
	// Added means the resource is declared locally but missing remotely.
	Added ChangeKind = iota + 1
	// Unmanaged means the resource exists remotely but is not declared locally.
	Unmanaged
	// Modified means the resource exists on both sides and differs.
	Modified
)

// String returns the change kind name used in reports.
func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "added"
	case Unmanaged:
		return "unmanaged"
	case Modified:
		return "modified"
	default:
		return "unknown"
	}
}

// Diff is a single field-level difference within a Modified change set.
// Each resource type defines its own concrete diff with its own change
// categories.
type Diff interface {
	// String describes the difference for display.
	String() string
	// Informational diffs are displayed but never count as drift and never
	// trigger an update.
	Informational() bool
}

// ChangeSet is the classified outcome for one resource key.
type ChangeSet[L, R any] struct {
	// Key identifies the resource within its resource type.
	Key string
	// Kind is the classification.
	Kind ChangeKind
	// Local is set for Added and Modified.
	Local L
	// Remote is set for Unmanaged and Modified.
	Remote R
	// Diffs is the ordered list of differences for Modified.
	Diffs []Diff
}

// Actionable reports whether the change set represents drift. A Modified
// change set consisting only of informational diffs is not actionable.
func (c ChangeSet[L, R]) Actionable() bool {
	switch c.Kind {
	case Added, Unmanaged:
		return true
	case Modified:
		return hasActionable(c.Diffs)
	default:
		return false
	}
}

func hasActionable(diffs []Diff) bool {
	for _, d := range diffs {
		if !d.Informational() {
			return true
		}
	}
	return false
}

// Manager defines the per-resource-type collaborator operations the engine
// is generic over. L is the local (declared) configuration and R the remote
// (live) state.
type Manager[L, R any] interface {
	// Name returns the resource type name (e.g., "roles", "buckets").
	Name() string

	// LocalResources returns the declared resources keyed by name.
	LocalResources(ctx context.Context) (map[string]L, error)

	// RemoteResources fetches a fresh snapshot of the live resources keyed
	// by name. Implementations may paginate and fan out internally.
	RemoteResources(ctx context.Context) (map[string]R, error)

	// Compare returns the differences between a local and a remote resource.
	// An empty result means the resource is in sync.
	Compare(local L, remote R) []Diff

	// Create creates the resource remotely.
	Create(ctx context.Context, key string, local L) error

	// Update applies only the given differences to the remote resource.
	Update(ctx context.Context, key string, local L, diffs []Diff) error
}

// Action is the kind of mutation the sync driver performed.
type Action string

const (
	// ActionCreate creates a missing resource.
	ActionCreate Action = "create"
	// ActionUpdate applies differences to an existing resource.
	ActionUpdate Action = "update"
)

// Outcome records one mutation attempt.
type Outcome struct {
	RunID        string
	ResourceType string
	Key          string
	Action       Action
	Err          error
}

// Recorder persists mutation outcomes for auditing.
type Recorder interface {
	Record(ctx context.Context, o Outcome) error
}
