package status

import "sync/atomic"

// Level is the severity of a run outcome.
type Level int32

const (
	// Clean means no differences were found.
	Clean Level = iota
	// DiffsFound means at least one actionable difference was reported.
	DiffsFound
	// DiffsSynced means at least one create or update was applied.
	DiffsSynced
	// Fatal means an operation failed.
	Fatal
)

// String returns the level name used in logs and reports.
func (l Level) String() string {
	switch l {
	case Clean:
		return "clean"
	case DiffsFound:
		return "diffs_found"
	case DiffsSynced:
		return "diffs_synced"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Aggregator holds the highest level raised so far. The zero value is Clean
// and ready to use.
type Aggregator struct {
	level atomic.Int32
}

// Global is the process-wide aggregator used by the CLI.
var Global = &Aggregator{}

// Raise escalates the aggregator to l. Lower levels are ignored.
func (a *Aggregator) Raise(l Level) {
	for {
		cur := a.level.Load()
		if int32(l) <= cur {
			return
		}
		if a.level.CompareAndSwap(cur, int32(l)) {
			return
		}
	}
}

// Level returns the current level.
func (a *Aggregator) Level() Level {
	return Level(a.level.Load())
}
