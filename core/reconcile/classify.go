package reconcile

import "sort"

// Classify computes the change sets between locals and remotes, keyed by
// resource name.
//
// Remote-only keys produce Unmanaged change sets when includeUnmanaged is set.
// Local-only keys produce Added change sets. Keys present on both sides are
// passed to compare and produce a Modified change set only when compare
// returns at least one diff. The result is sorted by key.
func Classify[L, R any](locals map[string]L, remotes map[string]R, compare func(L, R) []Diff, includeUnmanaged bool) []ChangeSet[L, R] {
	changes := make([]ChangeSet[L, R], 0, len(locals))

	if includeUnmanaged {
		for key, remote := range remotes {
			if _, ok := locals[key]; ok {
				continue
			}
			changes = append(changes, ChangeSet[L, R]{Key: key, Kind: Unmanaged, Remote: remote})
		}
	}

	for key, local := range locals {
		remote, ok := remotes[key]
		if !ok {
			changes = append(changes, ChangeSet[L, R]{Key: key, Kind: Added, Local: local})
			continue
		}

		diffs := compare(local, remote)
		if len(diffs) == 0 {
			continue
		}
		changes = append(changes, ChangeSet[L, R]{
			Key:    key,
			Kind:   Modified,
			Local:  local,
			Remote: remote,
			Diffs:  diffs,
		})
	}

	// Sort by key for deterministic output
	sort.Slice(changes, func(i, j int) bool {
		return changes[i].Key < changes[j].Key
	})

	return changes
}
