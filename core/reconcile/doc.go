// Package reconcile provides the generic reconciliation engine that compares
// locally declared resources against live provider state.
//
// # Architecture
//
// The engine is generic over a Manager, implemented once per resource type
// (roles, groups, buckets, tables). A manager supplies the two snapshots and
// the resource-specific compare, create and update operations.
//
// 1. Classify: a pure function producing one ChangeSet per differing key:
//    Added (local only), Unmanaged (remote only) or Modified (both, with
//    ordered diffs). Output is always sorted by key.
//
// 2. Syncer: walks the change sets in key order and calls Create or Update.
//    Unmanaged resources are reported and never deleted. Failures are
//    isolated per key and combined at the end.
//
// 3. Target: a type-erased runner that fetches both snapshots once per run,
//    classifies, reports and optionally syncs, escalating the status
//    aggregator as it goes.
//
// TagDiff is a reusable structural diff for key/value tag sets that
// resource-specific diffs embed.
//
// # Usage Example
//
//	target := reconcile.NewTarget(roles.NewManager(client, catalog), reconcile.Options{
//	    IncludeUnmanaged: true,
//	    CreateEnabled:    true,
//	}, reconcile.Deps{Logger: log})
//
//	report, err := target.Diff(ctx)
package reconcile
