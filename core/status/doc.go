// Package status tracks the outcome of a process run.
//
// An Aggregator holds one of four strictly escalating levels:
//
//	Clean < DiffsFound < DiffsSynced < Fatal
//
// Any component may raise the level; it never decreases within a run. The CLI
// consults the final level at exit to choose the process exit code (see the
// exit section of the configuration).
//
// # Usage
//
//	status.Global.Raise(status.DiffsFound)
//	os.Exit(cfg.Exit.Code(status.Global.Level()))
package status
