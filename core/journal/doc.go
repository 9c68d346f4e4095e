// Package journal records every create and update attempted by a sync run.
//
// The journal is an audit trail: each row names the run id, resource type,
// key, action and outcome. It is never read back when planning, so
// reconciliation stays a fresh comparison of two snapshots.
//
// Journaling is optional and enabled through the database configuration
// section. It uses GORM with the MySQL driver.
//
// # Usage
//
//	db, err := journal.Connect(cfg.Database)
//	j := journal.New(db)
//	_ = j.Migrate(ctx)
//	target := reconcile.NewTarget(m, opts, reconcile.Deps{Journal: j})
package journal
