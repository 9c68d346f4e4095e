// Package workpool provides a fail-fast bounded worker pool.
//
// Resource managers use it when fetching or mutating many sub-resources
// concurrently (per-role policies, per-bucket tagging, per-table
// descriptions). Without it, a failure on a background worker could vanish;
// with it, the first failure is captured and re-raised once by Wait.
//
// # Usage
//
//	pool := workpool.New(ctx, 8, log)
//	for _, name := range names {
//	    name := name
//	    if err := pool.Submit(func(ctx context.Context) error {
//	        return fetch(ctx, name)
//	    }); err != nil {
//	        break
//	    }
//	}
//	if err := pool.Wait(); err != nil {
//	    return err
//	}
package workpool
