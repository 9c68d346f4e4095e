package workpool

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Collect runs fn for every item on a pool of workers and gathers the results
// by the key fn returns. The first failure aborts the collection and is
// returned; no partial result is produced.
func Collect[T, R any](ctx context.Context, workers int, logger *zap.Logger, items []T, fn func(context.Context, T) (string, R, error)) (map[string]R, error) {
	out := make(map[string]R, len(items))
	var mu sync.Mutex

	pool := New(ctx, workers, logger)
	for _, item := range items {
		err := pool.Submit(func(ctx context.Context) error {
			key, res, err := fn(ctx, item)
			if err != nil {
				return err
			}
			mu.Lock()
			out[key] = res
			mu.Unlock()
			return nil
		})
		if err != nil {
			break
		}
	}
	if err := pool.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
