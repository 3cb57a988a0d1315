package fmindex

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Hit is the result of one exact-match query.
type Hit struct {
	Count    int64
	Interval Interval
}

// MatchExactBatch runs MatchExact for every pattern on up to parallelism
// goroutines (unbounded when parallelism <= 0). Hits are returned in pattern
// order. Queries already running when ctx is cancelled complete; the rest are
// skipped and ctx's error is returned.
func (ix *Index) MatchExactBatch(ctx context.Context, patterns [][]byte, parallelism int) ([]Hit, error) {
	hits := make([]Hit, len(patterns))
	g, ctx := errgroup.WithContext(ctx)
	if parallelism > 0 {
		g.SetLimit(parallelism)
	}
	for i, p := range patterns {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			n, iv := ix.MatchExact(p)
			hits[i] = Hit{Count: n, Interval: iv}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return hits, nil
}
