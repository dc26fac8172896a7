package constraint

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/qom/internal/qom"
)

// Filter returns the rows that match cmp, in input order. Rows are
// evaluated concurrently, at most runtime.GOMAXPROCS(0) at a time.
func Filter(ctx context.Context, src qom.ValueSource, rows []qom.Row, cmp *Comparison) ([]qom.Row, error) {
	return FilterN(ctx, src, rows, cmp, runtime.GOMAXPROCS(0))
}

// FilterN is Filter with an explicit concurrency limit. A limit below one
// evaluates sequentially.
func FilterN(ctx context.Context, src qom.ValueSource, rows []qom.Row, cmp *Comparison, limit int) ([]qom.Row, error) {
	if cmp == nil {
		return nil, invalid("comparison is required")
	}
	if limit < 1 {
		limit = 1
	}

	matched := make([]bool, len(rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, row := range rows {
		i, row := i, row
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ok, err := cmp.Match(gctx, src, row)
			if err != nil {
				return err
			}
			matched[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]qom.Row, 0, len(rows))
	for i, row := range rows {
		if matched[i] {
			out = append(out, row)
		}
	}
	return out, nil
}
