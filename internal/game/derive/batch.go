package derive

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/knight/internal/game/creature"
)

// PrepareAll prepares independent records concurrently with at most workers
// in flight.
//
// Precondition: workers >= 1 (smaller values are treated as 1).
// Postcondition: out[i] is the prepared form of records[i]; on the first error
// the remaining work is cancelled and only that error is returned.
func (p *Preparer) PrepareAll(ctx context.Context, records []creature.Record, workers int) ([]creature.Record, error) {
	if workers < 1 {
		workers = 1
	}
	out := make([]creature.Record, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, rec := range records {
		g.Go(func() error {
			prepared, err := p.Prepare(gctx, rec)
			if err != nil {
				return err
			}
			out[i] = prepared
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
