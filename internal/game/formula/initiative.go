package formula

import (
	"context"
	"fmt"
	"sort"

	"github.com/cory-johannsen/knight/internal/game/creature"
	"github.com/cory-johannsen/knight/internal/game/derive"
)

// Standing is one creature's place in the initiative order.
type Standing struct {
	Record creature.Record
	Result Result
}

// Initiative evaluates the configured initiative formula against rec's roll data.
func (e *Evaluator) Initiative(ctx context.Context, rec creature.Record) (Result, error) {
	rd, err := derive.GetRollData(rec)
	if err != nil {
		return Result{}, fmt.Errorf("initiative for %q: %w", rec.ID(), err)
	}
	res, err := e.Evaluate(ctx, e.initiative, rd)
	if err != nil {
		return Result{}, fmt.Errorf("initiative for %q: %w", rec.ID(), err)
	}
	return res, nil
}

// InitiativeOrder rolls initiative for every record and sorts highest first.
// Ties keep record ID order.
func (e *Evaluator) InitiativeOrder(ctx context.Context, records []creature.Record) ([]Standing, error) {
	order := make([]Standing, 0, len(records))
	for _, rec := range records {
		res, err := e.Initiative(ctx, rec)
		if err != nil {
			return nil, err
		}
		order = append(order, Standing{Record: rec, Result: res})
	}
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].Result.Total != order[j].Result.Total {
			return order[i].Result.Total > order[j].Result.Total
		}
		return order[i].Record.ID() < order[j].Record.ID()
	})
	return order, nil
}
