package derive

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/cory-johannsen/knight/internal/game/creature"
)

// PhaseHook is extra work run against a record during one preparation phase.
type PhaseHook struct {
	// Name identifies the hook in errors and logs.
	Name string
	// Phase must be PhaseBaseData or PhaseEmbeddedDocuments.
	Phase Phase
	// Run mutates rec in place.
	Run func(ctx context.Context, rec creature.Record) error
}

// Preparer runs the ordered preparation phases over creature records.
//
// A Preparer holds no per-record state and is safe for concurrent use as long
// as its hooks are.
type Preparer struct {
	logger *zap.Logger
	hooks  map[Phase][]PhaseHook
}

// NewPreparer creates a Preparer with the given phase hooks, kept in the
// order given within each phase.
//
// Precondition: logger must be non-nil; each hook must target PhaseBaseData or
// PhaseEmbeddedDocuments and have a non-nil Run.
// Postcondition: Returns a ready Preparer, or an error naming the first bad hook.
func NewPreparer(logger *zap.Logger, hooks ...PhaseHook) (*Preparer, error) {
	p := &Preparer{logger: logger, hooks: make(map[Phase][]PhaseHook)}
	for _, h := range hooks {
		if h.Run == nil {
			return nil, fmt.Errorf("derive: hook %q has no Run function", h.Name)
		}
		if h.Phase != PhaseBaseData && h.Phase != PhaseEmbeddedDocuments {
			return nil, fmt.Errorf("derive: hook %q targets phase %s; only base_data and embedded_documents accept hooks", h.Name, h.Phase)
		}
		p.hooks[h.Phase] = append(p.hooks[h.Phase], h)
	}
	return p, nil
}

// Prepare runs every phase in order against a copy of src and returns the
// prepared copy.
//
// Precondition: src must be non-nil.
// Postcondition: src is never modified. Preparing the same src twice yields equal
// results. Errors are wrapped with the failing phase name.
func (p *Preparer) Prepare(ctx context.Context, src creature.Record) (creature.Record, error) {
	var rec creature.Record
	for _, phase := range Phases() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("preparing %q: %w", src.ID(), err)
		}
		var err error
		switch phase {
		case PhaseReset:
			rec = Reset(src)
		case PhaseBaseData:
			err = p.runHooks(ctx, phase, rec)
		case PhaseEmbeddedDocuments:
			err = ApplyEffects(rec)
			if err == nil {
				err = p.runHooks(ctx, phase, rec)
			}
		case PhaseDerivedData:
			err = DeriveInPhase(phase, rec)
		}
		if err != nil {
			p.logger.Warn("record preparation failed",
				zap.String("record", src.ID()),
				zap.Stringer("phase", phase),
				zap.Error(err),
			)
			return nil, fmt.Errorf("preparing %q in %s phase: %w", src.ID(), phase, err)
		}
	}
	p.logger.Debug("record prepared",
		zap.String("record", rec.ID()),
		zap.Stringer("kind", rec.Kind()),
	)
	return rec, nil
}

func (p *Preparer) runHooks(ctx context.Context, phase Phase, rec creature.Record) error {
	for _, h := range p.hooks[phase] {
		if err := h.Run(ctx, rec); err != nil {
			return fmt.Errorf("hook %q: %w", h.Name, err)
		}
	}
	return nil
}

// Reset returns a deep copy of src with every derived field cleared.
func Reset(src creature.Record) creature.Record {
	rec := src.Clone()
	abilities := rec.Abilities()
	for k, a := range abilities {
		a.Mod = 0
		abilities[k] = a
	}
	if n, ok := rec.(*creature.NPC); ok {
		n.XP = nil
	}
	return rec
}

// ApplyEffects adds every enabled item effect to its target ability value.
//
// Postcondition: Returns a *creature.ValidationError if an effect targets an
// ability without a value or would overflow it; abilities may be partially
// updated in that case.
func ApplyEffects(rec creature.Record) error {
	abilities := rec.Abilities()
	for i, it := range rec.Items() {
		for j, eff := range it.Effects {
			if eff.Disabled {
				continue
			}
			a, ok := abilities[eff.Ability]
			if !ok || a.Value == nil {
				return creature.Invalid(rec.ID(), fmt.Sprintf("items[%d].effects[%d].ability", i, j),
					"ability %q has no value to modify", eff.Ability)
			}
			if (eff.Delta > 0 && *a.Value > math.MaxInt-eff.Delta) || (eff.Delta < 0 && *a.Value < math.MinInt-eff.Delta) {
				return creature.Invalid(rec.ID(), fmt.Sprintf("items[%d].effects[%d].delta", i, j),
					"adding %d to ability %q (%d) overflows", eff.Delta, eff.Ability, *a.Value)
			}
			v := *a.Value + eff.Delta
			a.Value = &v
			abilities[eff.Ability] = a
		}
	}
	return nil
}
