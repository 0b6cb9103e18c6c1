package derive

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/knight/internal/game/creature"
)

// Phase is a step of the record preparation sequence. Phases always run in
// declaration order.
type Phase int

const (
	// PhaseReset discards derived state left by a previous pass.
	PhaseReset Phase = iota
	// PhaseBaseData adjusts persisted fields before embedded documents apply.
	PhaseBaseData
	// PhaseEmbeddedDocuments applies embedded items and their active effects.
	PhaseEmbeddedDocuments
	// PhaseDerivedData computes derived fields. Derivation runs only here.
	PhaseDerivedData
)

var phaseNames = [...]string{
	PhaseReset:             "reset",
	PhaseBaseData:          "base_data",
	PhaseEmbeddedDocuments: "embedded_documents",
	PhaseDerivedData:       "derived_data",
}

// String implements fmt.Stringer.
func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// Phases lists every phase in execution order.
func Phases() []Phase {
	return []Phase{PhaseReset, PhaseBaseData, PhaseEmbeddedDocuments, PhaseDerivedData}
}

// ErrWrongPhase is returned when derivation is requested outside PhaseDerivedData.
var ErrWrongPhase = errors.New("derive: derivation is only allowed in the derived_data phase")

// DeriveInPhase runs Derive on rec if phase is PhaseDerivedData.
//
// Postcondition: rec is untouched and ErrWrongPhase is returned for any other phase.
func DeriveInPhase(phase Phase, rec creature.Record) error {
	if phase != PhaseDerivedData {
		return fmt.Errorf("%w (got %s)", ErrWrongPhase, phase)
	}
	return Derive(rec)
}
