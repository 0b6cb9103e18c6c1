// Package dice parses and rolls the dice terms used in Knight roll formulas.
package dice

import (
	"fmt"
	"strings"
)

// RollResult records one evaluated dice term.
//
// Postcondition: Total() == sum(Dice) + Modifier.
type RollResult struct {
	Expression string // the term as written, e.g. "3d6" or "4d6kh3"
	Dice       []int  // kept die faces
	Dropped    []int  // faces discarded by a keep-highest rule
	Modifier   int
}

// Total returns the sum of the kept dice plus the modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String renders the roll for logs and CLI output, e.g. "3d6 → [2 5 6] = 13".
// The modifier is shown only when non-zero.
func (r RollResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s → %v", r.Expression, r.Dice)
	if len(r.Dropped) > 0 {
		fmt.Fprintf(&b, " (dropped %v)", r.Dropped)
	}
	if r.Modifier != 0 {
		fmt.Fprintf(&b, " %+d", r.Modifier)
	}
	fmt.Fprintf(&b, " = %d", r.Total())
	return b.String()
}

// Source is the randomness provider for dice rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}
