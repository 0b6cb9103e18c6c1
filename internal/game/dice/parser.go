package dice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	// maxDice bounds the number of dice in a single term.
	maxDice = 1000
	// maxSides bounds the faces per die, keeping every total well inside int.
	maxSides = 1_000_000
)

// termPattern matches "[count]d<sides>[kh<keep>][(+|-)<modifier>]".
var termPattern = regexp.MustCompile(`^(\d*)d(\d+)(?:kh(\d+))?([+-]\d+)?$`)

// Expression is a parsed dice term.
//
// Invariant: 1 <= Count <= maxDice, 2 <= Sides <= maxSides, 0 <= KeepHighest < Count.
type Expression struct {
	Raw         string
	Count       int
	Sides       int
	KeepHighest int // 0 keeps every die
	Modifier    int
}

// Parse parses a dice term such as "d20", "3d6", "4d6kh3" or "1d8+2".
// Whitespace and letter case are ignored.
//
// Postcondition: Returns an Expression satisfying its invariant, or an error.
func Parse(expr string) (Expression, error) {
	s := strings.ToLower(strings.Join(strings.Fields(expr), ""))
	m := termPattern.FindStringSubmatch(s)
	if m == nil {
		return Expression{}, fmt.Errorf("dice: malformed term %q", expr)
	}

	e := Expression{Raw: s, Count: 1}
	var err error
	if m[1] != "" {
		if e.Count, err = strconv.Atoi(m[1]); err != nil {
			return Expression{}, fmt.Errorf("dice: die count in %q must be 1-%d: %w", expr, maxDice, err)
		}
	}
	if e.Count < 1 || e.Count > maxDice {
		return Expression{}, fmt.Errorf("dice: die count in %q must be 1-%d", expr, maxDice)
	}
	if e.Sides, err = strconv.Atoi(m[2]); err != nil {
		return Expression{}, fmt.Errorf("dice: die sides in %q must be 2-%d: %w", expr, maxSides, err)
	}
	if e.Sides < 2 || e.Sides > maxSides {
		return Expression{}, fmt.Errorf("dice: die sides in %q must be 2-%d", expr, maxSides)
	}
	if m[3] != "" {
		if e.KeepHighest, err = strconv.Atoi(m[3]); err != nil {
			return Expression{}, fmt.Errorf("dice: kh value in %q: %w", expr, err)
		}
		if e.KeepHighest < 1 || e.KeepHighest >= e.Count {
			return Expression{}, fmt.Errorf("dice: kh value in %q must be > 0 and < count %d", expr, e.Count)
		}
	}
	if m[4] != "" {
		mod, err := strconv.Atoi(m[4])
		if err != nil {
			return Expression{}, fmt.Errorf("dice: invalid modifier in %q: %w", expr, err)
		}
		e.Modifier = mod
	}
	return e, nil
}

// MustParse is Parse for package-level constants; it panics on error.
func MustParse(expr string) Expression {
	e, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return e
}
