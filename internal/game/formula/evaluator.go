// Package formula evaluates user-authored roll formulas such as
// "1d20 + @str.mod + @lvl" against a creature's roll data.
//
// A formula is rewritten into a CEL expression: "@a.b" references become
// lookups into the roll-data map, dice terms become indexes into a list of
// pre-rolled totals, and integer literals become doubles so that arithmetic
// is uniform.
package formula

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/cory-johannsen/knight/internal/config"
	"github.com/cory-johannsen/knight/internal/game/derive"
	"github.com/cory-johannsen/knight/internal/game/dice"
)

// tokenPattern matches, in priority order, roll-data references, dice terms,
// and numeric literals. Reference segments may use any Unicode letter, so keys
// such as "Bête" are reachable.
var tokenPattern = regexp.MustCompile(
	`@[\p{L}_][\p{L}\p{N}_]*(?:\.[\p{L}_][\p{L}\p{N}_]*)*` +
		`|\b\d*[dD]\d+(?:[kK][hH]\d+)?\b` +
		`|\b\d+(?:\.\d+)?\b`,
)

// Result is the outcome of one formula evaluation.
type Result struct {
	// Formula is the formula as written.
	Formula string
	// Rolls holds one entry per dice term, in formula order.
	Rolls []dice.RollResult
	// Total is the formula value rounded to the evaluator's decimals.
	Total float64
}

// String renders the result, e.g. "3d6 + @abilities.Masques.mod [3d6 → [2 5 6] = 13] = 15".
func (r Result) String() string {
	var b strings.Builder
	b.WriteString(r.Formula)
	if len(r.Rolls) > 0 {
		parts := make([]string, len(r.Rolls))
		for i, roll := range r.Rolls {
			parts[i] = roll.String()
		}
		fmt.Fprintf(&b, " [%s]", strings.Join(parts, "; "))
	}
	fmt.Fprintf(&b, " = %s", strconv.FormatFloat(r.Total, 'f', -1, 64))
	return b.String()
}

// Evaluator compiles and evaluates roll formulas.
//
// Evaluator is safe for concurrent use. Compiled programs are cached by their
// rewritten source.
type Evaluator struct {
	env        *cel.Env
	roller     *dice.Roller
	decimals   int
	initiative string

	mu       sync.Mutex
	programs map[string]cel.Program
}

// NewEvaluator creates an Evaluator that rolls with roller and rounds results
// to cfg.Decimals places. cfg.Formula is used by Initiative.
//
// Precondition: roller must be non-nil; cfg.Decimals must be in [0, 6].
// Postcondition: Returns a ready Evaluator or a CEL environment error.
func NewEvaluator(roller *dice.Roller, cfg config.InitiativeConfig) (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("data", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("dice", cel.ListType(cel.DoubleType)),
	)
	if err != nil {
		return nil, fmt.Errorf("formula: building CEL environment: %w", err)
	}
	return &Evaluator{
		env:        env,
		roller:     roller,
		decimals:   cfg.Decimals,
		initiative: cfg.Formula,
		programs:   make(map[string]cel.Program),
	}, nil
}

// rewrite converts formula into CEL source and the dice terms it references.
// Every roll-data reference is checked against rd.
func rewrite(formula string, rd derive.RollData) (string, []dice.Expression, error) {
	var (
		terms []dice.Expression
		errs  []error
	)
	src := tokenPattern.ReplaceAllStringFunc(formula, func(tok string) string {
		switch {
		case strings.HasPrefix(tok, "@"):
			path := tok[1:]
			if _, err := rd.Resolve(path); err != nil {
				errs = append(errs, fmt.Errorf("unresolved reference %s: %w", tok, err))
				return "0.0"
			}
			var b strings.Builder
			b.WriteString("data")
			for _, part := range strings.Split(path, ".") {
				fmt.Fprintf(&b, "[%s]", strconv.Quote(part))
			}
			return b.String()
		case strings.ContainsAny(tok, "dD"):
			expr, err := dice.Parse(tok)
			if err != nil {
				errs = append(errs, err)
				return "0.0"
			}
			terms = append(terms, expr)
			return fmt.Sprintf("dice[%d]", len(terms)-1)
		case strings.Contains(tok, "."):
			return tok
		default:
			return tok + ".0"
		}
	})
	if len(errs) > 0 {
		return "", nil, errors.Join(errs...)
	}
	return src, terms, nil
}

func (e *Evaluator) program(src string) (cel.Program, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if prg, ok := e.programs[src]; ok {
		return prg, nil
	}
	ast, iss := e.env.Compile(src)
	if iss != nil && iss.Err() != nil {
		return nil, iss.Err()
	}
	prg, err := e.env.Program(ast, cel.InterruptCheckFrequency(64))
	if err != nil {
		return nil, err
	}
	e.programs[src] = prg
	return prg, nil
}

// Evaluate rolls and evaluates formula against rd.
//
// Precondition: formula must be non-blank.
// Postcondition: Returns a Result whose Rolls match the formula's dice terms in
// order, or an error naming every unresolved reference or malformed term.
func (e *Evaluator) Evaluate(ctx context.Context, formula string, rd derive.RollData) (Result, error) {
	if strings.TrimSpace(formula) == "" {
		return Result{}, errors.New("formula: empty formula")
	}
	src, terms, err := rewrite(formula, rd)
	if err != nil {
		return Result{}, fmt.Errorf("formula %q: %w", formula, err)
	}
	prg, err := e.program(src)
	if err != nil {
		return Result{}, fmt.Errorf("formula %q: compiling: %w", formula, err)
	}

	rolls := make([]dice.RollResult, len(terms))
	totals := make([]float64, len(terms))
	for i, term := range terms {
		rolls[i] = e.roller.Roll(term)
		totals[i] = float64(rolls[i].Total())
	}

	out, _, err := prg.ContextEval(ctx, map[string]any{
		"data": rd.Map(),
		"dice": totals,
	})
	if err != nil {
		return Result{}, fmt.Errorf("formula %q: evaluating: %w", formula, err)
	}

	var total float64
	switch v := out.Value().(type) {
	case float64:
		total = v
	case int64:
		total = float64(v)
	default:
		return Result{}, fmt.Errorf("formula %q: result is %T, not a number", formula, v)
	}
	return Result{Formula: formula, Rolls: rolls, Total: round(total, e.decimals)}, nil
}

func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
