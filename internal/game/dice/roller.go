package dice

import "sort"

// Roll evaluates expr with src.
//
// Precondition: expr must come from Parse; src must be non-nil.
// Postcondition: len(Dice) == KeepHighest when KeepHighest > 0, else Count;
// len(Dice)+len(Dropped) == Count.
func Roll(expr Expression, src Source) RollResult {
	faces := make([]int, expr.Count)
	for i := range faces {
		faces[i] = src.Intn(expr.Sides) + 1
	}
	res := RollResult{Expression: expr.Raw, Dice: faces, Modifier: expr.Modifier}
	if expr.KeepHighest > 0 {
		sorted := append([]int(nil), faces...)
		sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
		res.Dice = sorted[:expr.KeepHighest]
		res.Dropped = sorted[expr.KeepHighest:]
	}
	return res
}

// RollExpr parses and rolls expr in one call.
func RollExpr(expr string, src Source) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return Roll(e, src), nil
}
