package dice

import "fmt"

// Roll evaluates expr using src.
//
// Precondition: expr.Count >= 0 and expr.Sides >= 1; src must be non-nil.
// Postcondition: len(result.Dice) == expr.Count and
// expr.Min() <= result.Total() <= expr.Max().
func Roll(expr Expression, src Source) (RollResult, error) {
	if expr.Count < 0 {
		return RollResult{}, fmt.Errorf("dice: invalid die count %d in %s", expr.Count, expr)
	}
	if expr.Sides < 1 {
		return RollResult{}, fmt.Errorf("dice: invalid die sides %d in %s", expr.Sides, expr)
	}
	rolled := make([]int, expr.Count)
	for i := range rolled {
		rolled[i] = src.Intn(expr.Sides) + 1
	}
	return RollResult{
		Expression: expr.String(),
		Dice:       rolled,
		Modifier:   expr.Modifier,
	}, nil
}
