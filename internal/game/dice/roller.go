package dice

import "fmt"

// RollResult holds the audit trail for one expression roll.
//
// Postcondition: Total() == sum(Dice) + Modifier.
type RollResult struct {
	Expression string
	Dice       []int
	Modifier   int
}

// Total returns the sum of all die results plus the modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String renders the roll as "2d4+1 → [3 2] +1 = 6".
func (r RollResult) String() string {
	return fmt.Sprintf("%s → %v %+d = %d", r.Expression, r.Dice, r.Modifier, r.Total())
}

// Roll evaluates expr with r. Each die consumes one IntRange draw.
//
// Postcondition: len(result.Dice) == expr.Count.
func (r *Rand) Roll(expr Expression) RollResult {
	rolled := make([]int, expr.Count)
	for i := range rolled {
		rolled[i] = r.IntRange(1, expr.Sides)
	}
	return RollResult{Expression: expr.Raw, Dice: rolled, Modifier: expr.Modifier}
}

// RollExpr parses expr and rolls it in a single call.
//
// Postcondition: returns a RollResult or a parse error.
func (r *Rand) RollExpr(expr string) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return r.Roll(e), nil
}
