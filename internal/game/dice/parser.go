package dice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Expression is a parsed quantity expression such as "1d3", "2d4+1" or "5".
// A bare integer parses to a constant with Count 0.
type Expression struct {
	Raw      string
	Count    int
	Sides    int
	Modifier int
}

var exprPattern = regexp.MustCompile(`^(\d*)d(\d+)([+-]\d+)?$`)

// Parse parses a quantity expression.
//
// Precondition: expr must be a non-empty string.
// Postcondition: Count >= 1 and Sides >= 1 for dice forms; returns a descriptive error otherwise.
func Parse(expr string) (Expression, error) {
	s := strings.ToLower(strings.TrimSpace(expr))
	if s == "" {
		return Expression{}, fmt.Errorf("dice: empty expression")
	}
	if n, err := strconv.Atoi(s); err == nil {
		return Expression{Raw: expr, Modifier: n}, nil
	}
	m := exprPattern.FindStringSubmatch(s)
	if m == nil {
		return Expression{}, fmt.Errorf("dice: malformed expression %q", expr)
	}
	count := 1
	if m[1] != "" {
		count, _ = strconv.Atoi(m[1])
	}
	sides, _ := strconv.Atoi(m[2])
	if count < 1 || sides < 1 {
		return Expression{}, fmt.Errorf("dice: expression %q needs at least one die with one side", expr)
	}
	mod := 0
	if m[3] != "" {
		mod, _ = strconv.Atoi(m[3])
	}
	return Expression{Raw: expr, Count: count, Sides: sides, Modifier: mod}, nil
}

// MustParse parses expr and panics on error. Useful for package-level tables.
//
// Precondition: expr must be a valid expression.
func MustParse(expr string) Expression {
	e, err := Parse(expr)
	if err != nil {
		panic("dice: MustParse failed for expression " + expr + ": " + err.Error())
	}
	return e
}

// Min returns the smallest total the expression can produce.
func (e Expression) Min() int { return e.Count + e.Modifier }

// Max returns the largest total the expression can produce.
func (e Expression) Max() int { return e.Count*e.Sides + e.Modifier }

// String returns the raw expression.
func (e Expression) String() string { return e.Raw }
