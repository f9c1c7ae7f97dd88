// Package dice provides the randomness abstraction used by the simulation:
// enemy headings, random cell placement, and level-scaled enemy counts.
package dice

import (
	"fmt"
	"strings"
)

// Source is the randomness provider for the simulation.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
	// Float64 returns a random float64 in [0, 1).
	Float64() float64
}

// Expression is a dice roll of Count dice with Sides faces plus a flat Modifier.
//
// Invariant: Count >= 0, Sides >= 1.
type Expression struct {
	Count    int
	Sides    int
	Modifier int
}

// String renders the expression in NdS+M form.
func (e Expression) String() string {
	if e.Modifier == 0 {
		return fmt.Sprintf("%dd%d", e.Count, e.Sides)
	}
	return fmt.Sprintf("%dd%d%+d", e.Count, e.Sides, e.Modifier)
}

// Min returns the smallest possible total of e.
func (e Expression) Min() int { return e.Count + e.Modifier }

// Max returns the largest possible total of e.
func (e Expression) Max() int { return e.Count*e.Sides + e.Modifier }

// RollResult holds the full audit trail for a single roll.
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

// String returns a human-readable audit string, e.g. "3d2 → [1 2 2] +0 = 5".
//
// Precondition: r.Expression is non-empty.
func (r RollResult) String() string {
	if r.Expression == "" {
		panic("dice: RollResult.String() precondition violated: Expression must be non-empty")
	}
	parts := make([]string, len(r.Dice))
	for i, d := range r.Dice {
		parts[i] = fmt.Sprintf("%d", d)
	}
	return fmt.Sprintf("%s → [%s] %+d = %d", r.Expression, strings.Join(parts, " "), r.Modifier, r.Total())
}
