// Package combat implements the arena's hit geometry: melee swing arcs, arrow
// hit tests, knockback vectors, and the short-lived effects that carry them.
package combat

import (
	"math"

	"github.com/cory-johannsen/arena/internal/game/vec"
)

const (
	// MeleeReach is the distance beyond the target's radius that a sword swing reaches.
	MeleeReach = 37.0
	// MeleeHalfArc is half of the forward swing arc in radians.
	MeleeHalfArc = math.Pi / 2
	// KnockbackTicks is the number of ticks a knockback displacement is applied.
	KnockbackTicks = 30
)

// Body is anything with a collision circle.
type Body interface {
	// Pos returns the circle's center in world coordinates.
	Pos() vec.Vec
	// Radius returns the circle's radius.
	Radius() float64
}

// MeleeArc describes a forward swing.
type MeleeArc struct {
	Reach   float64
	HalfArc float64
}

// DefaultMeleeArc is the player's sword swing: 37 units of reach over a forward 180° arc.
var DefaultMeleeArc = MeleeArc{Reach: MeleeReach, HalfArc: MeleeHalfArc}

// Contains reports whether a target circle is inside the arc swung from attacker along facing.
//
// Postcondition: Returns true iff distance(attacker, target) <= targetRadius + Reach and the
// signed angle between the facing vector and the vector to the target lies in [-HalfArc, HalfArc].
func (a MeleeArc) Contains(attacker vec.Vec, facing float64, target vec.Vec, targetRadius float64) bool {
	toTarget := target.Sub(attacker)
	if toTarget.Magnitude() > targetRadius+a.Reach {
		return false
	}
	angle := vec.AngleBetween(vec.FromAngle(facing), toTarget)
	return angle >= -a.HalfArc && angle <= a.HalfArc
}

// InMeleeArc tests target against DefaultMeleeArc.
func InMeleeArc(attacker vec.Vec, facing float64, target vec.Vec, targetRadius float64) bool {
	return DefaultMeleeArc.Contains(attacker, facing, target, targetRadius)
}

// MeleeHits returns the indices of every body inside arc, in list order.
//
// Postcondition: Returns a non-nil slice (may be empty).
func MeleeHits[T Body](arc MeleeArc, attacker vec.Vec, facing float64, bodies []T) []int {
	hits := []int{}
	for i, b := range bodies {
		if arc.Contains(attacker, facing, b.Pos(), b.Radius()) {
			hits = append(hits, i)
		}
	}
	return hits
}

// KnockbackVector returns the per-tick displacement pushing target away from source.
//
// Postcondition: Returns a vector of magnitude speed pointing from source to target,
// or the zero vector when source and target coincide.
func KnockbackVector(source, target vec.Vec, speed float64) vec.Vec {
	return target.Sub(source).Normalize().Scale(speed)
}
