package combat

import "github.com/cory-johannsen/arena/internal/game/vec"

// arrowShape holds the arrow's sample points in local space, heading along +X.
// Index 0 is the nose; the rest are the shaft's four corners.
var arrowShape = [5]vec.Vec{
	{X: 9, Y: 0},
	{X: 5, Y: -2},
	{X: 5, Y: 2},
	{X: -9, Y: -2},
	{X: -9, Y: 2},
}

// arrowExtent is the centroid-to-corner distance used by the coarse pre-check.
var arrowExtent = arrowShape[3].Magnitude()

// ArrowSamplePoints returns the arrow's nose and corners in world space.
func ArrowSamplePoints(center vec.Vec, heading float64) [5]vec.Vec {
	var pts [5]vec.Vec
	for i, p := range arrowShape {
		pts[i] = center.Add(p.Rotate(heading))
	}
	return pts
}

// ArrowHits reports whether an arrow centered at center with the given heading touches
// the target circle.
//
// Postcondition: Returns false without testing sample points when the target is farther
// than targetRadius + the arrow's extent from center; otherwise returns true iff any
// sample point is strictly within targetRadius of target.
func ArrowHits(center vec.Vec, heading float64, target vec.Vec, targetRadius float64) bool {
	if vec.Distance(center, target) >= targetRadius+arrowExtent {
		return false
	}
	for _, p := range ArrowSamplePoints(center, heading) {
		if vec.Distance(p, target) < targetRadius {
			return true
		}
	}
	return false
}

// FirstArrowHit returns the index of the first body, in list order, touched by arrow.
//
// Precondition: arrow.Kind == EffectArrow.
// Postcondition: Returns -1 when no body is touched.
func FirstArrowHit[T Body](arrow Effect, bodies []T) int {
	center := arrow.Position()
	for i, b := range bodies {
		if ArrowHits(center, arrow.Heading, b.Pos(), b.Radius()) {
			return i
		}
	}
	return -1
}
