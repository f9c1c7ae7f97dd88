// Package vec provides the 2D vector arithmetic shared by every simulation component.
package vec

import "math"

// Vec is an immutable 2D point or direction in arena units.
type Vec struct {
	X float64
	Y float64
}

// Zero is the zero vector.
var Zero = Vec{}

// New returns the vector (x, y).
func New(x, y float64) Vec { return Vec{X: x, Y: y} }

// Add returns v + o.
func (v Vec) Add(o Vec) Vec { return Vec{X: v.X + o.X, Y: v.Y + o.Y} }

// Sub returns v - o.
func (v Vec) Sub(o Vec) Vec { return Vec{X: v.X - o.X, Y: v.Y - o.Y} }

// Scale returns v multiplied by s.
func (v Vec) Scale(s float64) Vec { return Vec{X: v.X * s, Y: v.Y * s} }

// Magnitude returns the Euclidean length of v.
func (v Vec) Magnitude() float64 { return math.Hypot(v.X, v.Y) }

// IsZero reports whether both components are exactly zero.
func (v Vec) IsZero() bool { return v.X == 0 && v.Y == 0 }

// Normalize returns the unit vector in the direction of v.
//
// Postcondition: Returns Zero when v has zero length; never divides by zero.
func (v Vec) Normalize() Vec {
	m := v.Magnitude()
	if m == 0 {
		return Zero
	}
	return Vec{X: v.X / m, Y: v.Y / m}
}

// Heading returns the angle of v in radians.
//
// Postcondition: Returns a value in (-π, π]; the zero vector has heading 0.
func (v Vec) Heading() float64 {
	h := math.Atan2(v.Y, v.X)
	if h == -math.Pi {
		return math.Pi
	}
	return h
}

// Dot returns the dot product of v and o.
func (v Vec) Dot(o Vec) float64 { return v.X*o.X + v.Y*o.Y }

// Rotate returns v rotated by theta radians, the same sense as Heading.
func (v Vec) Rotate(theta float64) Vec {
	sin, cos := math.Sincos(theta)
	return Vec{X: v.X*cos - v.Y*sin, Y: v.X*sin + v.Y*cos}
}

// Distance returns |a - b|.
func Distance(a, b Vec) float64 { return a.Sub(b).Magnitude() }

// AngleBetween returns the signed angle that rotates a onto b.
//
// Postcondition: Returns a value in [-π, π]; returns 0 if either vector is zero.
func AngleBetween(a, b Vec) float64 {
	if a.IsZero() || b.IsZero() {
		return 0
	}
	cross := a.X*b.Y - a.Y*b.X
	return math.Atan2(cross, a.Dot(b))
}

// FromAngle returns the unit vector with heading theta.
func FromAngle(theta float64) Vec {
	sin, cos := math.Sincos(theta)
	return Vec{X: cos, Y: sin}
}

// Bounds is an axis-aligned rectangle anchored at the origin.
type Bounds struct {
	Width  float64
	Height float64
}

// Clamp returns p moved inside b, keeping a circle of the given diameter fully inside.
//
// Precondition: size <= min(b.Width, b.Height).
// Postcondition: result lies in [size/2, Width-size/2] x [size/2, Height-size/2];
// Clamp is idempotent.
func (b Bounds) Clamp(p Vec, size float64) Vec {
	half := size / 2
	return Vec{
		X: clamp(p.X, half, b.Width-half),
		Y: clamp(p.Y, half, b.Height-half),
	}
}

// Contains reports whether a circle of the given diameter centered at p lies inside b.
func (b Bounds) Contains(p Vec, size float64) bool {
	half := size / 2
	return p.X >= half && p.X <= b.Width-half && p.Y >= half && p.Y <= b.Height-half
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
