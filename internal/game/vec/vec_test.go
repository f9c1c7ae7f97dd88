package vec_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/arena/internal/game/vec"
)

const eps = 1e-9

func TestVec_Arithmetic(t *testing.T) {
	a := vec.New(3, 4)
	b := vec.New(1, -2)
	assert.Equal(t, vec.New(4, 2), a.Add(b))
	assert.Equal(t, vec.New(2, 6), a.Sub(b))
	assert.Equal(t, vec.New(6, 8), a.Scale(2))
	assert.InDelta(t, 5.0, a.Magnitude(), eps)
	assert.InDelta(t, 5.0, vec.Distance(vec.Zero, a), eps)
}

func TestVec_Normalize_ZeroIsZero(t *testing.T) {
	assert.Equal(t, vec.Zero, vec.Zero.Normalize())
}

func TestVec_Normalize_Property_UnitLength(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		x := rapid.Float64Range(-1000, 1000).Draw(rt, "x")
		y := rapid.Float64Range(-1000, 1000).Draw(rt, "y")
		v := vec.New(x, y)
		if v.Magnitude() < 1e-6 {
			return
		}
		assert.InDelta(rt, 1.0, v.Normalize().Magnitude(), 1e-9)
	})
}

func TestVec_Heading(t *testing.T) {
	assert.InDelta(t, 0, vec.New(1, 0).Heading(), eps)
	assert.InDelta(t, math.Pi/2, vec.New(0, 1).Heading(), eps)
	assert.InDelta(t, -math.Pi/2, vec.New(0, -1).Heading(), eps)
	assert.InDelta(t, math.Pi, vec.New(-1, 0).Heading(), eps)
}

func TestVec_Heading_Property_Range(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		x := rapid.Float64Range(-1000, 1000).Draw(rt, "x")
		y := rapid.Float64Range(-1000, 1000).Draw(rt, "y")
		h := vec.New(x, y).Heading()
		assert.Greater(rt, h, -math.Pi)
		assert.LessOrEqual(rt, h, math.Pi)
	})
}

func TestAngleBetween(t *testing.T) {
	right := vec.New(1, 0)
	assert.InDelta(t, math.Pi/2, vec.AngleBetween(right, vec.New(0, 1)), eps)
	assert.InDelta(t, -math.Pi/2, vec.AngleBetween(right, vec.New(0, -1)), eps)
	assert.InDelta(t, math.Pi, math.Abs(vec.AngleBetween(right, vec.New(-1, 0))), eps)
	assert.Equal(t, 0.0, vec.AngleBetween(vec.Zero, right))
}

func TestFromAngle_Property_RoundTripsHeading(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		theta := rapid.Float64Range(-math.Pi+1e-6, math.Pi).Draw(rt, "theta")
		v := vec.FromAngle(theta)
		assert.InDelta(rt, 1.0, v.Magnitude(), 1e-9)
		assert.InDelta(rt, theta, v.Heading(), 1e-9)
	})
}

func TestBounds_Clamp(t *testing.T) {
	b := vec.Bounds{Width: 400, Height: 400}
	assert.Equal(t, vec.New(10, 390), b.Clamp(vec.New(-50, 999), 20))
	assert.Equal(t, vec.New(200, 200), b.Clamp(vec.New(200, 200), 20))
}

func TestBounds_Clamp_Property_InsideAndIdempotent(t *testing.T) {
	b := vec.Bounds{Width: 400, Height: 400}
	rapid.Check(t, func(rt *rapid.T) {
		p := vec.New(
			rapid.Float64Range(-2000, 2000).Draw(rt, "x"),
			rapid.Float64Range(-2000, 2000).Draw(rt, "y"),
		)
		size := rapid.Float64Range(1, 80).Draw(rt, "size")
		c := b.Clamp(p, size)
		assert.True(rt, b.Contains(c, size))
		assert.Equal(rt, c, b.Clamp(c, size))
	})
}
