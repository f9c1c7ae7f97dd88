package combat

import (
	"fmt"

	"github.com/cory-johannsen/arena/internal/game/vec"
)

// EffectKind distinguishes the effects the simulation tracks between ticks.
type EffectKind int

const (
	// EffectSword is a melee swing. It hit-tests once when created and is visual afterwards.
	EffectSword EffectKind = iota
	// EffectArrow is a ranged projectile that travels and hit-tests every tick.
	EffectArrow
	// EffectSlimeTrail is a fading puddle left behind when a slime changes heading.
	EffectSlimeTrail
)

// String returns a human-readable effect label.
func (k EffectKind) String() string {
	switch k {
	case EffectSword:
		return "sword"
	case EffectArrow:
		return "arrow"
	case EffectSlimeTrail:
		return "slime_trail"
	default:
		return "unknown"
	}
}

const (
	// SwordSwingTicks is how long a swing stays visible.
	SwordSwingTicks = 10

	// ArrowStartOffset is the distance from the shooter at which an arrow appears.
	ArrowStartOffset = 10.0
	// ArrowSpeed is the distance an arrow travels per tick.
	ArrowSpeed = 5.0
	// ArrowMaxOffset is the distance from the shooter at which an arrow is spent.
	ArrowMaxOffset = 600.0

	// SlimeTrailTimer is the trail's starting alpha; it drops by one every other frame.
	SlimeTrailTimer = 180
)

// ArrowLifetime returns the number of ticks an arrow flies before it is spent.
//
// Postcondition: Returns (ArrowMaxOffset - ArrowStartOffset) / ArrowSpeed, i.e. 118.
func ArrowLifetime() int {
	return int((ArrowMaxOffset - ArrowStartOffset) / ArrowSpeed)
}

// Effect is one entry in the simulation's active-effects list.
type Effect struct {
	Kind EffectKind
	// Origin is where the effect was spawned. Arrows travel away from it.
	Origin vec.Vec
	// Heading is the facing in radians at spawn time.
	Heading float64
	// Offset is how far an arrow has travelled along Heading from Origin.
	Offset float64
	// Timer counts down to expiry.
	Timer int
	// Damage is dealt by an arrow on hit.
	Damage int
	// Size is the trail diameter; zero for other kinds.
	Size float64
}

// NewSwordSwing returns a swing effect at pos facing heading.
func NewSwordSwing(pos vec.Vec, heading float64) Effect {
	return Effect{Kind: EffectSword, Origin: pos, Heading: heading, Timer: SwordSwingTicks}
}

// NewArrow returns an arrow fired from origin along heading.
//
// Precondition: damage >= 0.
// Postcondition: Offset == ArrowStartOffset; Timer == ArrowLifetime().
func NewArrow(origin vec.Vec, heading float64, damage int) Effect {
	return Effect{
		Kind:    EffectArrow,
		Origin:  origin,
		Heading: heading,
		Offset:  ArrowStartOffset,
		Timer:   ArrowLifetime(),
		Damage:  damage,
	}
}

// NewSlimeTrail returns a trail puddle at pos.
func NewSlimeTrail(pos vec.Vec, size float64) Effect {
	return Effect{Kind: EffectSlimeTrail, Origin: pos, Timer: SlimeTrailTimer, Size: size}
}

// Position returns the effect's current world position.
func (e Effect) Position() vec.Vec {
	if e.Kind != EffectArrow {
		return e.Origin
	}
	return e.Origin.Add(vec.FromAngle(e.Heading).Scale(e.Offset))
}

// Advance moves the effect forward one tick.
//
// Postcondition: arrows travel ArrowSpeed and lose one tick of lifetime; swings lose one
// tick; trails fade by one on even frames.
func (e *Effect) Advance(frame uint64) {
	switch e.Kind {
	case EffectArrow:
		e.Offset += ArrowSpeed
		e.Timer--
	case EffectSlimeTrail:
		if frame%2 == 0 {
			e.Timer--
		}
	default:
		e.Timer--
	}
}

// Expired reports whether the effect should be removed.
func (e Effect) Expired() bool { return e.Timer <= 0 }

// String returns a compact description for logs.
func (e Effect) String() string {
	p := e.Position()
	return fmt.Sprintf("%s@(%.1f,%.1f) t=%d", e.Kind, p.X, p.Y, e.Timer)
}
