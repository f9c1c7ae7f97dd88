package npc

import "github.com/cory-johannsen/arena/internal/game/combat"

// Behavior is the enemy's active state-machine variant.
type Behavior int

const (
	// Wander is the idle random-heading patrol.
	Wander Behavior = iota
	// Chase is direct pursuit of the player inside ChaseRadius.
	Chase
	// Knockback is forced displacement after taking damage. Damage is ignored while in it.
	Knockback
)

// String returns a lowercase state label.
func (b Behavior) String() string {
	switch b {
	case Wander:
		return "wander"
	case Chase:
		return "chase"
	case Knockback:
		return "knockback"
	default:
		return "unknown"
	}
}

const (
	// WanderPeriod is the number of ticks between heading changes.
	WanderPeriod = 90
	// WanderMoveTicks is how many ticks after a heading change the enemy keeps moving.
	WanderMoveTicks = 30
	// ChaseRadius is the distance at which a chase-capable enemy starts pursuing.
	ChaseRadius = 100.0
)

// TransitionContext carries everything Transition may consult.
type TransitionContext struct {
	// Ticks is the number of updates spent in the current state.
	Ticks int
	// DistanceToPlayer is measured after this tick's movement.
	DistanceToPlayer float64
	// CanChase enables Wander -> Chase.
	CanChase bool
}

// Transition returns the state the enemy occupies after an update.
//
// Postcondition: Knockback yields Wander once Ticks >= combat.KnockbackTicks. Wander yields Chase
// only when CanChase and DistanceToPlayer < ChaseRadius. Chase yields Wander when
// DistanceToPlayer >= ChaseRadius. Every other input returns state unchanged.
func Transition(state Behavior, ctx TransitionContext) Behavior {
	switch state {
	case Knockback:
		if ctx.Ticks >= combat.KnockbackTicks {
			return Wander
		}
	case Wander:
		if ctx.CanChase && ctx.DistanceToPlayer < ChaseRadius {
			return Chase
		}
	case Chase:
		if ctx.DistanceToPlayer >= ChaseRadius {
			return Wander
		}
	}
	return state
}

// OnDamage returns the state entered when damage lands.
//
// Postcondition: accepted is false iff state is Knockback, in which case next == state.
func OnDamage(state Behavior) (next Behavior, accepted bool) {
	if state == Knockback {
		return state, false
	}
	return Knockback, true
}
