package npc

import (
	"fmt"
	"math"

	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/vec"
)

// Enemy is a live enemy of any kind. Stat differences between kinds come from the
// Template it was spawned from.
type Enemy struct {
	ID   string
	Kind Kind
	Name string

	Position  vec.Vec
	Direction float64
	Size      float64
	Speed     float64

	// Health may drop below zero for the remainder of the tick in which the enemy dies.
	Health         int
	InitialHealth  int
	AttackStrength int
	CanChase       bool
	LeavesTrail    bool

	State Behavior
	// StateTicks counts updates since the current state was entered.
	StateTicks int

	knockback vec.Vec
}

// NewEnemy creates an enemy from tmpl at pos.
//
// Precondition: tmpl must be non-nil and valid; src must be non-nil.
// Postcondition: State == Wander, StateTicks == 0, Health == InitialHealth == tmpl.HealthFor(tier),
// and Direction is uniform in [0, 2π).
func NewEnemy(id string, tmpl *Template, pos vec.Vec, tier int, src dice.Source) *Enemy {
	hp := tmpl.HealthFor(tier)
	return &Enemy{
		ID:             id,
		Kind:           tmpl.Kind,
		Name:           tmpl.Name,
		Position:       pos,
		Direction:      randomHeading(src),
		Size:           tmpl.Size,
		Speed:          tmpl.Speed,
		Health:         hp,
		InitialHealth:  hp,
		AttackStrength: tmpl.AttackStrength,
		CanChase:       tmpl.CanChase,
		LeavesTrail:    tmpl.LeavesTrail,
		State:          Wander,
	}
}

// Pos implements combat.Body.
func (e *Enemy) Pos() vec.Vec { return e.Position }

// Radius implements combat.Body.
func (e *Enemy) Radius() float64 { return e.Size / 2 }

// IsDead reports whether the enemy's health has been depleted.
func (e *Enemy) IsDead() bool { return e.Health <= 0 }

// HealthRatio returns Health / InitialHealth clamped to [0, 1].
func (e *Enemy) HealthRatio() float64 {
	if e.InitialHealth <= 0 {
		return 0
	}
	r := float64(e.Health) / float64(e.InitialHealth)
	return math.Max(0, math.Min(1, r))
}

// Damage applies amount from a hit originating at source and enters Knockback.
//
// Postcondition: Returns false and leaves the enemy untouched while in Knockback.
// Otherwise Health is reduced by amount, State == Knockback, StateTicks == 0, and the
// knockback displacement points from source toward the enemy with magnitude Speed.
func (e *Enemy) Damage(amount int, source vec.Vec) bool {
	next, accepted := OnDamage(e.State)
	if !accepted {
		return false
	}
	e.Health -= amount
	e.knockback = combat.KnockbackVector(source, e.Position, e.Speed)
	e.enter(next)
	return true
}

// Update runs one tick of the state machine: the active state acts, the state counter
// advances, then Transition is evaluated against the post-movement distance to player.
//
// Precondition: src must be non-nil.
// Postcondition: Position lies inside bounds for the enemy's size. When a wandering enemy
// with LeavesTrail picks a new heading, the returned bool is true and the Effect is the
// trail to spawn.
func (e *Enemy) Update(player vec.Vec, bounds vec.Bounds, src dice.Source) (combat.Effect, bool) {
	var trail combat.Effect
	spawned := false

	switch e.State {
	case Wander:
		phase := e.StateTicks % WanderPeriod
		switch {
		case phase == 0:
			e.Direction = randomHeading(src)
			if e.LeavesTrail {
				trail, spawned = combat.NewSlimeTrail(e.Position, e.Size), true
			}
		case phase <= WanderMoveTicks:
			e.move(vec.FromAngle(e.Direction).Scale(e.Speed), bounds)
		}
	case Chase:
		toPlayer := player.Sub(e.Position)
		if !toPlayer.IsZero() {
			e.Direction = toPlayer.Heading()
		}
		step := toPlayer.Normalize().Scale(e.Speed)
		if step.Magnitude() > toPlayer.Magnitude() {
			step = toPlayer
		}
		e.move(step, bounds)
	case Knockback:
		e.move(e.knockback, bounds)
	default:
		panic(fmt.Sprintf("npc.Enemy.Update: unknown behavior %d", e.State))
	}

	e.StateTicks++
	next := Transition(e.State, TransitionContext{
		Ticks:            e.StateTicks,
		DistanceToPlayer: vec.Distance(e.Position, player),
		CanChase:         e.CanChase,
	})
	if next != e.State {
		e.enter(next)
	}
	return trail, spawned
}

// Touches reports whether the enemy's collision circle overlaps a player of the given size.
func (e *Enemy) Touches(playerPos vec.Vec, playerSize float64) bool {
	return vec.Distance(e.Position, playerPos) <= playerSize/2+e.Size/2
}

// String returns a compact description for logs.
func (e *Enemy) String() string {
	return fmt.Sprintf("%s[%s] %s hp=%d/%d @(%.1f,%.1f)",
		e.Kind, e.ID, e.State, e.Health, e.InitialHealth, e.Position.X, e.Position.Y)
}

func (e *Enemy) enter(state Behavior) {
	e.State = state
	e.StateTicks = 0
	if state != Knockback {
		e.knockback = vec.Zero
	}
}

func (e *Enemy) move(delta vec.Vec, bounds vec.Bounds) {
	e.Position = bounds.Clamp(e.Position.Add(delta), e.Size)
}

func randomHeading(src dice.Source) float64 {
	return src.Float64() * 2 * math.Pi
}
