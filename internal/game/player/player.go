// Package player implements the player-controlled combatant: movement, facing, arm swing,
// attack cooldowns and damage intake.
package player

import (
	"fmt"
	"math"

	"github.com/cory-johannsen/arena/internal/game/vec"
)

const (
	// DefaultSpeed is the player's movement per tick.
	DefaultSpeed = 2.0
	// DefaultSize is the player's diameter.
	DefaultSize = 20.0
	// DefaultHealth is the player's starting health.
	DefaultHealth = 5
	// DefaultAttackStrength is the player's damage per hit before upgrades.
	DefaultAttackStrength = 1

	// MeleeCooldown is the minimum number of ticks between sword swings.
	MeleeCooldown = 30
	// MeleeRetrigger is the held-press interval at which a sustained attack re-fires.
	MeleeRetrigger = 10
	// RangedCooldown is the minimum number of ticks between arrows.
	RangedCooldown = 60

	// ArmSwingLimit bounds the arm offset to [-ArmSwingLimit, ArmSwingLimit].
	ArmSwingLimit = 5.0
	// ArmSwingStep is the per-tick arm offset change while moving.
	ArmSwingStep = 0.5
)

// Input is one frame's logical input snapshot.
type Input struct {
	Left  bool
	Right bool
	Up    bool
	Down  bool
	// Aim is the world-space pointer position; it is consulted only when HasAim is set.
	Aim    vec.Vec
	HasAim bool
	// Attack is the melee button state; Shoot is the ranged button state.
	Attack bool
	Shoot  bool
}

// Movement returns the raw direction vector requested by the directional inputs.
func (in Input) Movement() vec.Vec {
	var m vec.Vec
	if in.Left {
		m.X--
	}
	if in.Right {
		m.X++
	}
	if in.Up {
		m.Y--
	}
	if in.Down {
		m.Y++
	}
	return m
}

// Actions reports what the player did during a Step.
type Actions struct {
	Moved bool
	// Melee is set when a sword swing fires this tick.
	Melee bool
	// Shoot is set when an arrow is loosed this tick.
	Shoot bool
}

// Player is the single player-controlled entity.
type Player struct {
	Position       vec.Vec
	Direction      float64
	Speed          float64
	Size           float64
	Health         int
	InitialHealth  int
	AttackStrength int
	// ArmOffset oscillates in [-ArmSwingLimit, ArmSwingLimit] while moving.
	ArmOffset float64

	armVelocity float64
	sinceMelee  int
	sinceShot   int
	attackHeld  int
	prevAttack  bool
}

// New returns a player at pos with default stats and both attacks ready.
func New(pos vec.Vec) *Player {
	p := &Player{AttackStrength: DefaultAttackStrength}
	p.Respawn(pos)
	return p
}

// Respawn resets the player to full health at pos, keeping AttackStrength.
//
// Postcondition: Health == InitialHealth == DefaultHealth; both attacks are ready;
// AttackStrength is unchanged.
func (p *Player) Respawn(pos vec.Vec) {
	p.Position = pos
	p.Direction = 0
	p.Speed = DefaultSpeed
	p.Size = DefaultSize
	p.Health = DefaultHealth
	p.InitialHealth = DefaultHealth
	p.ArmOffset = 0
	p.armVelocity = ArmSwingStep
	p.sinceMelee = MeleeCooldown
	p.sinceShot = RangedCooldown
	p.attackHeld = 0
	p.prevAttack = false
}

// Pos implements combat.Body.
func (p *Player) Pos() vec.Vec { return p.Position }

// Radius implements combat.Body.
func (p *Player) Radius() float64 { return p.Size / 2 }

// IsDead reports whether the player's health has been depleted.
func (p *Player) IsDead() bool { return p.Health <= 0 }

// HealthRatio returns Health / InitialHealth clamped to [0, 1].
func (p *Player) HealthRatio() float64 {
	if p.InitialHealth <= 0 {
		return 0
	}
	return math.Max(0, math.Min(1, float64(p.Health)/float64(p.InitialHealth)))
}

// Damage reduces health by amount. The player has no knockback or invulnerability.
func (p *Player) Damage(amount int) {
	p.Health -= amount
}

// Step runs the player's per-tick decision sequence: move, face, swing arms, and
// evaluate both attack cooldowns.
//
// Postcondition: Position lies inside bounds for the player's size; movement magnitude
// is Speed regardless of how many directional inputs are active.
func (p *Player) Step(in Input, bounds vec.Bounds) Actions {
	var act Actions

	move := in.Movement().Normalize().Scale(p.Speed)
	if !move.IsZero() {
		before := p.Position
		p.Position = bounds.Clamp(p.Position.Add(move), p.Size)
		act.Moved = p.Position != before
	}

	switch {
	case in.HasAim && in.Aim != p.Position:
		p.Direction = in.Aim.Sub(p.Position).Heading()
	case !move.IsZero():
		p.Direction = move.Heading()
	}

	if act.Moved {
		p.swingArms()
	}

	p.sinceMelee++
	p.sinceShot++
	act.Melee = p.meleeReady(in.Attack)
	if act.Melee {
		p.sinceMelee = 0
	}
	if in.Shoot && p.sinceShot >= RangedCooldown {
		act.Shoot = true
		p.sinceShot = 0
	}
	return act
}

// meleeReady applies the press-edge and held-press rules. The held count restarts at
// every swing, so a sustained press fires at a fixed cadence.
func (p *Player) meleeReady(pressed bool) bool {
	fresh := pressed && !p.prevAttack
	p.prevAttack = pressed
	if !pressed {
		p.attackHeld = 0
		return false
	}
	p.attackHeld++
	if p.sinceMelee < MeleeCooldown || !(fresh || p.attackHeld%MeleeRetrigger == 0) {
		return false
	}
	p.attackHeld = 0
	return true
}

func (p *Player) swingArms() {
	if p.ArmOffset >= ArmSwingLimit {
		p.armVelocity = -ArmSwingStep
	} else if p.ArmOffset <= -ArmSwingLimit {
		p.armVelocity = ArmSwingStep
	}
	p.ArmOffset += p.armVelocity
}

// String returns a compact description for logs.
func (p *Player) String() string {
	return fmt.Sprintf("player hp=%d/%d str=%d @(%.1f,%.1f)",
		p.Health, p.InitialHealth, p.AttackStrength, p.Position.X, p.Position.Y)
}
