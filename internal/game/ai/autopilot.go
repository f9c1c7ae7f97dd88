// Package ai provides a built-in input source that plays the game without a human.
package ai

import (
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/npc"
	"github.com/cory-johannsen/arena/internal/game/player"
	"github.com/cory-johannsen/arena/internal/game/sim"
	"github.com/cory-johannsen/arena/internal/game/vec"
)

const (
	// DefaultShootRange is the distance inside which the autopilot looses arrows.
	DefaultShootRange = 200.0
	// DefaultRetreatRatio is the health ratio below which the autopilot backs off chasers.
	DefaultRetreatRatio = 0.4
	// axisDeadzone suppresses a directional key when its axis share is this small.
	axisDeadzone = 0.38
)

// Autopilot turns a simulation view into the next input snapshot: pick the nearest enemy,
// aim at it, close in and swing, shoot when in range, and back off chasers when hurt.
type Autopilot struct {
	ShootRange   float64
	RetreatRatio float64
}

// NewAutopilot returns an Autopilot with the default tuning.
func NewAutopilot() *Autopilot {
	return &Autopilot{ShootRange: DefaultShootRange, RetreatRatio: DefaultRetreatRatio}
}

// Next returns the input for the frame after v.
//
// Postcondition: Returns the zero Input when the game is over or no enemy remains.
func (a *Autopilot) Next(v sim.View) player.Input {
	if v.GameOver {
		return player.Input{}
	}
	target, ok := v.Nearest()
	if !ok {
		return player.Input{}
	}

	me := v.Player.Position
	toTarget := target.Position.Sub(me)
	dist := toTarget.Magnitude()
	inReach := dist <= combat.MeleeReach+target.Size/2

	in := player.Input{
		Aim:    target.Position,
		HasAim: true,
		Attack: inReach,
		Shoot:  dist <= a.ShootRange,
	}

	switch {
	case inReach:
	case v.Player.HealthRatio < a.RetreatRatio && target.State == npc.Chase:
		steer(&in, toTarget.Scale(-1))
	default:
		steer(&in, toTarget)
	}
	return in
}

// steer sets the directional keys that best approximate dir. A unit vector always
// has one axis above the deadzone, so any non-zero dir moves the player.
func steer(in *player.Input, dir vec.Vec) {
	d := dir.Normalize()
	if d.IsZero() {
		return
	}
	in.Left = d.X < -axisDeadzone
	in.Right = d.X > axisDeadzone
	in.Up = d.Y < -axisDeadzone
	in.Down = d.Y > axisDeadzone
}
