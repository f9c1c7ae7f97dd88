package sim

import (
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/npc"
	"github.com/cory-johannsen/arena/internal/game/vec"
)

// PlayerView is the renderer-facing snapshot of the player.
type PlayerView struct {
	Position       vec.Vec
	Direction      float64
	Size           float64
	Health         int
	HealthRatio    float64
	AttackStrength int
	ArmOffset      float64
}

// EnemyView is the renderer-facing snapshot of one enemy.
type EnemyView struct {
	ID          string
	Kind        npc.Kind
	Position    vec.Vec
	Direction   float64
	Size        float64
	HealthRatio float64
	State       npc.Behavior
}

// View is a read-only copy of the state after a tick. It shares no memory with the State.
type View struct {
	Frame         uint64
	Level         int
	LevelsCleared int
	GameOver      bool
	Player        PlayerView
	// Enemies are listed in update order.
	Enemies []EnemyView
	// Effects include swings, arrows and trails still alive.
	Effects []combat.Effect
}

// View returns a snapshot for renderers and input sources.
func (s *State) View() View {
	p := s.player
	v := View{
		Frame:         s.frame,
		Level:         s.level,
		LevelsCleared: s.levelsCleared,
		GameOver:      s.over,
		Player: PlayerView{
			Position:       p.Position,
			Direction:      p.Direction,
			Size:           p.Size,
			Health:         p.Health,
			HealthRatio:    p.HealthRatio(),
			AttackStrength: p.AttackStrength,
			ArmOffset:      p.ArmOffset,
		},
		Enemies: make([]EnemyView, 0, s.roster.Len()),
		Effects: append([]combat.Effect(nil), s.effects...),
	}
	for _, e := range s.roster.All() {
		v.Enemies = append(v.Enemies, EnemyView{
			ID:          e.ID,
			Kind:        e.Kind,
			Position:    e.Position,
			Direction:   e.Direction,
			Size:        e.Size,
			HealthRatio: e.HealthRatio(),
			State:       e.State,
		})
	}
	return v
}

// Nearest returns the enemy closest to the player.
//
// Postcondition: Returns (EnemyView{}, false) when no enemies remain.
func (v View) Nearest() (EnemyView, bool) {
	best, found := EnemyView{}, false
	bestDist := 0.0
	for _, e := range v.Enemies {
		d := vec.Distance(e.Position, v.Player.Position)
		if !found || d < bestDist {
			best, bestDist, found = e, d, true
		}
	}
	return best, found
}
