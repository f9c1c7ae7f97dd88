package npc

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/vec"
)

// Roster holds the live enemies of one level in spawn order.
// It is owned by a single simulation and is not safe for concurrent use.
type Roster struct {
	enemies []*Enemy
}

// NewRoster creates an empty Roster.
func NewRoster() *Roster {
	return &Roster{}
}

// Spawn creates an enemy from tmpl at pos and appends it to the roster.
//
// Precondition: tmpl and src must be non-nil.
// Postcondition: Returns the new enemy, which has a unique ID and is last in All().
func (r *Roster) Spawn(tmpl *Template, pos vec.Vec, tier int, src dice.Source) (*Enemy, error) {
	if tmpl == nil {
		return nil, fmt.Errorf("npc.Roster.Spawn: tmpl must not be nil")
	}
	id := fmt.Sprintf("%s-%s", tmpl.Kind, uuid.NewString())
	e := NewEnemy(id, tmpl, pos, tier, src)
	r.enemies = append(r.enemies, e)
	return e, nil
}

// All returns the live enemies in spawn order. The slice must not be retained
// across a call to Compact or Clear.
func (r *Roster) All() []*Enemy { return r.enemies }

// Len returns the number of enemies in the roster.
func (r *Roster) Len() int { return len(r.enemies) }

// Compact removes every dead enemy, preserving the order of the survivors.
//
// Postcondition: No enemy with Health <= 0 remains; returns the removed enemies in their
// former order.
func (r *Roster) Compact() []*Enemy {
	var removed []*Enemy
	kept := r.enemies[:0]
	for _, e := range r.enemies {
		if e.IsDead() {
			removed = append(removed, e)
			continue
		}
		kept = append(kept, e)
	}
	for i := len(kept); i < len(r.enemies); i++ {
		r.enemies[i] = nil
	}
	r.enemies = kept
	return removed
}

// Clear removes every enemy.
func (r *Roster) Clear() {
	clear(r.enemies)
	r.enemies = r.enemies[:0]
}
