// Package level builds the per-level spawn layout: a 20×20 grid of tags naming where the
// player and each enemy appear.
package level

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/arena/internal/game/npc"
	"github.com/cory-johannsen/arena/internal/game/vec"
)

const (
	// ArenaWidth and ArenaHeight are the arena's extent in world units.
	ArenaWidth  = 400.0
	ArenaHeight = 400.0
	// GridSize is the number of cells per side.
	GridSize = 20
	// CellSize is the side length of a cell in world units.
	CellSize = 20.0
	// SafeZoneRadius is the Chebyshev cell distance from PlayerCell that random placement avoids.
	SafeZoneRadius = 3
)

// ArenaBounds is the rectangle every entity is clamped into.
var ArenaBounds = vec.Bounds{Width: ArenaWidth, Height: ArenaHeight}

// PlayerCell is the player's spawn cell for generated levels.
var PlayerCell = Cell{Col: 10, Row: 10}

// FirstLevelEnemyCell is where the lone level 0 enemy stands.
var FirstLevelEnemyCell = Cell{Col: 16, Row: 10}

// Cell addresses one grid square.
type Cell struct {
	Col int
	Row int
}

// Center returns the world position of the cell's center.
func (c Cell) Center() vec.Vec {
	return vec.New(float64(c.Col)*CellSize+CellSize/2, float64(c.Row)*CellSize+CellSize/2)
}

// InGrid reports whether c lies on the grid.
func (c Cell) InGrid() bool {
	return c.Col >= 0 && c.Col < GridSize && c.Row >= 0 && c.Row < GridSize
}

// InSafeZone reports whether c lies in the protected rectangle around PlayerCell.
func (c Cell) InSafeZone() bool {
	return abs(c.Col-PlayerCell.Col) <= SafeZoneRadius && abs(c.Row-PlayerCell.Row) <= SafeZoneRadius
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Tag is the character stored in a tilemap cell.
type Tag byte

// Tags recognised in tilemaps.
const (
	TagEmpty      Tag = ' '
	TagPlayer     Tag = 'p'
	TagSlime      Tag = 's'
	TagLargeSlime Tag = 'l'
	TagBossSlime  Tag = 'b'
	TagZombie     Tag = 'z'
)

var tagKinds = map[Tag]npc.Kind{
	TagSlime:      npc.KindSlime,
	TagLargeSlime: npc.KindLargeSlime,
	TagBossSlime:  npc.KindBossSlime,
	TagZombie:     npc.KindZombie,
}

// Kind returns the enemy kind t spawns.
//
// Postcondition: Returns ("", false) for TagEmpty, TagPlayer and unknown tags.
func (t Tag) Kind() (npc.Kind, bool) {
	k, ok := tagKinds[t]
	return k, ok
}

// TagFor returns the tag that spawns kind.
//
// Postcondition: Returns (0, false) for an unknown kind.
func TagFor(kind npc.Kind) (Tag, bool) {
	for t, k := range tagKinds {
		if k == kind {
			return t, true
		}
	}
	return 0, false
}

// Tilemap is the tag grid indexed [row][col].
type Tilemap [GridSize][GridSize]Tag

// NewTilemap returns a grid of TagEmpty.
func NewTilemap() Tilemap {
	var m Tilemap
	for r := range m {
		for c := range m[r] {
			m[r][c] = TagEmpty
		}
	}
	return m
}

// At returns the tag at c.
//
// Precondition: c.InGrid().
func (m Tilemap) At(c Cell) Tag { return m[c.Row][c.Col] }

// Set stores t at c.
//
// Precondition: c.InGrid().
func (m *Tilemap) Set(c Cell, t Tag) { m[c.Row][c.Col] = t }

// Rows renders each grid row as a string of tag characters.
func (m Tilemap) Rows() []string {
	rows := make([]string, GridSize)
	for r := range m {
		var b strings.Builder
		for c := range m[r] {
			b.WriteByte(byte(m[r][c]))
		}
		rows[r] = b.String()
	}
	return rows
}

// String renders the grid one row per line.
func (m Tilemap) String() string {
	return strings.Join(m.Rows(), "\n")
}

// ParseTilemap builds a Tilemap from GridSize rows of GridSize tag characters.
//
// Postcondition: Returns an error listing every malformed row, unknown tag, and a missing
// or duplicated player marker.
func ParseTilemap(rows []string) (Tilemap, error) {
	m := NewTilemap()
	var errs []string
	if len(rows) != GridSize {
		errs = append(errs, fmt.Sprintf("expected %d rows, got %d", GridSize, len(rows)))
	}
	players := 0
	for r, row := range rows {
		if r >= GridSize {
			break
		}
		if len(row) != GridSize {
			errs = append(errs, fmt.Sprintf("row %d: expected %d columns, got %d", r, GridSize, len(row)))
			continue
		}
		for c := 0; c < GridSize; c++ {
			t := Tag(row[c])
			switch {
			case t == TagEmpty:
			case t == TagPlayer:
				players++
			default:
				if _, ok := t.Kind(); !ok {
					errs = append(errs, fmt.Sprintf("row %d col %d: unknown tag %q", r, c, row[c]))
					continue
				}
			}
			m[r][c] = t
		}
	}
	if players != 1 {
		errs = append(errs, fmt.Sprintf("expected exactly one player marker, got %d", players))
	}
	if len(errs) > 0 {
		return Tilemap{}, fmt.Errorf("tilemap: %s", strings.Join(errs, "; "))
	}
	return m, nil
}
