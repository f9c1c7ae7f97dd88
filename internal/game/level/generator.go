package level

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/npc"
	"github.com/cory-johannsen/arena/internal/game/vec"
)

// DefaultMaxDraws bounds rejection sampling before the generator falls back to enumerating
// the remaining eligible cells.
const DefaultMaxDraws = 64

// ErrNegativeLevel is returned by Generate for a level index below zero.
var ErrNegativeLevel = errors.New("level: negative level index")

// Spawn is one enemy to instantiate.
type Spawn struct {
	Kind     npc.Kind
	Cell     Cell
	Position vec.Vec
	// Tier scales health for kinds that scale with tier.
	Tier int
}

// Layout is the result of one generation pass. It is consumed once to populate the
// simulation and then discarded.
type Layout struct {
	Level       int
	Tilemap     Tilemap
	PlayerSpawn vec.Vec
	Spawns      []Spawn
	// Skipped counts placements dropped because no eligible cell remained.
	Skipped int
}

// Composition is the number of enemies of each role placed on a generated level.
type Composition struct {
	Basic    int
	Advanced int
	Large    int
	Boss     int
	// BossTier is the health multiplier for bosses; values below 1 are treated as 1.
	BossTier int
}

// Total returns the number of enemies requested.
func (c Composition) Total() int { return c.Basic + c.Advanced + c.Large + c.Boss }

// Validate reports negative counts.
func (c Composition) Validate() error {
	if c.Basic < 0 || c.Advanced < 0 || c.Large < 0 || c.Boss < 0 {
		return fmt.Errorf("level: composition counts must be >= 0, got %+v", c)
	}
	return nil
}

// Composer overrides the built-in composition rules for a level.
type Composer interface {
	// Compose returns the composition for level. ok == false defers to the built-in rules.
	Compose(level int) (comp Composition, ok bool, err error)
}

// Options configures a Generator.
type Options struct {
	// Composer, when set, is consulted for every generated level above 0.
	Composer Composer
	// Authored maps level indices to hand-made tilemaps that replace generation.
	Authored map[int]Tilemap
	// MaxDraws bounds rejection sampling per placement; zero means DefaultMaxDraws.
	MaxDraws int
}

// Generator produces a Layout per level index.
type Generator struct {
	roller *dice.Roller
	logger *zap.Logger
	opts   Options
}

// NewGenerator creates a Generator drawing randomness from roller.
//
// Precondition: roller and logger must be non-nil.
func NewGenerator(roller *dice.Roller, logger *zap.Logger, opts Options) *Generator {
	if opts.MaxDraws <= 0 {
		opts.MaxDraws = DefaultMaxDraws
	}
	return &Generator{roller: roller, logger: logger, opts: opts}
}

// Generate builds the layout for level.
//
// Precondition: level >= 0.
// Postcondition: On success no two entities share a cell and, apart from the fixed
// level 0 enemy and authored tilemaps, no enemy sits in the safe zone.
func (g *Generator) Generate(level int) (Layout, error) {
	if level < 0 {
		return Layout{}, fmt.Errorf("%w: %d", ErrNegativeLevel, level)
	}
	if m, ok := g.opts.Authored[level]; ok {
		layout := FromTilemap(level, m)
		g.logger.Debug("authored level",
			zap.Int("level", level),
			zap.Int("enemies", len(layout.Spawns)),
		)
		return layout, nil
	}

	p := newPlacement(level)
	if level == 0 {
		p.place(npc.KindSlime, FirstLevelEnemyCell, 0)
		return p.layout, nil
	}

	comp, err := g.composition(level)
	if err != nil {
		return Layout{}, err
	}
	g.logger.Debug("level composition",
		zap.Int("level", level),
		zap.Int("basic", comp.Basic),
		zap.Int("advanced", comp.Advanced),
		zap.Int("large", comp.Large),
		zap.Int("boss", comp.Boss),
	)

	tier := max(comp.BossTier, 1)
	g.placeRandom(p, npc.KindBossSlime, comp.Boss, tier)
	g.placeRandom(p, npc.KindSlime, comp.Basic, 0)
	g.placeRandom(p, npc.KindZombie, comp.Advanced, 0)
	g.placeRandom(p, npc.KindLargeSlime, comp.Large, 0)

	if p.layout.Skipped > 0 {
		g.logger.Warn("grid full, placements skipped",
			zap.Int("level", level),
			zap.Int("skipped", p.layout.Skipped),
		)
	}
	return p.layout, nil
}

func (g *Generator) composition(level int) (Composition, error) {
	if g.opts.Composer != nil {
		comp, ok, err := g.opts.Composer.Compose(level)
		if err != nil {
			return Composition{}, fmt.Errorf("composing level %d: %w", level, err)
		}
		if ok {
			if err := comp.Validate(); err != nil {
				return Composition{}, err
			}
			return comp, nil
		}
	}
	return DefaultComposition(level, g.roller)
}

// DefaultComposition applies the built-in tier rules for level.
//
// Precondition: level >= 1.
// Postcondition: the returned composition's counts are all non-negative.
func DefaultComposition(level int, roller *dice.Roller) (Composition, error) {
	switch {
	case level < 1:
		return Composition{}, fmt.Errorf("level.DefaultComposition: level must be >= 1, got %d", level)
	case level == 1:
		return Composition{Basic: 1}, nil
	case level == 2:
		return Composition{Basic: 2, Advanced: 1}, nil
	case level <= 4:
		return Composition{Basic: level, Advanced: 1, Large: 1}, nil
	case level%5 == 0:
		tier := level / 5
		return Composition{
			Basic:    3 * (tier - 1),
			Advanced: 3 * (tier - 1),
			Boss:     1,
			BossTier: tier,
		}, nil
	}

	res, err := roller.Roll(dice.Expression{Count: level, Sides: 2})
	if err != nil {
		return Composition{}, err
	}
	total := res.Total()
	basic := roller.Intn(total + 1)
	return Composition{Basic: basic, Advanced: total - basic, Large: level / 2}, nil
}

func (g *Generator) placeRandom(p *placement, kind npc.Kind, n, tier int) {
	for i := 0; i < n; i++ {
		c, ok := g.freeCell(p)
		if !ok {
			p.layout.Skipped++
			continue
		}
		p.place(kind, c, tier)
		g.logger.Debug("placed enemy",
			zap.String("kind", string(kind)),
			zap.Int("col", c.Col),
			zap.Int("row", c.Row),
		)
	}
}

// freeCell rejection-samples an eligible cell, then falls back to a uniform pick among
// every remaining eligible cell.
func (g *Generator) freeCell(p *placement) (Cell, bool) {
	for i := 0; i < g.opts.MaxDraws; i++ {
		c := Cell{Col: g.roller.Intn(GridSize), Row: g.roller.Intn(GridSize)}
		if p.eligible(c) {
			return c, true
		}
	}
	var free []Cell
	for row := 0; row < GridSize; row++ {
		for col := 0; col < GridSize; col++ {
			if c := (Cell{Col: col, Row: row}); p.eligible(c) {
				free = append(free, c)
			}
		}
	}
	if len(free) == 0 {
		return Cell{}, false
	}
	return free[g.roller.Intn(len(free))], true
}

// placement tracks occupancy across one whole generation pass.
type placement struct {
	layout Layout
}

func newPlacement(level int) *placement {
	m := NewTilemap()
	m.Set(PlayerCell, TagPlayer)
	return &placement{layout: Layout{
		Level:       level,
		Tilemap:     m,
		PlayerSpawn: PlayerCell.Center(),
	}}
}

func (p *placement) eligible(c Cell) bool {
	return !c.InSafeZone() && p.layout.Tilemap.At(c) == TagEmpty
}

func (p *placement) place(kind npc.Kind, c Cell, tier int) {
	t, ok := TagFor(kind)
	if !ok {
		panic(fmt.Sprintf("level.placement.place: no tag for kind %q", kind))
	}
	p.layout.Tilemap.Set(c, t)
	p.layout.Spawns = append(p.layout.Spawns, Spawn{Kind: kind, Cell: c, Position: c.Center(), Tier: tier})
}

// FromTilemap converts a parsed tilemap into a Layout, scanning rows top to bottom.
// Bosses get tier max(level/5, 1).
//
// Precondition: m contains exactly one TagPlayer.
func FromTilemap(level int, m Tilemap) Layout {
	layout := Layout{Level: level, Tilemap: m}
	tier := max(level/5, 1)
	for row := 0; row < GridSize; row++ {
		for col := 0; col < GridSize; col++ {
			c := Cell{Col: col, Row: row}
			t := m.At(c)
			if t == TagPlayer {
				layout.PlayerSpawn = c.Center()
				continue
			}
			kind, ok := t.Kind()
			if !ok {
				continue
			}
			s := Spawn{Kind: kind, Cell: c, Position: c.Center()}
			if kind == npc.KindBossSlime {
				s.Tier = tier
			}
			layout.Spawns = append(layout.Spawns, s)
		}
	}
	return layout
}
