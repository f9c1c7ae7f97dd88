// Package sim owns one running game and advances it a frame at a time.
package sim

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/level"
	"github.com/cory-johannsen/arena/internal/game/npc"
	"github.com/cory-johannsen/arena/internal/game/player"
)

// UpgradeInterval is the number of cleared levels per attack strength upgrade.
const UpgradeInterval = 5

// TickResult reports the outcome of one AdvanceTick.
type TickResult struct {
	Frame uint64
	// PlayerAlive is false once the game is over; the state no longer changes after that.
	PlayerAlive  bool
	LevelCleared bool
	// NewLevel is the level index now in play; it differs from the previous one only when
	// LevelCleared is set.
	NewLevel      int
	EnemiesKilled int
	PlayerDamage  int
}

// Options configures a State.
type Options struct {
	// Catalog supplies enemy stats; nil means the built-in templates.
	Catalog npc.Catalog
	// Generator builds layouts; nil means a generator with no authored levels or composer.
	Generator *level.Generator
	// Roller is the randomness source for enemy headings and generation.
	Roller *dice.Roller
	// StartLevel is the first level played.
	StartLevel int
}

// State is one game in progress. It is not safe for concurrent use.
type State struct {
	catalog  npc.Catalog
	gen      *level.Generator
	fallback *level.Generator
	roller   *dice.Roller
	logger   *zap.Logger

	frame         uint64
	level         int
	levelsCleared int
	player        *player.Player
	roster        *npc.Roster
	effects       []combat.Effect

	over     bool
	terminal TickResult
}

// New creates a State with StartLevel populated.
//
// Precondition: opts.Roller and logger must be non-nil.
// Postcondition: Returns a State ready for AdvanceTick, or an error if the first level
// cannot be generated.
func New(opts Options, logger *zap.Logger) (*State, error) {
	if opts.Roller == nil {
		return nil, fmt.Errorf("sim.New: roller must not be nil")
	}
	if opts.StartLevel < 0 {
		return nil, fmt.Errorf("sim.New: %w: %d", level.ErrNegativeLevel, opts.StartLevel)
	}
	catalog := opts.Catalog
	if catalog == nil {
		var err error
		if catalog, err = npc.NewCatalog(); err != nil {
			return nil, err
		}
	}
	fallback := level.NewGenerator(opts.Roller, logger, level.Options{})
	gen := opts.Generator
	if gen == nil {
		gen = fallback
	}

	s := &State{
		catalog:  catalog,
		gen:      gen,
		fallback: fallback,
		roller:   opts.Roller,
		logger:   logger,
		level:    opts.StartLevel,
		roster:   npc.NewRoster(),
	}
	layout, err := gen.Generate(opts.StartLevel)
	if err != nil {
		return nil, fmt.Errorf("generating level %d: %w", opts.StartLevel, err)
	}
	s.player = player.New(layout.PlayerSpawn)
	if err := s.populate(layout); err != nil {
		return nil, err
	}
	return s, nil
}

// Frame returns the number of ticks advanced so far.
func (s *State) Frame() uint64 { return s.frame }

// Level returns the level index in play.
func (s *State) Level() int { return s.level }

// GameOver reports whether the player has died.
func (s *State) GameOver() bool { return s.over }

// AdvanceTick runs one frame: effects, enemies, removal, player, game over, level clear.
//
// Postcondition: no enemy with health <= 0 survives the call. Once PlayerAlive is false
// every later call returns the same result without touching the state.
func (s *State) AdvanceTick(in player.Input) TickResult {
	if s.over {
		return s.terminal
	}
	s.frame++
	res := TickResult{Frame: s.frame, PlayerAlive: true, NewLevel: s.level}

	s.advanceEffects()
	res.EnemiesKilled += s.compact()

	res.PlayerDamage = s.updateEnemies()
	res.EnemiesKilled += s.compact()

	s.stepPlayer(in)
	res.EnemiesKilled += s.compact()

	if s.player.IsDead() {
		s.over = true
		res.PlayerAlive = false
		s.terminal = res
		s.logger.Info("game over",
			zap.Uint64("frame", s.frame),
			zap.Int("level", s.level),
			zap.Int("levels_cleared", s.levelsCleared),
		)
		return res
	}

	if s.roster.Len() == 0 {
		s.clearLevel()
		res.LevelCleared = true
		res.NewLevel = s.level
	}
	return res
}

func (s *State) advanceEffects() {
	enemies := s.roster.All()
	kept := s.effects[:0]
	for _, e := range s.effects {
		e.Advance(s.frame)
		if e.Kind == combat.EffectArrow {
			if i := combat.FirstArrowHit(e, enemies); i >= 0 {
				enemies[i].Damage(e.Damage, e.Position())
				continue
			}
		}
		if e.Expired() {
			continue
		}
		kept = append(kept, e)
	}
	clear(s.effects[len(kept):])
	s.effects = kept
}

func (s *State) updateEnemies() int {
	damage := 0
	for _, e := range s.roster.All() {
		if trail, ok := e.Update(s.player.Position, level.ArenaBounds, s.roller); ok {
			s.effects = append(s.effects, trail)
		}
		if e.Touches(s.player.Position, s.player.Size) {
			s.player.Damage(e.AttackStrength)
			damage += e.AttackStrength
		}
	}
	return damage
}

func (s *State) stepPlayer(in player.Input) {
	p := s.player
	act := p.Step(in, level.ArenaBounds)
	if act.Melee {
		enemies := s.roster.All()
		for _, i := range combat.MeleeHits(combat.DefaultMeleeArc, p.Position, p.Direction, enemies) {
			enemies[i].Damage(p.AttackStrength, p.Position)
		}
		s.effects = append(s.effects, combat.NewSwordSwing(p.Position, p.Direction))
	}
	if act.Shoot {
		s.effects = append(s.effects, combat.NewArrow(p.Position, p.Direction, p.AttackStrength))
	}
}

func (s *State) compact() int {
	removed := s.roster.Compact()
	for _, e := range removed {
		s.logger.Debug("enemy killed", zap.String("enemy", e.String()))
	}
	return len(removed)
}

func (s *State) clearLevel() {
	s.levelsCleared++
	s.level++
	if s.levelsCleared%UpgradeInterval == 0 {
		s.player.AttackStrength++
	}
	s.logger.Info("level cleared",
		zap.Int("cleared", s.levelsCleared),
		zap.Int("next_level", s.level),
		zap.Int("attack_strength", s.player.AttackStrength),
	)

	layout := s.generate(s.level)
	clear(s.effects)
	s.effects = s.effects[:0]
	s.roster.Clear()
	s.player.Respawn(layout.PlayerSpawn)
	if err := s.populate(layout); err != nil {
		panic(fmt.Sprintf("sim.State.clearLevel: %v", err))
	}
}

// generate falls back to the built-in rules when a custom generator fails mid-game.
func (s *State) generate(lvl int) level.Layout {
	layout, err := s.gen.Generate(lvl)
	if err == nil {
		return layout
	}
	if errors.Is(err, level.ErrNegativeLevel) {
		panic(fmt.Sprintf("sim.State.generate: %v", err))
	}
	s.logger.Error("level generation failed, using built-in rules",
		zap.Int("level", lvl),
		zap.Error(err),
	)
	layout, err = s.fallback.Generate(lvl)
	if err != nil {
		panic(fmt.Sprintf("sim.State.generate: built-in generation failed: %v", err))
	}
	return layout
}

func (s *State) populate(layout level.Layout) error {
	for _, sp := range layout.Spawns {
		tmpl, ok := s.catalog.Get(sp.Kind)
		if !ok {
			return fmt.Errorf("level %d: no template for enemy kind %q", layout.Level, sp.Kind)
		}
		pos := level.ArenaBounds.Clamp(sp.Position, tmpl.Size)
		if _, err := s.roster.Spawn(tmpl, pos, sp.Tier, s.roller); err != nil {
			return err
		}
	}
	s.logger.Debug("level populated",
		zap.Int("level", layout.Level),
		zap.Int("enemies", len(layout.Spawns)),
		zap.Int("skipped", layout.Skipped),
		zap.Stringer("tilemap", layout.Tilemap),
	)
	return nil
}
