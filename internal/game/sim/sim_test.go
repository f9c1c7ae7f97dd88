package sim_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/level"
	"github.com/cory-johannsen/arena/internal/game/npc"
	"github.com/cory-johannsen/arena/internal/game/player"
	"github.com/cory-johannsen/arena/internal/game/sim"
)

// halfSource points every random heading at π, i.e. toward -X.
type halfSource struct{}

func (halfSource) Intn(n int) int   { return n / 2 }
func (halfSource) Float64() float64 { return 0.5 }

type tag struct {
	cell level.Cell
	t    byte
}

func tilemap(t *testing.T, tags ...tag) level.Tilemap {
	t.Helper()
	rows := make([][]byte, level.GridSize)
	for i := range rows {
		rows[i] = []byte(strings.Repeat(" ", level.GridSize))
	}
	rows[level.PlayerCell.Row][level.PlayerCell.Col] = 'p'
	for _, tg := range tags {
		rows[tg.cell.Row][tg.cell.Col] = tg.t
	}
	strs := make([]string, len(rows))
	for i, r := range rows {
		strs[i] = string(r)
	}
	m, err := level.ParseTilemap(strs)
	require.NoError(t, err)
	return m
}

func newState(t *testing.T, authored map[int]level.Tilemap, catalog npc.Catalog, logger *zap.Logger) *sim.State {
	t.Helper()
	roller := dice.NewLoggedRoller(halfSource{}, zap.NewNop())
	gen := level.NewGenerator(roller, logger, level.Options{Authored: authored})
	s, err := sim.New(sim.Options{Catalog: catalog, Generator: gen, Roller: roller}, logger)
	require.NoError(t, err)
	return s
}

func oneHitSlimes(t *testing.T) npc.Catalog {
	t.Helper()
	c, err := npc.NewCatalog(&npc.Template{
		Kind: npc.KindSlime, Name: "Slime", MaxHP: 1, Size: 20, Speed: 2, AttackStrength: 1, LeavesTrail: true,
	})
	require.NoError(t, err)
	return c
}

func countArrows(v sim.View) int {
	n := 0
	for _, e := range v.Effects {
		if e.Kind == combat.EffectArrow {
			n++
		}
	}
	return n
}

func TestNew_Errors(t *testing.T) {
	_, err := sim.New(sim.Options{}, zap.NewNop())
	assert.Error(t, err)

	roller := dice.NewLoggedRoller(halfSource{}, zap.NewNop())
	_, err = sim.New(sim.Options{Roller: roller, StartLevel: -1}, zap.NewNop())
	assert.ErrorIs(t, err, level.ErrNegativeLevel)
}

func TestNew_DefaultLevelZero(t *testing.T) {
	roller := dice.NewLoggedRoller(dice.NewCryptoSource(), zap.NewNop())
	s, err := sim.New(sim.Options{Roller: roller}, zap.NewNop())
	require.NoError(t, err)
	v := s.View()
	assert.Equal(t, 0, v.Level)
	assert.Equal(t, level.PlayerCell.Center(), v.Player.Position)
	require.Len(t, v.Enemies, 1)
	assert.Equal(t, level.FirstLevelEnemyCell.Center(), v.Enemies[0].Position)
}

func TestAdvanceTick_ContactDamage(t *testing.T) {
	s := newState(t, map[int]level.Tilemap{
		0: tilemap(t, tag{level.Cell{Col: 11, Row: 10}, 's'}),
	}, nil, zap.NewNop())

	for i := 1; i <= 3; i++ {
		res := s.AdvanceTick(player.Input{})
		assert.Equal(t, 1, res.PlayerDamage, "tick %d", i)
		assert.True(t, res.PlayerAlive)
	}
	assert.Equal(t, 2, s.View().Player.Health)
}

func TestAdvanceTick_ArrowExpiresWithoutHit(t *testing.T) {
	s := newState(t, map[int]level.Tilemap{
		0: tilemap(t, tag{level.Cell{Col: 0, Row: 0}, 's'}),
	}, nil, zap.NewNop())

	s.AdvanceTick(player.Input{Shoot: true})
	require.Equal(t, 1, countArrows(s.View()))
	for tick := 2; tick <= 1+combat.ArrowLifetime()-1; tick++ {
		s.AdvanceTick(player.Input{})
	}
	assert.Equal(t, 1, countArrows(s.View()), "arrow still flying after %d advances", combat.ArrowLifetime()-1)

	s.AdvanceTick(player.Input{})
	assert.Equal(t, 0, countArrows(s.View()))
	assert.Len(t, s.View().Enemies, 1)
	assert.Equal(t, player.DefaultHealth, s.View().Player.Health)
}

func TestAdvanceTick_ArrowKillsAndClearsLevel(t *testing.T) {
	s := newState(t, map[int]level.Tilemap{
		0: tilemap(t, tag{level.Cell{Col: 14, Row: 10}, 's'}),
	}, oneHitSlimes(t), zap.NewNop())

	res := s.AdvanceTick(player.Input{Shoot: true})
	require.False(t, res.LevelCleared)
	cleared := false
	for i := 0; i < 60 && !cleared; i++ {
		res = s.AdvanceTick(player.Input{})
		assert.Zero(t, res.PlayerDamage)
		cleared = res.LevelCleared
	}
	require.True(t, cleared)
	assert.Equal(t, 1, res.EnemiesKilled)
	assert.Equal(t, 1, res.NewLevel)
	assert.Equal(t, 0, countArrows(s.View()), "arrow is spent on the hit")
}

func TestAdvanceTick_MeleeClearsAndUpgrades(t *testing.T) {
	authored := make(map[int]level.Tilemap)
	for lvl := 0; lvl < sim.UpgradeInterval; lvl++ {
		authored[lvl] = tilemap(t, tag{level.Cell{Col: 12, Row: 10}, 's'})
	}
	core, logs := observer.New(zapcore.InfoLevel)
	s := newState(t, authored, oneHitSlimes(t), zap.New(core))

	for lvl := 0; lvl < sim.UpgradeInterval; lvl++ {
		res := s.AdvanceTick(player.Input{Attack: true})
		require.True(t, res.LevelCleared, "level %d", lvl)
		assert.Equal(t, 1, res.EnemiesKilled)
		assert.Equal(t, lvl+1, res.NewLevel)
		v := s.View()
		assert.Empty(t, v.Effects, "effects are cleared on level change")
		assert.Equal(t, level.PlayerCell.Center(), v.Player.Position)
		if lvl+1 < sim.UpgradeInterval {
			assert.Equal(t, player.DefaultAttackStrength, v.Player.AttackStrength)
		}
	}

	v := s.View()
	assert.Equal(t, sim.UpgradeInterval, v.Level)
	assert.Equal(t, sim.UpgradeInterval, v.LevelsCleared)
	assert.Equal(t, player.DefaultAttackStrength+1, v.Player.AttackStrength)
	assert.Equal(t, sim.UpgradeInterval, logs.FilterMessage("level cleared").Len())

	// Level 5 is generated: one boss and no basic or advanced enemies.
	require.Len(t, v.Enemies, 1)
	assert.Equal(t, npc.KindBossSlime, v.Enemies[0].Kind)
}

func TestAdvanceTick_GameOverIsTerminal(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	s := newState(t, map[int]level.Tilemap{
		0: tilemap(t, tag{level.Cell{Col: 11, Row: 10}, 'b'}),
	}, nil, zap.New(core))

	res := s.AdvanceTick(player.Input{})
	require.True(t, res.PlayerAlive)
	assert.Equal(t, 3, res.PlayerDamage)

	res = s.AdvanceTick(player.Input{})
	require.False(t, res.PlayerAlive)
	assert.True(t, s.GameOver())
	before := s.View()

	for i := 0; i < 5; i++ {
		assert.Equal(t, res, s.AdvanceTick(player.Input{Left: true, Attack: true, Shoot: true}))
	}
	assert.Equal(t, before, s.View())
	assert.Equal(t, uint64(2), s.Frame())
	assert.InDelta(t, 0.0, before.Player.HealthRatio, 1e-9)
	assert.Equal(t, 1, logs.FilterMessage("game over").Len())
}

func TestView_IsACopy(t *testing.T) {
	s := newState(t, map[int]level.Tilemap{
		0: tilemap(t, tag{level.Cell{Col: 0, Row: 0}, 's'}),
	}, nil, zap.NewNop())
	s.AdvanceTick(player.Input{Shoot: true})
	v := s.View()
	require.NotEmpty(t, v.Effects)
	v.Effects[0].Timer = -100
	v.Enemies[0].Position.X = -1
	fresh := s.View()
	assert.NotEqual(t, -100, fresh.Effects[0].Timer)
	assert.NotEqual(t, -1.0, fresh.Enemies[0].Position.X)
}

func TestView_Nearest(t *testing.T) {
	v := sim.View{Player: sim.PlayerView{}}
	_, ok := v.Nearest()
	assert.False(t, ok)

	s := newState(t, map[int]level.Tilemap{
		0: tilemap(t, tag{level.Cell{Col: 0, Row: 0}, 's'}, tag{level.Cell{Col: 15, Row: 10}, 'z'}),
	}, nil, zap.NewNop())
	e, ok := s.View().Nearest()
	require.True(t, ok)
	assert.Equal(t, npc.KindZombie, e.Kind)
}

func TestAdvanceTick_Property_Invariants(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		roller := dice.NewLoggedRoller(dice.NewCryptoSource(), zap.NewNop())
		start := rapid.IntRange(0, 12).Draw(rt, "start")
		s, err := sim.New(sim.Options{Roller: roller, StartLevel: start}, zap.NewNop())
		if err != nil {
			rt.Fatalf("new: %v", err)
		}
		ticks := rapid.IntRange(1, 300).Draw(rt, "ticks")
		for i := 0; i < ticks; i++ {
			in := player.Input{
				Left:   rapid.Bool().Draw(rt, "left"),
				Right:  rapid.Bool().Draw(rt, "right"),
				Up:     rapid.Bool().Draw(rt, "up"),
				Down:   rapid.Bool().Draw(rt, "down"),
				Attack: rapid.Bool().Draw(rt, "attack"),
				Shoot:  rapid.Bool().Draw(rt, "shoot"),
			}
			res := s.AdvanceTick(in)
			v := s.View()
			if !level.ArenaBounds.Contains(v.Player.Position, v.Player.Size) {
				rt.Fatalf("player out of bounds: %v", v.Player.Position)
			}
			for _, e := range v.Enemies {
				if e.HealthRatio <= 0 {
					rt.Fatalf("dead enemy survived the tick: %+v", e)
				}
				if !level.ArenaBounds.Contains(e.Position, e.Size) {
					rt.Fatalf("enemy out of bounds: %+v", e)
				}
			}
			if !res.PlayerAlive {
				break
			}
		}
	})
}

