package npc_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/npc"
	"github.com/cory-johannsen/arena/internal/game/vec"
)

var arena = vec.Bounds{Width: 400, Height: 400}

// fixedSource always returns the same fraction, so every heading is f*2π.
type fixedSource struct{ f float64 }

func (s fixedSource) Intn(n int) int    { return int(s.f * float64(n)) }
func (s fixedSource) Float64() float64 { return s.f }

func mustTemplate(t *testing.T, kind npc.Kind) *npc.Template {
	t.Helper()
	c, err := npc.NewCatalog()
	require.NoError(t, err)
	tmpl, ok := c.Get(kind)
	require.True(t, ok)
	return tmpl
}

func TestTemplate_Validate(t *testing.T) {
	bad := &npc.Template{Kind: "x", Name: "", MaxHP: 0, Size: 0, Speed: -1, AttackStrength: -1}
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name must not be empty")
	assert.Contains(t, err.Error(), "max_hp must be >= 1")
	assert.Contains(t, err.Error(), "; ")

	for _, tmpl := range npc.DefaultTemplates() {
		assert.NoError(t, tmpl.Validate(), tmpl.Kind)
	}
}

func TestLoadTemplateFromBytes(t *testing.T) {
	data := []byte(`
kind: zombie
name: Ghoul
max_hp: 7
size: 22
speed: 1.25
attack_strength: 2
can_chase: true
`)
	tmpl, err := npc.LoadTemplateFromBytes(data)
	require.NoError(t, err)
	assert.Equal(t, npc.KindZombie, tmpl.Kind)
	assert.Equal(t, "Ghoul", tmpl.Name)
	assert.Equal(t, 7, tmpl.MaxHP)
	assert.InDelta(t, 1.25, tmpl.Speed, 1e-9)
	assert.True(t, tmpl.CanChase)
	assert.False(t, tmpl.LeavesTrail)
}

func TestLoadTemplateFromBytes_Invalid(t *testing.T) {
	_, err := npc.LoadTemplateFromBytes([]byte("kind: slime\nname: S\nmax_hp: 0\nsize: 20\nspeed: 1\n"))
	assert.Error(t, err)
	_, err = npc.LoadTemplateFromBytes([]byte("kind: [unterminated"))
	assert.Error(t, err)
}

func TestLoadTemplates_Dir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"),
		[]byte("kind: slime\nname: Blue Slime\nmax_hp: 6\nsize: 20\nspeed: 2\nattack_strength: 1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yml"),
		[]byte("kind: zombie\nname: Zed\nmax_hp: 5\nsize: 20\nspeed: 1\nattack_strength: 1\ncan_chase: true\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	templates, err := npc.LoadTemplates(dir)
	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.Equal(t, "Zed", templates[0].Name)
	assert.Equal(t, "Blue Slime", templates[1].Name)
}

func TestLoadTemplates_MissingDir(t *testing.T) {
	_, err := npc.LoadTemplates(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestNewCatalog_OverrideReplacesDefault(t *testing.T) {
	c, err := npc.NewCatalog(&npc.Template{Kind: npc.KindSlime, Name: "Big", MaxHP: 9, Size: 20, Speed: 2, AttackStrength: 1})
	require.NoError(t, err)
	tmpl, ok := c.Get(npc.KindSlime)
	require.True(t, ok)
	assert.Equal(t, 9, tmpl.MaxHP)
	_, ok = c.Get(npc.KindZombie)
	assert.True(t, ok)

	_, err = npc.NewCatalog(&npc.Template{Kind: npc.KindSlime})
	assert.Error(t, err)
}

func TestTemplate_HealthFor(t *testing.T) {
	boss := mustTemplate(t, npc.KindBossSlime)
	assert.Equal(t, 20, boss.HealthFor(1))
	assert.Equal(t, 60, boss.HealthFor(3))
	assert.Equal(t, 20, boss.HealthFor(0))
	slime := mustTemplate(t, npc.KindSlime)
	assert.Equal(t, 5, slime.HealthFor(4))
}

func TestTransition(t *testing.T) {
	tests := []struct {
		name  string
		state npc.Behavior
		ctx   npc.TransitionContext
		want  npc.Behavior
	}{
		{"knockback holds before 30", npc.Knockback, npc.TransitionContext{Ticks: 29}, npc.Knockback},
		{"knockback ends at 30", npc.Knockback, npc.TransitionContext{Ticks: 30}, npc.Wander},
		{"knockback ignores proximity", npc.Knockback, npc.TransitionContext{Ticks: 3, DistanceToPlayer: 1, CanChase: true}, npc.Knockback},
		{"wander stays without chase", npc.Wander, npc.TransitionContext{DistanceToPlayer: 10}, npc.Wander},
		{"wander to chase inside radius", npc.Wander, npc.TransitionContext{DistanceToPlayer: 99.9, CanChase: true}, npc.Chase},
		{"wander stays at radius", npc.Wander, npc.TransitionContext{DistanceToPlayer: 100, CanChase: true}, npc.Wander},
		{"chase continues inside radius", npc.Chase, npc.TransitionContext{Ticks: 500, DistanceToPlayer: 50, CanChase: true}, npc.Chase},
		{"chase ends at radius", npc.Chase, npc.TransitionContext{DistanceToPlayer: 100, CanChase: true}, npc.Wander},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, npc.Transition(tc.state, tc.ctx))
		})
	}
}

func TestOnDamage(t *testing.T) {
	next, ok := npc.OnDamage(npc.Wander)
	assert.True(t, ok)
	assert.Equal(t, npc.Knockback, next)
	next, ok = npc.OnDamage(npc.Chase)
	assert.True(t, ok)
	assert.Equal(t, npc.Knockback, next)
	next, ok = npc.OnDamage(npc.Knockback)
	assert.False(t, ok)
	assert.Equal(t, npc.Knockback, next)
}

func TestBehavior_String(t *testing.T) {
	assert.Equal(t, "wander", npc.Wander.String())
	assert.Equal(t, "chase", npc.Chase.String())
	assert.Equal(t, "knockback", npc.Knockback.String())
	assert.Equal(t, "unknown", npc.Behavior(7).String())
}

func TestEnemy_KnockbackImmunityWindow(t *testing.T) {
	src := fixedSource{}
	e := npc.NewEnemy("e1", mustTemplate(t, npc.KindSlime), vec.New(200, 200), 0, src)
	player := vec.New(190, 200)

	require.True(t, e.Damage(1, player))
	assert.Equal(t, 4, e.Health)
	assert.Equal(t, npc.Knockback, e.State)

	for i := 0; i < combat.KnockbackTicks; i++ {
		assert.False(t, e.Damage(3, player), "damage accepted during knockback at tick %d", i)
		assert.Equal(t, 4, e.Health)
		require.Equal(t, npc.Knockback, e.State, "left knockback early at tick %d", i)
		e.Update(player, arena, src)
	}
	assert.Equal(t, npc.Wander, e.State)
	assert.Equal(t, 0, e.StateTicks)
	// Pushed directly away from the source at the slime's own speed each tick.
	assert.InDelta(t, 200+2*float64(combat.KnockbackTicks), e.Position.X, 1e-9)
	assert.InDelta(t, 200, e.Position.Y, 1e-9)

	assert.True(t, e.Damage(1, player))
	assert.Equal(t, 3, e.Health)
}

func TestEnemy_WanderRestartsAfterKnockback(t *testing.T) {
	src := fixedSource{f: 0.25}
	e := npc.NewEnemy("e1", mustTemplate(t, npc.KindSlime), vec.New(200, 200), 0, src)
	far := vec.New(390, 390)

	// Mid-cycle: the next heading change is not due for many ticks.
	for i := 0; i < 45; i++ {
		e.Update(far, arena, src)
	}
	require.True(t, e.Damage(1, vec.New(190, 200)))
	for i := 0; i < combat.KnockbackTicks; i++ {
		e.Update(far, arena, src)
	}
	require.Equal(t, npc.Wander, e.State)

	// Wander timing is relative to entering the state, so the first tick re-heads.
	e.Direction = 1
	trail, ok := e.Update(far, arena, src)
	require.True(t, ok)
	assert.Equal(t, combat.EffectSlimeTrail, trail.Kind)
	assert.InDelta(t, 0.25*2*math.Pi, e.Direction, 1e-9)
	assert.Equal(t, 1, e.StateTicks)
}

func TestEnemy_KnockbackClampsAtWall(t *testing.T) {
	src := fixedSource{}
	e := npc.NewEnemy("e1", mustTemplate(t, npc.KindSlime), vec.New(385, 200), 0, src)
	require.True(t, e.Damage(1, vec.New(300, 200)))
	for i := 0; i < combat.KnockbackTicks; i++ {
		e.Update(vec.New(300, 200), arena, src)
	}
	assert.InDelta(t, 390, e.Position.X, 1e-9)
}

func TestEnemy_WanderCycle(t *testing.T) {
	src := fixedSource{}
	e := npc.NewEnemy("e1", mustTemplate(t, npc.KindSlime), vec.New(100, 100), 0, src)
	far := vec.New(390, 390)

	trail, ok := e.Update(far, arena, src)
	require.True(t, ok)
	assert.Equal(t, combat.EffectSlimeTrail, trail.Kind)
	assert.Equal(t, vec.New(100, 100), trail.Origin)
	assert.Equal(t, vec.New(100, 100), e.Position)

	for i := 1; i <= npc.WanderMoveTicks; i++ {
		_, ok := e.Update(far, arena, src)
		assert.False(t, ok)
	}
	assert.InDelta(t, 100+2*float64(npc.WanderMoveTicks), e.Position.X, 1e-9)

	moved := e.Position
	for i := npc.WanderMoveTicks + 1; i < npc.WanderPeriod; i++ {
		e.Update(far, arena, src)
	}
	assert.Equal(t, moved, e.Position)

	_, ok = e.Update(far, arena, src)
	assert.True(t, ok, "a new heading and trail every wander period")
}

func TestEnemy_ZombieLeavesNoTrail(t *testing.T) {
	src := fixedSource{}
	e := npc.NewEnemy("z", mustTemplate(t, npc.KindZombie), vec.New(100, 100), 0, src)
	_, ok := e.Update(vec.New(390, 390), arena, src)
	assert.False(t, ok)
}

func TestEnemy_ChaseLifecycle(t *testing.T) {
	src := fixedSource{}
	e := npc.NewEnemy("z", mustTemplate(t, npc.KindZombie), vec.New(100, 100), 0, src)
	player := vec.New(150, 100)

	e.Update(player, arena, src)
	require.Equal(t, npc.Chase, e.State)

	e.Update(player, arena, src)
	assert.InDelta(t, 101, e.Position.X, 1e-9)
	assert.InDelta(t, 0, e.Direction, 1e-9)

	// The chase never expires on a timer.
	for i := 0; i < 200; i++ {
		e.Update(vec.New(e.Position.X+60, 100), arena, src)
	}
	assert.Equal(t, npc.Chase, e.State)

	e.Update(vec.New(e.Position.X+150, 100), arena, src)
	assert.Equal(t, npc.Wander, e.State)
}

func TestEnemy_ChaseDoesNotOvershoot(t *testing.T) {
	src := fixedSource{}
	e := npc.NewEnemy("z", mustTemplate(t, npc.KindZombie), vec.New(100, 100), 0, src)
	e.State = npc.Chase
	player := vec.New(100.5, 100)
	e.Update(player, arena, src)
	assert.Equal(t, player, e.Position)
}

func TestEnemy_Property_PositionStaysInBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		kind := rapid.SampledFrom([]npc.Kind{npc.KindSlime, npc.KindLargeSlime, npc.KindBossSlime, npc.KindZombie}).Draw(rt, "kind")
		c, _ := npc.NewCatalog()
		tmpl, _ := c.Get(kind)
		src := fixedSource{f: rapid.Float64Range(0, 0.999).Draw(rt, "heading")}
		start := arena.Clamp(vec.New(
			rapid.Float64Range(0, 400).Draw(rt, "x"),
			rapid.Float64Range(0, 400).Draw(rt, "y"),
		), tmpl.Size)
		player := vec.New(rapid.Float64Range(0, 400).Draw(rt, "px"), rapid.Float64Range(0, 400).Draw(rt, "py"))
		e := npc.NewEnemy("e", tmpl, start, 1, src)

		steps := rapid.IntRange(1, 200).Draw(rt, "steps")
		hitAt := rapid.IntRange(0, 200).Draw(rt, "hitAt")
		for i := 0; i < steps; i++ {
			if i == hitAt {
				e.Damage(1, player)
			}
			e.Update(player, arena, src)
			if !arena.Contains(e.Position, e.Size) {
				rt.Fatalf("enemy left the arena at step %d: %v", i, e.Position)
			}
		}
	})
}

func TestEnemy_HealthRatioClamped(t *testing.T) {
	e := npc.NewEnemy("e", mustTemplate(t, npc.KindLargeSlime), vec.New(50, 50), 0, fixedSource{})
	assert.InDelta(t, 1.0, e.HealthRatio(), 1e-9)
	e.Damage(5, vec.New(40, 50))
	assert.InDelta(t, 0.5, e.HealthRatio(), 1e-9)
	e.Health = -3
	assert.InDelta(t, 0.0, e.HealthRatio(), 1e-9)
	assert.True(t, e.IsDead())
}

func TestEnemy_Touches(t *testing.T) {
	e := npc.NewEnemy("e", mustTemplate(t, npc.KindSlime), vec.New(100, 100), 0, fixedSource{})
	assert.True(t, e.Touches(vec.New(120, 100), 20))
	assert.False(t, e.Touches(vec.New(120.01, 100), 20))
	assert.InDelta(t, 10, e.Radius(), 1e-9)
}

func TestNewEnemy_BossScalesWithTier(t *testing.T) {
	e := npc.NewEnemy("b", mustTemplate(t, npc.KindBossSlime), vec.New(200, 200), 2, fixedSource{f: 0.25})
	assert.Equal(t, 40, e.Health)
	assert.Equal(t, 40, e.InitialHealth)
	assert.InDelta(t, 80, e.Size, 1e-9)
	assert.InDelta(t, 3.14159265/2, e.Direction, 1e-6)
}

func TestRoster_SpawnCompactClear(t *testing.T) {
	r := npc.NewRoster()
	src := fixedSource{}
	slime := mustTemplate(t, npc.KindSlime)

	a, err := r.Spawn(slime, vec.New(10, 10), 0, src)
	require.NoError(t, err)
	b, err := r.Spawn(slime, vec.New(30, 10), 0, src)
	require.NoError(t, err)
	c, err := r.Spawn(mustTemplate(t, npc.KindZombie), vec.New(50, 10), 0, src)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Contains(t, c.ID, "zombie-")
	assert.Equal(t, 3, r.Len())

	b.Health = 0
	removed := r.Compact()
	require.Len(t, removed, 1)
	assert.Same(t, b, removed[0])
	assert.Equal(t, []*npc.Enemy{a, c}, r.All())

	assert.Empty(t, r.Compact())

	r.Clear()
	assert.Equal(t, 0, r.Len())

	_, err = r.Spawn(nil, vec.Zero, 0, src)
	assert.Error(t, err)
}
