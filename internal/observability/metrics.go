package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cory-johannsen/arena/internal/game/sim"
)

const namespace = "arena"

// Metrics records per-tick simulation counters on a private registry.
//
// Exposed series:
//   - arena_ticks_total, arena_levels_cleared_total, arena_enemies_killed_total
//   - arena_player_damage_total, arena_games_over_total
//   - arena_level, arena_enemies_alive, arena_player_health
//   - arena_tick_duration_seconds
type Metrics struct {
	registry *prometheus.Registry

	ticks         prometheus.Counter
	levelsCleared prometheus.Counter
	enemiesKilled prometheus.Counter
	playerDamage  prometheus.Counter
	gamesOver     prometheus.Counter

	level        prometheus.Gauge
	enemiesAlive prometheus.Gauge
	playerHealth prometheus.Gauge

	tickDuration prometheus.Histogram
}

// NewMetrics creates and registers the simulation metrics.
//
// Postcondition: Returns Metrics whose collectors are registered on Registry().
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Simulation ticks advanced.",
		}),
		levelsCleared: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "levels_cleared_total",
			Help:      "Levels cleared.",
		}),
		enemiesKilled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enemies_killed_total",
			Help:      "Enemies removed at zero health.",
		}),
		playerDamage: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "player_damage_total",
			Help:      "Health points lost by the player.",
		}),
		gamesOver: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_over_total",
			Help:      "Games that ended with the player dead.",
		}),
		level: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "level",
			Help:      "Level index currently in play.",
		}),
		enemiesAlive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "enemies_alive",
			Help:      "Enemies in the current level.",
		}),
		playerHealth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "player_health",
			Help:      "Current player health.",
		}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Wall-clock time spent advancing one tick.",
			Buckets:   []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025},
		}),
	}
	m.registry.MustRegister(
		m.ticks, m.levelsCleared, m.enemiesKilled, m.playerDamage, m.gamesOver,
		m.level, m.enemiesAlive, m.playerHealth, m.tickDuration,
	)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveTick records one tick's outcome and the state it left behind.
//
// Precondition: v must be the view taken after the tick that produced res.
func (m *Metrics) ObserveTick(res sim.TickResult, v sim.View, took time.Duration) {
	m.ticks.Inc()
	m.tickDuration.Observe(took.Seconds())
	if res.LevelCleared {
		m.levelsCleared.Inc()
	}
	m.enemiesKilled.Add(float64(res.EnemiesKilled))
	m.playerDamage.Add(float64(res.PlayerDamage))

	m.level.Set(float64(v.Level))
	m.enemiesAlive.Set(float64(len(v.Enemies)))
	m.playerHealth.Set(float64(v.Player.Health))
}

// ObserveGameOver counts a finished game.
func (m *Metrics) ObserveGameOver() {
	m.gamesOver.Inc()
}
