// Package main provides the headless arena binary: it loads content, runs one game
// on a real-time frame loop, and optionally serves Prometheus metrics.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/config"
	"github.com/cory-johannsen/arena/internal/game/ai"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/level"
	"github.com/cory-johannsen/arena/internal/game/npc"
	"github.com/cory-johannsen/arena/internal/game/sim"
	"github.com/cory-johannsen/arena/internal/gameserver"
	"github.com/cory-johannsen/arena/internal/observability"
	"github.com/cory-johannsen/arena/internal/scripting"
	"github.com/cory-johannsen/arena/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file; empty = built-in defaults")
	enemiesDir := flag.String("enemies-dir", "", "override content.enemies_dir")
	levelsDir := flag.String("levels-dir", "", "override content.levels_dir")
	scriptsDir := flag.String("scripts-dir", "", "override content.scripts_dir")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("loading config: %v", err)
		}
	}
	applyOverrides(&cfg.Content, *enemiesDir, *levelsDir, *scriptsDir)

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	roller := dice.NewLoggedRoller(dice.NewCryptoSource(), logger)

	scriptMgr := scripting.NewManager(roller, logger)
	defer scriptMgr.Close()

	state, err := buildState(cfg, roller, scriptMgr, logger)
	if err != nil {
		logger.Fatal("building game", zap.Error(err))
	}

	var input gameserver.InputSource = gameserver.IdleInput
	if cfg.Simulation.Autopilot {
		input = ai.NewAutopilot()
	}

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics()
	}

	loop := gameserver.NewFrameLoop(state, input, metrics, logger, gameserver.LoopConfig{
		Interval: cfg.Simulation.TickInterval(),
		MaxTicks: cfg.Simulation.MaxTicks,
	})

	// Wire lifecycle
	lifecycle := server.NewLifecycle(logger)

	if metrics != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		lifecycle.Add("metrics", &server.FuncService{
			StartFn: func() error {
				logger.Info("metrics server listening", zap.String("addr", cfg.Metrics.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("serving metrics on %s: %w", cfg.Metrics.Addr, err)
				}
				return nil
			},
			StopFn: func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := srv.Shutdown(ctx); err != nil {
					logger.Warn("metrics server shutdown", zap.Error(err))
				}
			},
		})
	}

	lifecycle.Add("frames", loop)

	logger.Info("arena initialized",
		zap.Duration("startup", time.Since(start)),
		zap.Int("fps", cfg.Simulation.FPS),
		zap.Bool("autopilot", cfg.Simulation.Autopilot),
		zap.Bool("metrics", cfg.Metrics.Enabled),
	)

	if err := lifecycle.Run(context.Background()); err != nil {
		logger.Fatal("arena error", zap.Error(err))
	}

	sum := loop.Summary()
	logger.Info("run complete",
		zap.String("reason", string(sum.Reason)),
		zap.Int("ticks", sum.Ticks),
		zap.Int("levels_cleared", sum.LevelsCleared),
	)
}

func applyOverrides(c *config.ContentConfig, enemiesDir, levelsDir, scriptsDir string) {
	if enemiesDir != "" {
		c.EnemiesDir = enemiesDir
	}
	if levelsDir != "" {
		c.LevelsDir = levelsDir
	}
	if scriptsDir != "" {
		c.ScriptsDir = scriptsDir
	}
}

// buildState loads the configured content and creates the game at its start level.
//
// Precondition: cfg must be valid; roller, scriptMgr and logger must be non-nil.
// Postcondition: Returns a ready State or an error naming the content that failed to load.
func buildState(cfg config.Config, roller *dice.Roller, scriptMgr *scripting.Manager, logger *zap.Logger) (*sim.State, error) {
	var overrides []*npc.Template
	if cfg.Content.EnemiesDir != "" {
		var err error
		if overrides, err = npc.LoadTemplates(cfg.Content.EnemiesDir); err != nil {
			return nil, fmt.Errorf("loading enemy templates: %w", err)
		}
		logger.Info("loaded enemy templates", zap.Int("count", len(overrides)))
	}
	catalog, err := npc.NewCatalog(overrides...)
	if err != nil {
		return nil, fmt.Errorf("building enemy catalog: %w", err)
	}

	opts := level.Options{}
	if cfg.Content.LevelsDir != "" {
		if opts.Authored, err = level.LoadTilemaps(cfg.Content.LevelsDir); err != nil {
			return nil, fmt.Errorf("loading levels: %w", err)
		}
		logger.Info("loaded authored levels", zap.Int("count", len(opts.Authored)))
	}
	if cfg.Content.ScriptsDir != "" {
		if err := scriptMgr.Load(cfg.Content.ScriptsDir, cfg.Scripting.InstructionLimit); err != nil {
			return nil, fmt.Errorf("loading scripts: %w", err)
		}
		opts.Composer = scriptMgr
	}

	gen := level.NewGenerator(roller, logger, opts)
	return sim.New(sim.Options{
		Catalog:    catalog,
		Generator:  gen,
		Roller:     roller,
		StartLevel: cfg.Simulation.StartLevel,
	}, logger)
}
