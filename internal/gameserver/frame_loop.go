// Package gameserver drives a simulation in real time and fans its views out to observers.
package gameserver

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/player"
	"github.com/cory-johannsen/arena/internal/game/sim"
	"github.com/cory-johannsen/arena/internal/observability"
)

// InputSource produces the player input for the next tick from the latest view.
type InputSource interface {
	Next(v sim.View) player.Input
}

// InputFunc adapts a function to InputSource.
type InputFunc func(v sim.View) player.Input

// Next calls f.
func (f InputFunc) Next(v sim.View) player.Input { return f(v) }

// IdleInput never presses anything.
var IdleInput InputSource = InputFunc(func(sim.View) player.Input { return player.Input{} })

// StopReason says why a frame loop returned.
type StopReason string

const (
	StopGameOver  StopReason = "game_over"
	StopMaxTicks  StopReason = "max_ticks"
	StopCancelled StopReason = "cancelled"
)

// Summary describes a finished run.
type Summary struct {
	Reason        StopReason
	Ticks         int
	Level         int
	LevelsCleared int
}

// LoopConfig tunes a FrameLoop.
type LoopConfig struct {
	// Interval is the wall-clock time between ticks; zero runs ticks back to back.
	Interval time.Duration
	// MaxTicks ends the run after this many ticks; zero means unlimited.
	MaxTicks int
}

// FrameLoop advances one sim.State on a ticker. It owns the State: nothing else may
// call AdvanceTick while the loop is running.
//
// Invariant: subscribers receive at most one view per tick and never block the loop.
type FrameLoop struct {
	state   *sim.State
	input   InputSource
	metrics *observability.Metrics
	logger  *zap.Logger
	cfg     LoopConfig

	mu          sync.Mutex
	subscribers map[chan<- sim.View]struct{}
	summary     Summary

	done     chan struct{}
	stopOnce sync.Once
}

// NewFrameLoop creates a stopped loop over state.
//
// Precondition: state, input and logger must be non-nil; cfg.Interval and cfg.MaxTicks >= 0.
// metrics may be nil.
func NewFrameLoop(state *sim.State, input InputSource, metrics *observability.Metrics, logger *zap.Logger, cfg LoopConfig) *FrameLoop {
	if state == nil || input == nil || logger == nil {
		panic("gameserver.NewFrameLoop: state, input and logger are required")
	}
	if cfg.Interval < 0 || cfg.MaxTicks < 0 {
		panic("gameserver.NewFrameLoop: interval and max ticks must be >= 0")
	}
	return &FrameLoop{
		state:       state,
		input:       input,
		metrics:     metrics,
		logger:      logger,
		cfg:         cfg,
		subscribers: make(map[chan<- sim.View]struct{}),
		done:        make(chan struct{}),
	}
}

// Subscribe registers ch to receive a view after every tick.
// If ch is full, the view is dropped for that subscriber (non-blocking).
//
// Precondition: ch must not be nil.
func (f *FrameLoop) Subscribe(ch chan<- sim.View) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribers[ch] = struct{}{}
}

// Unsubscribe removes ch from the subscriber list.
func (f *FrameLoop) Unsubscribe(ch chan<- sim.View) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.subscribers, ch)
}

// Run advances the state until the game ends, MaxTicks is reached, ctx is cancelled
// or Stop is called. It must be called at most once.
//
// Postcondition: Returns the run summary; Summary() reports the same value afterwards.
func (f *FrameLoop) Run(ctx context.Context) Summary {
	var tick <-chan time.Time
	if f.cfg.Interval > 0 {
		ticker := time.NewTicker(f.cfg.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	f.logger.Info("frame loop started",
		zap.Duration("interval", f.cfg.Interval),
		zap.Int("max_ticks", f.cfg.MaxTicks),
		zap.Int("level", f.state.Level()),
	)

	view := f.state.View()
	ticks := 0
	for {
		if f.cfg.MaxTicks > 0 && ticks >= f.cfg.MaxTicks {
			return f.finish(StopMaxTicks, ticks, view)
		}
		if tick != nil {
			select {
			case <-ctx.Done():
				return f.finish(StopCancelled, ticks, view)
			case <-f.done:
				return f.finish(StopCancelled, ticks, view)
			case <-tick:
			}
		} else {
			select {
			case <-ctx.Done():
				return f.finish(StopCancelled, ticks, view)
			case <-f.done:
				return f.finish(StopCancelled, ticks, view)
			default:
			}
		}

		var res sim.TickResult
		res, view = f.step(view)
		ticks++
		if !res.PlayerAlive {
			if f.metrics != nil {
				f.metrics.ObserveGameOver()
			}
			return f.finish(StopGameOver, ticks, view)
		}
	}
}

func (f *FrameLoop) step(prev sim.View) (sim.TickResult, sim.View) {
	in := f.input.Next(prev)
	start := time.Now()
	res := f.state.AdvanceTick(in)
	took := time.Since(start)

	view := f.state.View()
	if f.metrics != nil {
		f.metrics.ObserveTick(res, view, took)
	}
	if res.PlayerDamage > 0 {
		f.logger.Debug("player hit",
			zap.Uint64("frame", res.Frame),
			zap.Int("damage", res.PlayerDamage),
			zap.Int("health", view.Player.Health),
		)
	}
	f.publish(view)
	return res, view
}

func (f *FrameLoop) publish(v sim.View) {
	f.mu.Lock()
	subs := make([]chan<- sim.View, 0, len(f.subscribers))
	for ch := range f.subscribers {
		subs = append(subs, ch)
	}
	f.mu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- v:
		default:
		}
	}
}

func (f *FrameLoop) finish(reason StopReason, ticks int, v sim.View) Summary {
	s := Summary{
		Reason:        reason,
		Ticks:         ticks,
		Level:         v.Level,
		LevelsCleared: v.LevelsCleared,
	}
	f.mu.Lock()
	f.summary = s
	f.mu.Unlock()
	f.logger.Info("frame loop finished",
		zap.String("reason", string(reason)),
		zap.Int("ticks", ticks),
		zap.Int("level", v.Level),
		zap.Int("levels_cleared", v.LevelsCleared),
	)
	return s
}

// Summary returns the result of the last Run, or the zero Summary while running.
func (f *FrameLoop) Summary() Summary {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.summary
}

// Start runs the loop as a lifecycle service. It returns when the run ends.
func (f *FrameLoop) Start() error {
	f.Run(context.Background())
	return nil
}

// Stop ends a running loop. Calling Stop is idempotent.
func (f *FrameLoop) Stop() {
	f.stopOnce.Do(func() { close(f.done) })
}
