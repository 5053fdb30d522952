package sim

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/virtualrange/weaponsim/internal/queue"
)

// Config tunes the command buffer and tick loop.
type Config struct {
	TickRate        int
	CommandCapacity int
}

// TickResult summarizes one completed tick for monitoring hooks.
type TickResult struct {
	Tick            uint64
	Now             time.Time
	Duration        time.Duration
	Budget          time.Duration
	Commands        int
	QueueLen        int
	ActiveWeapons   int
	ActiveSequences int
}

// Hooks lets collaborators observe the loop without owning it.
type Hooks struct {
	AfterTick func(TickResult)
}

// Loop coordinates command ingestion and the fixed-timestep runner. Input
// producers enqueue from any goroutine; the engine is touched only from
// Advance, which the Run goroutine calls once per tick.
type Loop struct {
	engine *Engine
	cfg    Config
	hooks  Hooks
	log    *slog.Logger

	commands *queue.Queue[Command]
	tick     uint64

	// OTel instruments; no-ops unless a global meter provider is set.
	queueSize metric.Int64ObservableGauge
	processed metric.Int64Counter
	dropped   metric.Int64Counter
}

// NewLoop wraps the engine with a command queue and tick runner.
func NewLoop(engine *Engine, cfg Config, hooks Hooks, log *slog.Logger) (*Loop, error) {
	if log == nil {
		log = slog.Default()
	}
	l := &Loop{
		engine:   engine,
		cfg:      cfg,
		hooks:    hooks,
		log:      log,
		commands: queue.New[Command](),
	}

	m := meter()
	var err error

	l.queueSize, err = m.Int64ObservableGauge(
		"sim.commands.queued",
		metric.WithDescription("Commands staged for the next tick"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating queue gauge: %w", err)
	}
	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			o.ObserveInt64(l.queueSize, int64(l.commands.Len()))
			return nil
		},
		l.queueSize,
	)
	if err != nil {
		return nil, fmt.Errorf("registering queue callback: %w", err)
	}

	l.processed, err = m.Int64Counter(
		"sim.commands.processed",
		metric.WithDescription("Total commands applied"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating processed counter: %w", err)
	}

	l.dropped, err = m.Int64Counter(
		"sim.commands.dropped",
		metric.WithDescription("Commands dropped due to a full queue"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dropped counter: %w", err)
	}

	return l, nil
}

// Engine returns the wrapped engine for read-only queries.
func (l *Loop) Engine() *Engine { return l.engine }

// Enqueue stages a command for the next tick. It reports false when the
// buffer is saturated; the command is dropped rather than blocking the
// producer.
func (l *Loop) Enqueue(cmd Command) bool {
	if l.cfg.CommandCapacity > 0 && l.commands.Len() >= l.cfg.CommandCapacity {
		l.dropped.Add(context.Background(), 1,
			metric.WithAttributes(attribute.String("command", cmd.Type.String())))
		l.log.Warn("command queue full, dropping", "command", cmd.Type.String(), "objectID", cmd.ObjectID)
		return false
	}
	l.commands.Push(cmd)
	return true
}

// Pending reports the number of staged commands.
func (l *Loop) Pending() int { return l.commands.Len() }

// Advance executes a single tick: drain staged commands, apply them, then
// step every weapon. Fire attempts inside the step observe same-tick
// command effects (magazine swaps, slide moves) because apply runs first.
func (l *Loop) Advance(now time.Time) TickResult {
	l.tick++
	start := time.Now()

	cmds := l.commands.GetAndEmpty()
	l.engine.Apply(cmds, now)
	l.engine.Step(now, l.tick)

	if len(cmds) > 0 {
		l.processed.Add(context.Background(), int64(len(cmds)))
	}

	return TickResult{
		Tick:            l.tick,
		Now:             now,
		Duration:        time.Since(start),
		Budget:          l.budget(),
		Commands:        len(cmds),
		QueueLen:        l.commands.Len(),
		ActiveWeapons:   l.engine.WeaponCount(),
		ActiveSequences: l.engine.ActiveSequences(),
	}
}

// Run drives the fixed-timestep loop until the context is cancelled.
func (l *Loop) Run(ctx context.Context) {
	budget := l.budget()
	ticker := time.NewTicker(budget)
	defer ticker.Stop()

	l.log.Info("tick loop started", "tickRate", l.tickRate(), "budget", budget)

	for {
		select {
		case <-ctx.Done():
			l.log.Info("tick loop stopped", "tick", l.tick)
			return
		case now := <-ticker.C:
			result := l.Advance(now)
			if result.Duration > result.Budget {
				l.log.Warn("tick over budget",
					"tick", result.Tick, "duration", result.Duration, "budget", result.Budget)
			}
			if l.hooks.AfterTick != nil {
				l.hooks.AfterTick(result)
			}
		}
	}
}

// TickRate returns the effective ticks per second.
func (l *Loop) TickRate() int {
	return l.tickRate()
}

func (l *Loop) tickRate() int {
	if l.cfg.TickRate <= 0 {
		return 60
	}
	return l.cfg.TickRate
}

func (l *Loop) budget() time.Duration {
	return time.Second / time.Duration(l.tickRate())
}
