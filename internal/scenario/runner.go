package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/virtualrange/weaponsim/internal/dispatcher"
	"github.com/virtualrange/weaponsim/internal/sim"
)

// Runner replays a scenario against a running simulation. The loop must
// already be running; the runner only produces commands.
type Runner struct {
	dispatcher *dispatcher.Dispatcher
	loop       *sim.Loop
	log        *slog.Logger
}

// NewRunner creates a scenario runner.
func NewRunner(d *dispatcher.Dispatcher, loop *sim.Loop, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{dispatcher: d, loop: loop, log: log}
}

// Run replays the scenario in real time at the loop's tick rate: session
// start, every event at its tick, then session end after the settle
// window. It returns when the replay finishes or ctx is cancelled.
func (r *Runner) Run(ctx context.Context, sc *Scenario) error {
	r.log.Info("scenario starting", "name", sc.Name, "events", len(sc.Events), "lastTick", sc.LastTick())

	if _, err := r.dispatcher.Dispatch(dispatcher.Event{
		Command:   ":SESSION:START:",
		Args:      []string{string(sc.Range), string(sc.Session)},
		Timestamp: time.Now(),
	}); err != nil {
		return fmt.Errorf("failed to start scenario session: %w", err)
	}

	interval := time.Second / time.Duration(r.loop.TickRate())
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	endTick := sc.LastTick() + sc.SettleTicks
	next := 0

	for tick := uint64(0); tick <= endTick; tick++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		for next < len(sc.Events) && sc.Events[next].Tick <= tick {
			e := sc.Events[next]
			next++

			args := append([]string{strconv.FormatUint(e.Tick, 10)}, e.Args...)
			if _, err := r.dispatcher.Dispatch(dispatcher.Event{
				Command:   e.Command,
				Args:      args,
				Timestamp: time.Now(),
			}); err != nil {
				r.log.Error("scenario event failed", "tick", e.Tick, "command", e.Command, "error", err)
			}
		}
	}

	if _, err := r.dispatcher.Dispatch(dispatcher.Event{
		Command:   ":SESSION:END:",
		Args:      []string{strconv.FormatUint(endTick, 10)},
		Timestamp: time.Now(),
	}); err != nil {
		return fmt.Errorf("failed to end scenario session: %w", err)
	}

	r.log.Info("scenario finished", "name", sc.Name)
	return nil
}
