// Package scenario replays scripted range sessions from JSON files. A
// scenario carries the range and session metadata plus a tick-ordered
// event list; the runner feeds events through the dispatcher exactly as
// a live host would, so the full command path is exercised.
package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Event is one scripted bridge command. Args match the wire format of
// the named command minus the leading tick, which the runner prepends.
type Event struct {
	Tick    uint64   `json:"tick"`
	Command string   `json:"command"`
	Args    []string `json:"args"`
}

// Scenario is a scripted session. Range and Session are passed through
// verbatim as the :SESSION:START: payload.
type Scenario struct {
	Name    string          `json:"name"`
	Range   json.RawMessage `json:"range"`
	Session json.RawMessage `json:"session"`
	// SettleTicks keeps the loop running after the last event so
	// in-flight fire sequences and slide cycles can finish.
	SettleTicks uint64  `json:"settleTicks"`
	Events      []Event `json:"events"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var sc Scenario
	if err := json.Unmarshal(raw, &sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario file: %w", err)
	}

	if len(sc.Range) == 0 || len(sc.Session) == 0 {
		return nil, fmt.Errorf("scenario must carry range and session metadata")
	}
	if len(sc.Events) == 0 {
		return nil, fmt.Errorf("scenario has no events")
	}
	for i, e := range sc.Events {
		if e.Command == "" {
			return nil, fmt.Errorf("event %d has no command", i)
		}
	}

	// Events may be authored out of order; replay is by tick.
	sort.SliceStable(sc.Events, func(i, j int) bool {
		return sc.Events[i].Tick < sc.Events[j].Tick
	})

	if sc.SettleTicks == 0 {
		sc.SettleTicks = 120
	}

	return &sc, nil
}

// LastTick returns the tick of the final event.
func (s *Scenario) LastTick() uint64 {
	if len(s.Events) == 0 {
		return 0
	}
	return s.Events[len(s.Events)-1].Tick
}
