package session

import (
	"fmt"

	"github.com/virtualrange/weaponsim/internal/dispatcher"
)

// RegisterHandlers registers the session lifecycle handlers. Both run
// synchronously so the host's first input command cannot overtake the
// session start.
func (m *Manager) RegisterHandlers(d *dispatcher.Dispatcher) {
	d.Register(":SESSION:START:", m.handleSessionStart, dispatcher.Logged())
	d.Register(":SESSION:END:", m.handleSessionEnd, dispatcher.Logged())
}

func (m *Manager) handleSessionStart(e dispatcher.Event) (any, error) {
	session, rng, err := m.deps.ParserService.ParseSessionStart(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to parse session start: %w", err)
	}
	return nil, m.StartSession(session, rng)
}

func (m *Manager) handleSessionEnd(e dispatcher.Event) (any, error) {
	return nil, m.EndSession()
}
