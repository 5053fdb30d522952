package session

import (
	"time"

	"github.com/virtualrange/weaponsim/pkg/core"
)

// The engine calls these from the loop goroutine on every tick; storage
// errors are logged rather than returned so a failing write can never
// stall the simulation.

// RecordShot implements weapon.Recorder.
func (m *Manager) RecordShot(e core.ShotEvent) {
	e.SessionID = m.SessionID()
	if err := m.backend.RecordShotEvent(&e); err != nil {
		m.logger.Error("failed to record shot event", "objectID", e.WeaponObjectID, "error", err)
	}
}

// RecordCycle implements weapon.Recorder.
func (m *Manager) RecordCycle(e core.CycleEvent) {
	e.SessionID = m.SessionID()
	if err := m.backend.RecordCycleEvent(&e); err != nil {
		m.logger.Error("failed to record cycle event", "objectID", e.WeaponObjectID, "error", err)
	}
}

// RecordSequence implements weapon.Recorder.
func (m *Manager) RecordSequence(e core.SequenceEvent) {
	e.SessionID = m.SessionID()
	if err := m.backend.RecordSequenceEvent(&e); err != nil {
		m.logger.Error("failed to record sequence event", "objectID", e.WeaponObjectID, "error", err)
	}
}

// RecordMagazine implements weapon.Recorder.
func (m *Manager) RecordMagazine(e core.MagazineLoad) {
	e.SessionID = m.SessionID()
	if err := m.backend.RecordMagazineLoad(&e); err != nil {
		m.logger.Error("failed to record magazine load", "objectID", e.WeaponObjectID, "error", err)
	}
}

// WeaponRegistered implements sim.WeaponObserver. The worker caches the
// weapon when the command arrives; persistence waits until the engine has
// actually applied the registration.
func (m *Manager) WeaponRegistered(w core.Weapon) {
	w.SessionID = m.SessionID()
	if err := m.backend.AddWeapon(&w); err != nil {
		m.logger.Error("failed to record weapon", "objectID", w.ObjectID, "class", w.ClassName, "error", err)
	}
}

// WeaponRemoved implements sim.WeaponObserver.
func (m *Manager) WeaponRemoved(objectID uint16, tick uint64) {
	e := core.GeneralEvent{
		SessionID: m.SessionID(),
		Time:      time.Now(),
		Tick:      tick,
		Name:      "weapon_removed",
		ExtraData: map[string]any{"objectId": int(objectID)},
	}
	if err := m.backend.RecordGeneralEvent(&e); err != nil {
		m.logger.Error("failed to record weapon removal", "objectID", objectID, "error", err)
	}
}
