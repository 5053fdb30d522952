// pkg/core/events.go
package core

import "time"

// ShotEvent represents one round leaving a weapon.
// WeaponObjectID is the ObjectID of the weapon that fired.
type ShotEvent struct {
	SessionID      uint
	WeaponObjectID uint16
	Time           time.Time
	Tick           uint64
	FireMode       string
	Magazine       string
	Muzzle         Position3D
	// Impact is the resolved end of the shot trace. Zero when the host
	// did not report a hit for this round.
	Impact        Position3D
	AmmoRemaining int
	Rechambered   bool
}

// CyclePhase identifies a discrete mechanical transition of the slide group.
type CyclePhase string

const (
	PhasePulledBack CyclePhase = "pulled_back"
	PhaseRacked     CyclePhase = "racked"
	PhaseLocked     CyclePhase = "locked"
	PhaseUnlocked   CyclePhase = "unlocked"
	PhaseHoldOpen   CyclePhase = "hold_open"
	PhaseEjectEmpty CyclePhase = "eject_empty"
)

// CycleEvent represents a discrete slide/chamber transition.
type CycleEvent struct {
	SessionID      uint
	WeaponObjectID uint16
	Time           time.Time
	Tick           uint64
	Phase          CyclePhase
	RoundChambered bool
	AmmoCounter    int
}

// SequenceEvent summarizes one completed trigger pull.
type SequenceEvent struct {
	SessionID      uint
	WeaponObjectID uint16
	Time           time.Time
	Tick           uint64
	FireMode       string
	ShotsFired     int
	EndedBy        string // "complete", "empty", "released", "safe"
}

// GeneralEvent is a generic session event (lifecycle, rejections, config faults).
type GeneralEvent struct {
	ID        uint
	SessionID uint
	Time      time.Time
	Tick      uint64
	Name      string
	Message   string
	ExtraData map[string]any
}

// PerfSample captures engine health for one monitor interval.
type PerfSample struct {
	SessionID       uint
	Time            time.Time
	Tick            uint64
	TickDurationMs  float32
	TickBudgetMs    float32
	CommandQueueLen int
	WriteQueueLen   int
	ActiveWeapons   int
	ActiveSequences int
}
