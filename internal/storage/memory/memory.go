// internal/storage/memory/memory.go
package memory

import (
	"errors"
	"sync"

	"github.com/virtualrange/weaponsim/internal/config"
	"github.com/virtualrange/weaponsim/pkg/core"
)

// WeaponRecord groups a weapon with all its recorded activity
type WeaponRecord struct {
	Weapon    core.Weapon
	Shots     []core.ShotEvent
	Cycles    []core.CycleEvent
	Sequences []core.SequenceEvent
	Magazines []core.MagazineLoad
}

// Backend stores session data in memory and exports to JSON
type Backend struct {
	cfg     config.MemoryConfig
	session *core.Session
	rng     *core.Range

	weapons map[uint16]*WeaponRecord // keyed by ObjectID

	generalEvents []core.GeneralEvent
	perfSamples   []core.PerfSample

	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:     cfg,
		weapons: make(map[uint16]*WeaponRecord),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartSession begins recording a new session
func (b *Backend) StartSession(session *core.Session, rng *core.Range) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.session = session
	b.rng = rng

	// Reset all collections
	b.weapons = make(map[uint16]*WeaponRecord)
	b.generalEvents = nil
	b.perfSamples = nil
	b.lastExportPath = ""

	return nil
}

// EndSession finalizes and exports the session data
func (b *Backend) EndSession() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return errors.New("no session to end")
	}

	return b.exportJSON()
}

// AddWeapon registers a new weapon
func (b *Backend) AddWeapon(w *core.Weapon) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.weapons[w.ObjectID] = &WeaponRecord{
		Weapon:    *w,
		Shots:     make([]core.ShotEvent, 0),
		Cycles:    make([]core.CycleEvent, 0),
		Sequences: make([]core.SequenceEvent, 0),
		Magazines: make([]core.MagazineLoad, 0),
	}
	return nil
}

// GetWeaponByObjectID looks up a weapon by its ObjectID
func (b *Backend) GetWeaponByObjectID(objectID uint16) (*core.Weapon, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if record, ok := b.weapons[objectID]; ok {
		return &record.Weapon, true
	}
	return nil, false
}

// RecordShotEvent records a shot
func (b *Backend) RecordShotEvent(e *core.ShotEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if record, ok := b.weapons[e.WeaponObjectID]; ok {
		record.Shots = append(record.Shots, *e)
	}
	return nil // silently ignore if weapon not registered
}

// RecordCycleEvent records a slide/chamber transition
func (b *Backend) RecordCycleEvent(e *core.CycleEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if record, ok := b.weapons[e.WeaponObjectID]; ok {
		record.Cycles = append(record.Cycles, *e)
	}
	return nil
}

// RecordSequenceEvent records a completed trigger pull
func (b *Backend) RecordSequenceEvent(e *core.SequenceEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if record, ok := b.weapons[e.WeaponObjectID]; ok {
		record.Sequences = append(record.Sequences, *e)
	}
	return nil
}

// RecordMagazineLoad records a magazine insertion
func (b *Backend) RecordMagazineLoad(m *core.MagazineLoad) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if record, ok := b.weapons[m.WeaponObjectID]; ok {
		record.Magazines = append(record.Magazines, *m)
	}
	return nil
}

// RecordGeneralEvent records a general session event
func (b *Backend) RecordGeneralEvent(e *core.GeneralEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.generalEvents = append(b.generalEvents, *e)
	return nil
}

// RecordPerfSample records an engine health sample
func (b *Backend) RecordPerfSample(p *core.PerfSample) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.perfSamples = append(b.perfSamples, *p)
	return nil
}
