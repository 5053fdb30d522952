package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/virtualrange/weaponsim/internal/dispatcher"
	"github.com/virtualrange/weaponsim/internal/influx"
	"github.com/virtualrange/weaponsim/internal/model/convert"
	"github.com/virtualrange/weaponsim/internal/sim"
	"github.com/virtualrange/weaponsim/internal/util"
	"github.com/virtualrange/weaponsim/pkg/core"
)

// RegisterHandlers registers all bridge command handlers with the dispatcher.
func (m *Manager) RegisterHandlers(d *dispatcher.Dispatcher) {
	// Weapon lifecycle - sync (need to cache before loads arrive)
	d.Register(":NEW:WEAPON:", m.handleNewWeapon, dispatcher.Logged())
	d.Register(":REMOVE:WEAPON:", m.handleWeaponRemove, dispatcher.Logged())

	// High-volume continuous input - buffered
	d.Register(":SLIDE:POS:", m.handleSlideMove, dispatcher.Buffered(10000), dispatcher.Logged())
	d.Register(":MUZZLE:POSE:", m.handleMuzzlePose, dispatcher.Buffered(10000), dispatcher.Logged())

	// Input edges - buffered
	d.Register(":INPUT:GRAB:", m.handleGrab, dispatcher.Buffered(2000), dispatcher.Logged())
	d.Register(":INPUT:TRIGGER:", m.handleTrigger, dispatcher.Buffered(2000), dispatcher.Logged())
	d.Register(":INPUT:ALT:", m.handleAlt, dispatcher.Buffered(1000), dispatcher.Logged())
	d.Register(":INPUT:SELECT:", m.handleFireModeSelect, dispatcher.Buffered(1000), dispatcher.Logged())

	// Magazine handling - buffered
	d.Register(":LOAD:MAG:", m.handleMagazineLoad, dispatcher.Buffered(1000), dispatcher.Logged())
	d.Register(":EJECT:MAG:", m.handleMagazineEject, dispatcher.Buffered(1000), dispatcher.Logged())

	// General events - buffered
	d.Register(":EVENT:", m.handleGeneralEvent, dispatcher.Buffered(1000), dispatcher.Logged())

	// Host metrics - buffered
	d.Register(":METRIC:", m.handleMetric, dispatcher.Buffered(1000), dispatcher.Logged())
}

// enqueue stages a sim command, surfacing queue saturation as an error.
func (m *Manager) enqueue(cmd sim.Command) error {
	if !m.loop.Enqueue(cmd) {
		return fmt.Errorf("simulation queue full: %s", cmd.Type.String())
	}
	return nil
}

func (m *Manager) handleNewWeapon(e dispatcher.Event) (any, error) {
	parsed, err := m.deps.ParserService.ParseWeapon(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to register weapon: %w", err)
	}

	// Always cache for load handler lookups; the engine applies the
	// registration at the start of the next tick.
	coreWeapon := core.Weapon{
		ObjectID:          parsed.ObjectID,
		JoinTick:          parsed.Tick,
		ClassName:         parsed.Spec.ClassName,
		DisplayName:       parsed.Spec.DisplayName,
		TravelDistance:    parsed.Spec.TravelDistance,
		FireRateRPM:       parsed.Spec.FireRateRPM,
		BurstCount:        parsed.Spec.BurstCount,
		FireModes:         parsed.Spec.FireModeNames(),
		AcceptedMagazines: parsed.Spec.AcceptedMagazines,
	}
	m.deps.WeaponCache.Add(convert.CoreToWeapon(coreWeapon, time.Now()))

	return nil, m.enqueue(sim.Command{
		Type:     sim.CmdRegisterWeapon,
		ObjectID: parsed.ObjectID,
		Time:     e.Timestamp,
		Spec:     parsed.Spec,
	})
}

func (m *Manager) handleWeaponRemove(e dispatcher.Event) (any, error) {
	parsed, err := m.deps.ParserService.ParseWeaponRemove(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to remove weapon: %w", err)
	}

	if _, ok := m.deps.WeaponCache.Get(parsed.ObjectID); !ok {
		return nil, ErrTooEarlyForStateAssociation
	}

	return nil, m.enqueue(sim.Command{
		Type:     sim.CmdRemoveWeapon,
		ObjectID: parsed.ObjectID,
		Time:     e.Timestamp,
	})
}

func (m *Manager) handleGrab(e dispatcher.Event) (any, error) {
	parsed, err := m.deps.ParserService.ParseGrab(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to log grab: %w", err)
	}

	cmdType := sim.CmdGrab
	if !parsed.Grabbed {
		cmdType = sim.CmdRelease
	}

	return nil, m.enqueue(sim.Command{
		Type:     cmdType,
		ObjectID: parsed.ObjectID,
		Time:     e.Timestamp,
		Handle:   parsed.Handle,
		Hand:     parsed.Hand,
	})
}

func (m *Manager) handleTrigger(e dispatcher.Event) (any, error) {
	parsed, err := m.deps.ParserService.ParseTrigger(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to log trigger edge: %w", err)
	}

	cmdType := sim.CmdTriggerPress
	if !parsed.Pressed {
		cmdType = sim.CmdTriggerRelease
	}

	return nil, m.enqueue(sim.Command{
		Type:     cmdType,
		ObjectID: parsed.ObjectID,
		Time:     e.Timestamp,
	})
}

func (m *Manager) handleAlt(e dispatcher.Event) (any, error) {
	parsed, err := m.deps.ParserService.ParseAlt(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to log alternate-action edge: %w", err)
	}

	cmdType := sim.CmdAltPress
	if !parsed.Pressed {
		cmdType = sim.CmdAltRelease
	}

	return nil, m.enqueue(sim.Command{
		Type:     cmdType,
		ObjectID: parsed.ObjectID,
		Time:     e.Timestamp,
	})
}

func (m *Manager) handleSlideMove(e dispatcher.Event) (any, error) {
	parsed, err := m.deps.ParserService.ParseSlideMove(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to log slide position: %w", err)
	}

	return nil, m.enqueue(sim.Command{
		Type:     sim.CmdSlideMove,
		ObjectID: parsed.ObjectID,
		Time:     e.Timestamp,
		SlidePos: parsed.Position,
	})
}

func (m *Manager) handleMuzzlePose(e dispatcher.Event) (any, error) {
	parsed, err := m.deps.ParserService.ParseMuzzlePose(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to log muzzle pose: %w", err)
	}

	return nil, m.enqueue(sim.Command{
		Type:      sim.CmdMuzzlePose,
		ObjectID:  parsed.ObjectID,
		Time:      e.Timestamp,
		Muzzle:    parsed.Muzzle,
		Direction: parsed.Direction,
	})
}

func (m *Manager) handleFireModeSelect(e dispatcher.Event) (any, error) {
	parsed, err := m.deps.ParserService.ParseFireModeSelect(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to log fire mode select: %w", err)
	}

	return nil, m.enqueue(sim.Command{
		Type:     sim.CmdSelectFireMode,
		ObjectID: parsed.ObjectID,
		Time:     e.Timestamp,
		Mode:     parsed.Mode,
	})
}

func (m *Manager) handleMagazineLoad(e dispatcher.Event) (any, error) {
	parsed, err := m.deps.ParserService.ParseMagazineLoad(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to log magazine load: %w", err)
	}

	// Validate weapon exists in cache
	if _, ok := m.deps.WeaponCache.Get(parsed.ObjectID); !ok {
		return nil, ErrTooEarlyForStateAssociation
	}

	// The host only sends a capacity on the first load of each class;
	// fill later loads from cache.
	if parsed.HasCapacity {
		m.deps.MagazineCache.Set(parsed.ClassName, uint16(parsed.Capacity))
	} else {
		capacity, ok := m.deps.MagazineCache.Get(parsed.ClassName)
		if !ok {
			return nil, fmt.Errorf("no cached capacity for magazine class %q", parsed.ClassName)
		}
		parsed.Capacity = int(capacity)
	}

	return nil, m.enqueue(sim.Command{
		Type:          sim.CmdInsertMagazine,
		ObjectID:      parsed.ObjectID,
		Time:          e.Timestamp,
		MagazineClass: parsed.ClassName,
		Capacity:      parsed.Capacity,
		Count:         parsed.Count,
	})
}

func (m *Manager) handleMagazineEject(e dispatcher.Event) (any, error) {
	parsed, err := m.deps.ParserService.ParseMagazineEject(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to log magazine eject: %w", err)
	}

	if _, ok := m.deps.WeaponCache.Get(parsed.ObjectID); !ok {
		return nil, ErrTooEarlyForStateAssociation
	}

	return nil, m.enqueue(sim.Command{
		Type:     sim.CmdEjectMagazine,
		ObjectID: parsed.ObjectID,
		Time:     e.Timestamp,
	})
}

func (m *Manager) handleGeneralEvent(e dispatcher.Event) (any, error) {
	obj, err := m.deps.ParserService.ParseGeneralEvent(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to log general event: %w", err)
	}

	if err := m.backend.RecordGeneralEvent(&obj); err != nil {
		return nil, fmt.Errorf("failed to record general event: %w", err)
	}

	return nil, nil
}

func (m *Manager) handleMetric(e dispatcher.Event) (any, error) {
	if m.metrics == nil {
		return nil, nil
	}

	bucket, point, err := influx.ProcessMetricData(e.Args, util.FixEscapeQuotes, util.TrimQuotes)
	if err != nil {
		return nil, fmt.Errorf("failed to process metric data: %w", err)
	}

	if err := m.metrics.WritePoint(context.Background(), bucket, point); err != nil {
		return nil, fmt.Errorf("failed to write metric point: %w", err)
	}

	return nil, nil
}
