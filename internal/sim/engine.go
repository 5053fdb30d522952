// Package sim runs the fixed-timestep simulation: a command queue feeding
// an engine that owns every registered weapon controller and ticks them.
package sim

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/virtualrange/weaponsim/internal/weapon"
	"github.com/virtualrange/weaponsim/pkg/core"
)

// EffectsFactory builds the host-effect sink for a newly registered
// weapon. Hosts bind this to their audio/visual pipeline; tests and the
// scenario runner use recording fakes or weapon.NopEffects.
type EffectsFactory func(objectID uint16, spec weapon.Spec) weapon.Effects

// WeaponObserver is notified when weapons join or leave the simulation.
// The session manager uses it to record weapon registrations.
type WeaponObserver interface {
	WeaponRegistered(w core.Weapon)
	WeaponRemoved(objectID uint16, tick uint64)
}

// Engine owns the per-weapon controllers and applies staged commands.
// All methods except the read-only queries must run on the loop goroutine.
type Engine struct {
	log *slog.Logger
	rec weapon.Recorder
	fx  EffectsFactory
	obs WeaponObserver

	mu      sync.RWMutex
	weapons map[uint16]*weapon.Controller
	slides  map[uint16]float64

	tick uint64
}

// NewEngine creates an empty engine. rec and obs may be nil; fx defaults
// to NopEffects when nil.
func NewEngine(fx EffectsFactory, rec weapon.Recorder, obs WeaponObserver, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	if fx == nil {
		fx = func(uint16, weapon.Spec) weapon.Effects { return weapon.NopEffects{} }
	}
	return &Engine{
		log:     log,
		rec:     rec,
		fx:      fx,
		obs:     obs,
		weapons: make(map[uint16]*weapon.Controller),
		slides:  make(map[uint16]float64),
	}
}

// Apply executes a batch of staged commands against the current state.
// Commands for unknown weapons are logged and skipped; a malformed command
// must never halt the tick.
func (e *Engine) Apply(cmds []Command, now time.Time) {
	for _, cmd := range cmds {
		e.apply(cmd, now)
	}
}

func (e *Engine) apply(cmd Command, now time.Time) {
	if cmd.Type == CmdRegisterWeapon {
		e.registerWeapon(cmd)
		return
	}

	c := e.weapon(cmd.ObjectID)
	if c == nil {
		e.log.Debug("command for unknown weapon", "command", cmd.Type.String(), "objectID", cmd.ObjectID)
		return
	}

	switch cmd.Type {
	case CmdRemoveWeapon:
		e.removeWeapon(cmd.ObjectID)
	case CmdGrab:
		c.Grab(cmd.Handle, cmd.Hand)
	case CmdRelease:
		c.Release(cmd.Handle, cmd.Hand)
	case CmdTriggerPress:
		c.TriggerPress(now)
	case CmdTriggerRelease:
		c.TriggerRelease()
	case CmdAltPress:
		c.AltPress(now)
	case CmdAltRelease:
		c.AltRelease(now)
	case CmdSlideMove:
		e.mu.Lock()
		e.slides[cmd.ObjectID] = cmd.SlidePos
		e.mu.Unlock()
	case CmdMuzzlePose:
		c.SetMuzzlePose(cmd.Muzzle, cmd.Direction)
	case CmdInsertMagazine:
		c.InsertMagazine(cmd.MagazineClass, cmd.Capacity, cmd.Count)
	case CmdEjectMagazine:
		c.EjectMagazine()
	case CmdSelectFireMode:
		if !c.SelectFireMode(cmd.Mode) {
			e.log.Debug("fire mode not allowed", "objectID", cmd.ObjectID, "mode", cmd.Mode.String())
		}
	default:
		e.log.Debug("unknown command type", "command", int(cmd.Type))
	}
}

func (e *Engine) registerWeapon(cmd Command) {
	e.mu.Lock()
	if _, exists := e.weapons[cmd.ObjectID]; exists {
		e.mu.Unlock()
		e.log.Warn("weapon already registered", "objectID", cmd.ObjectID, "class", cmd.Spec.ClassName)
		return
	}
	c := weapon.NewController(cmd.ObjectID, cmd.Spec, e.fx(cmd.ObjectID, cmd.Spec), e.rec, e.log)
	e.weapons[cmd.ObjectID] = c
	e.slides[cmd.ObjectID] = 0
	e.mu.Unlock()

	e.log.Info("weapon registered",
		"objectID", cmd.ObjectID, "class", cmd.Spec.ClassName, "inert", c.Inert())

	if e.obs != nil {
		e.obs.WeaponRegistered(core.Weapon{
			ObjectID:          cmd.ObjectID,
			JoinTick:          e.tick,
			ClassName:         cmd.Spec.ClassName,
			DisplayName:       cmd.Spec.DisplayName,
			TravelDistance:    cmd.Spec.TravelDistance,
			FireRateRPM:       cmd.Spec.FireRateRPM,
			BurstCount:        cmd.Spec.BurstCount,
			FireModes:         cmd.Spec.FireModeNames(),
			AcceptedMagazines: cmd.Spec.AcceptedMagazines,
		})
	}
}

func (e *Engine) removeWeapon(objectID uint16) {
	e.mu.Lock()
	delete(e.weapons, objectID)
	delete(e.slides, objectID)
	e.mu.Unlock()

	e.log.Info("weapon removed", "objectID", objectID)
	if e.obs != nil {
		e.obs.WeaponRemoved(objectID, e.tick)
	}
}

// Step advances every weapon by one tick. Iteration is in objectID order
// so a tick is reproducible for a given command history.
func (e *Engine) Step(now time.Time, tick uint64) {
	e.tick = tick

	e.mu.RLock()
	ids := make([]uint16, 0, len(e.weapons))
	for id := range e.weapons {
		ids = append(ids, id)
	}
	e.mu.RUnlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		c := e.weapon(id)
		if c == nil {
			continue
		}
		e.mu.RLock()
		pos := e.slides[id]
		e.mu.RUnlock()
		c.Tick(now, tick, pos)
	}
}

func (e *Engine) weapon(id uint16) *weapon.Controller {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.weapons[id]
}

// Weapon returns the controller for a registered weapon, or nil.
func (e *Engine) Weapon(id uint16) *weapon.Controller { return e.weapon(id) }

// WeaponCount returns the number of registered weapons.
func (e *Engine) WeaponCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.weapons)
}

// ActiveSequences counts weapons with a fire sequence in flight.
func (e *Engine) ActiveSequences() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	n := 0
	for _, c := range e.weapons {
		if c.Sequencing() {
			n++
		}
	}
	return n
}

// Tick returns the last completed tick number.
func (e *Engine) Tick() uint64 { return e.tick }

// Reset drops every weapon. Used between scenario runs and at session end.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.weapons = make(map[uint16]*weapon.Controller)
	e.slides = make(map[uint16]float64)
	e.tick = 0
}
