package weapon

import (
	"log/slog"
	"time"

	"github.com/virtualrange/weaponsim/pkg/core"
)

// Recorder receives the discrete events a controller emits for session
// recording. Implementations stamp the session ID.
type Recorder interface {
	RecordShot(e core.ShotEvent)
	RecordCycle(e core.CycleEvent)
	RecordSequence(e core.SequenceEvent)
	RecordMagazine(e core.MagazineLoad)
}

// handleState tracks which hands hold one handle.
type handleState struct {
	left  bool
	right bool
}

func (h handleState) any() bool { return h.left || h.right }

func (h *handleState) set(hand Hand, held bool) {
	if hand == HandLeft {
		h.left = held
	} else {
		h.right = held
	}
}

// Controller is the top-level per-weapon state holder. It reconciles grab
// state across the primary and slide handles, dispatches the alternate
// action between magazine release and the lock/mode toggle via the
// long-press timer, and owns the single active fire sequencer.
type Controller struct {
	spec Spec
	mech *Mechanism
	fx   Effects
	log  *slog.Logger
	rec  Recorder

	objectID uint16

	// inert marks a weapon whose spec failed validation at registration.
	// An inert weapon ignores all input rather than crashing the host.
	inert bool

	primary handleState
	slide   handleState

	modeIdx     int
	triggerHeld bool
	firing      bool
	seq         *Sequencer

	altPressed     bool
	altPressedAt   time.Time
	longPressFired bool

	muzzle    core.Position3D
	direction core.Position3D

	// Tick context stamped onto recorded events.
	now  time.Time
	tick uint64
}

// NewController builds a controller for one weapon instance. A spec that
// fails validation yields an inert controller: the fault is logged once
// and every subsequent input is a no-op.
func NewController(objectID uint16, spec Spec, fx Effects, rec Recorder, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	guarded := GuardEffects(fx, log)

	c := &Controller{
		spec:      spec,
		fx:        guarded,
		log:       log,
		rec:       rec,
		objectID:  objectID,
		direction: core.Position3D{Y: 1},
	}

	if err := spec.Validate(); err != nil {
		log.Error("weapon spec invalid, weapon left inert",
			"weapon", spec.ClassName, "objectID", objectID, "error", err)
		c.inert = true
		c.mech = NewMechanism(Spec{TravelDistance: 1, FireRateRPM: 1}, NopEffects{}, log)
		return c
	}

	c.mech = NewMechanism(spec, guarded, log)
	c.mech.SetFireEffect(c.fireEffect)
	c.mech.SetPhaseFunc(c.recordCycle)
	return c
}

// Tick runs the per-tick reconciliation pass: slide position ingestion,
// mechanical reconciliation, the long-press timer, and finally the
// sequencer resumption so fire attempts observe same-tick state.
func (c *Controller) Tick(now time.Time, tick uint64, slidePos float64) {
	if c.inert {
		return
	}
	c.now = now
	c.tick = tick

	c.mech.SetSlidePosition(slidePos)
	c.mech.Reconcile()

	if c.altPressed && !c.longPressFired && now.Sub(c.altPressedAt) >= c.spec.LongPressThreshold() {
		// Long press consumes the gesture; the short action is suppressed
		// on release.
		c.longPressFired = true
		c.longAction()
	}

	if c.seq != nil && !c.seq.Step(now) {
		c.endSequence()
	}
}

// Grab registers a hand taking a handle. The first holder on the primary
// handle unlocks the mechanism (one-shot latch inside Reconcile).
func (c *Controller) Grab(h Handle, hand Hand) {
	if c.inert {
		return
	}
	switch h {
	case HandlePrimary:
		c.primary.set(hand, true)
	case HandleSlide:
		if !c.primary.any() {
			// The slide handle cannot be worked on a dropped weapon.
			return
		}
		c.slide.set(hand, true)
	}
	c.mech.SetHeld(c.primary.any(), c.slide.any())
}

// Release registers a hand letting go of a handle. When the primary handle
// loses its last holder the slide handle is force-dropped and the
// mechanism force-locked so nothing drifts while the weapon lies dropped.
func (c *Controller) Release(h Handle, hand Hand) {
	if c.inert {
		return
	}
	switch h {
	case HandlePrimary:
		c.primary.set(hand, false)
		if !c.primary.any() {
			c.slide = handleState{}
			c.mech.ForceLock()
		}
	case HandleSlide:
		c.slide.set(hand, false)
	}
	c.mech.SetHeld(c.primary.any(), c.slide.any())
}

// TriggerPress starts a fire sequence on the press edge. A press while a
// sequence is active is ignored: the mechanical state is not
// reentrant-safe and only one sequencer may run per weapon.
func (c *Controller) TriggerPress(now time.Time) {
	if c.inert {
		return
	}
	c.triggerHeld = true
	if c.seq != nil && c.seq.Running() {
		return
	}
	c.now = now

	s := NewSequencer(c.CurrentFireMode(), c.spec.BurstCount, c.spec.FireDelay(), SequencerHooks{
		TryFire:     c.tryFire,
		TriggerHeld: func() bool { return c.triggerHeld },
		SetFiring:   func(f bool) { c.firing = f },
		EmptySound:  func() { c.fx.PlaySound(SoundEmptyClick) },
		TrailEffect: c.fx.PlayTrailEffect,
	})
	c.seq = s
	s.Start(now)
	if !s.Running() {
		c.endSequence()
	}
}

// TriggerRelease clears the trigger-held predicate consumed by Auto mode.
func (c *Controller) TriggerRelease() {
	c.triggerHeld = false
}

// AltPress starts the long-press timer for the alternate action.
func (c *Controller) AltPress(now time.Time) {
	if c.inert {
		return
	}
	c.altPressed = true
	c.altPressedAt = now
	c.longPressFired = false
}

// AltRelease performs the short action if the long press did not fire.
func (c *Controller) AltRelease(now time.Time) {
	if c.inert || !c.altPressed {
		return
	}
	c.altPressed = false
	if c.longPressFired {
		return
	}
	c.now = now
	c.shortAction()
}

func (c *Controller) shortAction() {
	if c.spec.LongPressEjects {
		c.toggleAction()
	} else {
		c.EjectMagazine()
	}
}

func (c *Controller) longAction() {
	if c.spec.LongPressEjects {
		c.EjectMagazine()
	} else {
		c.toggleAction()
	}
}

// toggleAction tries the slide lock toggle and falls back to cycling the
// fire selector when no lock transition is valid.
func (c *Controller) toggleAction() {
	if !c.mech.ToggleLock() {
		c.CycleFireMode()
	}
}

// CycleFireMode advances the selector through the configured mode list.
func (c *Controller) CycleFireMode() {
	if c.inert || len(c.spec.FireModes) == 0 {
		return
	}
	c.modeIdx = (c.modeIdx + 1) % len(c.spec.FireModes)
	c.log.Debug("fire mode selected",
		"weapon", c.spec.ClassName, "objectID", c.objectID, "mode", c.CurrentFireMode().String())
}

// SelectFireMode sets the selector to a specific allowed mode.
func (c *Controller) SelectFireMode(mode FireMode) bool {
	for i, m := range c.spec.FireModes {
		if m == mode {
			c.modeIdx = i
			return true
		}
	}
	return false
}

// InsertMagazine offers a magazine to the weapon's magazine well. A class
// outside the accepted set detaches immediately: no partial acceptance.
func (c *Controller) InsertMagazine(class string, capacity, count int) bool {
	if c.inert {
		return false
	}
	accepted := c.spec.Accepts(class)
	if c.rec != nil {
		c.rec.RecordMagazine(core.MagazineLoad{
			WeaponObjectID: c.objectID,
			Tick:           c.tick,
			ClassName:      class,
			Capacity:       capacity,
			Count:          count,
			Accepted:       accepted,
		})
	}
	if !accepted {
		c.log.Debug("magazine rejected",
			"weapon", c.spec.ClassName, "objectID", c.objectID, "magazine", class)
		return false
	}
	c.mech.AttachMagazine(NewMagazine(class, capacity, count))
	return true
}

// EjectMagazine detaches and returns the inserted magazine, if any.
func (c *Controller) EjectMagazine() *Magazine {
	if c.inert {
		return nil
	}
	return c.mech.DetachMagazine()
}

// SetMuzzlePose updates the host-reported muzzle transform used for fire
// effects, hit resolution and shot traces.
func (c *Controller) SetMuzzlePose(muzzle, direction core.Position3D) {
	c.muzzle = muzzle
	c.direction = direction
}

// tryFire runs one mechanical fire attempt and records the shot.
func (c *Controller) tryFire() bool {
	if !c.mech.TryFireOnce() {
		return false
	}
	if c.rec != nil {
		remaining := 0
		magClass := ""
		if mag := c.mech.Magazine(); mag != nil {
			remaining = mag.Count()
			magClass = mag.ClassName()
		}
		c.rec.RecordShot(core.ShotEvent{
			WeaponObjectID: c.objectID,
			Time:           c.now,
			Tick:           c.tick,
			FireMode:       c.CurrentFireMode().String(),
			Magazine:       magClass,
			Muzzle:         c.muzzle,
			Impact:         c.impactPoint(),
			AmmoRemaining:  remaining,
			Rechambered:    c.mech.RoundChambered(),
		})
	}
	return true
}

// fireEffect is the delegated external fire effect invoked by the
// mechanism between clearing the chamber and reconsuming.
func (c *Controller) fireEffect() {
	c.fx.PlayFireEffect(c.muzzle, c.direction)
	c.fx.ApplyRecoil(core.Position3D{Y: -c.spec.RecoilForce}, true)
	c.fx.ResolveHit(c.muzzle, c.direction, c.spec.HitRange, c.spec.Damage)
}

func (c *Controller) impactPoint() core.Position3D {
	return core.Position3D{
		X: c.muzzle.X + c.direction.X*c.spec.HitRange,
		Y: c.muzzle.Y + c.direction.Y*c.spec.HitRange,
		Z: c.muzzle.Z + c.direction.Z*c.spec.HitRange,
	}
}

func (c *Controller) recordCycle(phase core.CyclePhase, chambered bool, counter int) {
	if c.rec == nil {
		return
	}
	c.rec.RecordCycle(core.CycleEvent{
		WeaponObjectID: c.objectID,
		Time:           c.now,
		Tick:           c.tick,
		Phase:          phase,
		RoundChambered: chambered,
		AmmoCounter:    counter,
	})
}

func (c *Controller) endSequence() {
	s := c.seq
	c.seq = nil
	if s == nil || c.rec == nil {
		return
	}
	c.rec.RecordSequence(core.SequenceEvent{
		WeaponObjectID: c.objectID,
		Time:           c.now,
		Tick:           c.tick,
		FireMode:       s.Mode().String(),
		ShotsFired:     s.ShotsFired(),
		EndedBy:        string(s.EndReason()),
	})
}

// AmmoCounter returns the display value (chambered round counted
// separately from the magazine count).
func (c *Controller) AmmoCounter() int { return c.mech.AmmoCounter() }

// CurrentFireMode returns the selector position.
func (c *Controller) CurrentFireMode() FireMode {
	if c.inert || len(c.spec.FireModes) == 0 {
		return ModeSafe
	}
	return c.spec.FireModes[c.modeIdx]
}

// IsShooting reports whether a fire sequence is mid-cycle.
func (c *Controller) IsShooting() bool { return c.firing }

// Sequencing reports whether a sequencer is currently active.
func (c *Controller) Sequencing() bool { return c.seq != nil && c.seq.Running() }

// Inert reports whether the weapon was disabled by a configuration fault.
func (c *Controller) Inert() bool { return c.inert }

// ObjectID returns the host-assigned weapon ID.
func (c *Controller) ObjectID() uint16 { return c.objectID }

// Spec returns the immutable weapon configuration.
func (c *Controller) Spec() Spec { return c.spec }

// Mechanism exposes the slide state machine for tests and queries.
func (c *Controller) Mechanism() *Mechanism { return c.mech }

// Held reports whether any hand holds the primary handle.
func (c *Controller) Held() bool { return c.primary.any() }
