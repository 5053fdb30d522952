package weapon

import (
	"log/slog"

	"github.com/virtualrange/weaponsim/pkg/core"
)

// Threshold factors relative to the configured slide travel. Travel is
// measured along one axis with 0 in battery and negative values rearward.
const (
	rackThresholdFactor = -0.1
	pullThresholdFactor = -0.5
)

// PhaseFunc observes discrete mechanical transitions for recording.
type PhaseFunc func(phase core.CyclePhase, roundChambered bool, ammoCounter int)

// Mechanism tracks the slide group of one weapon: the continuous slide
// position along its travel axis and the discrete state derived from it,
// plus chamber occupancy. Transitions that must be synchronized with the
// slide physically reaching its forward limit (chambering, the forward
// rack sound) are staged as pending flags and applied only when the rack
// threshold is crossed.
type Mechanism struct {
	spec Spec
	fx   Effects
	log  *slog.Logger

	// slidePos is the continuous slide position in [-travel, 0].
	slidePos float64

	racked         bool
	pulledBack     bool
	locked         bool
	lockedPos      float64
	roundChambered bool

	heldPrimary bool
	heldSlide   bool

	// Pending-transition flags, applied on the next forward stroke.
	chamberOnForward bool
	soundOnForward   bool

	// initialUnlock latches after the first reconciliation that sees the
	// weapon held, so grabbing a dropped weapon unlocks exactly once and
	// never retriggers the control-joint setup.
	initialUnlock bool

	mag         *Magazine
	ammoCounter int

	// fireEffect is invoked by TryFireOnce between clearing the chamber
	// and reconsuming; the controller points it at the external fire
	// effect (projectile, recoil, hit resolution, recording).
	fireEffect func()

	phase PhaseFunc
}

// NewMechanism creates a mechanism in battery: slide forward, chamber
// empty, slide locked until an operator grabs the weapon.
func NewMechanism(spec Spec, fx Effects, log *slog.Logger) *Mechanism {
	if fx == nil {
		fx = NopEffects{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Mechanism{
		spec:   spec,
		fx:     fx,
		log:    log,
		racked: true,
		locked: true,
	}
}

// SetFireEffect registers the delegated external fire effect.
func (m *Mechanism) SetFireEffect(fn func()) { m.fireEffect = fn }

// SetPhaseFunc registers the transition observer.
func (m *Mechanism) SetPhaseFunc(fn PhaseFunc) { m.phase = fn }

func (m *Mechanism) emitPhase(p core.CyclePhase) {
	if m.phase != nil {
		m.phase(p, m.roundChambered, m.ammoCounter)
	}
}

func (m *Mechanism) rackThreshold() float64 { return rackThresholdFactor * m.spec.TravelDistance }
func (m *Mechanism) pullThreshold() float64 { return pullThresholdFactor * m.spec.TravelDistance }

// SetHeld updates which handles are currently held by the operator.
func (m *Mechanism) SetHeld(primary, slide bool) {
	m.heldPrimary = primary
	m.heldSlide = slide
}

func (m *Mechanism) held() bool { return m.heldPrimary || m.heldSlide }

// SetSlidePosition accepts the host-reported slide position, clamped to
// the travel range. While locked the position is pinned by Reconcile.
func (m *Mechanism) SetSlidePosition(p float64) {
	if p > 0 {
		p = 0
	}
	if p < -m.spec.TravelDistance {
		p = -m.spec.TravelDistance
	}
	m.slidePos = p
}

// ForceLock pins the slide at its current position. Used when the weapon
// loses its last holder so the slide cannot drift while dropped.
func (m *Mechanism) ForceLock() {
	if m.locked {
		return
	}
	m.locked = true
	m.lockedPos = m.slidePos
	m.initialUnlock = false
	m.emitPhase(core.PhaseLocked)
}

func (m *Mechanism) unlock() {
	if !m.locked {
		return
	}
	m.locked = false
	m.emitPhase(core.PhaseUnlocked)
}

// Reconcile is the per-tick reconciliation pass translating the continuous
// slide position into discrete transitions. It is idempotent for an
// unchanged slide position: every transition is edge-guarded.
func (m *Mechanism) Reconcile() {
	// Mechanical fix-ups run first so the initial-unlock latch below sees
	// a consistent position and fires exactly once per grab.
	m.applyFixups()

	if !m.held() {
		m.ForceLock()
	} else if !m.initialUnlock {
		m.unlock()
		m.initialUnlock = true
	}

	// Rearward crossing: entering the pulled-back band.
	if m.slidePos <= m.pullThreshold() && !m.pulledBack {
		m.pulledBack = true
		m.racked = false
		if m.held() {
			m.fx.PlaySound(SoundPullBack)
		}
		m.fx.SetChamberVisible(false)
		if m.roundChambered {
			// A live round leaves the chamber: audible, and the chamber
			// intent restages so the next forward stroke reloads.
			m.roundChambered = false
			m.fx.PlaySound(SoundEmptyClick)
			m.emitPhase(core.PhaseEjectEmpty)
		}
		m.chamberOnForward = true
		m.soundOnForward = true
		m.recomputeAmmoCounter()
		m.emitPhase(core.PhasePulledBack)
	}

	// Cosmetic: while held open past the pull threshold, the next round is
	// visible in the ejection port only if the magazine still has rounds.
	if m.pulledBack && m.slidePos <= m.pullThreshold() {
		if m.mag != nil && m.mag.Count() > 0 {
			m.fx.SetChamberVisible(true)
		}
	}

	// Forward crossing: slide returning to battery.
	if m.slidePos >= m.rackThreshold() && !m.racked {
		m.racked = true
		m.pulledBack = false
		if m.chamberOnForward {
			if m.mag != nil && m.mag.ConsumeOne() {
				m.roundChambered = true
				m.fx.SetChamberVisible(true)
				m.chamberOnForward = false
			}
		}
		if m.soundOnForward {
			m.fx.PlaySound(SoundRackForward)
			m.soundOnForward = false
		}
		m.recomputeAmmoCounter()
		m.emitPhase(core.PhaseRacked)
	}
}

func (m *Mechanism) applyFixups() {
	if m.locked {
		m.slidePos = m.lockedPos
	}
}

// TryFireOnce attempts to fire the chambered round. It fails without any
// state change when the slide is locked or the chamber is empty. On
// success the chamber is cleared, the delegated fire effect runs, and the
// mechanism reconsumes from the magazine: rechamber on success, hold open
// on an empty magazine.
func (m *Mechanism) TryFireOnce() bool {
	if m.locked || !m.roundChambered {
		return false
	}

	m.roundChambered = false
	m.fx.SetChamberVisible(false)
	if m.fireEffect != nil {
		m.fireEffect()
	}

	if m.mag != nil && m.mag.ConsumeOne() {
		m.roundChambered = true
		m.fx.SetChamberVisible(true)
		m.fx.PlayAnimation(AnimBlowback)
	} else {
		// Last shot: slide locks open on empty, chamber intent staged so
		// the next forward stroke after a fresh magazine reloads.
		m.racked = false
		m.pulledBack = true
		m.chamberOnForward = true
		m.fx.PlayAnimation(AnimHoldOpen)
		m.recomputeAmmoCounter()
		m.emitPhase(core.PhaseHoldOpen)
		return true
	}

	m.recomputeAmmoCounter()
	return true
}

// ToggleLock toggles the slide lock (alternate action while not
// long-pressing). Refused when an inserted magazine is empty. Releasing a
// locked slide chambers a round from the magazine if one is available.
func (m *Mechanism) ToggleLock() bool {
	if m.mag != nil && m.mag.Count() <= 0 {
		return false
	}

	switch {
	case m.locked:
		m.unlock()
		if m.mag != nil && m.mag.ConsumeOne() {
			m.roundChambered = true
			m.fx.SetChamberVisible(true)
		}
		m.chamberOnForward = false
		m.soundOnForward = false
		m.racked = true
		m.pulledBack = false
		m.slidePos = 0
		m.fx.PlaySound(SoundRackForward)
		m.recomputeAmmoCounter()
		m.emitPhase(core.PhaseRacked)
		return true

	case m.pulledBack && m.held():
		// Lock can only be entered from pulled-back while held.
		m.locked = true
		m.lockedPos = m.slidePos
		m.fx.PlaySound(SoundEmptyClick)
		m.emitPhase(core.PhaseLocked)
		return true

	default:
		return false
	}
}

// AttachMagazine inserts a magazine and wires its ammo visibility to the
// host. Returns the previously inserted magazine, if any.
func (m *Mechanism) AttachMagazine(mag *Magazine) *Magazine {
	prev := m.mag
	m.mag = mag
	if mag != nil {
		mag.SetVisibilitySink(m.fx.SetAmmoVisible)
	}
	m.recomputeAmmoCounter()
	return prev
}

// DetachMagazine removes and returns the inserted magazine.
func (m *Mechanism) DetachMagazine() *Magazine {
	mag := m.mag
	m.mag = nil
	m.recomputeAmmoCounter()
	return mag
}

func (m *Mechanism) recomputeAmmoCounter() {
	c := 0
	if m.mag != nil {
		c = m.mag.Count()
	}
	if m.roundChambered {
		c++
	}
	m.ammoCounter = c
}

// Racked reports whether the slide is at its forward limit.
func (m *Mechanism) Racked() bool { return m.racked }

// PulledBack reports whether the slide is in the pulled-back band.
func (m *Mechanism) PulledBack() bool { return m.pulledBack }

// Locked reports whether the slide is locked.
func (m *Mechanism) Locked() bool { return m.locked }

// RoundChambered reports chamber occupancy.
func (m *Mechanism) RoundChambered() bool { return m.roundChambered }

// ChamberStaged reports whether a chambering is pending the next forward stroke.
func (m *Mechanism) ChamberStaged() bool { return m.chamberOnForward }

// AmmoCounter is the display value: magazine count plus the chambered round.
func (m *Mechanism) AmmoCounter() int { return m.ammoCounter }

// Magazine returns the inserted magazine, or nil.
func (m *Mechanism) Magazine() *Magazine { return m.mag }

// SlidePosition returns the current continuous slide position.
func (m *Mechanism) SlidePosition() float64 { return m.slidePos }
