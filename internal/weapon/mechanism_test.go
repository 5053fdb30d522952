package weapon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virtualrange/weaponsim/pkg/core"
)

func newTestMechanism() (*Mechanism, *fakeEffects) {
	fx := &fakeEffects{}
	m := NewMechanism(testSpec(), fx, testLogger())
	return m, fx
}

// chamberViaCycle grabs the weapon and runs one full manual slide cycle.
// With travel 0.12 the pull threshold sits at -0.06 and rack at -0.012.
func chamberViaCycle(m *Mechanism) {
	m.SetHeld(true, true)
	m.Reconcile()
	m.SetSlidePosition(-0.1)
	m.Reconcile()
	m.SetSlidePosition(0)
	m.Reconcile()
}

func TestMechanismInitialState(t *testing.T) {
	m, _ := newTestMechanism()

	assert.True(t, m.Racked())
	assert.True(t, m.Locked())
	assert.False(t, m.PulledBack())
	assert.False(t, m.RoundChambered())
	assert.Equal(t, 0, m.AmmoCounter())
}

func TestReconcileUnlocksOnceWhenHeld(t *testing.T) {
	m, _ := newTestMechanism()

	m.SetHeld(true, false)
	m.Reconcile()
	assert.False(t, m.Locked(), "first reconcile while held unlocks")

	// Dropping the weapon force-locks and re-arms the unlock latch.
	m.SetHeld(false, false)
	m.Reconcile()
	assert.True(t, m.Locked())

	m.SetHeld(true, false)
	m.Reconcile()
	assert.False(t, m.Locked(), "re-grab unlocks again")
}

func TestLockedSlideIsPinned(t *testing.T) {
	m, _ := newTestMechanism()

	m.SetSlidePosition(-0.08)
	m.Reconcile()

	assert.Equal(t, 0.0, m.SlidePosition(), "locked slide snaps back to its lock position")
	assert.False(t, m.PulledBack())
	assert.True(t, m.Racked())
}

func TestSetSlidePositionClampsToTravel(t *testing.T) {
	m, _ := newTestMechanism()

	m.SetSlidePosition(0.5)
	assert.Equal(t, 0.0, m.SlidePosition())

	m.SetSlidePosition(-1)
	assert.Equal(t, -0.12, m.SlidePosition())
}

func TestManualCycleChambersRound(t *testing.T) {
	m, fx := newTestMechanism()
	m.AttachMagazine(NewMagazine("mag_9mm_12", 12, 12))

	chamberViaCycle(m)

	assert.True(t, m.RoundChambered())
	assert.False(t, m.ChamberStaged(), "staged chamber flag clears once applied")
	assert.Equal(t, 11, m.Magazine().Count())
	assert.Equal(t, 12, m.AmmoCounter())
	assert.Equal(t, 1, fx.countSound(SoundPullBack))
	assert.Equal(t, 1, fx.countSound(SoundRackForward))
	assert.True(t, fx.chamberVisible)
}

func TestPullBackEjectsChamberedRound(t *testing.T) {
	m, fx := newTestMechanism()
	m.AttachMagazine(NewMagazine("mag_9mm_12", 12, 12))
	chamberViaCycle(m)

	var phases []core.CyclePhase
	m.SetPhaseFunc(func(p core.CyclePhase, _ bool, _ int) { phases = append(phases, p) })

	m.SetSlidePosition(-0.1)
	m.Reconcile()

	assert.False(t, m.RoundChambered(), "live round leaves the chamber")
	assert.Equal(t, 1, fx.countSound(SoundEmptyClick))
	assert.Contains(t, phases, core.PhaseEjectEmpty)
	assert.Equal(t, 11, m.AmmoCounter(), "counter drops to magazine count alone")
}

func TestReconcileIdempotentForUnchangedSlide(t *testing.T) {
	m, fx := newTestMechanism()
	m.AttachMagazine(NewMagazine("mag_9mm_12", 12, 12))
	chamberViaCycle(m)

	soundsBefore := len(fx.sounds)
	countBefore := m.Magazine().Count()

	m.Reconcile()
	m.Reconcile()

	assert.Equal(t, soundsBefore, len(fx.sounds), "no further transitions without slide movement")
	assert.Equal(t, countBefore, m.Magazine().Count())
	assert.True(t, m.RoundChambered())
}

func TestHeldOpenShowsNextRoundWhenMagazineLoaded(t *testing.T) {
	m, fx := newTestMechanism()
	m.AttachMagazine(NewMagazine("mag_9mm_12", 12, 12))

	m.SetHeld(true, true)
	m.Reconcile()
	m.SetSlidePosition(-0.1)
	m.Reconcile()

	assert.False(t, m.RoundChambered())
	assert.True(t, fx.chamberVisible, "next round visible in the port while held open")
}

func TestTryFireOnceFailsWithoutStateChange(t *testing.T) {
	t.Run("locked slide", func(t *testing.T) {
		m, _ := newTestMechanism()
		m.AttachMagazine(NewMagazine("mag_9mm_12", 12, 12))
		chamberViaCycle(m)
		m.ForceLock()

		before := *m.Magazine()
		require.False(t, m.TryFireOnce())
		assert.True(t, m.RoundChambered())
		assert.Equal(t, before.Count(), m.Magazine().Count())
	})

	t.Run("empty chamber", func(t *testing.T) {
		m, _ := newTestMechanism()
		m.AttachMagazine(NewMagazine("mag_9mm_12", 12, 12))
		m.SetHeld(true, false)
		m.Reconcile()

		require.False(t, m.TryFireOnce())
		assert.Equal(t, 12, m.Magazine().Count())
		assert.True(t, m.Racked())
	})
}

// Scenario: fresh 12-round magazine behind a chambered round. One shot in
// Single leaves 11 in the magazine, a round rechambered, counter at 12.
func TestTryFireRechambersFromMagazine(t *testing.T) {
	m, fx := newTestMechanism()
	m.AttachMagazine(NewMagazine("mag_9mm_12", 12, 1))
	chamberViaCycle(m)
	require.True(t, m.RoundChambered())

	// Swap the chambering magazine for a fresh one: topped-up carry state.
	m.AttachMagazine(NewMagazine("mag_9mm_12", 12, 12))

	fired := 0
	m.SetFireEffect(func() { fired++ })

	require.True(t, m.TryFireOnce())

	assert.Equal(t, 1, fired)
	assert.True(t, m.RoundChambered())
	assert.Equal(t, 11, m.Magazine().Count())
	assert.Equal(t, 12, m.AmmoCounter())
	assert.Equal(t, 1, fx.countAnim(AnimBlowback))
}

// Scenario: last round in the chamber, magazine empty. Firing clears the
// chamber, the reconsume fails, and the slide holds open with the chamber
// intent staged for the next magazine.
func TestTryFireHoldsOpenOnEmptyMagazine(t *testing.T) {
	m, fx := newTestMechanism()
	m.AttachMagazine(NewMagazine("mag_9mm_12", 12, 1))

	require.True(t, m.ToggleLock(), "releasing the lock chambers the only round")
	require.True(t, m.RoundChambered())
	require.Equal(t, 0, m.Magazine().Count())

	require.True(t, m.TryFireOnce())

	assert.False(t, m.RoundChambered())
	assert.True(t, m.PulledBack())
	assert.False(t, m.Racked())
	assert.True(t, m.ChamberStaged())
	assert.Equal(t, 0, m.AmmoCounter())
	assert.Equal(t, 1, fx.countAnim(AnimHoldOpen))
}

// Scenario: the lock toggle is refused outright when the inserted magazine
// is empty; no observable state changes.
func TestToggleLockRefusedOnEmptyMagazine(t *testing.T) {
	m, fx := newTestMechanism()
	m.AttachMagazine(NewMagazine("mag_9mm_12", 12, 0))

	wasLocked := m.Locked()
	wasRacked := m.Racked()
	soundsBefore := len(fx.sounds)

	assert.False(t, m.ToggleLock())

	assert.Equal(t, wasLocked, m.Locked())
	assert.Equal(t, wasRacked, m.Racked())
	assert.False(t, m.RoundChambered())
	assert.Equal(t, soundsBefore, len(fx.sounds))
}

func TestToggleLockReleaseChambersRound(t *testing.T) {
	m, fx := newTestMechanism()
	m.AttachMagazine(NewMagazine("mag_9mm_12", 12, 12))

	require.True(t, m.ToggleLock())

	assert.False(t, m.Locked())
	assert.True(t, m.RoundChambered())
	assert.True(t, m.Racked())
	assert.Equal(t, 0.0, m.SlidePosition())
	assert.Equal(t, 11, m.Magazine().Count())
	assert.Equal(t, 1, fx.countSound(SoundRackForward))
}

func TestToggleLockEngagesFromPulledBack(t *testing.T) {
	m, fx := newTestMechanism()
	m.AttachMagazine(NewMagazine("mag_9mm_12", 12, 12))

	m.SetHeld(true, true)
	m.Reconcile()
	m.SetSlidePosition(-0.1)
	m.Reconcile()
	require.True(t, m.PulledBack())

	require.True(t, m.ToggleLock())

	assert.True(t, m.Locked())
	assert.Equal(t, 1, fx.countSound(SoundEmptyClick))

	// The lock pins the slide where it was engaged.
	m.SetSlidePosition(0)
	m.Reconcile()
	assert.Equal(t, -0.1, m.SlidePosition())
}

func TestToggleLockNoValidTransition(t *testing.T) {
	m, _ := newTestMechanism()
	m.AttachMagazine(NewMagazine("mag_9mm_12", 12, 12))
	m.SetHeld(true, false)
	m.Reconcile()

	// Unlocked, racked forward: neither lock direction applies.
	assert.False(t, m.ToggleLock())
}

func TestPhaseSequenceForManualCycle(t *testing.T) {
	m, _ := newTestMechanism()
	m.AttachMagazine(NewMagazine("mag_9mm_12", 12, 12))

	var phases []core.CyclePhase
	m.SetPhaseFunc(func(p core.CyclePhase, _ bool, _ int) { phases = append(phases, p) })

	chamberViaCycle(m)

	assert.Equal(t, []core.CyclePhase{core.PhaseUnlocked, core.PhasePulledBack, core.PhaseRacked}, phases)
}

func TestDetachMagazineDropsCounter(t *testing.T) {
	m, _ := newTestMechanism()
	m.AttachMagazine(NewMagazine("mag_9mm_12", 12, 12))
	chamberViaCycle(m)
	require.Equal(t, 12, m.AmmoCounter())

	mag := m.DetachMagazine()

	require.NotNil(t, mag)
	assert.Equal(t, 11, mag.Count())
	assert.Equal(t, 1, m.AmmoCounter(), "chambered round remains after the magazine drops")
	assert.Nil(t, m.Magazine())
}
