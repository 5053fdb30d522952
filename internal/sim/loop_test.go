package sim

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virtualrange/weaponsim/internal/weapon"
	"github.com/virtualrange/weaponsim/pkg/core"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pistolSpec() weapon.Spec {
	return weapon.Spec{
		ClassName:         "pistol_9mm",
		TravelDistance:    0.12,
		FireRateRPM:       600,
		BurstCount:        3,
		FireModes:         []weapon.FireMode{weapon.ModeSingle, weapon.ModeBurst, weapon.ModeAuto},
		AcceptedMagazines: []string{"mag_9mm_12"},
		Handles:           []weapon.Handle{weapon.HandlePrimary, weapon.HandleSlide},
		HitRange:          100,
	}
}

type countingRecorder struct {
	shots     []core.ShotEvent
	sequences []core.SequenceEvent
}

func (r *countingRecorder) RecordShot(e core.ShotEvent)         { r.shots = append(r.shots, e) }
func (r *countingRecorder) RecordCycle(core.CycleEvent)         {}
func (r *countingRecorder) RecordSequence(e core.SequenceEvent) { r.sequences = append(r.sequences, e) }
func (r *countingRecorder) RecordMagazine(core.MagazineLoad)    {}

type weaponLog struct {
	registered []core.Weapon
	removed    []uint16
}

func (w *weaponLog) WeaponRegistered(wp core.Weapon)    { w.registered = append(w.registered, wp) }
func (w *weaponLog) WeaponRemoved(id uint16, _ uint64)  { w.removed = append(w.removed, id) }

func newTestLoop(t *testing.T, rec weapon.Recorder, obs WeaponObserver) *Loop {
	t.Helper()
	engine := NewEngine(nil, rec, obs, testLogger())
	l, err := NewLoop(engine, Config{TickRate: 60, CommandCapacity: 64}, Hooks{}, testLogger())
	require.NoError(t, err)
	return l
}

var loopEpoch = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func TestEngineRegisterAndRemove(t *testing.T) {
	obs := &weaponLog{}
	l := newTestLoop(t, nil, obs)

	l.Enqueue(Command{Type: CmdRegisterWeapon, ObjectID: 1, Spec: pistolSpec()})
	l.Advance(loopEpoch)

	assert.Equal(t, 1, l.Engine().WeaponCount())
	require.Len(t, obs.registered, 1)
	assert.Equal(t, "pistol_9mm", obs.registered[0].ClassName)
	assert.Equal(t, []string{"single", "burst", "auto"}, obs.registered[0].FireModes)

	l.Enqueue(Command{Type: CmdRemoveWeapon, ObjectID: 1})
	l.Advance(loopEpoch.Add(time.Second / 60))

	assert.Equal(t, 0, l.Engine().WeaponCount())
	assert.Equal(t, []uint16{1}, obs.removed)
}

func TestEngineDuplicateRegistrationIgnored(t *testing.T) {
	obs := &weaponLog{}
	l := newTestLoop(t, nil, obs)

	l.Enqueue(Command{Type: CmdRegisterWeapon, ObjectID: 1, Spec: pistolSpec()})
	l.Enqueue(Command{Type: CmdRegisterWeapon, ObjectID: 1, Spec: pistolSpec()})
	l.Advance(loopEpoch)

	assert.Equal(t, 1, l.Engine().WeaponCount())
	assert.Len(t, obs.registered, 1)
}

func TestEngineUnknownWeaponCommandIgnored(t *testing.T) {
	l := newTestLoop(t, nil, nil)

	l.Enqueue(Command{Type: CmdTriggerPress, ObjectID: 99})
	assert.NotPanics(t, func() { l.Advance(loopEpoch) })
}

func TestLoopManualCycleThenFire(t *testing.T) {
	rec := &countingRecorder{}
	l := newTestLoop(t, rec, nil)
	step := time.Second / 60

	l.Enqueue(Command{Type: CmdRegisterWeapon, ObjectID: 1, Spec: pistolSpec()})
	l.Enqueue(Command{Type: CmdGrab, ObjectID: 1, Handle: weapon.HandlePrimary, Hand: weapon.HandRight})
	l.Enqueue(Command{Type: CmdGrab, ObjectID: 1, Handle: weapon.HandleSlide, Hand: weapon.HandLeft})
	l.Enqueue(Command{Type: CmdInsertMagazine, ObjectID: 1, MagazineClass: "mag_9mm_12", Capacity: 12, Count: 12})
	l.Advance(loopEpoch)

	// Work the slide over two ticks: rearward past the pull threshold,
	// then back to battery.
	l.Enqueue(Command{Type: CmdSlideMove, ObjectID: 1, SlidePos: -0.1})
	l.Advance(loopEpoch.Add(1 * step))
	l.Enqueue(Command{Type: CmdSlideMove, ObjectID: 1, SlidePos: 0})
	l.Advance(loopEpoch.Add(2 * step))

	ctrl := l.Engine().Weapon(1)
	require.NotNil(t, ctrl)
	require.True(t, ctrl.Mechanism().RoundChambered())
	assert.Equal(t, 12, ctrl.AmmoCounter())

	l.Enqueue(Command{Type: CmdTriggerPress, ObjectID: 1})
	l.Advance(loopEpoch.Add(3 * step))

	require.Len(t, rec.shots, 1)
	assert.Equal(t, uint16(1), rec.shots[0].WeaponObjectID)
	assert.Equal(t, 11, ctrl.AmmoCounter())
}

func TestLoopCommandsApplyBeforeStep(t *testing.T) {
	rec := &countingRecorder{}
	l := newTestLoop(t, rec, nil)

	l.Enqueue(Command{Type: CmdRegisterWeapon, ObjectID: 1, Spec: pistolSpec()})
	l.Enqueue(Command{Type: CmdGrab, ObjectID: 1, Handle: weapon.HandlePrimary, Hand: weapon.HandRight})
	l.Enqueue(Command{Type: CmdInsertMagazine, ObjectID: 1, MagazineClass: "mag_9mm_12", Capacity: 12, Count: 12})
	// All staged in one tick: registration, grab and insert are visible to
	// the same tick's step.
	result := l.Advance(loopEpoch)

	assert.Equal(t, 3, result.Commands)
	assert.Equal(t, 1, result.ActiveWeapons)
	assert.Equal(t, 12, l.Engine().Weapon(1).AmmoCounter())
}

func TestLoopQueueCapacity(t *testing.T) {
	engine := NewEngine(nil, nil, nil, testLogger())
	l, err := NewLoop(engine, Config{TickRate: 60, CommandCapacity: 2}, Hooks{}, testLogger())
	require.NoError(t, err)

	assert.True(t, l.Enqueue(Command{Type: CmdTriggerPress, ObjectID: 1}))
	assert.True(t, l.Enqueue(Command{Type: CmdTriggerPress, ObjectID: 1}))
	assert.False(t, l.Enqueue(Command{Type: CmdTriggerPress, ObjectID: 1}), "third command dropped")
	assert.Equal(t, 2, l.Pending())
}

func TestLoopTickResultCountsSequences(t *testing.T) {
	rec := &countingRecorder{}
	l := newTestLoop(t, rec, nil)
	step := time.Second / 60

	l.Enqueue(Command{Type: CmdRegisterWeapon, ObjectID: 1, Spec: pistolSpec()})
	l.Enqueue(Command{Type: CmdGrab, ObjectID: 1, Handle: weapon.HandlePrimary, Hand: weapon.HandRight})
	l.Enqueue(Command{Type: CmdGrab, ObjectID: 1, Handle: weapon.HandleSlide, Hand: weapon.HandLeft})
	l.Enqueue(Command{Type: CmdInsertMagazine, ObjectID: 1, MagazineClass: "mag_9mm_12", Capacity: 12, Count: 12})
	l.Enqueue(Command{Type: CmdSelectFireMode, ObjectID: 1, Mode: weapon.ModeAuto})
	l.Advance(loopEpoch)

	// Chamber by working the slide, then hold the trigger: the sequence
	// stays active across ticks.
	l.Enqueue(Command{Type: CmdSlideMove, ObjectID: 1, SlidePos: -0.1})
	l.Advance(loopEpoch.Add(1 * step))
	l.Enqueue(Command{Type: CmdSlideMove, ObjectID: 1, SlidePos: 0})
	l.Advance(loopEpoch.Add(2 * step))
	require.True(t, l.Engine().Weapon(1).Mechanism().RoundChambered())

	l.Enqueue(Command{Type: CmdTriggerPress, ObjectID: 1})
	result := l.Advance(loopEpoch.Add(3 * step))

	assert.Equal(t, 1, result.ActiveSequences)
	assert.True(t, l.Engine().Weapon(1).IsShooting())

	l.Enqueue(Command{Type: CmdTriggerRelease, ObjectID: 1})
	l.Advance(loopEpoch.Add(3*step + 100*time.Millisecond))

	assert.Equal(t, 0, l.Engine().ActiveSequences())
	require.NotEmpty(t, rec.sequences)
	assert.Equal(t, "released", rec.sequences[len(rec.sequences)-1].EndedBy)
}

func TestEngineReset(t *testing.T) {
	l := newTestLoop(t, nil, nil)
	l.Enqueue(Command{Type: CmdRegisterWeapon, ObjectID: 1, Spec: pistolSpec()})
	l.Advance(loopEpoch)
	require.Equal(t, 1, l.Engine().WeaponCount())

	l.Engine().Reset()
	assert.Equal(t, 0, l.Engine().WeaponCount())
}
