package weapon

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/virtualrange/weaponsim/pkg/core"
)

// fakeEffects records every effect call for assertions.
type fakeEffects struct {
	sounds         []Sound
	anims          []Animation
	fireCount      int
	trailCount     int
	recoilCount    int
	hitCount       int
	lastMuzzle     core.Position3D
	lastDirection  core.Position3D
	chamberVisible bool
	ammoVisible    bool
}

func (f *fakeEffects) PlaySound(s Sound)     { f.sounds = append(f.sounds, s) }
func (f *fakeEffects) PlayAnimation(a Animation) {
	f.anims = append(f.anims, a)
}
func (f *fakeEffects) PlayFireEffect(muzzle, direction core.Position3D) {
	f.fireCount++
	f.lastMuzzle = muzzle
	f.lastDirection = direction
}
func (f *fakeEffects) PlayTrailEffect()                  { f.trailCount++ }
func (f *fakeEffects) ApplyRecoil(core.Position3D, bool) { f.recoilCount++ }
func (f *fakeEffects) ResolveHit(core.Position3D, core.Position3D, float64, float64) {
	f.hitCount++
}
func (f *fakeEffects) SetChamberVisible(v bool) { f.chamberVisible = v }
func (f *fakeEffects) SetAmmoVisible(v bool)    { f.ammoVisible = v }

func (f *fakeEffects) countSound(s Sound) int {
	n := 0
	for _, got := range f.sounds {
		if got == s {
			n++
		}
	}
	return n
}

func (f *fakeEffects) countAnim(a Animation) int {
	n := 0
	for _, got := range f.anims {
		if got == a {
			n++
		}
	}
	return n
}

// panicEffects panics on every sound to exercise the guard.
type panicEffects struct {
	fakeEffects
}

func (p *panicEffects) PlaySound(Sound) { panic("asset missing") }

func TestGuardEffectsRecoversPanics(t *testing.T) {
	inner := &panicEffects{}
	fx := GuardEffects(inner, testLogger())

	assert.NotPanics(t, func() { fx.PlaySound(SoundPullBack) })

	// Other calls still reach the inner implementation.
	fx.PlayTrailEffect()
	assert.Equal(t, 1, inner.trailCount)
}

func TestGuardEffectsNilInner(t *testing.T) {
	fx := GuardEffects(nil, nil)
	assert.NotPanics(t, func() { fx.PlayAnimation(AnimBlowback) })
}
