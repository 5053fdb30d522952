package weapon

import (
	"log/slog"

	"github.com/virtualrange/weaponsim/pkg/core"
)

// Sound is a sound-effect category. The host maps categories to assets.
type Sound int

const (
	// SoundPullBack plays when the slide is racked rearward by hand.
	SoundPullBack Sound = iota
	// SoundRackForward plays when the slide returns to battery.
	SoundRackForward
	// SoundEmptyClick is the dry-fire / empty-chamber click.
	SoundEmptyClick
)

func (s Sound) String() string {
	switch s {
	case SoundPullBack:
		return "pull_back"
	case SoundRackForward:
		return "rack_forward"
	case SoundEmptyClick:
		return "empty_click"
	default:
		return "unknown"
	}
}

// Animation names the host-side animation states the mechanism can request.
type Animation string

const (
	AnimBlowback Animation = "cycle_blowback"
	AnimHoldOpen Animation = "slide_hold_open"
)

// Effects is the narrow contract the core calls out through. Every call is
// fire-and-forget: no return value is consumed and a failing collaborator
// must never corrupt mechanical state.
type Effects interface {
	PlaySound(s Sound)
	PlayAnimation(a Animation)
	PlayFireEffect(muzzle, direction core.Position3D)
	PlayTrailEffect()
	ApplyRecoil(force core.Position3D, haptics bool)
	ResolveHit(origin, direction core.Position3D, maxRange, damage float64)
	SetChamberVisible(visible bool)
	SetAmmoVisible(visible bool)
}

// NopEffects discards every effect call. Used for inert weapons and tests.
type NopEffects struct{}

func (NopEffects) PlaySound(Sound)                                      {}
func (NopEffects) PlayAnimation(Animation)                              {}
func (NopEffects) PlayFireEffect(core.Position3D, core.Position3D)      {}
func (NopEffects) PlayTrailEffect()                                     {}
func (NopEffects) ApplyRecoil(core.Position3D, bool)                    {}
func (NopEffects) ResolveHit(core.Position3D, core.Position3D, float64, float64) {}
func (NopEffects) SetChamberVisible(bool)                               {}
func (NopEffects) SetAmmoVisible(bool)                                  {}

// GuardEffects wraps an Effects implementation so that a panicking
// collaborator is logged and treated as a no-op for that call. The firearm
// must never become stuck because a cosmetic effect failed.
func GuardEffects(inner Effects, log *slog.Logger) Effects {
	if inner == nil {
		inner = NopEffects{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &guardedEffects{inner: inner, log: log}
}

type guardedEffects struct {
	inner Effects
	log   *slog.Logger
}

func (g *guardedEffects) call(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			g.log.Error("effect callback panicked", "effect", name, "panic", r)
		}
	}()
	fn()
}

func (g *guardedEffects) PlaySound(s Sound) {
	g.call("play_sound", func() { g.inner.PlaySound(s) })
}

func (g *guardedEffects) PlayAnimation(a Animation) {
	g.call("play_animation", func() { g.inner.PlayAnimation(a) })
}

func (g *guardedEffects) PlayFireEffect(muzzle, direction core.Position3D) {
	g.call("play_fire_effect", func() { g.inner.PlayFireEffect(muzzle, direction) })
}

func (g *guardedEffects) PlayTrailEffect() {
	g.call("play_trail_effect", func() { g.inner.PlayTrailEffect() })
}

func (g *guardedEffects) ApplyRecoil(force core.Position3D, haptics bool) {
	g.call("apply_recoil", func() { g.inner.ApplyRecoil(force, haptics) })
}

func (g *guardedEffects) ResolveHit(origin, direction core.Position3D, maxRange, damage float64) {
	g.call("resolve_hit", func() { g.inner.ResolveHit(origin, direction, maxRange, damage) })
}

func (g *guardedEffects) SetChamberVisible(visible bool) {
	g.call("set_chamber_visible", func() { g.inner.SetChamberVisible(visible) })
}

func (g *guardedEffects) SetAmmoVisible(visible bool) {
	g.call("set_ammo_visible", func() { g.inner.SetAmmoVisible(visible) })
}
