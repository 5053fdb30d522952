// Package weapon implements the mechanical simulation core: magazine
// bookkeeping, the slide/chamber state machine, the fire-mode sequencer,
// and the controller that composes them per weapon instance.
package weapon

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// FireMode governs the cadence and trigger-dependency of the fire sequencer.
type FireMode int

const (
	ModeSafe FireMode = iota
	ModeSingle
	ModeBurst
	ModeAuto
)

// String returns the wire/display name of the mode.
func (m FireMode) String() string {
	switch m {
	case ModeSafe:
		return "safe"
	case ModeSingle:
		return "single"
	case ModeBurst:
		return "burst"
	case ModeAuto:
		return "auto"
	default:
		return fmt.Sprintf("firemode(%d)", int(m))
	}
}

// ParseFireMode converts a wire name into a FireMode.
func ParseFireMode(s string) (FireMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "safe":
		return ModeSafe, nil
	case "single", "semi":
		return ModeSingle, nil
	case "burst":
		return ModeBurst, nil
	case "auto", "full":
		return ModeAuto, nil
	}
	return ModeSafe, fmt.Errorf("unknown fire mode %q", s)
}

// Handle identifies a grabbable handle on the weapon body.
type Handle int

const (
	HandlePrimary Handle = iota
	HandleSlide
)

func (h Handle) String() string {
	switch h {
	case HandlePrimary:
		return "primary"
	case HandleSlide:
		return "slide"
	default:
		return fmt.Sprintf("handle(%d)", int(h))
	}
}

// ParseHandle converts a wire name into a Handle.
func ParseHandle(s string) (Handle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "primary":
		return HandlePrimary, nil
	case "slide":
		return HandleSlide, nil
	}
	return HandlePrimary, fmt.Errorf("unknown handle %q", s)
}

// Hand identifies which of the operator's hands is interacting.
type Hand int

const (
	HandLeft Hand = iota
	HandRight
)

func (h Hand) String() string {
	if h == HandLeft {
		return "left"
	}
	return "right"
}

// ParseHand converts a wire name into a Hand.
func ParseHand(s string) (Hand, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return HandLeft, nil
	case "right":
		return HandRight, nil
	}
	return HandLeft, fmt.Errorf("unknown hand %q", s)
}

// Spec is the immutable mechanical configuration of one weapon class,
// supplied once at registration and never mutated afterwards.
type Spec struct {
	ClassName   string
	DisplayName string

	// TravelDistance is the slide travel in meters. Thresholds for the
	// discrete transitions are derived from it.
	TravelDistance float64
	FireRateRPM    float64
	BurstCount     int
	FireModes      []FireMode

	// AcceptedMagazines lists magazine class names the weapon accepts.
	AcceptedMagazines []string

	// Handles present on the weapon body. A primary handle is required;
	// a missing one is a fatal configuration error at registration.
	Handles []Handle

	// Alternate-action behavior: how long a press must be held to count
	// as a long press, and whether the long press ejects the magazine
	// (short press then toggles the slide lock) or the reverse.
	LongPressSeconds float64
	LongPressEjects  bool

	// Terminal-effect parameters handed to the hit resolver.
	HitRange    float64
	Damage      float64
	RecoilForce float64
}

// Configuration errors reported by Validate. These are fatal at weapon
// registration: the weapon is left inert rather than partially simulated.
var (
	ErrNoPrimaryHandle = errors.New("weapon spec defines no primary handle")
	ErrNoTravel        = errors.New("weapon spec has non-positive slide travel")
	ErrNoFireRate      = errors.New("weapon spec has non-positive fire rate")
	ErrNoFireModes     = errors.New("weapon spec allows no fire modes")
	ErrBadBurstCount   = errors.New("weapon spec allows burst mode without a positive burst count")
)

// Validate checks the spec for configuration faults.
func (s Spec) Validate() error {
	hasPrimary := false
	for _, h := range s.Handles {
		if h == HandlePrimary {
			hasPrimary = true
		}
	}
	if !hasPrimary {
		return ErrNoPrimaryHandle
	}
	if s.TravelDistance <= 0 {
		return ErrNoTravel
	}
	if s.FireRateRPM <= 0 {
		return ErrNoFireRate
	}
	if len(s.FireModes) == 0 {
		return ErrNoFireModes
	}
	for _, m := range s.FireModes {
		if m == ModeBurst && s.BurstCount <= 0 {
			return ErrBadBurstCount
		}
	}
	return nil
}

// FireDelay is the suspension between shots derived from the rate of fire.
func (s Spec) FireDelay() time.Duration {
	return time.Duration(60 / s.FireRateRPM * float64(time.Second))
}

// LongPressThreshold returns the alternate-action long-press duration,
// defaulting to 500ms when the spec leaves it unset.
func (s Spec) LongPressThreshold() time.Duration {
	if s.LongPressSeconds <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(s.LongPressSeconds * float64(time.Second))
}

// Accepts reports whether a magazine class can be loaded into this weapon.
func (s Spec) Accepts(magazineClass string) bool {
	for _, m := range s.AcceptedMagazines {
		if m == magazineClass {
			return true
		}
	}
	return false
}

// AllowsMode reports whether the selector can reach the given mode.
func (s Spec) AllowsMode(mode FireMode) bool {
	for _, m := range s.FireModes {
		if m == mode {
			return true
		}
	}
	return false
}

// FireModeNames returns the allowed modes as wire names, selector order.
func (s Spec) FireModeNames() []string {
	names := make([]string, len(s.FireModes))
	for i, m := range s.FireModes {
		names[i] = m.String()
	}
	return names
}
