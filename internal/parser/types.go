package parser

import (
	"github.com/virtualrange/weaponsim/internal/weapon"
	"github.com/virtualrange/weaponsim/pkg/core"
)

// ParsedRef identifies a weapon-scoped command with no further payload
// (weapon removal, magazine eject).
type ParsedRef struct {
	Tick     uint64
	ObjectID uint16
}

// ParsedWeapon holds a weapon registration: the host object ID and the
// mechanical spec decoded from the registration JSON blob.
type ParsedWeapon struct {
	Tick     uint64
	ObjectID uint16
	Spec     weapon.Spec
}

// ParsedGrab holds one grab or release edge on a weapon handle.
type ParsedGrab struct {
	Tick     uint64
	ObjectID uint16
	Handle   weapon.Handle
	Hand     weapon.Hand
	Grabbed  bool
}

// ParsedButton holds a trigger or alternate-action press/release edge.
type ParsedButton struct {
	Tick     uint64
	ObjectID uint16
	Pressed  bool
}

// ParsedSlideMove holds a continuous slide-handle position update.
// Position is in meters, negative toward the rear of travel.
type ParsedSlideMove struct {
	Tick     uint64
	ObjectID uint16
	Position float64
}

// ParsedMuzzlePose holds the muzzle point and normalized direction used
// for shot traces and hit resolution.
type ParsedMuzzlePose struct {
	Tick      uint64
	ObjectID  uint16
	Muzzle    core.Position3D
	Direction core.Position3D
}

// ParsedModeSelect holds a fire-selector change request.
type ParsedModeSelect struct {
	Tick     uint64
	ObjectID uint16
	Mode     weapon.FireMode
}

// ParsedMagazineLoad holds a magazine insertion. Hosts send the capacity
// only on the first load of each magazine class; HasCapacity is false on
// later loads and the worker layer fills Capacity from its cache.
type ParsedMagazineLoad struct {
	Tick        uint64
	ObjectID    uint16
	ClassName   string
	Count       int
	Capacity    int
	HasCapacity bool
}
