package sim

import (
	"time"

	"github.com/virtualrange/weaponsim/internal/weapon"
	"github.com/virtualrange/weaponsim/pkg/core"
)

// CommandType discriminates staged input commands.
type CommandType int

const (
	CmdRegisterWeapon CommandType = iota
	CmdRemoveWeapon
	CmdGrab
	CmdRelease
	CmdTriggerPress
	CmdTriggerRelease
	CmdAltPress
	CmdAltRelease
	CmdSlideMove
	CmdMuzzlePose
	CmdInsertMagazine
	CmdEjectMagazine
	CmdSelectFireMode
)

func (t CommandType) String() string {
	switch t {
	case CmdRegisterWeapon:
		return "register_weapon"
	case CmdRemoveWeapon:
		return "remove_weapon"
	case CmdGrab:
		return "grab"
	case CmdRelease:
		return "release"
	case CmdTriggerPress:
		return "trigger_press"
	case CmdTriggerRelease:
		return "trigger_release"
	case CmdAltPress:
		return "alt_press"
	case CmdAltRelease:
		return "alt_release"
	case CmdSlideMove:
		return "slide_move"
	case CmdMuzzlePose:
		return "muzzle_pose"
	case CmdInsertMagazine:
		return "insert_magazine"
	case CmdEjectMagazine:
		return "eject_magazine"
	case CmdSelectFireMode:
		return "select_fire_mode"
	default:
		return "unknown"
	}
}

// Command is one staged input event. Commands are queued by the host
// bridge (or the scenario runner) and applied at the start of the next
// tick, so all mutation happens on the loop goroutine.
type Command struct {
	Type     CommandType
	ObjectID uint16
	Time     time.Time

	// Per-type payloads; only the fields matching Type are read.
	Spec          weapon.Spec
	Handle        weapon.Handle
	Hand          weapon.Hand
	SlidePos      float64
	Muzzle        core.Position3D
	Direction     core.Position3D
	MagazineClass string
	Capacity      int
	Count         int
	Mode          weapon.FireMode
}
