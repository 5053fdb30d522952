// pkg/core/weapon.go
package core

// Position3D is a range-local position in meters.
type Position3D struct {
	X float64
	Y float64
	Z float64
}

// Weapon represents one registered firearm instance.
// ObjectID is the host-assigned sequential ID used to correlate events.
type Weapon struct {
	SessionID uint
	ObjectID  uint16
	JoinTick  uint64
	ClassName string
	// DisplayName is the human-readable weapon name shown in review UIs.
	DisplayName string
	// Mechanical configuration, fixed at registration time.
	TravelDistance    float64
	FireRateRPM       float64
	BurstCount        int
	FireModes         []string
	AcceptedMagazines []string
}

// MagazineLoad records a magazine being inserted into a weapon.
type MagazineLoad struct {
	SessionID      uint
	WeaponObjectID uint16
	Tick           uint64
	ClassName      string
	Capacity       int
	Count          int
	Accepted       bool
}
