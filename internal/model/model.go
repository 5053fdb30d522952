package model

import (
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&SimInfo{},
	&Range{},
	&Session{},
	&Weapon{},
	&ShotEvent{},
	&CycleEvent{},
	&SequenceEvent{},
	&MagazineLoad{},
	&GeneralEvent{},
	&SimPerformance{},
}

var DatabaseModelsSQLite = []interface{}{
	&SimInfo{},
	&Range{},
	&Session{},
	&Weapon{},
	&ShotEvent{},
	&CycleEvent{},
	&SequenceEvent{},
	&MagazineLoad{},
	&GeneralEvent{},
	&SimPerformance{},
}

////////////////////////
// SYSTEM MODELS
////////////////////////

// SimInfo contains group information about the instance
type SimInfo struct {
	gorm.Model
	GroupName        string `json:"groupName" gorm:"size:127"` // primary key
	GroupDescription string `json:"groupDescription" gorm:"size:255"`
	GroupWebsite     string `json:"groupURL" gorm:"size:255"`
	GroupLogo        string `json:"groupLogoURL" gorm:"size:255"`
}

func (*SimInfo) TableName() string {
	return "sim_infos"
}

// SimPerformance is the model for engine performance metrics
type SimPerformance struct {
	Time                time.Time         `json:"time" gorm:"type:timestamptz;index:idx_time"`
	SessionID           uint              `json:"sessionId" gorm:"index:idx_simperformance_session_id"`
	Session             Session           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:SessionID;"`
	Tick                uint              `json:"tick"`
	TickDurationMs      float32           `json:"tickDurationMs"`
	TickBudgetMs        float32           `json:"tickBudgetMs"`
	CommandQueueLen     uint16            `json:"commandQueueLen"`
	ActiveWeapons       uint16            `json:"activeWeapons"`
	ActiveSequences     uint16            `json:"activeSequences"`
	WriteQueueLengths   WriteQueueLengths `json:"writeQueueLengths" gorm:"embedded;embeddedPrefix:writequeue_"`
	LastWriteDurationMs float32           `json:"lastWriteDurationMs"`
}

func (*SimPerformance) TableName() string {
	return "sim_performances"
}

// WriteQueueLengths is the model for the write queue lengths
type WriteQueueLengths struct {
	Weapons        uint16 `json:"weapons"`
	ShotEvents     uint16 `json:"shotEvents"`
	CycleEvents    uint16 `json:"cycleEvents"`
	SequenceEvents uint16 `json:"sequenceEvents"`
	MagazineLoads  uint16 `json:"magazineLoads"`
	GeneralEvents  uint16 `json:"generalEvents"`
}

////////////////////////
// RECORDING MODELS
////////////////////////

// Range is the main model for a firing range
type Range struct {
	gorm.Model
	Author       string     `json:"author" gorm:"size:64"`
	DisplayName  string     `json:"displayName" gorm:"size:127"`
	RangeName    string     `json:"rangeName" gorm:"size:127"`
	RangeSize    float32    `json:"rangeSize"`
	Latitude     float32    `json:"latitude" gorm:"-"`
	Longitude    float32    `json:"longitude" gorm:"-"`
	Location     geom.Point `json:"location"`
	Sessions     []Session
}

func (*Range) TableName() string {
	return "ranges"
}

func (r *Range) GetOrInsert(db *gorm.DB) (
	created bool,
	err error,
) {
	var existingRange Range
	err = db.Where("range_name = ?", r.RangeName).First(&existingRange).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			// insert
			err = db.Create(r).Error
			return true, err
		}
		return false, err
	}
	// overwrite with db record if found
	*r = existingRange
	return false, nil
}

// Session is the main model for a recorded session
type Session struct {
	gorm.Model
	SessionName      string    `json:"sessionName" gorm:"size:200"`
	ScenarioName     string    `json:"scenarioName" gorm:"size:200"`
	ScenarioSource   string    `json:"scenarioSource" gorm:"size:200"`
	StartTime        time.Time `json:"sessionStart" gorm:"type:timestamptz;index:idx_session_start"` // time.Time
	EndTime          time.Time `json:"sessionEnd" gorm:"type:timestamptz"`
	RangeID          uint
	Range            Range   `gorm:"foreignkey:RangeID"`
	TickRate         int     `json:"tickRate" gorm:"default:60"`
	CaptureDelay     float32 `json:"-" gorm:"default:1.0"`
	EngineVersion    string  `json:"engineVersion" gorm:"size:64;default:1.0.0"`
	ExtensionVersion string  `json:"extensionVersion" gorm:"size:64;default:1.0.0"`
	Tag              string  `json:"tag" gorm:"size:127"`

	Weapons        []Weapon
	ShotEvents     []ShotEvent
	CycleEvents    []CycleEvent
	SequenceEvents []SequenceEvent
	MagazineLoads  []MagazineLoad
	GeneralEvents  []GeneralEvent
}

func (*Session) TableName() string {
	return "sessions"
}

// Weapon is a registered firearm
// Uses composite primary key (SessionID, ObjectID) - ObjectID is the host-assigned sequential ID
//
// Host Command: :NEW:WEAPON:
// Args: [tick, objectId, specJSON]
type Weapon struct {
	SessionID         uint           `json:"sessionId" gorm:"primaryKey;autoIncrement:false"`
	ObjectID          uint16         `json:"objectId" gorm:"primaryKey;autoIncrement:false"` // host-assigned sequential ID
	Session           Session        `gorm:"foreignkey:SessionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
	DeletedAt         gorm.DeletedAt `json:"deletedAt" gorm:"index"`
	JoinTime          time.Time      `json:"joinTime" gorm:"type:timestamptz;NOT NULL;index:idx_weapon_join_time"` // Server time when weapon was registered
	JoinTick          uint           `json:"joinTick"`                                                             // Tick number when weapon was first seen
	ClassName         string         `json:"className" gorm:"size:64"`                                             // Config class name
	DisplayName       string         `json:"displayName" gorm:"size:64"`                                           // Display name from config
	TravelDistance    float32        `json:"travelDistance"`                                                       // Full slide travel in meters
	FireRateRPM       float32        `json:"fireRateRPM"`                                                          // Cyclic rate in rounds per minute
	BurstCount        uint8          `json:"burstCount" gorm:"default:3"`                                          // Rounds per burst in burst mode
	FireModes         datatypes.JSON `json:"fireModes" gorm:"type:jsonb;default:'[]'"`                             // Selectable fire modes as JSON array
	AcceptedMagazines datatypes.JSON `json:"acceptedMagazines" gorm:"type:jsonb;default:'[]'"`                     // Compatible magazine class names as JSON array
}

func (*Weapon) TableName() string {
	return "weapons"
}

func (w *Weapon) Get(db *gorm.DB) (err error) {
	err = db.Where(&w).Order(
		"join_time DESC",
	).First(&w).Error
	return err
}

// ShotEvent represents a round leaving a weapon
// References Weapon by (SessionID, WeaponObjectID) composite FK
//
// Recorded by the engine on every successful fire attempt.
type ShotEvent struct {
	ID             uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	Time           time.Time `json:"time" gorm:"type:timestamptz;"` // Server time when fired
	SessionID      uint      `json:"sessionId" gorm:"index:idx_shotevent_session_id"`
	Session        Session   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:SessionID;"`
	WeaponObjectID uint16    `json:"weaponObjectId" gorm:"index:idx_shotevent_weapon_object_id"` // Object ID of the firing weapon
	Weapon         Weapon    `gorm:"foreignkey:SessionID,WeaponObjectID;references:SessionID,ObjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CaptureTick    uint      `json:"captureTick" gorm:"index:idx_shotevent_capture_tick;"` // Tick number when fired
	FireMode       string    `json:"fireMode" gorm:"size:16"`                              // Fire mode: single, burst, auto
	Magazine       string    `json:"magazine" gorm:"size:64"`                              // Magazine class name
	AmmoRemaining  uint16    `json:"ammoRemaining"`                                        // Loaded-round counter after the shot
	Rechambered    bool      `json:"rechambered"`                                          // Whether the action cycled a fresh round

	MuzzlePosition     geom.Point `json:"muzzlePos"`  // Muzzle position as 2D point
	MuzzleElevation    float32    `json:"muzzleElev"` // Muzzle Z coordinate
	ImpactPosition     geom.Point `json:"impactPos"`  // Resolved impact position as 2D point
	ImpactElevation    float32    `json:"impactElev"` // Impact Z coordinate
}

func (*ShotEvent) TableName() string {
	return "shot_events"
}

// CycleEvent represents a discrete slide or chamber transition
// References Weapon by (SessionID, WeaponObjectID) composite FK
//
// Recorded by the engine when the slide group crosses a discrete transition.
type CycleEvent struct {
	ID             uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	Time           time.Time `json:"time" gorm:"type:timestamptz;"` // Server time of the transition
	SessionID      uint      `json:"sessionId" gorm:"index:idx_cycleevent_session_id"`
	Session        Session   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:SessionID;"`
	WeaponObjectID uint16    `json:"weaponObjectId" gorm:"index:idx_cycleevent_weapon_object_id"` // Object ID of the weapon
	Weapon         Weapon    `gorm:"foreignkey:SessionID,WeaponObjectID;references:SessionID,ObjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CaptureTick    uint      `json:"captureTick" gorm:"index:idx_cycleevent_capture_tick;"` // Tick number of the transition
	Phase          string    `json:"phase" gorm:"size:32"`                                  // pulled_back, racked, locked, unlocked, hold_open, eject_empty
	RoundChambered bool      `json:"roundChambered"`                                        // Whether a round sits in the chamber after the transition
	AmmoCounter    uint16    `json:"ammoCounter"`                                           // Loaded-round counter after the transition
}

func (*CycleEvent) TableName() string {
	return "cycle_events"
}

// SequenceEvent summarizes one completed trigger pull
// References Weapon by (SessionID, WeaponObjectID) composite FK
//
// Recorded by the engine when a fire sequence ends.
type SequenceEvent struct {
	ID             uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	Time           time.Time `json:"time" gorm:"type:timestamptz;"` // Server time when the sequence ended
	SessionID      uint      `json:"sessionId" gorm:"index:idx_sequenceevent_session_id"`
	Session        Session   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:SessionID;"`
	WeaponObjectID uint16    `json:"weaponObjectId" gorm:"index:idx_sequenceevent_weapon_object_id"` // Object ID of the weapon
	Weapon         Weapon    `gorm:"foreignkey:SessionID,WeaponObjectID;references:SessionID,ObjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CaptureTick    uint      `json:"captureTick" gorm:"index:idx_sequenceevent_capture_tick;"` // Tick number when the sequence ended
	FireMode       string    `json:"fireMode" gorm:"size:16"`                                  // Fire mode the sequence ran in
	ShotsFired     uint16    `json:"shotsFired"`                                               // Rounds discharged during the sequence
	EndedBy        string    `json:"endedBy" gorm:"size:16"`                                   // complete, empty, released, safe
}

func (*SequenceEvent) TableName() string {
	return "sequence_events"
}

// MagazineLoad records a magazine insertion attempt
// References Weapon by (SessionID, WeaponObjectID) composite FK
//
// Host Command: :LOAD:MAG:
// Args: [tick, objectId, className, count, capacity?]
type MagazineLoad struct {
	ID             uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	Time           time.Time `json:"time" gorm:"type:timestamptz;"` // Server time of the insertion attempt
	SessionID      uint      `json:"sessionId" gorm:"index:idx_magazineload_session_id"`
	Session        Session   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:SessionID;"`
	WeaponObjectID uint16    `json:"weaponObjectId" gorm:"index:idx_magazineload_weapon_object_id"` // Object ID of the weapon
	Weapon         Weapon    `gorm:"foreignkey:SessionID,WeaponObjectID;references:SessionID,ObjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CaptureTick    uint      `json:"captureTick" gorm:"index:idx_magazineload_capture_tick;"` // Tick number of the insertion attempt
	ClassName      string    `json:"className" gorm:"size:64"`                                // Magazine class name
	Capacity       uint16    `json:"capacity"`                                                // Maximum rounds the magazine holds
	Count          uint16    `json:"count"`                                                   // Rounds in the magazine at insertion
	Accepted       bool      `json:"accepted"`                                                // Whether the weapon accepted the magazine
}

func (*MagazineLoad) TableName() string {
	return "magazine_loads"
}

// GeneralEvent is a generic event for session lifecycle, rejected inputs, custom events
//
// Host Command: :EVENT:
// Args: [tick, name, message, extraDataJSON]
// Common names: "session_start", "session_end", "weapon_removed"
type GeneralEvent struct {
	ID          uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	Time        time.Time      `json:"time" gorm:"type:timestamptz;"` // Server time when event occurred
	SessionID   uint           `json:"sessionId" gorm:"index:idx_generalevent_session_id"`
	Session     Session        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:SessionID;"`
	CaptureTick uint           `json:"captureTick" gorm:"index:idx_generalevent_capture_tick;"` // Tick number when event occurred
	Name        string         `json:"name" gorm:"size:64"`                                     // Event type
	Message     string         `json:"message"`                                                 // Event message
	ExtraData   datatypes.JSON `json:"extraData" gorm:"type:jsonb;default:'{}'"`                // Additional JSON data
}

func (g *GeneralEvent) TableName() string {
	return "general_events"
}
