// Package convert provides functions to convert GORM models to core models
package convert

import (
	"encoding/json"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/virtualrange/weaponsim/internal/model"
	"github.com/virtualrange/weaponsim/pkg/core"
)

// pointToPosition3D converts a PostGIS geom.Point to a core.Position3D
func pointToPosition3D(p geom.Point) core.Position3D {
	coord, ok := p.Coordinates()
	if !ok {
		return core.Position3D{}
	}
	return core.Position3D{X: coord.XY.X, Y: coord.XY.Y, Z: coord.Z}
}

// jsonToStrings decodes a JSON string array column.
func jsonToStrings(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	var out []string
	_ = json.Unmarshal(data, &out)
	return out
}

// WeaponToCore converts a GORM Weapon to a core.Weapon.
func WeaponToCore(w model.Weapon) core.Weapon {
	return core.Weapon{
		SessionID:         w.SessionID,
		ObjectID:          w.ObjectID,
		JoinTick:          uint64(w.JoinTick),
		ClassName:         w.ClassName,
		DisplayName:       w.DisplayName,
		TravelDistance:    float64(w.TravelDistance),
		FireRateRPM:       float64(w.FireRateRPM),
		BurstCount:        int(w.BurstCount),
		FireModes:         jsonToStrings(w.FireModes),
		AcceptedMagazines: jsonToStrings(w.AcceptedMagazines),
	}
}

// ShotEventToCore converts a GORM ShotEvent to a core.ShotEvent.
func ShotEventToCore(e model.ShotEvent) core.ShotEvent {
	return core.ShotEvent{
		SessionID:      e.SessionID,
		WeaponObjectID: e.WeaponObjectID,
		Time:           e.Time,
		Tick:           uint64(e.CaptureTick),
		FireMode:       e.FireMode,
		Magazine:       e.Magazine,
		Muzzle:         pointToPosition3D(e.MuzzlePosition),
		Impact:         pointToPosition3D(e.ImpactPosition),
		AmmoRemaining:  int(e.AmmoRemaining),
		Rechambered:    e.Rechambered,
	}
}

// CycleEventToCore converts a GORM CycleEvent to a core.CycleEvent.
func CycleEventToCore(e model.CycleEvent) core.CycleEvent {
	return core.CycleEvent{
		SessionID:      e.SessionID,
		WeaponObjectID: e.WeaponObjectID,
		Time:           e.Time,
		Tick:           uint64(e.CaptureTick),
		Phase:          core.CyclePhase(e.Phase),
		RoundChambered: e.RoundChambered,
		AmmoCounter:    int(e.AmmoCounter),
	}
}

// SequenceEventToCore converts a GORM SequenceEvent to a core.SequenceEvent.
func SequenceEventToCore(e model.SequenceEvent) core.SequenceEvent {
	return core.SequenceEvent{
		SessionID:      e.SessionID,
		WeaponObjectID: e.WeaponObjectID,
		Time:           e.Time,
		Tick:           uint64(e.CaptureTick),
		FireMode:       e.FireMode,
		ShotsFired:     int(e.ShotsFired),
		EndedBy:        e.EndedBy,
	}
}

// MagazineLoadToCore converts a GORM MagazineLoad to a core.MagazineLoad.
func MagazineLoadToCore(e model.MagazineLoad) core.MagazineLoad {
	return core.MagazineLoad{
		SessionID:      e.SessionID,
		WeaponObjectID: e.WeaponObjectID,
		Tick:           uint64(e.CaptureTick),
		ClassName:      e.ClassName,
		Capacity:       int(e.Capacity),
		Count:          int(e.Count),
		Accepted:       e.Accepted,
	}
}

// GeneralEventToCore converts a GORM GeneralEvent to a core.GeneralEvent
func GeneralEventToCore(e model.GeneralEvent) core.GeneralEvent {
	var extraData map[string]any
	if len(e.ExtraData) > 0 {
		_ = json.Unmarshal(e.ExtraData, &extraData)
	}

	return core.GeneralEvent{
		ID:        e.ID,
		SessionID: e.SessionID,
		Time:      e.Time,
		Tick:      uint64(e.CaptureTick),
		Name:      e.Name,
		Message:   e.Message,
		ExtraData: extraData,
	}
}

// SessionToCore converts a GORM Session to a core.Session
func SessionToCore(s *model.Session) core.Session {
	return core.Session{
		ID:               s.ID,
		Name:             s.SessionName,
		ScenarioName:     s.ScenarioName,
		ScenarioSource:   s.ScenarioSource,
		StartTime:        s.StartTime,
		EndTime:          s.EndTime,
		RangeID:          s.RangeID,
		TickRate:         s.TickRate,
		CaptureDelay:     s.CaptureDelay,
		EngineVersion:    s.EngineVersion,
		ExtensionVersion: s.ExtensionVersion,
		Tag:              s.Tag,
	}
}

// RangeToCore converts a GORM Range to a core.Range
func RangeToCore(r *model.Range) core.Range {
	return core.Range{
		ID:          r.ID,
		Name:        r.RangeName,
		DisplayName: r.DisplayName,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		Location:    pointToPosition3D(r.Location),
		Size:        r.RangeSize,
	}
}
