// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"encoding/json"
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"

	"github.com/virtualrange/weaponsim/internal/model"
	"github.com/virtualrange/weaponsim/pkg/core"
)

// position3DToPoint converts a core.Position3D to a PostGIS geom.Point
func position3DToPoint(p core.Position3D) geom.Point {
	coords := geom.Coordinates{XY: geom.XY{X: p.X, Y: p.Y}, Z: p.Z}
	return geom.NewPoint(coords)
}

// stringsToJSON converts a []string to datatypes.JSON for DB storage.
func stringsToJSON(values []string) datatypes.JSON {
	if len(values) == 0 {
		return datatypes.JSON("[]")
	}
	data, _ := json.Marshal(values)
	return datatypes.JSON(data)
}

// CoreToWeapon converts a core.Weapon to a GORM model.Weapon.
// joinTime is the server time of registration; core carries only the tick.
func CoreToWeapon(w core.Weapon, joinTime time.Time) model.Weapon {
	return model.Weapon{
		SessionID:         w.SessionID,
		ObjectID:          w.ObjectID,
		JoinTime:          joinTime,
		JoinTick:          uint(w.JoinTick),
		ClassName:         w.ClassName,
		DisplayName:       w.DisplayName,
		TravelDistance:    float32(w.TravelDistance),
		FireRateRPM:       float32(w.FireRateRPM),
		BurstCount:        uint8(w.BurstCount),
		FireModes:         stringsToJSON(w.FireModes),
		AcceptedMagazines: stringsToJSON(w.AcceptedMagazines),
	}
}

// CoreToShotEvent converts a core.ShotEvent to a GORM model.ShotEvent.
func CoreToShotEvent(e core.ShotEvent) model.ShotEvent {
	return model.ShotEvent{
		SessionID:       e.SessionID,
		WeaponObjectID:  e.WeaponObjectID,
		Time:            e.Time,
		CaptureTick:     uint(e.Tick),
		FireMode:        e.FireMode,
		Magazine:        e.Magazine,
		AmmoRemaining:   uint16(e.AmmoRemaining),
		Rechambered:     e.Rechambered,
		MuzzlePosition:  position3DToPoint(e.Muzzle),
		MuzzleElevation: float32(e.Muzzle.Z),
		ImpactPosition:  position3DToPoint(e.Impact),
		ImpactElevation: float32(e.Impact.Z),
	}
}

// CoreToCycleEvent converts a core.CycleEvent to a GORM model.CycleEvent.
func CoreToCycleEvent(e core.CycleEvent) model.CycleEvent {
	return model.CycleEvent{
		SessionID:      e.SessionID,
		WeaponObjectID: e.WeaponObjectID,
		Time:           e.Time,
		CaptureTick:    uint(e.Tick),
		Phase:          string(e.Phase),
		RoundChambered: e.RoundChambered,
		AmmoCounter:    uint16(e.AmmoCounter),
	}
}

// CoreToSequenceEvent converts a core.SequenceEvent to a GORM model.SequenceEvent.
func CoreToSequenceEvent(e core.SequenceEvent) model.SequenceEvent {
	return model.SequenceEvent{
		SessionID:      e.SessionID,
		WeaponObjectID: e.WeaponObjectID,
		Time:           e.Time,
		CaptureTick:    uint(e.Tick),
		FireMode:       e.FireMode,
		ShotsFired:     uint16(e.ShotsFired),
		EndedBy:        e.EndedBy,
	}
}

// CoreToMagazineLoad converts a core.MagazineLoad to a GORM model.MagazineLoad.
// at is the server time of the insertion attempt; core carries only the tick.
func CoreToMagazineLoad(m core.MagazineLoad, at time.Time) model.MagazineLoad {
	return model.MagazineLoad{
		SessionID:      m.SessionID,
		WeaponObjectID: m.WeaponObjectID,
		Time:           at,
		CaptureTick:    uint(m.Tick),
		ClassName:      m.ClassName,
		Capacity:       uint16(m.Capacity),
		Count:          uint16(m.Count),
		Accepted:       m.Accepted,
	}
}

// CoreToGeneralEvent converts a core.GeneralEvent to a GORM model.GeneralEvent.
func CoreToGeneralEvent(e core.GeneralEvent) model.GeneralEvent {
	var extraData datatypes.JSON
	if len(e.ExtraData) > 0 {
		extraData, _ = json.Marshal(e.ExtraData)
	} else {
		extraData = datatypes.JSON("{}")
	}

	return model.GeneralEvent{
		ID:          e.ID,
		SessionID:   e.SessionID,
		Time:        e.Time,
		CaptureTick: uint(e.Tick),
		Name:        e.Name,
		Message:     e.Message,
		ExtraData:   extraData,
	}
}

// CoreToSimPerformance converts a core.PerfSample to a GORM model.SimPerformance.
// Write queue lengths and last write duration come from the worker, not the
// engine, and are filled in by the monitor before the row is queued.
func CoreToSimPerformance(p core.PerfSample) model.SimPerformance {
	return model.SimPerformance{
		Time:            p.Time,
		SessionID:       p.SessionID,
		Tick:            uint(p.Tick),
		TickDurationMs:  p.TickDurationMs,
		TickBudgetMs:    p.TickBudgetMs,
		CommandQueueLen: uint16(p.CommandQueueLen),
		ActiveWeapons:   uint16(p.ActiveWeapons),
		ActiveSequences: uint16(p.ActiveSequences),
	}
}

// CoreToSession converts a core.Session to a GORM model.Session.
func CoreToSession(s core.Session) model.Session {
	return model.Session{
		SessionName:      s.Name,
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

// CoreToRange converts a core.Range to a GORM model.Range.
func CoreToRange(r core.Range) model.Range {
	return model.Range{
		RangeName:   r.Name,
		DisplayName: r.DisplayName,
		RangeSize:   r.Size,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		Location:    position3DToPoint(r.Location),
	}
}
