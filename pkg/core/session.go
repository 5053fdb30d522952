// pkg/core/session.go
package core

import "time"

// Range represents the firing range / environment a session takes place on.
type Range struct {
	ID          uint
	Name        string
	DisplayName string
	// Geolocation of the range, used by review frontends for map display.
	Latitude  float32
	Longitude float32
	Location  Position3D
	// Extent of the usable range area in meters.
	Size float32
}

// Session represents one recorded simulation session.
type Session struct {
	ID               uint
	Name             string
	ScenarioName     string
	ScenarioSource   string
	StartTime        time.Time
	EndTime          time.Time
	RangeID          uint
	TickRate         int
	CaptureDelay     float32
	EngineVersion    string
	ExtensionVersion string
	Tag              string
}

// UploadMetadata describes an exported recording for frontend upload.
type UploadMetadata struct {
	SessionName  string
	RangeName    string
	StartTime    time.Time
	DurationSecs float64
	Tag          string
}
