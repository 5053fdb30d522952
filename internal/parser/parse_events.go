package parser

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/virtualrange/weaponsim/internal/geo"
	"github.com/virtualrange/weaponsim/internal/util"
	"github.com/virtualrange/weaponsim/pkg/core"
)

// ParseGeneralEvent parses general event data and returns a core GeneralEvent.
// Args: [tick, name, message, extraJSON?].
func (p *Parser) ParseGeneralEvent(data []string) (core.GeneralEvent, error) {
	var thisEvent core.GeneralEvent

	// fix received data
	for i, v := range data {
		data[i] = util.FixEscapeQuotes(util.TrimQuotes(v))
	}

	if len(data) < 3 {
		return thisEvent, fmt.Errorf("insufficient data fields: got %d, need 3", len(data))
	}

	tick, err := parseUintFromFloat(data[0])
	if err != nil {
		return thisEvent, fmt.Errorf("error converting tick to uint: %w", err)
	}

	thisEvent.Time = time.Now()
	thisEvent.Tick = tick
	thisEvent.Name = data[1]
	thisEvent.Message = data[2]

	// get extra event data
	if len(data) > 3 {
		err = json.Unmarshal([]byte(data[3]), &thisEvent.ExtraData)
		if err != nil {
			return thisEvent, fmt.Errorf("error unmarshalling extra data: %w", err)
		}
	}

	return thisEvent, nil
}

// rangeWire is the JSON shape of the range blob on session start.
type rangeWire struct {
	RangeName   string  `json:"rangeName"`
	DisplayName string  `json:"displayName"`
	Latitude    float32 `json:"latitude"`
	Longitude   float32 `json:"longitude"`
	RangeSize   float32 `json:"rangeSize"`
}

// sessionWire is the JSON shape of the session blob on session start.
type sessionWire struct {
	SessionName    string  `json:"sessionName"`
	ScenarioName   string  `json:"scenarioName"`
	ScenarioSource string  `json:"scenarioSource"`
	TickRate       int     `json:"tickRate"`
	CaptureDelay   float32 `json:"captureDelay"`
	Tag            string  `json:"tag"`
}

// ParseSessionStart parses session and range data from raw args.
// Args: [rangeJSON, sessionJSON]. Returns parsed session + range.
// NO DB operations, NO cache resets, NO callbacks.
func (p *Parser) ParseSessionStart(data []string) (core.Session, core.Range, error) {
	var session core.Session
	var rng core.Range

	// fix received data
	for i, v := range data {
		data[i] = util.FixEscapeQuotes(util.TrimQuotes(v))
	}

	if len(data) < 2 {
		return session, rng, fmt.Errorf("insufficient data fields: got %d, need 2", len(data))
	}

	var rw rangeWire
	if err := json.Unmarshal([]byte(data[0]), &rw); err != nil {
		return session, rng, fmt.Errorf("error unmarshalling range data: %w", err)
	}

	rng.Name = rw.RangeName
	rng.DisplayName = rw.DisplayName
	rng.Latitude = rw.Latitude
	rng.Longitude = rw.Longitude
	rng.Size = rw.RangeSize

	// preprocess the range location to a projected geopoint
	location, err := geo.Coords3857From4326(
		float64(rw.Longitude),
		float64(rw.Latitude),
	)
	if err != nil {
		return session, rng, fmt.Errorf("error converting range location to geopoint: %w", err)
	}
	if coords, ok := location.Coordinates(); ok {
		rng.Location = core.Position3D{X: coords.X, Y: coords.Y}
	}

	var sw sessionWire
	if err := json.Unmarshal([]byte(data[1]), &sw); err != nil {
		return session, rng, fmt.Errorf("error unmarshalling session data: %w", err)
	}

	session.Name = sw.SessionName
	session.ScenarioName = sw.ScenarioName
	session.ScenarioSource = sw.ScenarioSource
	session.TickRate = sw.TickRate
	session.CaptureDelay = sw.CaptureDelay
	session.Tag = sw.Tag
	session.StartTime = time.Now()

	// received at bridge init and saved to local memory
	session.EngineVersion = p.engineVersion
	session.ExtensionVersion = p.extensionVersion

	p.logger.Debug("Parsed session data",
		"sessionName", session.Name,
		"rangeName", rng.Name)

	return session, rng, nil
}
