package streaming

import (
	"encoding/json"

	"github.com/virtualrange/weaponsim/pkg/core"
)

// Message type constants matching the streaming protocol.
const (
	TypeStartSession  = "start_session"
	TypeEndSession    = "end_session"
	TypeAddWeapon     = "add_weapon"
	TypeShotEvent     = "shot_event"
	TypeCycleEvent    = "cycle_event"
	TypeSequenceEvent = "sequence_event"
	TypeMagazineLoad  = "magazine_load"
	TypeGeneralEvent  = "general_event"
	TypePerfSample    = "perf_sample"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
}

// StartSessionPayload carries session and range data.
type StartSessionPayload struct {
	Session *core.Session `json:"session"`
	Range   *core.Range   `json:"range"`
}
