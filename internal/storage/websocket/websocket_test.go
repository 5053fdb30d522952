package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virtualrange/weaponsim/internal/storage"
	"github.com/virtualrange/weaponsim/pkg/core"
	"github.com/virtualrange/weaponsim/pkg/streaming"
)

// Compile-time interface check.
var _ storage.Backend = (*Backend)(nil)

// testServer creates an httptest server that upgrades to WebSocket,
// records received messages, and sends acks for start_session/end_session.
func testServer(t *testing.T) (*httptest.Server, *messageLog) {
	t.Helper()
	ml := &messageLog{}

	upgrader := ws.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer c.Close()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				return
			}

			var env streaming.Envelope
			if err := json.Unmarshal(msg, &env); err != nil {
				continue
			}
			ml.add(env)

			// Ack start_session and end_session.
			if env.Type == streaming.TypeStartSession || env.Type == streaming.TypeEndSession {
				ack := streaming.AckMessage{Type: "ack", For: env.Type}
				data, _ := json.Marshal(ack)
				if err := c.WriteMessage(ws.TextMessage, data); err != nil {
					return
				}
			}
		}
	}))

	return srv, ml
}

type messageLog struct {
	mu       sync.Mutex
	messages []streaming.Envelope
}

func (m *messageLog) add(env streaming.Envelope) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, env)
}

func (m *messageLog) all() []streaming.Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]streaming.Envelope, len(m.messages))
	copy(cp, m.messages)
	return cp
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestStartAndEndSession(t *testing.T) {
	srv, ml := testServer(t)
	defer srv.Close()

	b := New(Config{URL: wsURL(srv), Secret: "test"})
	require.NoError(t, b.Init())
	defer b.Close()

	session := &core.Session{Name: "TestSession", Tag: "Qual"}
	rng := &core.Range{Name: "north_range"}
	require.NoError(t, b.StartSession(session, rng))

	require.NoError(t, b.EndSession())

	msgs := ml.all()
	require.GreaterOrEqual(t, len(msgs), 2)
	assert.Equal(t, streaming.TypeStartSession, msgs[0].Type)
	assert.Equal(t, streaming.TypeEndSession, msgs[len(msgs)-1].Type)
}

func TestFireAndForgetMessages(t *testing.T) {
	srv, ml := testServer(t)
	defer srv.Close()

	b := New(Config{URL: wsURL(srv), Secret: "s"})
	require.NoError(t, b.Init())
	defer b.Close()

	session := &core.Session{Name: "S"}
	rng := &core.Range{Name: "R"}
	require.NoError(t, b.StartSession(session, rng))

	require.NoError(t, b.AddWeapon(&core.Weapon{ObjectID: 1, ClassName: "pistol_9mm"}))
	require.NoError(t, b.RecordShotEvent(&core.ShotEvent{WeaponObjectID: 1, Tick: 100}))
	require.NoError(t, b.RecordCycleEvent(&core.CycleEvent{WeaponObjectID: 1, Phase: core.PhaseRacked}))
	require.NoError(t, b.RecordSequenceEvent(&core.SequenceEvent{WeaponObjectID: 1, EndedBy: "complete"}))
	require.NoError(t, b.RecordMagazineLoad(&core.MagazineLoad{WeaponObjectID: 1, ClassName: "mag_9mm_17rnd"}))
	require.NoError(t, b.RecordGeneralEvent(&core.GeneralEvent{Name: "test"}))
	require.NoError(t, b.RecordPerfSample(&core.PerfSample{Tick: 60}))

	require.NoError(t, b.EndSession())

	// Give a moment for all messages to arrive at server.
	time.Sleep(50 * time.Millisecond)

	msgs := ml.all()

	types := make(map[string]int)
	for _, m := range msgs {
		types[m.Type]++
	}

	assert.Equal(t, 1, types[streaming.TypeStartSession])
	assert.Equal(t, 1, types[streaming.TypeEndSession])
	assert.Equal(t, 1, types[streaming.TypeAddWeapon])
	assert.Equal(t, 1, types[streaming.TypeShotEvent])
	assert.Equal(t, 1, types[streaming.TypeCycleEvent])
	assert.Equal(t, 1, types[streaming.TypeSequenceEvent])
	assert.Equal(t, 1, types[streaming.TypeMagazineLoad])
	assert.Equal(t, 1, types[streaming.TypeGeneralEvent])
	assert.Equal(t, 1, types[streaming.TypePerfSample])
}

func TestEnvelopeSerialization(t *testing.T) {
	payload := streaming.StartSessionPayload{
		Session: &core.Session{Name: "S1"},
		Range:   &core.Range{Name: "north_range"},
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	env := streaming.Envelope{Type: streaming.TypeStartSession, Payload: raw}
	data, err := json.Marshal(env)
	require.NoError(t, err)

	var decoded streaming.Envelope
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, streaming.TypeStartSession, decoded.Type)

	var sp streaming.StartSessionPayload
	require.NoError(t, json.Unmarshal(decoded.Payload, &sp))
	assert.Equal(t, "S1", sp.Session.Name)
	assert.Equal(t, "north_range", sp.Range.Name)
}

func TestEndSessionClearsCachedStart(t *testing.T) {
	srv, _ := testServer(t)
	defer srv.Close()

	b := New(Config{URL: wsURL(srv), Secret: "s"})
	require.NoError(t, b.Init())
	defer b.Close()

	require.NoError(t, b.StartSession(&core.Session{Name: "S"}, &core.Range{Name: "R"}))

	b.conn.mu.Lock()
	cached := b.conn.cachedStartMsg
	b.conn.mu.Unlock()
	require.NotNil(t, cached)

	require.NoError(t, b.EndSession())

	b.conn.mu.Lock()
	cached = b.conn.cachedStartMsg
	b.conn.mu.Unlock()
	assert.Nil(t, cached)
}
