package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGeneralEvent(t *testing.T) {
	p := newTestParser()

	got, err := p.ParseGeneralEvent([]string{"400", "magazine_rejected", "mag_45acp not accepted by pistol_9mm"})
	require.NoError(t, err)
	assert.Equal(t, uint64(400), got.Tick)
	assert.Equal(t, "magazine_rejected", got.Name)
	assert.Equal(t, "mag_45acp not accepted by pistol_9mm", got.Message)
	assert.Nil(t, got.ExtraData)
	assert.False(t, got.Time.IsZero())
}

func TestParseGeneralEvent_ExtraData(t *testing.T) {
	p := newTestParser()

	got, err := p.ParseGeneralEvent([]string{"401", "config_fault", "weapon left inert", `{"objectId": 9, "reason": "no primary handle"}`})
	require.NoError(t, err)
	require.NotNil(t, got.ExtraData)
	assert.Equal(t, float64(9), got.ExtraData["objectId"])
	assert.Equal(t, "no primary handle", got.ExtraData["reason"])
}

func TestParseGeneralEvent_Errors(t *testing.T) {
	p := newTestParser()

	_, err := p.ParseGeneralEvent([]string{"401", "config_fault"})
	assert.Error(t, err)

	_, err = p.ParseGeneralEvent([]string{"nan", "config_fault", "msg"})
	assert.Error(t, err)

	_, err = p.ParseGeneralEvent([]string{"401", "config_fault", "msg", `{broken`})
	assert.Error(t, err)
}

func TestParseSessionStart(t *testing.T) {
	p := newTestParser()

	rangeJSON := `{
		"rangeName": "north_range",
		"displayName": "North Range",
		"latitude": 52.52,
		"longitude": 13.40,
		"rangeSize": 300
	}`
	sessionJSON := `{
		"sessionName": "Qualification Day One",
		"scenarioName": "pistol_qual",
		"scenarioSource": "qual_pack",
		"tickRate": 60,
		"captureDelay": 1.0,
		"tag": "Qual"
	}`

	session, rng, err := p.ParseSessionStart([]string{rangeJSON, sessionJSON})
	require.NoError(t, err)

	assert.Equal(t, "Qualification Day One", session.Name)
	assert.Equal(t, "pistol_qual", session.ScenarioName)
	assert.Equal(t, 60, session.TickRate)
	assert.Equal(t, "Qual", session.Tag)
	assert.Equal(t, "1.0.0", session.EngineVersion)
	assert.Equal(t, "2.0.0", session.ExtensionVersion)
	assert.False(t, session.StartTime.IsZero())

	assert.Equal(t, "north_range", rng.Name)
	assert.Equal(t, "North Range", rng.DisplayName)
	assert.InDelta(t, 52.52, float64(rng.Latitude), 1e-4)
	// Projected location must be nonzero for a non-null-island range.
	assert.NotZero(t, rng.Location.X)
	assert.NotZero(t, rng.Location.Y)
}

func TestParseSessionStart_Errors(t *testing.T) {
	p := newTestParser()

	_, _, err := p.ParseSessionStart([]string{`{"rangeName":"r"}`})
	assert.Error(t, err)

	_, _, err = p.ParseSessionStart([]string{`{broken`, `{}`})
	assert.Error(t, err)

	_, _, err = p.ParseSessionStart([]string{`{}`, `{broken`})
	assert.Error(t, err)
}
