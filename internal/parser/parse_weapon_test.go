package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virtualrange/weaponsim/internal/weapon"
)

const pistolSpecJSON = `{
	"className": "pistol_9mm",
	"displayName": "9mm Service Pistol",
	"travelDistance": 0.1,
	"fireRateRpm": 600,
	"burstCount": 0,
	"fireModes": ["safe", "single"],
	"acceptedMagazines": ["mag_9mm_17rnd", "mag_9mm_19rnd"],
	"handles": ["primary", "slide"],
	"longPressSeconds": 0.5,
	"longPressEjects": true,
	"hitRange": 50,
	"damage": 35,
	"recoilForce": 2.5
}`

func TestParseWeapon(t *testing.T) {
	p := newTestParser()

	data := []string{"120", "3", pistolSpecJSON}
	parsed, err := p.ParseWeapon(data)
	require.NoError(t, err)

	assert.Equal(t, uint64(120), parsed.Tick)
	assert.Equal(t, uint16(3), parsed.ObjectID)

	spec := parsed.Spec
	assert.Equal(t, "pistol_9mm", spec.ClassName)
	assert.Equal(t, "9mm Service Pistol", spec.DisplayName)
	assert.InDelta(t, 0.1, spec.TravelDistance, 1e-9)
	assert.InDelta(t, 600.0, spec.FireRateRPM, 1e-9)
	assert.Equal(t, []weapon.FireMode{weapon.ModeSafe, weapon.ModeSingle}, spec.FireModes)
	assert.Equal(t, []string{"mag_9mm_17rnd", "mag_9mm_19rnd"}, spec.AcceptedMagazines)
	assert.Equal(t, []weapon.Handle{weapon.HandlePrimary, weapon.HandleSlide}, spec.Handles)
	assert.True(t, spec.LongPressEjects)
	require.NoError(t, spec.Validate())
}

func TestParseWeapon_FloatTickAndID(t *testing.T) {
	p := newTestParser()

	parsed, err := p.ParseWeapon([]string{"120.0000", "3.0000", pistolSpecJSON})
	require.NoError(t, err)
	assert.Equal(t, uint64(120), parsed.Tick)
	assert.Equal(t, uint16(3), parsed.ObjectID)
}

func TestParseWeapon_Errors(t *testing.T) {
	p := newTestParser()

	tests := []struct {
		name string
		data []string
	}{
		{"too few fields", []string{"120", "3"}},
		{"bad tick", []string{"abc", "3", pistolSpecJSON}},
		{"bad objectID", []string{"120", "abc", pistolSpecJSON}},
		{"malformed spec json", []string{"120", "3", `{"className":`}},
		{"unknown fire mode", []string{"120", "3", `{"className":"x","fireModes":["warp"]}`}},
		{"unknown handle", []string{"120", "3", `{"className":"x","handles":["grip"]}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.ParseWeapon(tt.data)
			assert.Error(t, err)
		})
	}
}

func TestParseWeapon_MissingPrimaryHandleFailsValidation(t *testing.T) {
	p := newTestParser()

	spec := `{
		"className": "broken_rifle",
		"travelDistance": 0.12,
		"fireRateRpm": 750,
		"fireModes": ["safe", "auto"],
		"handles": ["slide"]
	}`
	parsed, err := p.ParseWeapon([]string{"0", "7", spec})
	require.NoError(t, err)
	assert.ErrorIs(t, parsed.Spec.Validate(), weapon.ErrNoPrimaryHandle)
}

func TestParseWeaponRemove(t *testing.T) {
	p := newTestParser()

	parsed, err := p.ParseWeaponRemove([]string{"480", "3"})
	require.NoError(t, err)
	assert.Equal(t, uint64(480), parsed.Tick)
	assert.Equal(t, uint16(3), parsed.ObjectID)

	_, err = p.ParseWeaponRemove([]string{"480"})
	assert.Error(t, err)
}
