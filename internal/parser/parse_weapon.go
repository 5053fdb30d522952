package parser

import (
	"encoding/json"
	"fmt"

	"github.com/virtualrange/weaponsim/internal/util"
	"github.com/virtualrange/weaponsim/internal/weapon"
)

// weaponSpecWire is the JSON shape of the registration blob. Enumerations
// travel as wire names and are converted to their typed values here.
type weaponSpecWire struct {
	ClassName         string   `json:"className"`
	DisplayName       string   `json:"displayName"`
	TravelDistance    float64  `json:"travelDistance"`
	FireRateRPM       float64  `json:"fireRateRpm"`
	BurstCount        int      `json:"burstCount"`
	FireModes         []string `json:"fireModes"`
	AcceptedMagazines []string `json:"acceptedMagazines"`
	Handles           []string `json:"handles"`
	LongPressSeconds  float64  `json:"longPressSeconds"`
	LongPressEjects   bool     `json:"longPressEjects"`
	HitRange          float64  `json:"hitRange"`
	Damage            float64  `json:"damage"`
	RecoilForce       float64  `json:"recoilForce"`
}

// ParseWeapon parses a weapon registration.
// Args: [tick, objectID, specJSON]. Spec validation is not performed here;
// the engine validates at registration and leaves a misconfigured weapon
// inert.
func (p *Parser) ParseWeapon(data []string) (ParsedWeapon, error) {
	var result ParsedWeapon

	// fix received data
	for i, v := range data {
		data[i] = util.FixEscapeQuotes(util.TrimQuotes(v))
	}

	if len(data) < 3 {
		return result, fmt.Errorf("insufficient data fields: got %d, need 3", len(data))
	}

	tick, err := parseUintFromFloat(data[0])
	if err != nil {
		return result, fmt.Errorf("error converting tick to uint: %w", err)
	}
	result.Tick = tick

	objectID, err := parseUintFromFloat(data[1])
	if err != nil {
		return result, fmt.Errorf("error converting objectId to uint: %w", err)
	}
	result.ObjectID = uint16(objectID)

	var wire weaponSpecWire
	if err := json.Unmarshal([]byte(data[2]), &wire); err != nil {
		return result, fmt.Errorf("error unmarshalling weapon spec: %w", err)
	}

	spec := weapon.Spec{
		ClassName:         wire.ClassName,
		DisplayName:       wire.DisplayName,
		TravelDistance:    wire.TravelDistance,
		FireRateRPM:       wire.FireRateRPM,
		BurstCount:        wire.BurstCount,
		AcceptedMagazines: wire.AcceptedMagazines,
		LongPressSeconds:  wire.LongPressSeconds,
		LongPressEjects:   wire.LongPressEjects,
		HitRange:          wire.HitRange,
		Damage:            wire.Damage,
		RecoilForce:       wire.RecoilForce,
	}

	for _, name := range wire.FireModes {
		mode, err := weapon.ParseFireMode(name)
		if err != nil {
			return result, fmt.Errorf("error parsing fire mode: %w", err)
		}
		spec.FireModes = append(spec.FireModes, mode)
	}

	for _, name := range wire.Handles {
		handle, err := weapon.ParseHandle(name)
		if err != nil {
			return result, fmt.Errorf("error parsing handle: %w", err)
		}
		spec.Handles = append(spec.Handles, handle)
	}

	result.Spec = spec

	p.logger.Debug("Parsed weapon registration",
		"objectID", result.ObjectID,
		"className", spec.ClassName)

	return result, nil
}

// ParseWeaponRemove parses a weapon removal.
// Args: [tick, objectID].
func (p *Parser) ParseWeaponRemove(data []string) (ParsedRef, error) {
	return p.parseRef(data)
}

// parseRef parses the common [tick, objectID] prefix shared by most
// weapon-scoped commands.
func (p *Parser) parseRef(data []string) (ParsedRef, error) {
	var result ParsedRef

	// fix received data
	for i, v := range data {
		data[i] = util.FixEscapeQuotes(util.TrimQuotes(v))
	}

	if len(data) < 2 {
		return result, fmt.Errorf("insufficient data fields: got %d, need 2", len(data))
	}

	tick, err := parseUintFromFloat(data[0])
	if err != nil {
		return result, fmt.Errorf("error converting tick to uint: %w", err)
	}
	result.Tick = tick

	objectID, err := parseUintFromFloat(data[1])
	if err != nil {
		return result, fmt.Errorf("error converting objectId to uint: %w", err)
	}
	result.ObjectID = uint16(objectID)

	return result, nil
}
