package parser

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/virtualrange/weaponsim/internal/geo"
	"github.com/virtualrange/weaponsim/internal/util"
	"github.com/virtualrange/weaponsim/internal/weapon"
)

// ParseGrab parses a handle grab or release edge.
// Args: [tick, objectID, handle, hand, grabbed].
func (p *Parser) ParseGrab(data []string) (ParsedGrab, error) {
	var result ParsedGrab

	// fix received data
	for i, v := range data {
		data[i] = util.FixEscapeQuotes(util.TrimQuotes(v))
	}

	if len(data) < 5 {
		return result, fmt.Errorf("insufficient data fields: got %d, need 5", len(data))
	}

	ref, err := p.parseRef(data[:2])
	if err != nil {
		return result, err
	}
	result.Tick = ref.Tick
	result.ObjectID = ref.ObjectID

	result.Handle, err = weapon.ParseHandle(data[2])
	if err != nil {
		return result, fmt.Errorf("error parsing handle: %w", err)
	}

	result.Hand, err = weapon.ParseHand(data[3])
	if err != nil {
		return result, fmt.Errorf("error parsing hand: %w", err)
	}

	result.Grabbed, err = strconv.ParseBool(data[4])
	if err != nil {
		return result, fmt.Errorf("error converting grabbed to bool: %w", err)
	}

	return result, nil
}

// ParseTrigger parses a trigger press or release edge.
// Args: [tick, objectID, pressed].
func (p *Parser) ParseTrigger(data []string) (ParsedButton, error) {
	return p.parseButton(data)
}

// ParseAlt parses an alternate-action press or release edge.
// Args: [tick, objectID, pressed].
func (p *Parser) ParseAlt(data []string) (ParsedButton, error) {
	return p.parseButton(data)
}

func (p *Parser) parseButton(data []string) (ParsedButton, error) {
	var result ParsedButton

	// fix received data
	for i, v := range data {
		data[i] = util.FixEscapeQuotes(util.TrimQuotes(v))
	}

	if len(data) < 3 {
		return result, fmt.Errorf("insufficient data fields: got %d, need 3", len(data))
	}

	ref, err := p.parseRef(data[:2])
	if err != nil {
		return result, err
	}
	result.Tick = ref.Tick
	result.ObjectID = ref.ObjectID

	result.Pressed, err = strconv.ParseBool(data[2])
	if err != nil {
		return result, fmt.Errorf("error converting pressed to bool: %w", err)
	}

	return result, nil
}

// ParseSlideMove parses a slide-handle position update.
// Args: [tick, objectID, position]. Position is meters relative to the
// forward rest position; rearward travel is negative.
func (p *Parser) ParseSlideMove(data []string) (ParsedSlideMove, error) {
	var result ParsedSlideMove

	// fix received data
	for i, v := range data {
		data[i] = util.FixEscapeQuotes(util.TrimQuotes(v))
	}

	if len(data) < 3 {
		return result, fmt.Errorf("insufficient data fields: got %d, need 3", len(data))
	}

	ref, err := p.parseRef(data[:2])
	if err != nil {
		return result, err
	}
	result.Tick = ref.Tick
	result.ObjectID = ref.ObjectID

	result.Position, err = strconv.ParseFloat(data[2], 64)
	if err != nil {
		return result, fmt.Errorf("error converting position to float: %w", err)
	}

	return result, nil
}

// ParseMuzzlePose parses the muzzle point and direction of a weapon.
// Args: [tick, objectID, "x,y,z", "dx,dy,dz"].
func (p *Parser) ParseMuzzlePose(data []string) (ParsedMuzzlePose, error) {
	var result ParsedMuzzlePose

	// fix received data
	for i, v := range data {
		data[i] = util.FixEscapeQuotes(util.TrimQuotes(v))
	}

	if len(data) < 4 {
		return result, fmt.Errorf("insufficient data fields: got %d, need 4", len(data))
	}

	ref, err := p.parseRef(data[:2])
	if err != nil {
		return result, err
	}
	result.Tick = ref.Tick
	result.ObjectID = ref.ObjectID

	result.Muzzle, err = geo.Position3DFromString(data[2])
	if err != nil {
		jsonData, _ := json.Marshal(data)
		p.logger.Error("Error converting muzzle position", "data", string(jsonData), "error", err)
		return result, err
	}

	result.Direction, err = geo.Position3DFromString(data[3])
	if err != nil {
		jsonData, _ := json.Marshal(data)
		p.logger.Error("Error converting muzzle direction", "data", string(jsonData), "error", err)
		return result, err
	}

	return result, nil
}

// ParseFireModeSelect parses a fire-selector change.
// Args: [tick, objectID, mode]. Whether the weapon allows the mode is
// decided by the controller, not here.
func (p *Parser) ParseFireModeSelect(data []string) (ParsedModeSelect, error) {
	var result ParsedModeSelect

	// fix received data
	for i, v := range data {
		data[i] = util.FixEscapeQuotes(util.TrimQuotes(v))
	}

	if len(data) < 3 {
		return result, fmt.Errorf("insufficient data fields: got %d, need 3", len(data))
	}

	ref, err := p.parseRef(data[:2])
	if err != nil {
		return result, err
	}
	result.Tick = ref.Tick
	result.ObjectID = ref.ObjectID

	result.Mode, err = weapon.ParseFireMode(data[2])
	if err != nil {
		return result, fmt.Errorf("error parsing fire mode: %w", err)
	}

	return result, nil
}
