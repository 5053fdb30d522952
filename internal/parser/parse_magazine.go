package parser

import (
	"fmt"

	"github.com/virtualrange/weaponsim/internal/util"
)

// ParseMagazineLoad parses a magazine insertion.
// Args: [tick, objectID, className, count, capacity?]. The capacity field
// is only present on the first load of a magazine class; the worker layer
// fills it from cache on later loads.
func (p *Parser) ParseMagazineLoad(data []string) (ParsedMagazineLoad, error) {
	var result ParsedMagazineLoad

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

	result.ClassName = data[2]
	if result.ClassName == "" {
		return result, fmt.Errorf("magazine class name is empty")
	}

	count, err := parseIntFromFloat(data[3])
	if err != nil {
		return result, fmt.Errorf("error converting count to int: %w", err)
	}
	result.Count = int(count)

	if len(data) >= 5 && data[4] != "" {
		capacity, err := parseIntFromFloat(data[4])
		if err != nil {
			return result, fmt.Errorf("error converting capacity to int: %w", err)
		}
		result.Capacity = int(capacity)
		result.HasCapacity = true
	}

	return result, nil
}

// ParseMagazineEject parses a magazine ejection.
// Args: [tick, objectID].
func (p *Parser) ParseMagazineEject(data []string) (ParsedRef, error) {
	return p.parseRef(data)
}
