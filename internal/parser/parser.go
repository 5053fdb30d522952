// Package parser provides pure []string -> struct conversion for bridge
// commands. It has zero external dependencies beyond a logger: no caches,
// no storage, no callbacks.
package parser

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/virtualrange/weaponsim/pkg/core"
)

// Service is the parsing surface the worker layer consumes.
type Service interface {
	ParseWeapon(data []string) (ParsedWeapon, error)
	ParseWeaponRemove(data []string) (ParsedRef, error)
	ParseGrab(data []string) (ParsedGrab, error)
	ParseTrigger(data []string) (ParsedButton, error)
	ParseAlt(data []string) (ParsedButton, error)
	ParseSlideMove(data []string) (ParsedSlideMove, error)
	ParseMuzzlePose(data []string) (ParsedMuzzlePose, error)
	ParseFireModeSelect(data []string) (ParsedModeSelect, error)
	ParseMagazineLoad(data []string) (ParsedMagazineLoad, error)
	ParseMagazineEject(data []string) (ParsedRef, error)
	ParseGeneralEvent(data []string) (core.GeneralEvent, error)
	ParseSessionStart(data []string) (core.Session, core.Range, error)
}

// parseUintFromFloat parses a string that may be an integer ("32") or float ("32.00") into uint64.
// The bridge protocol has no integer type, so hosts may serialize numbers as floats.
func parseUintFromFloat(s string) (uint64, error) {
	if v, err := strconv.ParseUint(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f < 0 || f != float64(uint64(f)) {
		return 0, fmt.Errorf("parseUintFromFloat: %q is not a valid uint64", s)
	}
	return uint64(f), nil
}

// parseIntFromFloat parses a string that may be an integer or float into int64.
func parseIntFromFloat(s string) (int64, error) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int64(f)) {
		return 0, fmt.Errorf("parseIntFromFloat: %q is not a valid int64", s)
	}
	return int64(f), nil
}

// Parser converts raw bridge arguments into typed commands and events.
type Parser struct {
	logger *slog.Logger

	// Static config set at creation time
	engineVersion    string
	extensionVersion string
}

var _ Service = (*Parser)(nil)

// NewParser creates a new parser with only a logger dependency.
func NewParser(logger *slog.Logger, engineVersion, extensionVersion string) *Parser {
	return &Parser{
		logger:           logger,
		engineVersion:    engineVersion,
		extensionVersion: extensionVersion,
	}
}
