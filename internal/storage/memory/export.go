// internal/storage/memory/export.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/virtualrange/weaponsim/pkg/core"
)

// SessionExport is the root JSON structure consumed by the review frontend
type SessionExport struct {
	ExtensionVersion string       `json:"extensionVersion"`
	EngineVersion    string       `json:"engineVersion"`
	SessionName      string       `json:"sessionName"`
	ScenarioName     string       `json:"scenarioName"`
	RangeName        string       `json:"rangeName"`
	EndTick          uint64       `json:"endTick"`
	TickRate         int          `json:"tickRate"`
	CaptureDelay     float32      `json:"captureDelay"`
	Weapons          []WeaponJSON `json:"weapons"`
	Events           [][]any      `json:"events"`
}

// WeaponJSON represents one weapon and its recorded activity
type WeaponJSON struct {
	ID           uint16   `json:"id"`
	Class        string   `json:"class"`
	Name         string   `json:"name"`
	FireModes    []string `json:"fireModes"`
	StartTickNum uint64   `json:"startTickNum"`
	Shots        [][]any  `json:"shots"`
	Cycles       [][]any  `json:"cycles"`
	Sequences    [][]any  `json:"sequences"`
	Magazines    [][]any  `json:"magazines"`
}

// exportJSON writes the session data to a gzipped JSON file
func (b *Backend) exportJSON() error {
	export := b.buildExport()

	// Build filename
	sessionName := strings.ReplaceAll(b.session.Name, " ", "_")
	sessionName = strings.ReplaceAll(sessionName, ":", "_")
	timestamp := b.session.StartTime.Format("20060102_150405")

	var filename string
	if b.cfg.CompressOutput {
		filename = fmt.Sprintf("%s_%s.json.gz", sessionName, timestamp)
	} else {
		filename = fmt.Sprintf("%s_%s.json", sessionName, timestamp)
	}

	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	// Ensure output directory exists
	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Write file
	if b.cfg.CompressOutput {
		if err := b.writeGzipJSON(outputPath, export); err != nil {
			return err
		}
	} else {
		if err := b.writeJSON(outputPath, export); err != nil {
			return err
		}
	}

	b.lastExportPath = outputPath
	return nil
}

func (b *Backend) buildExport() SessionExport {
	export := SessionExport{
		ExtensionVersion: b.session.ExtensionVersion,
		EngineVersion:    b.session.EngineVersion,
		SessionName:      b.session.Name,
		ScenarioName:     b.session.ScenarioName,
		RangeName:        b.rng.Name,
		TickRate:         b.session.TickRate,
		CaptureDelay:     b.session.CaptureDelay,
		Weapons:          make([]WeaponJSON, 0),
		Events:           make([][]any, 0),
	}

	var maxTick uint64 = 0

	for _, record := range b.weapons {
		weapon := WeaponJSON{
			ID:           record.Weapon.ObjectID,
			Class:        record.Weapon.ClassName,
			Name:         record.Weapon.DisplayName,
			FireModes:    record.Weapon.FireModes,
			StartTickNum: record.Weapon.JoinTick,
			Shots:        make([][]any, 0, len(record.Shots)),
			Cycles:       make([][]any, 0, len(record.Cycles)),
			Sequences:    make([][]any, 0, len(record.Sequences)),
			Magazines:    make([][]any, 0, len(record.Magazines)),
		}

		// Format: [tick, [mx, my, mz], [ix, iy, iz], fireMode, magazine, ammoRemaining, rechambered]
		for _, shot := range record.Shots {
			entry := []any{
				shot.Tick,
				[]float64{shot.Muzzle.X, shot.Muzzle.Y, shot.Muzzle.Z},
				[]float64{shot.Impact.X, shot.Impact.Y, shot.Impact.Z},
				shot.FireMode,
				shot.Magazine,
				shot.AmmoRemaining,
				boolToInt(shot.Rechambered),
			}
			weapon.Shots = append(weapon.Shots, entry)
			if shot.Tick > maxTick {
				maxTick = shot.Tick
			}
		}

		// Format: [tick, phase, roundChambered, ammoCounter]
		for _, cycle := range record.Cycles {
			entry := []any{
				cycle.Tick,
				string(cycle.Phase),
				boolToInt(cycle.RoundChambered),
				cycle.AmmoCounter,
			}
			weapon.Cycles = append(weapon.Cycles, entry)
			if cycle.Tick > maxTick {
				maxTick = cycle.Tick
			}
		}

		// Format: [tick, fireMode, shotsFired, endedBy]
		for _, seq := range record.Sequences {
			weapon.Sequences = append(weapon.Sequences, []any{
				seq.Tick,
				seq.FireMode,
				seq.ShotsFired,
				seq.EndedBy,
			})
			if seq.Tick > maxTick {
				maxTick = seq.Tick
			}
		}

		// Format: [tick, class, capacity, count, accepted]
		for _, load := range record.Magazines {
			weapon.Magazines = append(weapon.Magazines, []any{
				load.Tick,
				load.ClassName,
				load.Capacity,
				load.Count,
				boolToInt(load.Accepted),
			})
			if load.Tick > maxTick {
				maxTick = load.Tick
			}
		}

		export.Weapons = append(export.Weapons, weapon)
	}

	// Convert general events
	// Format: [tick, "type", message]
	for _, evt := range b.generalEvents {
		export.Events = append(export.Events, []any{
			evt.Tick,
			evt.Name,
			evt.Message,
		})
		if evt.Tick > maxTick {
			maxTick = evt.Tick
		}
	}

	export.EndTick = maxTick

	return export
}

func (b *Backend) writeJSON(path string, data SessionExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	return encoder.Encode(data)
}

func (b *Backend) writeGzipJSON(path string, data SessionExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	defer gzWriter.Close()

	encoder := json.NewEncoder(gzWriter)
	return encoder.Encode(data)
}

// GetExportedFilePath returns the path of the most recent export
func (b *Backend) GetExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

// GetExportMetadata describes the most recent export for frontend upload
func (b *Backend) GetExportMetadata() core.UploadMetadata {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.session == nil || b.rng == nil {
		return core.UploadMetadata{}
	}

	meta := core.UploadMetadata{
		SessionName: b.session.Name,
		RangeName:   b.rng.Name,
		StartTime:   b.session.StartTime,
		Tag:         b.session.Tag,
	}
	if !b.session.EndTime.IsZero() {
		meta.DurationSecs = b.session.EndTime.Sub(b.session.StartTime).Seconds()
	}
	return meta
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
