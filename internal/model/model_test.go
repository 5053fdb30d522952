package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableNames(t *testing.T) {
	tests := []struct {
		name     string
		model    interface{ TableName() string }
		expected string
	}{
		{"SimInfo", &SimInfo{}, "sim_infos"},
		{"SimPerformance", &SimPerformance{}, "sim_performances"},
		{"Range", &Range{}, "ranges"},
		{"Session", &Session{}, "sessions"},
		{"Weapon", &Weapon{}, "weapons"},
		{"ShotEvent", &ShotEvent{}, "shot_events"},
		{"CycleEvent", &CycleEvent{}, "cycle_events"},
		{"SequenceEvent", &SequenceEvent{}, "sequence_events"},
		{"MagazineLoad", &MagazineLoad{}, "magazine_loads"},
		{"GeneralEvent", &GeneralEvent{}, "general_events"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.model.TableName())
		})
	}
}

func TestDatabaseModelListsMatch(t *testing.T) {
	// SQLite runs the same schema as postgres, minus server-side types
	// handled by gorm tags.
	assert.Equal(t, len(DatabaseModels), len(DatabaseModelsSQLite))
}
