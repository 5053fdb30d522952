package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMagazineLoad_WithCapacity(t *testing.T) {
	p := newTestParser()

	got, err := p.ParseMagazineLoad([]string{"200", "5", "mag_9mm_17rnd", "17", "17"})
	require.NoError(t, err)
	assert.Equal(t, uint64(200), got.Tick)
	assert.Equal(t, uint16(5), got.ObjectID)
	assert.Equal(t, "mag_9mm_17rnd", got.ClassName)
	assert.Equal(t, 17, got.Count)
	assert.Equal(t, 17, got.Capacity)
	assert.True(t, got.HasCapacity)
}

func TestParseMagazineLoad_WithoutCapacity(t *testing.T) {
	p := newTestParser()

	got, err := p.ParseMagazineLoad([]string{"300", "5", "mag_9mm_17rnd", "12"})
	require.NoError(t, err)
	assert.Equal(t, 12, got.Count)
	assert.False(t, got.HasCapacity)
	assert.Zero(t, got.Capacity)
}

func TestParseMagazineLoad_FloatNumbers(t *testing.T) {
	p := newTestParser()

	got, err := p.ParseMagazineLoad([]string{"300.0000", "5.0000", "mag_9mm_17rnd", "12.0000", "17.0000"})
	require.NoError(t, err)
	assert.Equal(t, 12, got.Count)
	assert.Equal(t, 17, got.Capacity)
	assert.True(t, got.HasCapacity)
}

func TestParseMagazineLoad_Errors(t *testing.T) {
	p := newTestParser()

	tests := []struct {
		name string
		data []string
	}{
		{"too few fields", []string{"300", "5", "mag_9mm_17rnd"}},
		{"empty class name", []string{"300", "5", "", "12"}},
		{"bad count", []string{"300", "5", "mag_9mm_17rnd", "lots"}},
		{"bad capacity", []string{"300", "5", "mag_9mm_17rnd", "12", "big"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.ParseMagazineLoad(tt.data)
			assert.Error(t, err)
		})
	}
}

func TestParseMagazineEject(t *testing.T) {
	p := newTestParser()

	got, err := p.ParseMagazineEject([]string{"310", "5"})
	require.NoError(t, err)
	assert.Equal(t, uint64(310), got.Tick)
	assert.Equal(t, uint16(5), got.ObjectID)
}
