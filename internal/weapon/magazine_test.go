package weapon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMagazineClampsCounts(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		count    int
		want     int
	}{
		{"within capacity", 12, 7, 7},
		{"over capacity", 12, 30, 12},
		{"negative count", 12, -3, 0},
		{"negative capacity", -1, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mag := NewMagazine("mag_9mm_12", tt.capacity, tt.count)
			assert.Equal(t, tt.want, mag.Count())
		})
	}
}

func TestMagazineConsumeOne(t *testing.T) {
	mag := NewMagazine("mag_9mm_12", 12, 2)

	require.True(t, mag.ConsumeOne())
	require.True(t, mag.ConsumeOne())
	assert.Equal(t, 0, mag.Count())

	// Consuming from empty fails and stays at zero.
	assert.False(t, mag.ConsumeOne())
	assert.Equal(t, 0, mag.Count())
}

func TestMagazineCountStaysInRange(t *testing.T) {
	mag := NewMagazine("mag_9mm_12", 12, 12)

	for i := 0; i < 20; i++ {
		mag.ConsumeOne()
		assert.GreaterOrEqual(t, mag.Count(), 0)
	}
	mag.RefillAll()
	assert.Equal(t, 12, mag.Count())
	assert.LessOrEqual(t, mag.Count(), mag.Capacity())
}

func TestMagazineVisibilityTracksEmptiness(t *testing.T) {
	mag := NewMagazine("mag_9mm_12", 12, 1)

	var visible bool
	mag.SetVisibilitySink(func(v bool) { visible = v })
	assert.True(t, visible, "sink reconciles immediately on registration")

	require.True(t, mag.ConsumeOne())
	assert.False(t, visible, "last round hides the ammo model")

	mag.RefillOne()
	assert.True(t, visible, "first round shows the ammo model again")

	mag.ConsumeOne()
	mag.RefillAll()
	assert.True(t, visible)
	assert.Equal(t, 12, mag.Count())
}
