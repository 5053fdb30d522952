package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virtualrange/weaponsim/pkg/core"
)

func TestParsePolyline_Valid(t *testing.T) {
	input := "[[100.5,200.25],[300.75,400.5],[500,600]]"
	ls, err := ParsePolyline(input)

	require.NoError(t, err)
	seq := ls.Coordinates()
	require.Equal(t, 3, seq.Length())
	assert.Equal(t, 100.5, seq.GetXY(0).X)
	assert.Equal(t, 200.25, seq.GetXY(0).Y)
	assert.Equal(t, 500.0, seq.GetXY(2).X)
	assert.Equal(t, 600.0, seq.GetXY(2).Y)
}

func TestParsePolyline_InvalidJSON(t *testing.T) {
	_, err := ParsePolyline("not valid json")
	require.Error(t, err)
}

func TestParsePolyline_TooFewPoints(t *testing.T) {
	_, err := ParsePolyline("[[100,200]]")
	require.Error(t, err)
}

func TestParsePolyline_InsufficientCoordinates(t *testing.T) {
	_, err := ParsePolyline("[[100],[200,300]]")
	require.Error(t, err)
}

func TestShotTrace(t *testing.T) {
	ls := ShotTrace(
		core.Position3D{X: 1, Y: 2, Z: 1.5},
		core.Position3D{X: 1, Y: 152, Z: 1.5},
	)

	seq := ls.Coordinates()
	require.Equal(t, 2, seq.Length())
	assert.Equal(t, 2.0, seq.Get(0).Y)
	assert.Equal(t, 152.0, seq.Get(1).Y)
	assert.Equal(t, 1.5, seq.Get(1).Z)
}

func TestOriginProject(t *testing.T) {
	origin, err := NewOrigin(0, 0)
	require.NoError(t, err)

	pt := origin.Project(core.Position3D{X: 10, Y: 25, Z: 1.5})
	coords, ok := pt.Coordinates()
	require.True(t, ok)
	assert.InDelta(t, 10.0, coords.X, 1e-6)
	assert.InDelta(t, 25.0, coords.Y, 1e-6)
	assert.Equal(t, 1.5, coords.Z)
}
