package triangles

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osuushi/triangles/advanced"
)

// Smoke test. The internals are already tested.
func TestTriangulate(t *testing.T) {
	points := []Point{
		{X: 1, Y: -1},
		{X: 1, Y: 1},
		{X: -1, Y: 1},
		{X: -1, Y: -1},
	}

	triangles, err := Triangulate([]Polygon{{Hull: points}}, DefaultParameters())
	assert.NoError(t, err)
	assert.Len(t, triangles, 2)
}

func TestTriangulateContours(t *testing.T) {
	outer := []Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	hole := []Point{{X: 4, Y: 4}, {X: 6, Y: 4}, {X: 6, Y: 6}, {X: 4, Y: 6}}

	params := DefaultParameters()
	params.MaxArea = 5
	triangles, err := TriangulateContours(params, outer, hole)
	require.NoError(t, err)

	var area float64
	for _, r := range triangles {
		assert.False(t, r.Outside)
		assert.LessOrEqual(t, r.Area(), 5+1e-9)
		area += r.Area()
	}
	assert.InDelta(t, 96, area, 1e-9)
}

func TestTriangulate_Degenerate(t *testing.T) {
	line := []Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}}
	triangles, err := Triangulate([]Polygon{{Hull: line}}, DefaultParameters())
	assert.Nil(t, triangles)
	assert.True(t, errors.Is(err, advanced.ErrDegenerate))
}
