package advanced

import (
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/osuushi/triangles/internal/svgpoly"
)

// Shapes for tests. SVG fixtures are loaded by name through svgpoly; these are
// ad hoc shapes that are easier to describe in code.

func LoadFixture(name string) []Polygon {
	return svgpoly.MustLoad(name)
}

func makeStar(x, y, outerRadius, innerRadius float64, n int) Contour {
	var points Contour
	for i := 0; i < 2*n; i++ {
		r := outerRadius
		if i%2 == 1 {
			r = innerRadius
		}
		angle := math.Pi * float64(i) / float64(n)
		points = append(points, Point{X: x + r*math.Cos(angle), Y: y + r*math.Sin(angle)})
	}
	return points
}

func SimpleStar() []Polygon {
	return []Polygon{{Hull: makeStar(0, 0, 5, 2, 5)}}
}

func SquareWithHole() []Polygon {
	return []Polygon{{
		Hull: Contour{{X: -5, Y: -5}, {X: 5, Y: -5}, {X: 5, Y: 5}, {X: -5, Y: 5}},
		Holes: []Contour{
			{{X: -2, Y: -2}, {X: -2, Y: 2}, {X: 2, Y: 2}, {X: 2, Y: -2}},
		},
	}}
}

func StarOutline() []Polygon {
	return []Polygon{{
		Hull:  makeStar(0, 0, 10, 5, 5),
		Holes: []Contour{makeStar(0, 0, 8, 3, 5)},
	}}
}

// Holes which contain filled shapes inside
func MultiLayeredHoles() []Polygon {
	return []Polygon{
		{
			Hull: makeStar(0, 0, 10, 7, 5),
			Holes: []Contour{
				makeStar(1.5, 5, 3, 2, 5),
				makeStar(1.8, -5, 3, 2, 5),
				makeStar(-3, 0, 4, 2, 5),
			},
		},
		{Hull: makeStar(1.5, 5, 2, 1, 5)},
		{Hull: makeStar(1.8, -5, 2, 1, 5)},
		{Hull: makeStar(-3, 0, 3, 1, 5)},
	}
}

// Looks up a vertex that must exist
func vertexAt(t *testing.T, m *Mesh, x, y float64) VertexID {
	v, ok, err := m.FindVertexForPoint(Point{X: x, Y: y})
	require.NoError(t, err)
	require.True(t, ok, "no vertex at %v,%v", x, y)
	return v
}

func boxMesh(t *testing.T) *Mesh {
	m := NewMesh()
	require.NoError(t, m.InitBox(Box{Min: Point{X: 0, Y: 0}, Max: Point{X: 10, Y: 10}}))
	return m
}

// Set MESH_DEBUG_DRAW to see the mesh of failing tests in the terminal.
func debugDraw(t *testing.T, m *Mesh) {
	if os.Getenv("MESH_DEBUG_DRAW") != "" && t.Failed() {
		m.dbgDraw(20)
	}
}
