package advanced

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsert_OnDiagonal(t *testing.T) {
	m := boxMesh(t)
	v, err := m.Insert(5, 5)
	require.NoError(t, err)

	assert.Equal(t, 5, m.NumVertices())
	assert.Equal(t, 8, m.NumEdges())
	assert.Equal(t, 4, m.NumTriangles())
	assert.Equal(t, 0, m.Flips())
	assertValidMesh(t, m)
	assertDelaunay(t, m)

	vertex, _ := m.Vertex(v)
	assert.Equal(t, 4, vertex.NumEdges())
	assert.InDelta(t, 100, totalArea(m), 1e-9)
}

func TestInsert_InsideTriangle(t *testing.T) {
	m := boxMesh(t)
	_, err := m.Insert(2, 3)
	require.NoError(t, err)

	assert.Equal(t, 5, m.NumVertices())
	assert.Equal(t, 8, m.NumEdges())
	assert.Equal(t, 4, m.NumTriangles())
	assertValidMesh(t, m)
	assertDelaunay(t, m)
	assert.InDelta(t, 100, totalArea(m), 1e-9)
}

func TestInsert_Flip(t *testing.T) {
	m := boxMesh(t)
	_, err := m.Insert(5, 8)
	require.NoError(t, err)

	// (5, 8) is inside the circumcircle of the lower triangle, so the diagonal
	// must go
	assert.Equal(t, 1, m.Flips())
	assertValidMesh(t, m)
	assertDelaunay(t, m)
	_, ok, err := m.FindEdgeForPoints(Point{X: 0, Y: 10}, Point{X: 10, Y: 0})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInsert_Existing(t *testing.T) {
	m := boxMesh(t)
	corner := vertexAt(t, m, 0, 0)
	v, err := m.Insert(0, 0)
	require.NoError(t, err)
	assert.Equal(t, corner, v)

	center, err := m.Insert(5, 5)
	require.NoError(t, err)
	again, err := m.Insert(5, 5)
	require.NoError(t, err)
	assert.Equal(t, center, again)
	assert.Equal(t, 5, m.NumVertices())
	assert.Equal(t, 4, m.NumTriangles())
}

func TestInsert_Outside(t *testing.T) {
	m := boxMesh(t)
	_, err := m.Insert(15, 5)
	require.NoError(t, err)

	assert.Equal(t, 5, m.NumVertices())
	assert.Equal(t, 7, m.NumEdges())
	assert.Equal(t, 3, m.NumTriangles())
	assertValidMesh(t, m)
	assertDelaunay(t, m)
	assert.InDelta(t, 125, totalArea(m), 1e-9)
	assert.Equal(t, 15.0, m.BBox().Max.X)
}

// A point on the extension of a boundary edge cannot use that edge
func TestInsert_OutsideCollinear(t *testing.T) {
	m := boxMesh(t)
	_, err := m.Insert(15, 0)
	require.NoError(t, err)

	assertValidMesh(t, m)
	assertDelaunay(t, m)
	assert.Equal(t, 3, m.NumTriangles())
	assert.InDelta(t, 125, totalArea(m), 1e-9)
}

// Far outside, so that the new vertex sees several boundary edges
func TestInsert_OutsideManyEdges(t *testing.T) {
	m := boxMesh(t)
	_, err := m.Insert(30, 30)
	require.NoError(t, err)

	assertValidMesh(t, m)
	assertDelaunay(t, m)
	assert.Equal(t, 4, m.NumTriangles())
	// The box plus the two triangles towards (30, 30)
	assert.InDelta(t, 100+2*100, totalArea(m), 1e-9)
}

func TestInsert_Seeding(t *testing.T) {
	m := NewMesh()
	a, err := m.Insert(0, 0)
	require.NoError(t, err)
	_, err = m.Insert(1, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, m.NumTriangles())
	assert.Equal(t, 2, m.NumVertices())

	// Pending vertices can be found and are deduplicated
	again, err := m.Insert(0, 0)
	require.NoError(t, err)
	assert.Equal(t, a, again)
	found, ok, err := m.FindVertexForPoint(Point{X: 0, Y: 0})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, a, found)

	// Collinear seed triples are rejected, and the mesh can continue
	_, err = m.Insert(2, 0)
	assert.ErrorIs(t, err, ErrDegenerate)
	assert.Equal(t, 2, m.NumVertices())
	assert.Equal(t, 0, m.NumTriangles())

	_, err = m.Insert(0, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, m.NumTriangles())
	assert.Equal(t, 3, m.NumVertices())
	assertValidMesh(t, m)

	_, err = m.Insert(2, 0)
	require.NoError(t, err)
	assertValidMesh(t, m)
	assertDelaunay(t, m)
}

func TestInsert_Grid(t *testing.T) {
	m := NewMesh()
	for x := 0; x <= 10; x++ {
		for y := 0; y <= 10; y++ {
			// The first row is collinear, so it can only seed once a point off the
			// line arrives
			_, err := m.Insert(float64(x), float64(y))
			if err != nil {
				assert.ErrorIs(t, err, ErrDegenerate)
			}
		}
	}
	for y := 2; y <= 10; y++ {
		_, err := m.Insert(0, float64(y))
		require.NoError(t, err)
	}

	assert.Equal(t, 121, m.NumVertices())
	assert.Equal(t, 200, m.NumTriangles())
	assertValidMesh(t, m)
	assertDelaunay(t, m)
	assert.InDelta(t, 100, totalArea(m), 1e-9)
}

func TestInsert_RandomIsDelaunay(t *testing.T) {
	m := NewMesh()
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		_, err := m.Insert(rng.Float64()*100, rng.Float64()*100)
		require.NoError(t, err)
	}

	assert.Equal(t, 500, m.NumVertices())
	assertValidMesh(t, m)
	assertDelaunay(t, m)
}
