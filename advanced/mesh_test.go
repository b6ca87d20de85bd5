package advanced

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osuushi/triangles/internal/geom"
)

func TestInitBox(t *testing.T) {
	m := boxMesh(t)
	assert.Equal(t, 4, m.NumVertices())
	assert.Equal(t, 5, m.NumEdges())
	assert.Equal(t, 2, m.NumTriangles())
	assertValidMesh(t, m)
	assertDelaunay(t, m)

	assert.Equal(t, Box{Min: Point{X: 0, Y: 0}, Max: Point{X: 10, Y: 10}}, m.BBox())
	assert.InDelta(t, 100, totalArea(m), 1e-9)

	// The diagonal runs from top left to bottom right
	diagonal, ok, err := m.FindEdgeForPoints(Point{X: 0, Y: 10}, Point{X: 10, Y: 0})
	require.NoError(t, err)
	require.True(t, ok)
	e, _ := m.Edge(diagonal)
	assert.True(t, e.HasBothSides())
	assert.False(t, e.IsOutside())

	err = m.InitBox(Box{Min: Point{X: 0, Y: 0}, Max: Point{X: 0, Y: 5}})
	assert.True(t, errors.Is(err, ErrDegenerate))
}

func TestClear(t *testing.T) {
	m := boxMesh(t)
	v := vertexAt(t, m, 0, 0)
	tri := m.Triangles()[0]

	m.Clear()
	assert.Equal(t, 0, m.NumVertices())
	assert.Equal(t, 0, m.NumEdges())
	assert.Equal(t, 0, m.NumTriangles())
	assert.Equal(t, 0, m.Flips())
	assert.False(t, m.IsConstrained())
	assert.False(t, m.ValidVertex(v))
	assert.False(t, m.ValidTriangle(tri))
	assert.True(t, m.BBox().Empty())

	// Usable again
	require.NoError(t, m.InitBox(Box{Min: Point{X: -1, Y: -1}, Max: Point{X: 1, Y: 1}}))
	assertValidMesh(t, m)
	assert.False(t, m.ValidVertex(v), "handles from before the clear must stay stale")
}

func TestProtect(t *testing.T) {
	m := boxMesh(t)
	v := vertexAt(t, m, 10, 10)
	vertex, _ := m.Vertex(v)
	assert.False(t, vertex.IsPrecious())
	assert.Empty(t, vertex.Protection())

	require.NoError(t, m.Protect(v, 3))
	require.NoError(t, m.Protect(v, 1))
	require.NoError(t, m.Protect(v, 3))
	assert.True(t, vertex.IsPrecious())
	assert.Equal(t, []int{1, 3}, vertex.Protection())

	m.Clear()
	assert.True(t, errors.Is(m.Protect(v, 0), ErrStaleHandle))
}

func TestTriangleTopology(t *testing.T) {
	m := boxMesh(t)
	_, err := m.Insert(3, 4)
	require.NoError(t, err)

	for _, tid := range m.Triangles() {
		tri, ok := m.Triangle(tid)
		require.True(t, ok)
		assert.Equal(t, tid, tri.ID())

		points := m.Points(tid)
		assert.Less(t, geom.SignedArea(points[0], points[1], points[2]), 0.0, "triangles are clockwise")

		for i := 0; i < 3; i++ {
			assert.Equal(t, tri.Edge(i), tri.FindEdgeWith(tri.Vertex(i), tri.Vertex(i+1)))
			assert.Equal(t, tri.Vertex(i+2), tri.OppositeVertex(tri.Edge(i)))
			assert.Equal(t, tri.Edge(i+1), tri.OppositeEdge(tri.Vertex(i)))
			assert.True(t, tri.HasVertex(tri.Vertex(i)))
			assert.True(t, tri.HasEdge(tri.Edge(i)))

			e, _ := m.Edge(tri.Edge(i))
			if e.V1() == tri.Vertex(i) {
				assert.Equal(t, tid, e.Right())
			} else {
				assert.Equal(t, tid, e.Left())
			}
		}
	}
}

func TestEdgeTopology(t *testing.T) {
	m := boxMesh(t)
	bl := vertexAt(t, m, 0, 0)
	tl := vertexAt(t, m, 0, 10)
	br := vertexAt(t, m, 10, 0)

	eid, ok, err := m.FindEdgeForPoints(Point{X: 0, Y: 0}, Point{X: 0, Y: 10})
	require.NoError(t, err)
	require.True(t, ok)
	e, _ := m.Edge(eid)

	assert.True(t, e.HasVertex(bl))
	assert.True(t, e.HasVertex(tl))
	assert.False(t, e.HasVertex(br))
	assert.Equal(t, tl, e.Other(bl))
	assert.Equal(t, bl, e.Other(tl))
	assert.True(t, e.Other(br).IsNil())

	assert.True(t, e.IsOutside())
	assert.Equal(t, 1, e.NumTriangles())
	tri := e.Triangles()[0]
	assert.True(t, e.HasTriangle(tri))
	assert.True(t, e.OtherTriangle(tri).IsNil())

	diagonal, _, _ := m.FindEdgeForPoints(Point{X: 0, Y: 10}, Point{X: 10, Y: 0})
	d, _ := m.Edge(diagonal)
	assert.Equal(t, tl, e.CommonVertex(d))

	bottom, _, _ := m.FindEdgeForPoints(Point{X: 0, Y: 0}, Point{X: 10, Y: 0})
	b, _ := m.Edge(bottom)
	assert.Equal(t, bl, e.CommonVertex(b))

	right, _, _ := m.FindEdgeForPoints(Point{X: 10, Y: 0}, Point{X: 10, Y: 10})
	r, _ := m.Edge(right)
	assert.True(t, e.CommonVertex(r).IsNil())

	v, _ := m.Vertex(bl)
	assert.Equal(t, 2, v.NumEdges())
	assert.True(t, v.HasEdge(eid))
	assert.ElementsMatch(t, []EdgeID{eid, bottom}, v.Edges())
}

func TestTriangleGeometry(t *testing.T) {
	m := boxMesh(t)
	var lower TriangleID
	for _, tid := range m.Triangles() {
		if m.Contains(tid, Point{X: 2, Y: 2}) == 1 {
			lower = tid
		}
	}
	require.False(t, lower.IsNil())

	assert.Equal(t, 0, m.Contains(lower, Point{X: 5, Y: 5}))
	assert.Equal(t, 0, m.Contains(lower, Point{X: 0, Y: 0}))
	assert.Equal(t, -1, m.Contains(lower, Point{X: 8, Y: 8}))

	assert.InDelta(t, 50, m.Area(lower), 1e-9)
	assert.InDelta(t, math.Sqrt2, m.Quality(lower), 1e-9)

	center, radius, ok := m.Circumcircle(lower)
	require.True(t, ok)
	assert.InDelta(t, 5, center.X, 1e-9)
	assert.InDelta(t, 5, center.Y, 1e-9)
	assert.InDelta(t, 5*math.Sqrt2, radius, 1e-9)

	assert.False(t, m.HasSegment(lower))
}

func TestStaleHandles(t *testing.T) {
	m := boxMesh(t)
	v, err := m.Insert(3, 4)
	require.NoError(t, err)
	tris := m.Triangles()

	require.NoError(t, m.RemoveVertex(v))
	assert.False(t, m.ValidVertex(v))
	_, ok := m.Vertex(v)
	assert.False(t, ok)
	assert.True(t, errors.Is(m.RemoveVertex(v), ErrStaleHandle))

	stale := 0
	for _, tid := range tris {
		if !m.ValidTriangle(tid) {
			stale++
			assert.Equal(t, 0.0, m.Area(tid))
			assert.Equal(t, -1, m.Contains(tid, Point{X: 1, Y: 1}))
			_, _, ok := m.Circumcircle(tid)
			assert.False(t, ok)
		}
	}
	assert.Greater(t, stale, 0)

	// Slots are recycled, but the old handles stay stale
	v2, err := m.Insert(3, 4)
	require.NoError(t, err)
	assert.NotEqual(t, v, v2)
	assert.False(t, m.ValidVertex(v))
}

func TestRecords(t *testing.T) {
	m := boxMesh(t)
	_, err := m.Insert(5, 5)
	require.NoError(t, err)

	records := m.Records()
	require.Len(t, records, 4)
	ids := make(map[uint64]struct{})
	for _, r := range records {
		assert.False(t, r.Outside)
		assert.Less(t, geom.SignedArea(r.A, r.B, r.C), 0.0)
		assert.InDelta(t, 25, r.Area(), 1e-9)
		ids[r.ID] = struct{}{}
	}
	assert.Len(t, ids, 4, "serials are unique")
}
