package advanced

// This contains no actual tests. It is just a helper for testing mesh
// validity.

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Helper to check that a mesh is consistent. The rules are:
// 1. Every reference between vertices, edges and triangles is mutual.
// 2. Every triangle is clockwise, and so has nonzero area.
// 3. V - E + T = 1, i.e. the triangles form a single region without holes,
// counting orphan vertices out.
func assertValidMesh(t *testing.T, m *Mesh) {
	t.Helper()
	defer debugDraw(t, m)
	require.NoError(t, m.Check())

	vertices := 0
	for _, v := range m.Vertices() {
		if vertex, _ := m.Vertex(v); !vertex.IsOrphan() {
			vertices++
		}
	}
	if m.NumTriangles() > 0 {
		require.Equal(t, 1, vertices-m.NumEdges()+m.NumTriangles(), "Euler characteristic")
	}
}

// Like assertValidMesh, for meshes of several regions with holes:
// V - E + T = regions - holes.
func assertValidMeshWithHoles(t *testing.T, m *Mesh, regions, holes int) {
	t.Helper()
	defer debugDraw(t, m)
	require.NoError(t, m.Check())

	vertices := 0
	for _, v := range m.Vertices() {
		if vertex, _ := m.Vertex(v); !vertex.IsOrphan() {
			vertices++
		}
	}
	require.Equal(t, regions-holes, vertices-m.NumEdges()+m.NumTriangles(), "Euler characteristic")
}

func assertDelaunay(t *testing.T, m *Mesh) {
	t.Helper()
	require.NoError(t, m.CheckDelaunay())
}

// Helper to check that the (inside) triangles of a mesh cover the polygons:
// 1. Every polygon point is a mesh vertex.
// 2. Every triangle is inside the polygons, judged by its centroid.
// 3. The sum of the areas of all triangles is equal to the area of the polygons.
func assertCoversPolygons(t *testing.T, m *Mesh, polygons []Polygon) {
	t.Helper()
	defer debugDraw(t, m)

	var area float64
	for _, poly := range polygons {
		area += poly.Area()
		for _, c := range poly.Contours() {
			for _, p := range c {
				require.True(t, hasVertexAt(m, p), "polygon point %v is not a vertex", p)
			}
		}
	}

	var triangleArea float64
	for _, r := range m.Records() {
		if r.Outside {
			continue
		}
		triangleArea += r.Area()
		centroid := Point{X: (r.A.X + r.B.X + r.C.X) / 3, Y: (r.A.Y + r.B.Y + r.C.Y) / 3}
		inside := false
		for _, poly := range polygons {
			if poly.ContainsPointByEvenOdd(centroid) {
				inside = true
				break
			}
		}
		require.True(t, inside, "triangle %v, %v, %v is outside of the polygons", r.A, r.B, r.C)
	}

	require.InDelta(t, area, triangleArea, area*1e-9, "sum of the triangle areas must equal the polygon area")
}

// Every polygon edge must be covered by a chain of segment edges. Checked by
// sampling points along the polygon edges.
func assertSegmentsCoverContours(t *testing.T, m *Mesh, polygons []Polygon) {
	t.Helper()
	segments := m.Segments()
	for _, poly := range polygons {
		for _, c := range poly.Contours() {
			for i, p := range c {
				edge := Segment{P1: p, P2: c[(i+1)%len(c)]}
				for _, f := range []float64{0.1, 0.5, 0.9} {
					sample := edge.P1.Add(edge.D().Scale(f))
					covered := false
					for _, s := range segments {
						if s.Contains(sample) {
							covered = true
							break
						}
					}
					require.True(t, covered, "%v of contour edge %v is not on a segment", sample, edge)
				}
			}
		}
	}
}

// Brute force, so it also works across holes
func hasVertexAt(m *Mesh, p Point) bool {
	for _, v := range m.Vertices() {
		if vertex, _ := m.Vertex(v); vertex.Point().Equal(p) {
			return true
		}
	}
	return false
}

func totalArea(m *Mesh) float64 {
	var area float64
	for _, r := range m.Records() {
		area += r.Area()
	}
	return area
}
