// Package advanced exposes the mesh engine behind the triangles package:
// constrained Delaunay triangulation with quality refinement, built on an
// arena of vertices, edges and triangles that can be edited one operation at
// a time.
//
// A Mesh is not safe for concurrent use. Independent regions can be
// triangulated in parallel on independent meshes.
package advanced

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/osuushi/triangles/internal/arena"
	"github.com/osuushi/triangles/internal/geom"
)

type Mesh struct {
	vertices  arena.Arena[Vertex]
	edges     arena.Arena[Edge]
	triangles arena.Arena[Triangle]

	// Vertices inserted into an empty mesh. The first triangle is formed once
	// there are three of them.
	pending []VertexID

	isConstrained bool

	// Source of element serials
	serial uint64
	// Legalization batch counter
	level uint64
	// Diagnostics
	flips int
	hops  int

	logger *zap.Logger
}

func NewMesh() *Mesh {
	return &Mesh{logger: zap.NewNop()}
}

// Use the given logger for diagnostics. Nil restores the silent default.
func (m *Mesh) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	m.logger = logger
}

func (m *Mesh) log() *zap.Logger {
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	return m.logger
}

// Drop everything, including the constrained state and the counters.
func (m *Mesh) Clear() {
	m.vertices.Clear()
	m.edges.Clear()
	m.triangles.Clear()
	m.pending = nil
	m.isConstrained = false
	m.serial = 0
	m.level = 0
	m.flips = 0
	m.hops = 0
}

func (m *Mesh) IsConstrained() bool { return m.isConstrained }
func (m *Mesh) NumTriangles() int   { return m.triangles.Len() }
func (m *Mesh) NumVertices() int    { return m.vertices.Len() }
func (m *Mesh) NumEdges() int       { return m.edges.Len() }
func (m *Mesh) Flips() int          { return m.flips }
func (m *Mesh) Hops() int           { return m.hops }

func (m *Mesh) Vertex(id VertexID) (*Vertex, bool) {
	return m.vertices.Get(arena.Handle(id))
}

func (m *Mesh) Edge(id EdgeID) (*Edge, bool) {
	return m.edges.Get(arena.Handle(id))
}

func (m *Mesh) Triangle(id TriangleID) (*Triangle, bool) {
	return m.triangles.Get(arena.Handle(id))
}

func (m *Mesh) ValidVertex(id VertexID) bool     { return m.vertices.Valid(arena.Handle(id)) }
func (m *Mesh) ValidEdge(id EdgeID) bool         { return m.edges.Valid(arena.Handle(id)) }
func (m *Mesh) ValidTriangle(id TriangleID) bool { return m.triangles.Valid(arena.Handle(id)) }

// Live triangles in arena order
func (m *Mesh) Triangles() []TriangleID {
	handles := m.triangles.Handles()
	result := make([]TriangleID, len(handles))
	for i, h := range handles {
		result[i] = TriangleID(h)
	}
	return result
}

// Live vertices in arena order, including ones not (yet) part of a triangle.
func (m *Mesh) Vertices() []VertexID {
	handles := m.vertices.Handles()
	result := make([]VertexID, len(handles))
	for i, h := range handles {
		result[i] = VertexID(h)
	}
	return result
}

// Live edges in arena order
func (m *Mesh) Edges() []EdgeID {
	handles := m.edges.Handles()
	result := make([]EdgeID, len(handles))
	for i, h := range handles {
		result[i] = EdgeID(h)
	}
	return result
}

// Internal accessors. A stale handle here means the mesh bookkeeping is
// broken, so they are fatal.

func (m *Mesh) vertex(id VertexID) *Vertex {
	v, ok := m.vertices.Get(arena.Handle(id))
	if !ok {
		fatalf("stale vertex handle %s", id)
	}
	return v
}

func (m *Mesh) edge(id EdgeID) *Edge {
	e, ok := m.edges.Get(arena.Handle(id))
	if !ok {
		fatalf("stale edge handle %s", id)
	}
	return e
}

func (m *Mesh) triangle(id TriangleID) *Triangle {
	t, ok := m.triangles.Get(arena.Handle(id))
	if !ok {
		fatalf("stale triangle handle %s", id)
	}
	return t
}

func (m *Mesh) point(id VertexID) Point {
	return m.vertex(id).point
}

// The straight line segment of an edge, from V1 to V2.
func (m *Mesh) segment(e *Edge) Segment {
	return Segment{P1: m.point(e.v1), P2: m.point(e.v2)}
}

// Element factories

func (m *Mesh) createVertex(p Point) VertexID {
	h, v := m.vertices.Alloc()
	v.id = VertexID(h)
	v.point = p
	return v.id
}

// Create an edge and link it to its vertices. Slots of removed edges are
// recycled first.
func (m *Mesh) createEdge(v1, v2 VertexID) EdgeID {
	if v1 == v2 {
		fatalf("edge from %s to itself", v1)
	}
	vertex1 := m.vertex(v1)
	vertex2 := m.vertex(v2)
	h, e := m.edges.Alloc()
	e.id = EdgeID(h)
	e.v1 = v1
	e.v2 = v2
	m.serial++
	e.serial = m.serial
	vertex1.edges = append(vertex1.edges, e.id)
	vertex2.edges = append(vertex2.edges, e.id)
	return e.id
}

// Create a triangle from three edges which must form a closed, non-degenerate
// loop. The vertex order is derived from the edges and made clockwise, and the
// triangle is registered on the free side of each edge.
func (m *Mesh) createTriangle(e1, e2, e3 EdgeID) TriangleID {
	edges := [3]*Edge{m.edge(e1), m.edge(e2), m.edge(e3)}

	var vertices [3]VertexID
	vertices[0] = edges[0].v1
	vertices[1] = edges[0].v2
	if edges[1].HasVertex(vertices[1]) {
		vertices[2] = edges[1].Other(vertices[1])
	} else if edges[1].HasVertex(vertices[0]) {
		vertices[2] = edges[1].Other(vertices[0])
	} else {
		fatalf("edges %s and %s do not share a vertex", e1, e2)
	}
	if vertices[2] == vertices[0] || vertices[2] == vertices[1] {
		fatalf("edges %s and %s are parallel duplicates", e1, e2)
	}

	// Enforce clockwise orientation
	area := geom.SignedArea(m.point(vertices[0]), m.point(vertices[1]), m.point(vertices[2]))
	if area == 0 {
		fatalf("degenerate triangle from edges %s, %s, %s", e1, e2, e3)
	} else if area > 0 {
		vertices[1], vertices[2] = vertices[2], vertices[1]
	}

	h, t := m.triangles.Alloc()
	t.id = TriangleID(h)
	t.vertices = vertices
	m.serial++
	t.serial = m.serial

	for i := 0; i < 3; i++ {
		a, b := vertices[i], vertices[(i+1)%3]
		var found *Edge
		for _, e := range edges {
			if (e.v1 == a && e.v2 == b) || (e.v1 == b && e.v2 == a) {
				found = e
				break
			}
		}
		if found == nil {
			fatalf("edges %s, %s, %s do not form a triangle", e1, e2, e3)
		}
		t.edges[i] = found.id
		// Clockwise means the inside is right of a→b
		if found.v1 == a {
			if !found.right.IsNil() {
				fatalf("right side of %s is already taken by %s", found.id, found.right)
			}
			found.right = t.id
		} else {
			if !found.left.IsNil() {
				fatalf("left side of %s is already taken by %s", found.id, found.left)
			}
			found.left = t.id
		}
	}
	return t.id
}

// Detach a triangle from its edges without removing it. The triangle keeps
// its own references, so it can still be inspected.
func (m *Mesh) unlinkTriangle(id TriangleID) {
	t := m.triangle(id)
	for _, eid := range t.edges {
		e, ok := m.edges.Get(arena.Handle(eid))
		if !ok {
			continue
		}
		if e.left == id {
			e.left = TriangleID{}
		}
		if e.right == id {
			e.right = TriangleID{}
		}
	}
}

// Remove a triangle. Edges left without any triangle are removed as well.
func (m *Mesh) removeTriangle(id TriangleID) {
	t := m.triangle(id)
	edges := t.edges
	m.unlinkTriangle(id)
	m.triangles.Free(arena.Handle(id))
	for _, eid := range edges {
		e, ok := m.edges.Get(arena.Handle(eid))
		if ok && e.IsOrphan() {
			m.removeEdge(e)
		}
	}
}

func (m *Mesh) removeEdge(e *Edge) {
	if v, ok := m.vertices.Get(arena.Handle(e.v1)); ok {
		v.removeEdge(e.id)
	}
	if v, ok := m.vertices.Get(arena.Handle(e.v2)); ok {
		v.removeEdge(e.id)
	}
	m.edges.Free(arena.Handle(e.id))
}

// Free a vertex that has no edges anymore.
func (m *Mesh) removeOrphanVertex(id VertexID) {
	v := m.vertex(id)
	if !v.IsOrphan() {
		fatalf("vertex %s still has %d edges", id, len(v.edges))
	}
	m.vertices.Free(arena.Handle(id))
}

// Reset the mesh to two triangles covering the box. The diagonal runs from
// the top left to the bottom right corner.
func (m *Mesh) InitBox(box Box) error {
	if box.Empty() || box.Width() <= 0 || box.Height() <= 0 {
		return errors.Wrapf(ErrDegenerate, "box %v-%v has no area", box.Min, box.Max)
	}
	m.Clear()

	xmin, ymin := box.Min.X, box.Min.Y
	xmax, ymax := box.Max.X, box.Max.Y

	vbl := m.createVertex(Point{X: xmin, Y: ymin})
	vtl := m.createVertex(Point{X: xmin, Y: ymax})
	vbr := m.createVertex(Point{X: xmax, Y: ymin})
	vtr := m.createVertex(Point{X: xmax, Y: ymax})

	sl := m.createEdge(vbl, vtl)
	sd := m.createEdge(vtl, vbr)
	sb := m.createEdge(vbr, vbl)
	sr := m.createEdge(vbr, vtr)
	st := m.createEdge(vtr, vtl)

	m.createTriangle(sl, sd, sb)
	m.createTriangle(sd, sr, st)
	return nil
}

// Bounding box of every vertex that is part of a triangle.
func (m *Mesh) BBox() Box {
	box := geom.EmptyBox()
	m.triangles.Each(func(_ arena.Handle, t *Triangle) bool {
		for _, v := range t.vertices {
			box = box.Extend(m.point(v))
		}
		return true
	})
	return box
}

// Attach a protection id to a vertex. Precious vertices survive refinement.
func (m *Mesh) Protect(id VertexID, protectionID int) error {
	v, ok := m.Vertex(id)
	if !ok {
		return errors.Wrapf(ErrStaleHandle, "cannot protect %s", id)
	}
	v.protect(protectionID)
	return nil
}

// Geometry of mesh elements

// Which side of the edge (looking from V1 to V2) the point lies on: +1 left,
// -1 right, 0 on the line.
func (m *Mesh) sideOf(e *Edge, p Point) int {
	return m.segment(e).SideOf(p)
}

func (m *Mesh) circumcircle(t *Triangle) (Point, float64, bool) {
	return geom.Circumcircle(m.point(t.vertices[0]), m.point(t.vertices[1]), m.point(t.vertices[2]))
}

// -1 if the point is outside the triangle, 0 if it is on an edge and 1 if it
// is strictly inside.
func (m *Mesh) contains(t *Triangle, p Point) int {
	result := 1
	last := m.point(t.vertices[2])
	for _, vid := range t.vertices {
		v := m.point(vid)
		// Clockwise, so the inside is on the right
		s := geom.SideOf(last, v, p)
		if s == 0 {
			result = 0
		} else if s > 0 {
			return -1
		}
		last = v
	}
	return result
}

func (m *Mesh) area(t *Triangle) float64 {
	return math.Abs(geom.SignedArea(m.point(t.vertices[0]), m.point(t.vertices[1]), m.point(t.vertices[2])))
}

// Shortest edge length over circumradius. Zero for degenerate triangles.
func (m *Mesh) quality(t *Triangle) float64 {
	minLength := math.Inf(1)
	for _, eid := range t.edges {
		minLength = math.Min(minLength, m.segment(m.edge(eid)).Length())
	}
	_, radius, ok := m.circumcircle(t)
	if !ok {
		return 0
	}
	return minLength / radius
}

func (m *Mesh) numSegments(t *Triangle) int {
	n := 0
	for _, eid := range t.edges {
		if m.edge(eid).isSegment {
			n++
		}
	}
	return n
}

// Exported geometry, for stale-safe inspection from outside.

func (m *Mesh) Circumcircle(id TriangleID) (center Point, radius float64, ok bool) {
	t, valid := m.Triangle(id)
	if !valid {
		return Point{}, 0, false
	}
	return m.circumcircle(t)
}

func (m *Mesh) Contains(id TriangleID, p Point) int {
	t, ok := m.Triangle(id)
	if !ok {
		return -1
	}
	return m.contains(t, p)
}

func (m *Mesh) Area(id TriangleID) float64 {
	t, ok := m.Triangle(id)
	if !ok {
		return 0
	}
	return m.area(t)
}

func (m *Mesh) Quality(id TriangleID) float64 {
	t, ok := m.Triangle(id)
	if !ok {
		return 0
	}
	return m.quality(t)
}

func (m *Mesh) HasSegment(id TriangleID) bool {
	t, ok := m.Triangle(id)
	return ok && m.numSegments(t) > 0
}

func (m *Mesh) Points(id TriangleID) [3]Point {
	var result [3]Point
	if t, ok := m.Triangle(id); ok {
		for i, v := range t.vertices {
			result[i] = m.point(v)
		}
	}
	return result
}

func (m *Mesh) EdgeSegment(id EdgeID) Segment {
	if e, ok := m.Edge(id); ok {
		return m.segment(e)
	}
	return Segment{}
}

// Output record of a triangle, for consumers that don't want to deal with
// handles.
type Record struct {
	A, B, C Point
	Outside bool
	// Serial, or the quality marks after a refinement with MarkTriangles
	ID uint64
}

func (r Record) Area() float64 {
	return math.Abs(geom.SignedArea(r.A, r.B, r.C))
}

func (m *Mesh) Records() []Record {
	result := make([]Record, 0, m.triangles.Len())
	m.triangles.Each(func(_ arena.Handle, t *Triangle) bool {
		result = append(result, Record{
			A:       m.point(t.vertices[0]),
			B:       m.point(t.vertices[1]),
			C:       m.point(t.vertices[2]),
			Outside: t.outside,
			ID:      t.serial,
		})
		return true
	})
	return result
}
