package advanced

import (
	"sort"

	"github.com/osuushi/triangles/internal/arena"
	"github.com/osuushi/triangles/internal/geom"
)

type Point = geom.Point
type Vector = geom.Vector
type Segment = geom.Segment
type Box = geom.Box
type Contour = geom.Contour
type Polygon = geom.Polygon

// Handles to mesh elements. They are only meaningful for the mesh that issued
// them, and become stale (rather than dangling) once the element is removed.
type VertexID arena.Handle
type EdgeID arena.Handle
type TriangleID arena.Handle

func (id VertexID) IsNil() bool   { return arena.Handle(id).IsNil() }
func (id EdgeID) IsNil() bool     { return arena.Handle(id).IsNil() }
func (id TriangleID) IsNil() bool { return arena.Handle(id).IsNil() }

func (id VertexID) String() string   { return "v" + arena.Handle(id).String() }
func (id EdgeID) String() string     { return "e" + arena.Handle(id).String() }
func (id TriangleID) String() string { return "t" + arena.Handle(id).String() }

// Level used for constraint edges: legalization never touches them again.
const permanentLevel = ^uint64(0)

// A mesh vertex and the (unordered) list of edges using it.
type Vertex struct {
	id    VertexID
	point Point
	edges []EdgeID
	// Opaque protection ids. A vertex with any of them is precious and is never
	// removed by refinement.
	protection map[int]struct{}
}

func (v *Vertex) ID() VertexID { return v.id }
func (v *Vertex) Point() Point { return v.point }
func (v *Vertex) X() float64   { return v.point.X }
func (v *Vertex) Y() float64   { return v.point.Y }

// Copy of the incident edge list
func (v *Vertex) Edges() []EdgeID {
	return append([]EdgeID(nil), v.edges...)
}

func (v *Vertex) NumEdges() int {
	return len(v.edges)
}

func (v *Vertex) HasEdge(e EdgeID) bool {
	for _, other := range v.edges {
		if other == e {
			return true
		}
	}
	return false
}

func (v *Vertex) IsOrphan() bool {
	return len(v.edges) == 0
}

func (v *Vertex) IsPrecious() bool {
	return len(v.protection) > 0
}

// Sorted protection ids
func (v *Vertex) Protection() []int {
	ids := make([]int, 0, len(v.protection))
	for id := range v.protection {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (v *Vertex) protect(id int) {
	if v.protection == nil {
		v.protection = make(map[int]struct{})
	}
	v.protection[id] = struct{}{}
}

func (v *Vertex) removeEdge(e EdgeID) {
	for i, other := range v.edges {
		if other == e {
			// Keep the order; the closest edge walk depends on it for ties.
			v.edges = append(v.edges[:i], v.edges[i+1:]...)
			return
		}
	}
}

// An edge of the mesh. V1 and V2 are fixed once it is created. Looking from V1
// to V2, Left is the triangle on the left and Right the one on the right;
// either is nil for an edge on the outer boundary of the mesh.
type Edge struct {
	id          EdgeID
	v1, v2      VertexID
	left, right TriangleID
	serial      uint64
	level       uint64
	isSegment   bool
}

func (e *Edge) ID() EdgeID         { return e.id }
func (e *Edge) V1() VertexID       { return e.v1 }
func (e *Edge) V2() VertexID       { return e.v2 }
func (e *Edge) Left() TriangleID   { return e.left }
func (e *Edge) Right() TriangleID  { return e.right }
func (e *Edge) Serial() uint64     { return e.serial }
func (e *Edge) Level() uint64      { return e.level }
func (e *Edge) IsSegment() bool    { return e.isSegment }
func (e *Edge) IsPermanent() bool  { return e.level == permanentLevel }
func (e *Edge) HasBothSides() bool { return !e.left.IsNil() && !e.right.IsNil() }
func (e *Edge) IsOrphan() bool     { return e.left.IsNil() && e.right.IsNil() }
func (e *Edge) IsOutside() bool    { return e.left.IsNil() || e.right.IsNil() }

func (e *Edge) HasVertex(v VertexID) bool {
	return e.v1 == v || e.v2 == v
}

func (e *Edge) HasTriangle(t TriangleID) bool {
	return !t.IsNil() && (e.left == t || e.right == t)
}

func (e *Edge) NumTriangles() int {
	n := 0
	if !e.left.IsNil() {
		n++
	}
	if !e.right.IsNil() {
		n++
	}
	return n
}

// Adjacent triangles, left first
func (e *Edge) Triangles() []TriangleID {
	var result []TriangleID
	if !e.left.IsNil() {
		result = append(result, e.left)
	}
	if !e.right.IsNil() {
		result = append(result, e.right)
	}
	return result
}

// The other endpoint. Nil if v is not an endpoint.
func (e *Edge) Other(v VertexID) VertexID {
	if e.v1 == v {
		return e.v2
	} else if e.v2 == v {
		return e.v1
	}
	return VertexID{}
}

// The triangle on the other side. Nil if t is not adjacent or the edge is on
// the boundary.
func (e *Edge) OtherTriangle(t TriangleID) TriangleID {
	if e.left == t {
		return e.right
	} else if e.right == t {
		return e.left
	}
	return TriangleID{}
}

// The vertex shared with another edge, or nil.
func (e *Edge) CommonVertex(other *Edge) VertexID {
	if other.HasVertex(e.v1) {
		return e.v1
	} else if other.HasVertex(e.v2) {
		return e.v2
	}
	return VertexID{}
}

// A triangle of the mesh. Vertices are in clockwise order, and edge i joins
// vertex i and vertex i+1.
type Triangle struct {
	id       TriangleID
	edges    [3]EdgeID
	vertices [3]VertexID
	outside  bool
	serial   uint64
}

func (t *Triangle) ID() TriangleID        { return t.id }
func (t *Triangle) Edge(i int) EdgeID     { return t.edges[geom.CircularIndex(i, 3)] }
func (t *Triangle) Vertex(i int) VertexID { return t.vertices[geom.CircularIndex(i, 3)] }
func (t *Triangle) Edges() [3]EdgeID      { return t.edges }
func (t *Triangle) Vertices() [3]VertexID { return t.vertices }
func (t *Triangle) IsOutside() bool       { return t.outside }
func (t *Triangle) Serial() uint64        { return t.serial }

func (t *Triangle) SetOutside(outside bool) { t.outside = outside }

func (t *Triangle) HasVertex(v VertexID) bool {
	return t.vertexIndex(v) >= 0
}

func (t *Triangle) HasEdge(e EdgeID) bool {
	return t.edgeIndex(e) >= 0
}

func (t *Triangle) vertexIndex(v VertexID) int {
	for i, other := range t.vertices {
		if other == v {
			return i
		}
	}
	return -1
}

func (t *Triangle) edgeIndex(e EdgeID) int {
	for i, other := range t.edges {
		if other == e {
			return i
		}
	}
	return -1
}

// The vertex not on the given edge. Nil if the edge is not one of ours.
func (t *Triangle) OppositeVertex(e EdgeID) VertexID {
	i := t.edgeIndex(e)
	if i < 0 {
		return VertexID{}
	}
	return t.vertices[(i+2)%3]
}

// The edge not touching the given vertex. Nil if the vertex is not one of
// ours.
func (t *Triangle) OppositeEdge(v VertexID) EdgeID {
	i := t.vertexIndex(v)
	if i < 0 {
		return EdgeID{}
	}
	return t.edges[(i+1)%3]
}

// The edge joining the two vertices, or nil.
func (t *Triangle) FindEdgeWith(v1, v2 VertexID) EdgeID {
	for i := 0; i < 3; i++ {
		a, b := t.vertices[i], t.vertices[(i+1)%3]
		if (a == v1 && b == v2) || (a == v2 && b == v1) {
			return t.edges[i]
		}
	}
	return EdgeID{}
}
