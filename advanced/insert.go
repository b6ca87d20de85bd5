package advanced

import (
	"github.com/pkg/errors"

	"github.com/osuushi/triangles/internal/geom"
)

// Collects the triangles created by an edit, for callers that want to revisit
// them (refinement). Entries may go stale if later edits remove them.
type triangleSink *[]TriangleID

func appendToSink(sink triangleSink, triangles ...TriangleID) {
	if sink != nil {
		*sink = append(*sink, triangles...)
	}
}

// Insert a point and restore the Delaunay property around it. If a vertex
// already exists at the point (within tolerance), that vertex is returned and
// the mesh is unchanged.
//
// Points outside the current mesh extend it, unless the mesh is constrained.
// The first three points of an empty mesh form the initial triangle and must
// not be collinear.
func (m *Mesh) InsertPoint(p Point) (v VertexID, err error) {
	defer func() {
		if recoveredErr := handlePanicRecover(recover()); recoveredErr != nil {
			err = recoveredErr
		}
	}()
	return m.insertPoint(p, nil)
}

func (m *Mesh) Insert(x, y float64) (VertexID, error) {
	return m.InsertPoint(Point{X: x, Y: y})
}

func (m *Mesh) insertPoint(p Point, sink triangleSink) (VertexID, error) {
	if m.triangles.Len() == 0 {
		return m.insertIntoEmpty(p, sink)
	}

	tris := m.findTriangleForPoint(p)

	// Outside the mesh
	if len(tris) == 0 {
		if m.isConstrained {
			return VertexID{}, errors.Wrapf(ErrOutsideConstrained, "inserting %v", p)
		}
		v := m.createVertex(p)
		m.insertNewVertex(v, sink)
		return v, nil
	}

	t := m.triangle(tris[0])
	var onEdges []*Edge
	for _, eid := range t.edges {
		e := m.edge(eid)
		if m.sideOf(e, p) == 0 {
			onEdges = append(onEdges, e)
		}
	}

	switch {
	case len(onEdges) == 1:
		v := m.createVertex(p)
		m.splitTrianglesOnEdge(v, onEdges[0], sink)
		return v, nil
	case len(onEdges) > 1:
		// On two edge lines at once means we hit their common vertex
		existing := onEdges[0].CommonVertex(onEdges[1])
		if existing.IsNil() {
			fatalf("point %v is on two edges without a common vertex", p)
		}
		return existing, nil
	case len(tris) == 1:
		v := m.createVertex(p)
		m.splitTriangle(t, v, sink)
		return v, nil
	}

	fatalf("point %v is in %d triangles but on no edge", p, len(tris))
	return VertexID{}, nil
}

// Before the first triangle exists, vertices are collected until there are
// three of them.
func (m *Mesh) insertIntoEmpty(p Point, sink triangleSink) (VertexID, error) {
	for _, v := range m.pending {
		if m.point(v).Equal(p) {
			return v, nil
		}
	}

	v := m.createVertex(p)
	m.pending = append(m.pending, v)
	if len(m.pending) < 3 {
		return v, nil
	}

	a, b, c := m.pending[0], m.pending[1], m.pending[2]
	if geom.SideOf(m.point(a), m.point(b), m.point(c)) == 0 {
		// Forget the offending vertex so that the caller can continue with a
		// better one.
		m.pending = m.pending[:2]
		m.removeOrphanVertex(v)
		return VertexID{}, errors.Wrapf(ErrDegenerate, "seed points %v, %v and %v are collinear",
			m.point(a), m.point(b), p)
	}

	s1 := m.createEdge(a, b)
	s2 := m.createEdge(b, c)
	s3 := m.createEdge(c, a)
	appendToSink(sink, m.createTriangle(s1, s2, s3))
	m.pending = nil
	return v, nil
}

// Attach a vertex outside the (convex) mesh to the closest boundary edge, then
// walk along the boundary in both directions, adding triangles as long as the
// boundary edges are visible from the new vertex.
func (m *Mesh) insertNewVertex(v VertexID, sink triangleSink) {
	p := m.point(v)
	closestID := m.findClosestEdge(p, VertexID{}, false)
	if closestID.IsNil() {
		fatalf("no closest edge for %v on a non-empty mesh", p)
	}
	closest := m.edge(closestID)

	// A point on the extension of a boundary edge cannot form a triangle with
	// it, and on ties the walk may end on an inner edge. Use a boundary edge
	// of the nearer endpoint that faces the point instead.
	if !m.facesOutwards(closest, p) {
		near, far := closest.v1, closest.v2
		if p.Distance(m.point(far)) < p.Distance(m.point(near)) {
			near, far = far, near
		}
		var found *Edge
		for _, corner := range [2]VertexID{near, far} {
			for _, eid := range m.vertex(corner).edges {
				if e := m.edge(eid); e != closest && m.facesOutwards(e, p) {
					found = e
					break
				}
			}
			if found != nil {
				break
			}
		}
		if found == nil {
			fatalf("no boundary edge of %s faces %v", closest.id, p)
		}
		closest = found
	}

	s1 := m.createEdge(v, closest.v1)
	s2 := m.createEdge(v, closest.v2)

	newTriangles := []TriangleID{m.createTriangle(s1, closest.id, s2)}
	m.addMoreTriangles(&newTriangles, closest.id, closest.v1, v, s1)
	m.addMoreTriangles(&newTriangles, closest.id, closest.v2, v, s2)

	appendToSink(sink, newTriangles...)
	m.fixTriangles(newTriangles, nil, sink)
}

// Is the edge on the boundary, with p strictly on its empty side?
func (m *Mesh) facesOutwards(e *Edge, p Point) bool {
	s := m.sideOf(e, p)
	return (e.left.IsNil() && s > 0) || (e.right.IsNil() && s < 0)
}

func (m *Mesh) addMoreTriangles(newTriangles *[]TriangleID, incoming EdgeID, from, to VertexID, conn EdgeID) {
	for {
		var next *Edge
		for _, eid := range m.vertex(from).edges {
			e := m.edge(eid)
			if !e.HasVertex(to) && e.IsOutside() {
				if next != nil {
					fatalf("boundary vertex %s has more than two boundary edges", from)
				}
				next = e
			}
		}
		if next == nil {
			fatalf("boundary vertex %s has no continuing boundary edge", from)
		}

		nextVertex := next.Other(from)
		incomingVertex := m.edge(incoming).Other(from)
		fromPoint := m.point(from)
		dFromTo := m.point(to).Sub(fromPoint)

		// Stop once the next boundary edge is no longer visible, i.e. the
		// incoming and next vertex are on the same side of the line of sight.
		incomingSide := geom.CrossSign(fromPoint.Sub(m.point(incomingVertex)), dFromTo)
		nextSide := geom.CrossSign(fromPoint.Sub(m.point(nextVertex)), dFromTo)
		if incomingSide*nextSide >= 0 {
			return
		}

		nextConn := m.createEdge(nextVertex, to)
		*newTriangles = append(*newTriangles, m.createTriangle(nextConn, next.id, conn))

		incoming = next.id
		conn = nextConn
		from = nextVertex
	}
}

// Replace a triangle by three triangles fanning out from a vertex inside it.
func (m *Mesh) splitTriangle(t *Triangle, v VertexID, sink triangleSink) {
	m.unlinkTriangle(t.id)

	spokes := make(map[VertexID]EdgeID, 3)
	newEdges := make([]EdgeID, 0, 3)
	for _, corner := range t.vertices {
		e := m.createEdge(corner, v)
		spokes[corner] = e
		newEdges = append(newEdges, e)
	}

	newTriangles := make([]TriangleID, 0, 3)
	for _, eid := range t.edges {
		e := m.edge(eid)
		nt := m.createTriangle(eid, spokes[e.v1], spokes[e.v2])
		m.triangle(nt).outside = t.outside
		newTriangles = append(newTriangles, nt)
	}

	m.removeTriangle(t.id)

	appendToSink(sink, newTriangles...)
	m.fixTriangles(newTriangles, newEdges, sink)
}

// Split the edge at a vertex on it, replacing each adjacent triangle by two.
// The halves inherit the segment flag of the split edge.
func (m *Mesh) splitTrianglesOnEdge(v VertexID, split *Edge, sink triangleSink) {
	s1 := m.createEdge(split.v1, v)
	s2 := m.createEdge(split.v2, v)
	permanent := split.IsPermanent()
	m.edge(s1).isSegment = split.isSegment
	m.edge(s2).isSegment = split.isSegment

	tris := split.Triangles()
	newTriangles := make([]TriangleID, 0, 4)
	for _, tid := range tris {
		t := m.triangle(tid)
		m.unlinkTriangle(tid)

		ext := t.OppositeVertex(split.id)
		newEdge := m.createEdge(ext, v)
		for _, eid := range t.edges {
			e := m.edge(eid)
			if !e.HasVertex(ext) {
				continue
			}
			partial := s2
			if e.HasVertex(split.v1) {
				partial = s1
			}
			nt := m.createTriangle(newEdge, partial, eid)
			m.triangle(nt).outside = t.outside
			newTriangles = append(newTriangles, nt)
		}
	}

	// This removes the split edge too, as nothing uses it anymore
	for _, tid := range tris {
		m.removeTriangle(tid)
	}

	appendToSink(sink, newTriangles...)
	m.fixTriangles(newTriangles, []EdgeID{s1, s2}, sink)

	if permanent {
		m.edge(s1).level = permanentLevel
		m.edge(s2).level = permanentLevel
	}
}
