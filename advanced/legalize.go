package advanced

import (
	"github.com/osuushi/triangles/internal/geom"
)

// Restore the Delaunay property around freshly created triangles by flipping
// illegal edges until none are left. Fixed edges and segments are never
// flipped. Diagonals created by a flip are checked again like any other edge.
func (m *Mesh) fixTriangles(tris []TriangleID, fixedEdges []EdgeID, sink triangleSink) {
	m.level++
	level := m.level
	for _, eid := range fixedEdges {
		m.edge(eid).level = level
	}

	var queue []EdgeID
	enqueue := func(t *Triangle, except EdgeID) {
		for _, eid := range t.edges {
			if eid == except {
				continue
			}
			e := m.edge(eid)
			if e.level < level && !e.isSegment {
				queue = append(queue, eid)
			}
		}
	}
	for _, tid := range tris {
		if t, ok := m.Triangle(tid); ok {
			enqueue(t, EdgeID{})
		}
	}

	n := m.edges.Len()
	budget := n*n + 1024
	for len(queue) > 0 {
		todo := queue
		queue = nil
		for _, eid := range todo {
			e, ok := m.Edge(eid)
			// Gone by an earlier flip of this batch
			if !ok || e.level >= level || e.isSegment {
				continue
			}
			if !m.isIllegalEdge(e) || !m.canFlip(e) {
				continue
			}

			budget--
			if budget < 0 {
				fatalf("legalization did not terminate after %d flips", n*n+1024)
			}

			t1, t2, sNew := m.flip(e)
			appendToSink(sink, t1, t2)
			enqueue(m.triangle(t1), sNew)
			enqueue(m.triangle(t2), sNew)
		}
	}
}

// An edge is illegal if either opposite vertex is strictly inside the
// circumcircle of the triangle on the other side.
func (m *Mesh) isIllegalEdge(e *Edge) bool {
	if !e.HasBothSides() {
		return false
	}
	left := m.triangle(e.left)
	right := m.triangle(e.right)

	if center, radius, ok := m.circumcircle(left); ok {
		if geom.InCircle(m.point(right.OppositeVertex(e.id)), center, radius) > 0 {
			return true
		}
	}
	if center, radius, ok := m.circumcircle(right); ok {
		if geom.InCircle(m.point(left.OppositeVertex(e.id)), center, radius) > 0 {
			return true
		}
	}
	return false
}

// An edge can be flipped if the line between the opposite vertices strictly
// crosses it, i.e. the two triangles form a convex quadrilateral.
func (m *Mesh) canFlip(e *Edge) bool {
	if !e.HasBothSides() {
		return false
	}
	v1 := m.triangle(e.left).OppositeVertex(e.id)
	v2 := m.triangle(e.right).OppositeVertex(e.id)
	return Segment{P1: m.point(v1), P2: m.point(v2)}.Crosses(m.segment(e))
}

// Replace the two triangles adjacent to an edge by the two triangles sharing
// the other diagonal. Returns the new triangles and the new edge.
func (m *Mesh) flip(e *Edge) (TriangleID, TriangleID, EdgeID) {
	if !e.HasBothSides() {
		fatalf("cannot flip boundary edge %s", e.id)
	}
	t1 := m.triangle(e.left)
	t2 := m.triangle(e.right)
	if t1.outside != t2.outside {
		fatalf("cannot flip %s between an inside and an outside triangle", e.id)
	}
	outside := t1.outside

	t1Ext := t1.OppositeVertex(e.id)
	t1S1 := t1.FindEdgeWith(t1Ext, e.v1)
	t1S2 := t1.FindEdgeWith(t1Ext, e.v2)
	t2Ext := t2.OppositeVertex(e.id)
	t2S1 := t2.FindEdgeWith(t2Ext, e.v1)
	t2S2 := t2.FindEdgeWith(t2Ext, e.v2)

	m.unlinkTriangle(t1.id)
	m.unlinkTriangle(t2.id)

	sNew := m.createEdge(t1Ext, t2Ext)
	t1New := m.createTriangle(sNew, t1S1, t2S1)
	t2New := m.createTriangle(sNew, t1S2, t2S2)
	m.triangle(t1New).outside = outside
	m.triangle(t2New).outside = outside

	m.removeTriangle(t1.id)
	m.removeTriangle(t2.id)

	m.flips++
	return t1New, t2New, sNew
}

// Can the vertex be dissolved by removing the edge and its opposite edge?
// This requires v to have exactly four edges, and the far vertices of the two
// triangles adjacent to e to be collinear with v, on opposite sides of it.
func (m *Mesh) canJoinVia(e *Edge, v VertexID) bool {
	if !e.HasVertex(v) || len(m.vertex(v).edges) != 4 {
		return false
	}
	for _, eid := range m.vertex(v).edges {
		if !m.edge(eid).HasBothSides() {
			return false
		}
	}
	a := m.triangle(e.left).OppositeVertex(e.id)
	b := m.triangle(e.right).OppositeVertex(e.id)
	return Segment{P1: m.point(a), P2: m.point(b)}.PointOn(m.point(v))
}

// Dissolve a degree-4 vertex through which two straight lines pass. The four
// triangles around it become two, sharing a new edge from a to b, the far
// vertices of the triangles adjacent to e. The new edge is a segment if both
// halves it replaces were.
func (m *Mesh) joinVia(e *Edge, v VertexID) (TriangleID, TriangleID, EdgeID) {
	if !m.canJoinVia(e, v) {
		fatalf("cannot join via %s at %s", e.id, v)
	}
	w1 := e.Other(v)
	ta := m.triangle(e.left)
	tb := m.triangle(e.right)
	a := ta.OppositeVertex(e.id)
	b := tb.OppositeVertex(e.id)

	va := m.edge(ta.FindEdgeWith(v, a))
	vb := m.edge(tb.FindEdgeWith(v, b))
	taOpp := va.OtherTriangle(ta.id)
	tbOpp := vb.OtherTriangle(tb.id)
	if taOpp.IsNil() || tbOpp.IsNil() {
		fatalf("vertex %s has four edges but is on the boundary", v)
	}
	taOuter := m.triangle(taOpp)
	tbOuter := m.triangle(tbOpp)
	w2 := taOuter.OppositeVertex(va.id)
	if tbOuter.OppositeVertex(vb.id) != w2 {
		fatalf("triangles around %s do not close", v)
	}

	aW1 := ta.FindEdgeWith(a, w1)
	bW1 := tb.FindEdgeWith(b, w1)
	aW2 := taOuter.FindEdgeWith(a, w2)
	bW2 := tbOuter.FindEdgeWith(b, w2)

	isSegment := va.isSegment && vb.isSegment
	permanent := va.IsPermanent() && vb.IsPermanent()
	outside1 := ta.outside
	outside2 := taOuter.outside
	old := []TriangleID{ta.id, tb.id, taOuter.id, tbOuter.id}

	for _, tid := range old {
		m.unlinkTriangle(tid)
	}

	ab := m.createEdge(a, b)
	abEdge := m.edge(ab)
	abEdge.isSegment = isSegment
	if permanent {
		abEdge.level = permanentLevel
	}
	t1 := m.createTriangle(ab, aW1, bW1)
	t2 := m.createTriangle(ab, aW2, bW2)
	m.triangle(t1).outside = outside1
	m.triangle(t2).outside = outside2

	for _, tid := range old {
		m.removeTriangle(tid)
	}
	m.removeOrphanVertex(v)

	return t1, t2, ab
}
