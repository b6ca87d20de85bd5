package advanced

import (
	"github.com/pkg/errors"

	"github.com/osuushi/triangles/internal/geom"
)

// Remove a vertex and retriangulate the hole it leaves, restoring the
// Delaunay property around it. The handle becomes stale.
//
// Removing a vertex on the boundary of the mesh fills in concave corners, so
// the mesh shrinks. Removing an orphan vertex that is not waiting to seed the
// mesh does nothing. Once the mesh is constrained, vertices on segments stay.
func (m *Mesh) RemoveVertex(v VertexID) (err error) {
	defer func() {
		if recoveredErr := handlePanicRecover(recover()); recoveredErr != nil {
			err = recoveredErr
		}
	}()
	if !m.ValidVertex(v) {
		return errors.Wrapf(ErrStaleHandle, "cannot remove %s", v)
	}
	if m.isConstrained && m.isOnSegment(v) {
		return errors.Wrapf(ErrSegmentVertex, "cannot remove %s", v)
	}
	m.remove(v, nil)
	return nil
}

func (m *Mesh) remove(v VertexID, sink triangleSink) {
	vertex := m.vertex(v)
	if vertex.IsOrphan() {
		for i, pending := range m.pending {
			if pending == v {
				m.pending = append(m.pending[:i], m.pending[i+1:]...)
				m.removeOrphanVertex(v)
				break
			}
		}
		return
	}

	onBoundary := false
	for _, eid := range vertex.edges {
		if m.edge(eid).IsOutside() {
			onBoundary = true
			break
		}
	}

	if onBoundary {
		m.removeOutsideVertex(v, sink)
	} else {
		m.removeInsideVertex(v, sink)
	}
}

// The triangles using a vertex, each listed once.
func (m *Mesh) vertexTriangles(v VertexID) []TriangleID {
	var result []TriangleID
	seen := make(map[TriangleID]struct{})
	for _, eid := range m.vertex(v).edges {
		for _, tid := range m.edge(eid).Triangles() {
			if _, ok := seen[tid]; !ok {
				seen[tid] = struct{}{}
				result = append(result, tid)
			}
		}
	}
	return result
}

func (m *Mesh) removeOutsideVertex(v VertexID, sink triangleSink) {
	toRemove := m.vertexTriangles(v)
	outerEdges := make([]EdgeID, 0, len(toRemove))
	outside := false
	for _, tid := range toRemove {
		t := m.triangle(tid)
		outerEdges = append(outerEdges, t.OppositeEdge(v))
		outside = outside || t.outside
	}

	for _, tid := range toRemove {
		m.unlinkTriangle(tid)
	}

	newTriangles := m.fillConcaveCorners(outerEdges, m.point(v), outside)

	for _, tid := range toRemove {
		m.removeTriangle(tid)
	}
	m.removeOrphanVertex(v)

	appendToSink(sink, newTriangles...)
	m.fixTriangles(newTriangles, nil, sink)
}

// The edges opposite of a removed boundary vertex form one or more chains.
// Zip each chain up from its reflex corners: a corner is filled with a
// triangle if the new edge across it separates the corner from the removed
// vertex (or runs through it), so the triangle stays inside the area the
// vertex used to cover.
func (m *Mesh) fillConcaveCorners(edges []EdgeID, removed Point, outside bool) []TriangleID {
	var newTriangles []TriangleID
	for _, chain := range m.chains(edges) {
		vertices := chain.vertices
		chainEdges := chain.edges

		for filled := true; filled; {
			filled = false
			for i := 1; i < len(vertices)-1; i++ {
				prev, corner, next := m.point(vertices[i-1]), m.point(vertices[i]), m.point(vertices[i+1])
				// The removed vertex may sit on the new edge, as when it was on a
				// straight part of the boundary.
				side := geom.SideOf(prev, next, corner)
				if side == 0 || side*geom.SideOf(prev, next, removed) > 0 {
					continue
				}

				e := m.createEdge(vertices[i-1], vertices[i+1])
				t := m.createTriangle(chainEdges[i-1], chainEdges[i], e)
				m.triangle(t).outside = outside
				newTriangles = append(newTriangles, t)

				vertices = append(vertices[:i], vertices[i+1:]...)
				chainEdges[i-1] = e
				chainEdges = append(chainEdges[:i], chainEdges[i+1:]...)
				filled = true
				break
			}
		}
	}
	return newTriangles
}

// An open path of edges. Edge i joins vertex i and vertex i+1.
type edgeChain struct {
	vertices []VertexID
	edges    []EdgeID
}

// Order a set of edges into open chains, starting from vertices used by a
// single edge. Closed loops are ignored.
func (m *Mesh) chains(edges []EdgeID) []edgeChain {
	byVertex := make(map[VertexID][]EdgeID)
	var order []VertexID
	for _, eid := range edges {
		e := m.edge(eid)
		for _, v := range [2]VertexID{e.v1, e.v2} {
			if _, ok := byVertex[v]; !ok {
				order = append(order, v)
			}
			byVertex[v] = append(byVertex[v], eid)
		}
	}

	used := make(map[EdgeID]bool)
	var result []edgeChain
	for _, start := range order {
		if len(byVertex[start]) != 1 || used[byVertex[start][0]] {
			continue
		}
		chain := edgeChain{vertices: []VertexID{start}}
		for v := start; ; {
			var next EdgeID
			for _, eid := range byVertex[v] {
				if !used[eid] {
					next = eid
					break
				}
			}
			if next.IsNil() {
				break
			}
			used[next] = true
			v = m.edge(next).Other(v)
			chain.edges = append(chain.edges, next)
			chain.vertices = append(chain.vertices, v)
		}
		result = append(result, chain)
	}
	return result
}

// Contract the fan around an interior vertex by flipping its edges away until
// three are left, then merge the remaining three triangles into one. If two
// of the edges are collinear, the contraction can get stuck at four edges, in
// which case the vertex is dissolved by joining across it.
func (m *Mesh) removeInsideVertex(v VertexID, sink triangleSink) {
	var toFix []TriangleID

	for len(m.vertex(v).edges) > 3 {
		toFlip := m.flippableEdgeOf(v)
		if toFlip == nil {
			break
		}
		t1, t2, _ := m.flip(toFlip)
		toFix = append(toFix, t1, t2)
		appendToSink(sink, t1, t2)
	}

	if n := len(m.vertex(v).edges); n > 3 {
		if n != 4 {
			fatalf("cannot contract vertex %s below %d edges", v, n)
		}
		var joinEdge *Edge
		for _, eid := range m.vertex(v).edges {
			if e := m.edge(eid); m.canJoinVia(e, v) {
				joinEdge = e
				break
			}
		}
		if joinEdge == nil {
			fatalf("vertex %s is stuck at four edges and cannot be joined", v)
		}
		t1, t2, _ := m.joinVia(joinEdge, v)
		toFix = append(toFix, t1, t2)
		appendToSink(sink, t1, t2)
	} else {
		toRemove := m.vertexTriangles(v)
		if len(toRemove) != 3 {
			fatalf("interior vertex %s with three edges has %d triangles", v, len(toRemove))
		}
		var outerEdges [3]EdgeID
		outside := false
		for i, tid := range toRemove {
			t := m.triangle(tid)
			outerEdges[i] = t.OppositeEdge(v)
			outside = outside || t.outside
		}
		for _, tid := range toRemove {
			m.unlinkTriangle(tid)
		}
		nt := m.createTriangle(outerEdges[0], outerEdges[1], outerEdges[2])
		m.triangle(nt).outside = outside
		for _, tid := range toRemove {
			m.removeTriangle(tid)
		}
		m.removeOrphanVertex(v)
		toFix = append(toFix, nt)
		appendToSink(sink, nt)
	}

	m.fixTriangles(toFix, nil, sink)
}

// An edge of v that can be flipped away. Segments are never flipped.
func (m *Mesh) flippableEdgeOf(v VertexID) *Edge {
	for _, eid := range m.vertex(v).edges {
		if e := m.edge(eid); !e.isSegment && m.canFlip(e) {
			return e
		}
	}
	return nil
}
