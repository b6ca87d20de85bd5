package advanced

import (
	"math"

	"github.com/osuushi/triangles/internal/arena"
	"github.com/osuushi/triangles/internal/geom"
)

// Is the edge adjacent to a triangle marked as outside?
func (m *Mesh) isForOutsideTriangles(e *Edge) bool {
	for _, tid := range e.Triangles() {
		if m.triangle(tid).outside {
			return true
		}
	}
	return false
}

// Pick a starting vertex for a walk towards p by looking at a sample of about
// sqrt(N) vertices.
func (m *Mesh) sampleStartVertex(p Point) VertexID {
	handles := m.triangles.Handles()
	if len(handles) == 0 {
		return VertexID{}
	}
	start := m.triangle(TriangleID(handles[0])).vertices[0]
	dmin := m.point(start).Distance(p)

	n := m.vertices.Slots()
	stride := n
	sampled := 0
	for sampled*sampled < stride {
		stride /= 2
		if stride == 0 {
			break
		}
		for i := stride / 2; i < n; i += stride {
			sampled++
			h, v, ok := m.vertices.At(i)
			if !ok || v.IsOrphan() {
				continue
			}
			if d := v.point.Distance(p); d < dmin {
				start = VertexID(h)
				dmin = d
			}
		}
	}
	return start
}

// Walk from a start vertex towards p, always moving along the incident edge
// closest to p, and return the closest edge found. With insideOnly, the walk
// stays on the line of sight from the start vertex and does not enter outside
// triangles, so it cannot wander around outside pockets of a constrained mesh.
func (m *Mesh) findClosestEdge(p Point, start VertexID, insideOnly bool) EdgeID {
	if start.IsNil() {
		start = m.sampleStartVertex(p)
		if start.IsNil() {
			return EdgeID{}
		}
	}

	line := Segment{P1: m.point(start), P2: p}

	d := -1.0
	var edge *Edge
	v := start

	// Every hop either gets strictly closer or takes a tie break, so this is
	// generous.
	maxHops := 4*m.edges.Len() + 64
	for hops := 0; !v.IsNil(); hops++ {
		if hops > maxHops {
			fatalf("closest edge walk towards %v did not terminate", p)
		}

		var next VertexID
		for _, eid := range m.vertex(v).edges {
			e := m.edge(eid)
			s := m.segment(e)
			if insideOnly {
				if !e.isSegment && m.isForOutsideTriangles(e) {
					continue
				}
				if !s.CrossesIncluding(line) {
					continue
				}
			}

			ds := s.Distance(p)
			if d < 0 || ds < d {
				d = ds
				edge = e
				next = e.Other(v)
			} else if math.Abs(ds-d) < math.Max(1, math.Abs(ds)+math.Abs(d))*geom.Epsilon {
				// Equally close. If both edges share the vertex that determines the
				// distance, prefer the one that bends further towards p. This keeps
				// the walk from oscillating.
				cv := edge.CommonVertex(e)
				if cv.IsNil() {
					continue
				}
				c := m.point(cv)
				edgeD := m.point(edge.Other(cv)).Sub(c)
				eD := m.point(e.Other(cv)).Sub(c)
				r := p.Sub(c)
				edgeProjection := r.Dot(edgeD) / edgeD.Length()
				eProjection := r.Dot(eD) / eD.Length()
				if eProjection > edgeProjection+geom.Epsilon {
					edge = e
					next = e.Other(v)
				}
			}
		}

		m.hops++
		v = next
	}

	if edge == nil {
		return EdgeID{}
	}
	return edge.id
}

// Find the mesh edge closest to p. start may be nil, in which case a starting
// point is chosen from a sample of the vertices. Returns false on an empty
// mesh, or when insideOnly leaves nothing to walk on.
func (m *Mesh) FindClosestEdge(p Point, start VertexID, insideOnly bool) (result EdgeID, ok bool, err error) {
	defer func() {
		if recoveredErr := handlePanicRecover(recover()); recoveredErr != nil {
			err = recoveredErr
		}
	}()
	if !start.IsNil() && !m.ValidVertex(start) {
		return EdgeID{}, false, ErrStaleHandle
	}
	result = m.findClosestEdge(p, start, insideOnly)
	return result, !result.IsNil(), nil
}

func (m *Mesh) findTriangleForPoint(p Point) []TriangleID {
	eid := m.findClosestEdge(p, VertexID{}, false)
	if eid.IsNil() {
		return nil
	}
	var result []TriangleID
	for _, tid := range m.edge(eid).Triangles() {
		if m.contains(m.triangle(tid), p) >= 0 {
			result = append(result, tid)
		}
	}
	return result
}

// The triangles containing p: none if p is outside the mesh, one if it is
// inside a triangle, two if it is exactly on an edge between two triangles.
func (m *Mesh) FindTriangleForPoint(p Point) (result []TriangleID, err error) {
	defer func() {
		if recoveredErr := handlePanicRecover(recover()); recoveredErr != nil {
			err = recoveredErr
		}
	}()
	return m.findTriangleForPoint(p), nil
}

func (m *Mesh) findVertexForPoint(p Point) VertexID {
	eid := m.findClosestEdge(p, VertexID{}, false)
	if eid.IsNil() {
		for _, v := range m.pending {
			if m.point(v).Equal(p) {
				return v
			}
		}
		return VertexID{}
	}
	e := m.edge(eid)
	if m.point(e.v1).Equal(p) {
		return e.v1
	} else if m.point(e.v2).Equal(p) {
		return e.v2
	}

	// The walk cannot cross holes or gaps between regions
	var result VertexID
	m.vertices.Each(func(h arena.Handle, v *Vertex) bool {
		if !v.IsOrphan() && v.point.Equal(p) {
			result = VertexID(h)
			return false
		}
		return true
	})
	return result
}

// The vertex at p (within tolerance), if any.
func (m *Mesh) FindVertexForPoint(p Point) (result VertexID, ok bool, err error) {
	defer func() {
		if recoveredErr := handlePanicRecover(recover()); recoveredErr != nil {
			err = recoveredErr
		}
	}()
	result = m.findVertexForPoint(p)
	return result, !result.IsNil(), nil
}

func (m *Mesh) findEdgeForPoints(p1, p2 Point) EdgeID {
	v := m.findVertexForPoint(p1)
	if v.IsNil() {
		return EdgeID{}
	}
	for _, eid := range m.vertex(v).edges {
		e := m.edge(eid)
		if m.point(e.Other(v)).Equal(p2) {
			return eid
		}
	}
	return EdgeID{}
}

// The edge between the vertices at p1 and p2, if there is one.
func (m *Mesh) FindEdgeForPoints(p1, p2 Point) (result EdgeID, ok bool, err error) {
	defer func() {
		if recoveredErr := handlePanicRecover(recover()); recoveredErr != nil {
			err = recoveredErr
		}
	}()
	result = m.findEdgeForPoints(p1, p2)
	return result, !result.IsNil(), nil
}

// Vertices strictly inside the circle of the given radius around v, reachable
// from v through vertices that are inside as well. v itself is not included.
func (m *Mesh) findPointsAround(v VertexID, radius float64) []VertexID {
	center := m.point(v)
	seen := map[VertexID]struct{}{v: {}}
	var result []VertexID
	current := []VertexID{v}
	for len(current) > 0 {
		var next []VertexID
		for _, vid := range current {
			for _, eid := range m.vertex(vid).edges {
				other := m.edge(eid).Other(vid)
				if geom.InCircle(m.point(other), center, radius) != 1 {
					continue
				}
				if _, ok := seen[other]; ok {
					continue
				}
				seen[other] = struct{}{}
				next = append(next, other)
				result = append(result, other)
			}
		}
		current = next
	}
	return result
}

func (m *Mesh) FindPointsAround(v VertexID, radius float64) ([]VertexID, error) {
	if !m.ValidVertex(v) {
		return nil, ErrStaleHandle
	}
	return m.findPointsAround(v, radius), nil
}

// All vertices strictly inside the circle. This is a brute force scan and is
// meant for diagnostics.
func (m *Mesh) FindInsideCircle(center Point, radius float64) []VertexID {
	var result []VertexID
	m.vertices.Each(func(h arena.Handle, v *Vertex) bool {
		if !v.IsOrphan() && geom.InCircle(v.point, center, radius) == 1 {
			result = append(result, VertexID(h))
		}
		return true
	})
	return result
}
