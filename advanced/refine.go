package advanced

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/osuushi/triangles/internal/arena"
	"github.com/osuushi/triangles/internal/geom"
)

// Quality marks, see Parameters.MarkTriangles
const (
	MarkSkinny      = 1
	MarkInvalid     = 2
	MarkNonDelaunay = 4
)

// Centers closer than this (relative to the segment length) to the center of
// a segment of the triangle are snapped onto it.
const centerSnap = 1e-3

type RefineStats struct {
	Iterations int
	// False if MaxIterations ran out before every triangle was good
	Converged bool
	// Circumcenters inserted
	Inserted int
	// Encroached segments split
	Splits int
	// Vertices removed from the diametral circles of split segments
	Removed int
}

func (m *Mesh) isSkinny(t *Triangle, params Parameters) bool {
	if params.MinB < geom.Epsilon {
		return false
	}
	b := m.quality(t)
	delta := (b + params.MinB) * geom.Epsilon
	return b < params.MinB-delta
}

func (m *Mesh) isInvalid(t *Triangle, params Parameters) bool {
	if m.isSkinny(t, params) {
		return true
	}
	maxArea := params.MaxArea
	if params.MaxAreaBorder > geom.Epsilon && m.numSegments(t) > 0 {
		maxArea = params.MaxAreaBorder
	}
	if maxArea > geom.Epsilon {
		a := m.area(t)
		delta := (a + maxArea) * geom.Epsilon
		return a > maxArea+delta
	}
	return false
}

// Improve the inside triangles until none is skinny or too large, by inserting
// circumcenters. A circumcenter beyond a segment splits the segment instead,
// and clears the diametral circle of the split point of free vertices.
// Outside triangles are removed at the end.
func (m *Mesh) Refine(params Parameters) (stats RefineStats, err error) {
	defer func() {
		if recoveredErr := handlePanicRecover(recover()); recoveredErr != nil {
			err = recoveredErr
		}
	}()
	if err := params.Validate(); err != nil {
		return stats, err
	}
	return m.refine(params), nil
}

func (m *Mesh) refine(params Parameters) RefineStats {
	var stats RefineStats

	if params.MinB < geom.Epsilon && params.MaxArea < geom.Epsilon && params.MaxAreaBorder < geom.Epsilon {
		m.removeOutsideTriangles()
		stats.Converged = true
		return stats
	}

	newTriangles := m.Triangles()
	for params.MaxIterations == 0 || stats.Iterations < params.MaxIterations {
		var toConsider []TriangleID
		for _, tid := range newTriangles {
			if t, ok := m.Triangle(tid); ok && !t.outside && m.isInvalid(t, params) {
				toConsider = append(toConsider, tid)
			}
		}
		if len(toConsider) == 0 {
			stats.Converged = true
			break
		}

		stats.Iterations++
		m.log().Debug("refinement iteration",
			zap.Int("iteration", stats.Iterations),
			zap.Int("candidates", len(toConsider)),
			zap.Int("triangles", m.NumTriangles()),
		)

		newTriangles = nil
		for _, tid := range toConsider {
			t, ok := m.Triangle(tid)
			// Gone by an earlier edit of this round
			if !ok {
				continue
			}
			m.refineTriangle(t, params, &newTriangles, &stats)
		}
	}

	if !stats.Converged {
		m.log().Info("refinement ran out of iterations", zap.Int("max_iterations", params.MaxIterations))
	}
	if params.MarkTriangles {
		m.markTriangles(params)
	}
	m.removeOutsideTriangles()

	m.log().Debug("refinement done",
		zap.Int("iterations", stats.Iterations),
		zap.Bool("converged", stats.Converged),
		zap.Int("inserted", stats.Inserted),
		zap.Int("splits", stats.Splits),
		zap.Int("removed", stats.Removed),
	)
	return stats
}

func (m *Mesh) refineTriangle(t *Triangle, params Parameters, sink triangleSink, stats *RefineStats) {
	center, _, ok := m.circumcircle(t)
	if !ok {
		return
	}

	if s := m.contains(t, center); s >= 0 {
		if s > 0 {
			for _, eid := range t.edges {
				e := m.edge(eid)
				if !e.isSegment {
					continue
				}
				seg := m.segment(e)
				if c := seg.Center(); c.Distance(center) < centerSnap*seg.Length() {
					center = c
				}
			}
		}
		m.insertCenter(center, sink, stats)
		return
	}

	// Find the edge the center is behind, and look from the opposite vertex
	var vstart VertexID
	for _, eid := range t.edges {
		e := m.edge(eid)
		vstart = t.OppositeVertex(eid)
		if m.sideOf(e, m.point(vstart))*m.sideOf(e, center) < 0 {
			break
		}
	}

	closest := m.findClosestEdge(center, vstart, true)
	if closest.IsNil() {
		fatalf("no edge towards circumcenter %v of %s", center, t.id)
	}
	e := m.edge(closest)

	if !e.isSegment || m.sideOf(e, m.point(vstart))*m.sideOf(e, center) >= 0 {
		m.insertCenter(center, sink, stats)
		return
	}

	// The center is beyond a segment, which is encroached: split it instead
	seg := m.segment(e)
	radius := seg.Length() * 0.5
	if radius < params.MinLength {
		return
	}
	vnew, err := m.insertPoint(seg.Center(), sink)
	if err != nil {
		fatalf("splitting segment %s: %v", e.id, err)
	}
	stats.Splits++

	var toDelete []VertexID
	for _, v := range m.findPointsAround(vnew, radius) {
		if !m.isOnSegment(v) && !m.vertex(v).IsPrecious() {
			toDelete = append(toDelete, v)
		}
	}
	for _, v := range toDelete {
		m.remove(v, sink)
		stats.Removed++
	}
}

// Insert a circumcenter. Centers outside of a constrained mesh are dropped.
func (m *Mesh) insertCenter(center Point, sink triangleSink, stats *RefineStats) {
	if _, err := m.insertPoint(center, sink); err != nil {
		if errors.Is(err, ErrOutsideConstrained) {
			m.log().Debug("skipping circumcenter outside of the mesh", zap.Stringer("center", center))
			return
		}
		fatalf("inserting circumcenter %v: %v", center, err)
	}
	stats.Inserted++
}

func (m *Mesh) isOnSegment(v VertexID) bool {
	for _, eid := range m.vertex(v).edges {
		if m.edge(eid).isSegment {
			return true
		}
	}
	return false
}

func (m *Mesh) markTriangles(params Parameters) {
	m.triangles.Each(func(_ arena.Handle, t *Triangle) bool {
		var marks uint64
		if !t.outside {
			if m.isSkinny(t, params) {
				marks |= MarkSkinny
			}
			if m.isInvalid(t, params) {
				marks |= MarkInvalid
			}
			if center, radius, ok := m.circumcircle(t); ok && len(m.FindInsideCircle(center, radius)) > 0 {
				marks |= MarkNonDelaunay
			}
		}
		t.serial = marks
		return true
	})
}

// Drop the triangles marked as outside, along with the edges and vertices
// only they used.
func (m *Mesh) RemoveOutsideTriangles() {
	m.removeOutsideTriangles()
}

func (m *Mesh) removeOutsideTriangles() {
	var toRemove []TriangleID
	var corners []VertexID
	m.triangles.Each(func(h arena.Handle, t *Triangle) bool {
		if t.outside {
			toRemove = append(toRemove, TriangleID(h))
			corners = append(corners, t.vertices[:]...)
		}
		return true
	})
	for _, tid := range toRemove {
		m.removeTriangle(tid)
	}
	for _, v := range corners {
		if vertex, ok := m.Vertex(v); ok && vertex.IsOrphan() {
			m.removeOrphanVertex(v)
		}
	}
}
