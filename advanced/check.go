package advanced

import (
	"github.com/pkg/errors"

	"github.com/osuushi/triangles/internal/arena"
	"github.com/osuushi/triangles/internal/geom"
)

// Check performs sanity checks on the references between the mesh elements
// and on the orientation of the triangles. Returns nil if no issues were
// found. You normally shouldn't need to call this but it can be useful for
// debugging.
func (m *Mesh) Check() (err error) {
	defer func() {
		if recoveredErr := handlePanicRecover(recover()); recoveredErr != nil {
			err = recoveredErr
		}
	}()

	m.triangles.Each(func(h arena.Handle, t *Triangle) bool {
		err = m.checkTriangle(TriangleID(h), t)
		return err == nil
	})
	if err != nil {
		return err
	}

	m.edges.Each(func(h arena.Handle, e *Edge) bool {
		err = m.checkEdge(EdgeID(h), e)
		return err == nil
	})
	if err != nil {
		return err
	}

	m.vertices.Each(func(h arena.Handle, v *Vertex) bool {
		err = m.checkVertex(VertexID(h), v)
		return err == nil
	})
	return err
}

func (m *Mesh) checkTriangle(id TriangleID, t *Triangle) error {
	if t.id != id {
		return errors.Errorf("triangle %s thinks it is %s", id, t.id)
	}
	for i := 0; i < 3; i++ {
		e, ok := m.Edge(t.edges[i])
		if !ok {
			return errors.Errorf("triangle %s uses stale edge %s", id, t.edges[i])
		}
		a, b := t.vertices[i], t.vertices[(i+1)%3]
		switch {
		case e.v1 == a && e.v2 == b:
			if e.right != id {
				return errors.Errorf("triangle %s is not right of its edge %s", id, e.id)
			}
		case e.v1 == b && e.v2 == a:
			if e.left != id {
				return errors.Errorf("triangle %s is not left of its edge %s", id, e.id)
			}
		default:
			return errors.Errorf("edge %d of triangle %s does not join its vertices %d and %d", i, id, i, (i+1)%3)
		}
	}
	pa, pb, pc := m.point(t.vertices[0]), m.point(t.vertices[1]), m.point(t.vertices[2])
	if geom.SignedArea(pa, pb, pc) >= 0 {
		return errors.Errorf("triangle %s (%v, %v, %v) is not clockwise", id, pa, pb, pc)
	}
	return nil
}

func (m *Mesh) checkEdge(id EdgeID, e *Edge) error {
	if e.id != id {
		return errors.Errorf("edge %s thinks it is %s", id, e.id)
	}
	if e.IsOrphan() {
		return errors.Errorf("edge %s has no triangles", id)
	}
	for _, vid := range [2]VertexID{e.v1, e.v2} {
		v, ok := m.Vertex(vid)
		if !ok {
			return errors.Errorf("edge %s uses stale vertex %s", id, vid)
		}
		if !v.HasEdge(id) {
			return errors.Errorf("vertex %s does not list its edge %s", vid, id)
		}
	}
	for _, tid := range e.Triangles() {
		t, ok := m.Triangle(tid)
		if !ok {
			return errors.Errorf("edge %s is adjacent to stale triangle %s", id, tid)
		}
		if !t.HasEdge(id) {
			return errors.Errorf("triangle %s does not use its adjacent edge %s", tid, id)
		}
	}
	return nil
}

func (m *Mesh) checkVertex(id VertexID, v *Vertex) error {
	if v.id != id {
		return errors.Errorf("vertex %s thinks it is %s", id, v.id)
	}
	neighbors := make(map[VertexID]EdgeID, len(v.edges))
	for _, eid := range v.edges {
		e, ok := m.Edge(eid)
		if !ok {
			return errors.Errorf("vertex %s lists stale edge %s", id, eid)
		}
		other := e.Other(id)
		if other.IsNil() {
			return errors.Errorf("vertex %s lists edge %s, which does not use it", id, eid)
		}
		if previous, ok := neighbors[other]; ok {
			return errors.Errorf("vertices %s and %s are joined by both %s and %s", id, other, previous, eid)
		}
		neighbors[other] = eid
	}
	return nil
}

// Check that no edge between two triangles is illegal, segments excepted.
// This holds for meshes built by insertion alone.
func (m *Mesh) CheckDelaunay() (err error) {
	defer func() {
		if recoveredErr := handlePanicRecover(recover()); recoveredErr != nil {
			err = recoveredErr
		}
	}()
	m.edges.Each(func(h arena.Handle, e *Edge) bool {
		if !e.isSegment && m.isIllegalEdge(e) {
			err = errors.Errorf("edge %s (%v) is not Delaunay", e.id, m.segment(e))
		}
		return err == nil
	})
	return err
}
