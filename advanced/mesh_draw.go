package advanced

import (
	"fmt"

	"github.com/osuushi/triangles/internal/arena"
	"github.com/osuushi/triangles/internal/render"
)

// This is for debugging purposes only

// Segments of the mesh, i.e. the edges that came from constraints.
func (m *Mesh) Segments() []Segment {
	var result []Segment
	m.edges.Each(func(_ arena.Handle, e *Edge) bool {
		if e.isSegment {
			result = append(result, m.segment(e))
		}
		return true
	})
	return result
}

func (m *Mesh) scene() render.Scene {
	var scene render.Scene
	m.triangles.Each(func(_ arena.Handle, t *Triangle) bool {
		scene.Triangles = append(scene.Triangles, render.Triangle{
			Points:  m.Points(t.id),
			Outside: t.outside,
		})
		return true
	})
	scene.Segments = m.Segments()
	scene.Title = fmt.Sprintf("%d triangles, %d vertices, %d flips", m.NumTriangles(), m.NumVertices(), m.flips)
	return scene
}

// Helper to draw the mesh in the terminal (iTerm only) for debugging.
func (m *Mesh) dbgDraw(scale float64) {
	if err := m.scene().Preview(scale); err != nil {
		m.log().Sugar().Warnf("cannot draw mesh: %v", err)
	}
}
