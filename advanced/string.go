package advanced

import (
	"fmt"
	"io"
	"strings"

	"github.com/logrusorgru/aurora"

	"github.com/osuushi/triangles/dbg"
	"github.com/osuushi/triangles/internal/arena"
)

func (v *Vertex) String() string {
	name := dbg.Name(v.id)
	if v.IsPrecious() {
		name = aurora.Yellow(name).String()
	}
	return fmt.Sprintf("Vertex %s %s (%d edges)", name, v.point, len(v.edges))
}

func (e *Edge) String() string {
	return fmt.Sprintf("Edge %s {%s → %s} <L: %s, R: %s>",
		e.DbgName(),
		dbg.Name(e.v1),
		dbg.Name(e.v2),
		dbg.Name(e.left),
		dbg.Name(e.right),
	)
}

func (e *Edge) DbgName() string {
	name := dbg.Name(e.id)
	if e.isSegment {
		name = aurora.Magenta(name).String()
	} else if e.IsPermanent() {
		name = aurora.Blue(name).String()
	} else if e.IsOutside() {
		name = aurora.Cyan(name).String()
	}
	return name
}

func (t *Triangle) String() string {
	var parts []string
	for _, v := range t.vertices {
		parts = append(parts, dbg.Name(v))
	}
	return fmt.Sprintf("Triangle %s (%s)", t.DbgName(), strings.Join(parts, ", "))
}

func (t *Triangle) DbgName() string {
	name := dbg.Name(t.id)
	if t.outside {
		name = aurora.Red(name).String()
	} else {
		name = aurora.Green(name).String()
	}
	return name
}

// Write a readable listing of every element, for debugging.
func (m *Mesh) Dump(w io.Writer) {
	fmt.Fprintf(w, "%s: %d vertices, %d edges, %d triangles, %d flips, %d hops\n",
		aurora.Bold("Mesh"), m.NumVertices(), m.NumEdges(), m.NumTriangles(), m.flips, m.hops)
	m.vertices.Each(func(_ arena.Handle, v *Vertex) bool {
		fmt.Fprintf(w, "  %s\n", v)
		return true
	})
	m.edges.Each(func(_ arena.Handle, e *Edge) bool {
		fmt.Fprintf(w, "  %s\n", e)
		return true
	})
	m.triangles.Each(func(_ arena.Handle, t *Triangle) bool {
		fmt.Fprintf(w, "  %s\n", t)
		return true
	})
}
