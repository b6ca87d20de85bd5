package advanced

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/osuushi/triangles/internal/geom"
)

// Walk across the triangles from one vertex towards another and collect the
// edges the straight line between them crosses. If the line runs exactly
// through a vertex on the way, the walk stops there and that vertex is
// returned as well, along with the crossings before it.
func (m *Mesh) searchEdgesCrossing(from, to VertexID) ([]EdgeID, VertexID) {
	line := Segment{P1: m.point(from), P2: m.point(to)}

	for _, eid := range m.vertex(from).edges {
		other := m.edge(eid).Other(from)
		if other == to {
			return nil, VertexID{}
		}
		if line.PointOn(m.point(other)) {
			return nil, other
		}
	}

	var current *Triangle
	var crossed *Edge
	var result []EdgeID
	for _, eid := range m.vertex(from).edges {
		for _, tid := range m.edge(eid).Triangles() {
			t := m.triangle(tid)
			opposite := m.edge(t.OppositeEdge(from))
			if m.segment(opposite).Crosses(line) {
				current = t
				crossed = opposite
				break
			}
		}
		if crossed != nil {
			break
		}
	}
	if crossed == nil {
		fatalf("no way from %s towards %s", from, to)
	}
	result = append(result, crossed.id)

	for steps := 0; ; steps++ {
		if steps > m.triangles.Len() {
			fatalf("crossing search from %s to %s did not terminate", from, to)
		}
		next := crossed.OtherTriangle(current.id)
		if next.IsNil() {
			fatalf("crossing search from %s to %s left the mesh", from, to)
		}
		current = m.triangle(next)

		far := current.OppositeVertex(crossed.id)
		if far == to {
			return result, VertexID{}
		}

		var nextCrossed *Edge
		for _, eid := range current.edges {
			if eid == crossed.id {
				continue
			}
			if e := m.edge(eid); m.segment(e).Crosses(line) {
				nextCrossed = e
				break
			}
		}
		if nextCrossed == nil {
			if line.PointOn(m.point(far)) {
				return result, far
			}
			fatalf("crossing search from %s to %s is stuck in %s", from, to, current.id)
		}
		crossed = nextCrossed
		result = append(result, crossed.id)
	}
}

type vertexPair struct {
	from, to VertexID
}

// Make sure the mesh has edges along the straight line between two vertices,
// and return them in order. Crossed edges are flipped away where a single flip
// does it; otherwise the line is split at the crossing closest to its middle
// and both halves are handled in turn. The returned edges are fixed for good:
// legalization never flips them again.
func (m *Mesh) ensureEdge(from, to VertexID) []EdgeID {
	var result []EdgeID
	stack := []vertexPair{{from, to}}
	for len(stack) > 0 {
		pair := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		var edge EdgeID
		crossed, through := m.searchEdgesCrossing(pair.from, pair.to)
		switch {
		case !through.IsNil():
			// The line runs through a vertex. Handle the part up to it first.
			stack = append(stack, vertexPair{through, pair.to}, vertexPair{pair.from, through})
			continue

		case len(crossed) == 0:
			edge = m.findEdgeBetween(pair.from, pair.to)
			if edge.IsNil() {
				fatalf("no crossings between %s and %s, but no edge either", pair.from, pair.to)
			}

		case len(crossed) == 1:
			_, _, edge = m.flip(m.edge(crossed[0]))
			if e := m.edge(edge); !e.HasVertex(pair.from) || !e.HasVertex(pair.to) {
				fatalf("flipping %s did not connect %s and %s", crossed[0], pair.from, pair.to)
			}

		default:
			split := m.splitPointFor(pair, crossed)
			v, err := m.insertPoint(split, nil)
			if err != nil {
				fatalf("inserting split point %v: %v", split, err)
			}
			if v == pair.from || v == pair.to {
				fatalf("splitting %s-%s at %v hit an endpoint", pair.from, pair.to, split)
			}
			stack = append(stack, vertexPair{v, pair.to}, vertexPair{pair.from, v})
			continue
		}

		m.edge(edge).level = permanentLevel
		result = append(result, edge)
	}
	return result
}

// Of the points where the line crosses edges, the one closest to its middle.
func (m *Mesh) splitPointFor(pair vertexPair, crossed []EdgeID) Point {
	line := Segment{P1: m.point(pair.from), P2: m.point(pair.to)}
	halfSq := 0.25 * line.D().SqLength()
	var split Point
	d := -1.0
	for _, eid := range crossed {
		p, ok := m.segment(m.edge(eid)).IntersectionPoint(line)
		if !ok {
			continue
		}
		dp := math.Abs(p.Sub(line.P1).SqLength() - halfSq)
		if d < 0 || dp < d {
			d = dp
			split = p
		}
	}
	if d < 0 {
		fatalf("no intersection between %v and the crossed edges", line)
	}
	return split
}

func (m *Mesh) findEdgeBetween(a, b VertexID) EdgeID {
	for _, eid := range m.vertex(a).edges {
		if m.edge(eid).HasVertex(b) {
			return eid
		}
	}
	return EdgeID{}
}

// Make the mesh contain the straight line from one vertex to the other as a
// sequence of edges, inserting vertices along the line where needed. The
// edges are returned in order from `from` to `to`, and will not be flipped by
// later insertions.
func (m *Mesh) EnsureEdge(from, to VertexID) (result []EdgeID, err error) {
	defer func() {
		if recoveredErr := handlePanicRecover(recover()); recoveredErr != nil {
			err = recoveredErr
		}
	}()
	if !m.ValidVertex(from) || !m.ValidVertex(to) {
		return nil, errors.Wrapf(ErrStaleHandle, "cannot connect %s and %s", from, to)
	}
	if from == to {
		return nil, errors.Wrapf(ErrDegenerate, "edge from %s to itself", from)
	}
	if m.vertex(from).IsOrphan() || m.vertex(to).IsOrphan() {
		return nil, errors.Wrapf(ErrDegenerate, "%s or %s is not part of the mesh", from, to)
	}
	return m.ensureEdge(from, to), nil
}

type resolvedEdge struct {
	segment Segment
	edges   []EdgeID
	// +1 if the outer side is left of the segment, -1 if it is right
	outer int
}

// Turn closed contours of vertices into segments, and classify every triangle
// as inside or outside. Contours may run either way: a contour nested inside
// an even number of others is an outer contour, otherwise it is a hole. A mesh
// can only be constrained once; afterwards it cannot grow beyond its hull.
func (m *Mesh) Constrain(contours [][]VertexID) (err error) {
	defer func() {
		if recoveredErr := handlePanicRecover(recover()); recoveredErr != nil {
			err = recoveredErr
		}
	}()
	if m.isConstrained {
		return ErrAlreadyConstrained
	}
	for i, contour := range contours {
		for _, v := range contour {
			if !m.ValidVertex(v) {
				return errors.Wrapf(ErrStaleHandle, "contour %d", i)
			}
			if m.vertex(v).IsOrphan() {
				return errors.Wrapf(ErrDegenerate, "contour %d uses %s, which is not part of the mesh", i, v)
			}
		}
	}
	m.constrain(contours)
	return nil
}

// Which side of each contour is outside: +1 for the left side, -1 for the
// right. Outer contours have the outside to the left when they run clockwise,
// holes when they run counterclockwise.
func (m *Mesh) outerSides(contours [][]VertexID) []int {
	points := make([]Contour, len(contours))
	for i, contour := range contours {
		for _, v := range contour {
			points[i] = append(points[i], m.point(v))
		}
	}

	sides := make([]int, len(contours))
	for i, c := range points {
		if len(c) == 0 {
			continue
		}
		depth := 0
		for j, other := range points {
			if j != i && other.ContainsPointByEvenOdd(c[0]) {
				depth++
			}
		}
		if c.IsClockwise() == (depth%2 == 0) {
			sides[i] = 1
		} else {
			sides[i] = -1
		}
	}
	return sides
}

func (m *Mesh) constrain(contours [][]VertexID) {
	sides := m.outerSides(contours)

	var resolved []resolvedEdge
	for k, contour := range contours {
		for i, v := range contour {
			next := contour[(i+1)%len(contour)]
			if v == next {
				continue
			}
			resolved = append(resolved, resolvedEdge{
				segment: Segment{P1: m.point(v), P2: m.point(next)},
				edges:   m.ensureEdge(v, next),
				outer:   sides[k],
			})
		}
	}

	for _, tid := range m.Triangles() {
		m.triangle(tid).outside = false
	}

	var front []TriangleID
	for _, r := range resolved {
		d := r.segment.D()
		for _, eid := range r.edges {
			// Only crossing contours can split an edge that was already ensured
			e, ok := m.Edge(eid)
			if !ok {
				continue
			}
			e.isSegment = true

			var outer TriangleID
			switch geom.DotSign(d, m.segment(e).D()) * r.outer {
			case 1:
				outer = e.left
			case -1:
				outer = e.right
			}
			if !outer.IsNil() {
				m.triangle(outer).outside = true
				front = append(front, outer)
			}
		}
	}

	// Flood the outer side across everything but segments
	for len(front) > 0 {
		var next []TriangleID
		for _, tid := range front {
			for _, eid := range m.triangle(tid).edges {
				e := m.edge(eid)
				if e.isSegment {
					continue
				}
				other := e.OtherTriangle(tid)
				if other.IsNil() {
					continue
				}
				if t := m.triangle(other); !t.outside {
					t.outside = true
					next = append(next, other)
				}
			}
		}
		front = next
	}

	for _, r := range resolved {
		m.joinEdges(r.edges)
	}

	m.isConstrained = true
}

// Merge consecutive sub-segments of one contour edge again where the vertex
// between them can be dissolved. The vertex is removed from the mesh.
func (m *Mesh) joinEdges(edges []EdgeID) {
	if len(edges) < 2 {
		return
	}
	for _, eid := range edges {
		if !m.ValidEdge(eid) {
			return
		}
	}
	current := edges[0]
	for _, next := range edges[1:] {
		junction := m.edge(current).CommonVertex(m.edge(next))
		if junction.IsNil() {
			fatalf("consecutive segments %s and %s are not connected", current, next)
		}

		var via *Edge
		for _, eid := range m.vertex(junction).edges {
			if e := m.edge(eid); !e.isSegment && m.canJoinVia(e, junction) {
				via = e
				break
			}
		}
		if via == nil || m.vertex(junction).IsPrecious() {
			current = next
			continue
		}

		_, _, joined := m.joinVia(via, junction)
		m.log().Debug("joined segments", zap.Stringer("junction", junction), zap.Stringer("edge", joined))
		current = joined
	}
}

// Build the constrained triangulation of a set of closed contours, plus
// optional extra points inside them. The mesh is cleared first. Contours may
// run either way; nesting decides which of them are holes.
//
// Extra points are protected, so refinement does not remove them.
func (m *Mesh) CreateConstrainedDelaunay(contours [][]Point, extra []Point) (err error) {
	defer func() {
		if recoveredErr := handlePanicRecover(recover()); recoveredErr != nil {
			err = recoveredErr
		}
	}()

	var cleaned []Contour
	for i, contour := range contours {
		c := Contour(contour).Compact()
		if len(c) < 3 {
			return errors.Wrapf(ErrDegenerate, "contour %d has fewer than 3 distinct points", i)
		}
		if c.SignedArea() == 0 {
			return errors.Wrapf(ErrDegenerate, "contour %d has no area", i)
		}
		cleaned = append(cleaned, c)
	}

	m.Clear()

	var all []Point
	for _, c := range cleaned {
		all = append(all, c...)
	}
	all = append(all, extra...)

	seed, ok := seedTriple(all)
	if !ok {
		return errors.Wrapf(ErrDegenerate, "all %d points are collinear", len(all))
	}
	for _, p := range seed {
		if _, err := m.insertPoint(p, nil); err != nil {
			return err
		}
	}

	vertexContours := make([][]VertexID, 0, len(cleaned))
	for _, c := range cleaned {
		var vertices []VertexID
		for _, p := range c {
			v, err := m.insertPoint(p, nil)
			if err != nil {
				return err
			}
			// Points merged within tolerance
			if len(vertices) > 0 && vertices[len(vertices)-1] == v {
				continue
			}
			vertices = append(vertices, v)
		}
		for len(vertices) > 1 && vertices[len(vertices)-1] == vertices[0] {
			vertices = vertices[:len(vertices)-1]
		}
		if len(vertices) < 3 {
			return errors.Wrapf(ErrDegenerate, "contour %d collapses to %d vertices", len(vertexContours), len(vertices))
		}
		vertexContours = append(vertexContours, vertices)
	}

	for i, p := range extra {
		v, err := m.insertPoint(p, nil)
		if err != nil {
			return err
		}
		m.vertex(v).protect(i)
	}

	m.constrain(vertexContours)
	m.log().Debug("constrained delaunay",
		zap.Int("contours", len(vertexContours)),
		zap.Int("vertices", m.NumVertices()),
		zap.Int("triangles", m.NumTriangles()),
	)
	return nil
}

// Like CreateConstrainedDelaunay, but for polygons of any orientation.
func (m *Mesh) CreateConstrainedDelaunayPolygons(polygons []Polygon, extra []Point) error {
	var contours [][]Point
	for _, poly := range polygons {
		for _, c := range poly.Normalize().Contours() {
			contours = append(contours, c)
		}
	}
	return m.CreateConstrainedDelaunay(contours, extra)
}

// Triangulate polygons and refine the result.
func (m *Mesh) Triangulate(polygons []Polygon, extra []Point, params Parameters) (RefineStats, error) {
	if err := m.CreateConstrainedDelaunayPolygons(polygons, extra); err != nil {
		return RefineStats{}, err
	}
	return m.Refine(params)
}

// Three points that are not collinear, the first two of them being the first
// two distinct points.
func seedTriple(points []Point) ([3]Point, bool) {
	var result [3]Point
	n := 0
	for _, p := range points {
		switch n {
		case 0:
			result[0] = p
			n++
		case 1:
			if !p.Equal(result[0]) {
				result[1] = p
				n++
			}
		case 2:
			if geom.SideOf(result[0], result[1], p) != 0 {
				result[2] = p
				return result, true
			}
		}
	}
	return result, false
}
