package geom

import (
	"fmt"
	"math"
)

type Segment struct {
	P1 Point
	P2 Point
}

func (s Segment) D() Vector {
	return s.P2.Sub(s.P1)
}

func (s Segment) Length() float64 {
	return s.D().Length()
}

func (s Segment) Center() Point {
	return s.P1.Add(s.D().Scale(0.5))
}

func (s Segment) IsDegenerate() bool {
	return s.P1 == s.P2
}

// Which side of the segment (extended to a line) the point lies on: +1 left,
// -1 right, 0 on the line. A degenerate segment has every point "on" it.
func (s Segment) SideOf(p Point) int {
	if s.IsDegenerate() {
		return 0
	}
	return SideOf(s.P1, s.P2, p)
}

// Strict crossing test: the segments intersect at a single point which is
// interior to both of them.
func (s Segment) Crosses(other Segment) bool {
	return s.SideOf(other.P1)*s.SideOf(other.P2) < 0 &&
		other.SideOf(s.P1)*other.SideOf(s.P2) < 0
}

// Like Crosses, but touching (including sharing an endpoint) counts.
func (s Segment) CrossesIncluding(other Segment) bool {
	return s.SideOf(other.P1)*s.SideOf(other.P2) <= 0 &&
		other.SideOf(s.P1)*other.SideOf(s.P2) <= 0
}

// Distance from the point to the closest point of the segment.
func (s Segment) Distance(p Point) float64 {
	d := s.D()
	sqLength := d.SqLength()
	if sqLength == 0 {
		return p.Distance(s.P1)
	}
	l := p.Sub(s.P1).Dot(d) / sqLength
	var closest Point
	if l <= 0 {
		closest = s.P1
	} else if l >= 1 {
		closest = s.P2
	} else {
		closest = s.P1.Add(d.Scale(l))
	}
	return p.Distance(closest)
}

// Is the point on the segment, strictly between the endpoints?
func (s Segment) PointOn(p Point) bool {
	if s.SideOf(p) != 0 {
		return false
	}
	d := s.D()
	return DotSign(p.Sub(s.P1), d)*DotSign(p.Sub(s.P2), d) < 0
}

// Is the point on the segment, endpoints included?
func (s Segment) Contains(p Point) bool {
	if p.Equal(s.P1) || p.Equal(s.P2) {
		return true
	}
	return s.PointOn(p)
}

// Intersection of the two segments, treated as infinite lines. The second
// return value is false for parallel lines.
func (s Segment) IntersectionPoint(other Segment) (Point, bool) {
	d1 := s.D()
	d2 := other.D()
	denominator := d1.Cross(d2)
	if math.Abs(denominator) <= d1.Length()*d2.Length()*Epsilon {
		return Point{}, false
	}
	t := other.P1.Sub(s.P1).Cross(d2) / denominator
	return s.P1.Add(d1.Scale(t)), true
}

// Swapped copy of the segment
func (s Segment) Reverse() Segment {
	return Segment{s.P2, s.P1}
}

func (s Segment) String() string {
	return fmt.Sprintf("%s-%s", s.P1, s.P2)
}
