package geom

import "math"

// A closed contour. The last point connects back to the first; it is not
// repeated.
type Contour []Point

// A polygon is a hull with optional holes. The mesh wants the hull clockwise
// and holes counterclockwise; Normalize enforces that.
type Polygon struct {
	Hull  Contour
	Holes []Contour
}

// Shoelace area. Positive for counterclockwise contours.
func (c Contour) SignedArea() float64 {
	var sum float64
	for i, p := range c {
		next := c[CircularIndex(i+1, len(c))]
		sum += p.X*next.Y - next.X*p.Y
	}
	return sum / 2
}

func (c Contour) IsClockwise() bool {
	return c.SignedArea() < 0
}

func (c Contour) Reverse() Contour {
	reversed := make(Contour, 0, len(c))
	for i := len(c) - 1; i >= 0; i-- {
		reversed = append(reversed, c[i])
	}
	return reversed
}

// Winding rule point-in-polygon. This is mostly useful for testing
// classification of triangles, and for deciding which contours are holes.
func (c Contour) ContainsPointByEvenOdd(p Point) bool {
	return c.CrossingCount(p)%2 == 1
}

// Number of contour edges crossed by a ray from p towards +X.
func (c Contour) CrossingCount(p Point) int {
	crossingCount := 0
	for i, vertex := range c {
		next := c[CircularIndex(i+1, len(c))]
		if (vertex.Y > p.Y) != (next.Y > p.Y) {
			x := vertex.X + (p.Y-vertex.Y)*(next.X-vertex.X)/(next.Y-vertex.Y)
			if x > p.X {
				crossingCount++
			}
		}
	}
	return crossingCount
}

// Copy of the contour with consecutive duplicate points removed (including a
// trailing point equal to the first).
func (c Contour) Compact() Contour {
	result := make(Contour, 0, len(c))
	for _, p := range c {
		if len(result) > 0 && result[len(result)-1].Equal(p) {
			continue
		}
		result = append(result, p)
	}
	for len(result) > 1 && result[len(result)-1].Equal(result[0]) {
		result = result[:len(result)-1]
	}
	return result
}

// Area of the polygon, holes subtracted.
func (poly Polygon) Area() float64 {
	area := math.Abs(poly.Hull.SignedArea())
	for _, hole := range poly.Holes {
		area -= math.Abs(hole.SignedArea())
	}
	return area
}

// Copy of the polygon with the hull clockwise and every hole counterclockwise.
func (poly Polygon) Normalize() Polygon {
	result := Polygon{Hull: poly.Hull}
	if !result.Hull.IsClockwise() {
		result.Hull = result.Hull.Reverse()
	}
	for _, hole := range poly.Holes {
		if hole.IsClockwise() {
			hole = hole.Reverse()
		}
		result.Holes = append(result.Holes, hole)
	}
	return result
}

// Contours in mesh order: the hull first, then the holes.
func (poly Polygon) Contours() []Contour {
	return append([]Contour{poly.Hull}, poly.Holes...)
}

func (poly Polygon) ContainsPointByEvenOdd(p Point) bool {
	count := poly.Hull.CrossingCount(p)
	for _, hole := range poly.Holes {
		count += hole.CrossingCount(p)
	}
	return count%2 == 1
}

// Often we want to treat an array as a circular buffer. This gives the modular
// index given length n, but unlike the raw modulo operator, it only gives positive values
func CircularIndex(i, n int) int {
	return (i%n + n) % n
}
