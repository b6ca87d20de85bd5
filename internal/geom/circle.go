package geom

import "math"

// Classify p against the circle: +1 strictly inside, 0 on the circle (within
// tolerance) and -1 outside.
func InCircle(p, center Point, radius float64) int {
	d2 := p.Sub(center).SqLength()
	r2 := radius * radius
	delta := math.Max(1, math.Abs(d2+r2)) * Epsilon
	if d2 < r2-delta {
		return 1
	} else if d2 < r2+delta {
		return 0
	}
	return -1
}

// The circle through a, b and c. The formulas are those from
// https://en.wikipedia.org/wiki/Circumcircle with a moved to the origin. ok is
// false if the three points are collinear within tolerance, in which case no
// finite circle exists.
func Circumcircle(a, b, c Point) (center Point, radius float64, ok bool) {
	vb := b.Sub(a)
	vc := c.Sub(a)
	b2 := vb.SqLength()
	c2 := vc.SqLength()
	sx := 0.5 * (b2*vc.Y - c2*vb.Y)
	sy := 0.5 * (vb.X*c2 - vc.X*b2)
	a1 := vb.X * vc.Y
	a2 := vc.X * vb.Y
	det := a1 - a2
	absDet := math.Abs(det)
	if absDet < (math.Abs(a1)+math.Abs(a2))*Epsilon || absDet == 0 {
		return Point{}, 0, false
	}
	radius = math.Sqrt(sx*sx+sy*sy) / absDet
	center = a.Add(Vector{sx / det, sy / det})
	return center, radius, true
}
