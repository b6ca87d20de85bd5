package geom

import "math"

// Axis aligned bounding box. The zero value is not empty; use EmptyBox.
type Box struct {
	Min, Max Point
}

func EmptyBox() Box {
	return Box{
		Min: Point{math.Inf(1), math.Inf(1)},
		Max: Point{math.Inf(-1), math.Inf(-1)},
	}
}

func NewBox(p1, p2 Point) Box {
	return EmptyBox().Extend(p1).Extend(p2)
}

func (b Box) Empty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y
}

func (b Box) Extend(p Point) Box {
	return Box{
		Min: Point{math.Min(b.Min.X, p.X), math.Min(b.Min.Y, p.Y)},
		Max: Point{math.Max(b.Max.X, p.X), math.Max(b.Max.Y, p.Y)},
	}
}

func (b Box) Width() float64 {
	return b.Max.X - b.Min.X
}

func (b Box) Height() float64 {
	return b.Max.Y - b.Min.Y
}
