// Package geom holds the floating point primitives the mesh engine is built
// on. All predicates are tolerant of a relative epsilon rather than exact; two
// values that differ by less than Epsilon relative to the magnitudes involved
// are considered equal.
package geom

import (
	"fmt"
	"math"
)

// Relative tolerance used by every predicate in this package.
const Epsilon = 1e-10

type Point struct {
	X float64
	Y float64
}

// Vectors are points interpreted as displacements. Keeping them distinct makes
// it harder to accidentally add two positions together.
type Vector struct {
	X float64
	Y float64
}

func (p Point) Sub(other Point) Vector {
	return Vector{p.X - other.X, p.Y - other.Y}
}

func (p Point) Add(v Vector) Point {
	return Point{p.X + v.X, p.Y + v.Y}
}

func (p Point) Distance(other Point) float64 {
	return p.Sub(other).Length()
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// Tolerance based equality of two points, relative to their magnitude (with
// an absolute floor of Epsilon).
func (p Point) Equal(other Point) bool {
	scale := math.Max(1, math.Max(math.Abs(p.X)+math.Abs(p.Y), math.Abs(other.X)+math.Abs(other.Y)))
	return p.Distance(other) < scale*Epsilon
}

func (v Vector) Scale(f float64) Vector {
	return Vector{v.X * f, v.Y * f}
}

func (v Vector) Dot(other Vector) float64 {
	return v.X*other.X + v.Y*other.Y
}

// The z component of the 3d cross product. Positive if other is
// counterclockwise from v.
func (v Vector) Cross(other Vector) float64 {
	return v.X*other.Y - v.Y*other.X
}

func (v Vector) SqLength() float64 {
	return v.X*v.X + v.Y*v.Y
}

func (v Vector) Length() float64 {
	return math.Sqrt(v.SqLength())
}

// Sign of the cross product of a and b, or zero if the two vectors are parallel
// within tolerance.
func CrossSign(a, b Vector) int {
	cross := a.Cross(b)
	tolerance := a.Length() * b.Length() * Epsilon
	if cross > tolerance {
		return 1
	} else if cross < -tolerance {
		return -1
	}
	return 0
}

// Sign of the scalar product of a and b, or zero if the two vectors are
// perpendicular within tolerance.
func DotSign(a, b Vector) int {
	dot := a.Dot(b)
	tolerance := a.Length() * b.Length() * Epsilon
	if dot > tolerance {
		return 1
	} else if dot < -tolerance {
		return -1
	}
	return 0
}

// Which side of the directed line a→b the point p is on. +1 is left, -1 is
// right and 0 means p lies on the line.
func SideOf(a, b, p Point) int {
	return CrossSign(b.Sub(a), p.Sub(a))
}

// Twice the signed area of the triangle a, b, c. Clockwise triangles have
// negative area, which is the orientation used by the mesh.
func SignedArea(a, b, c Point) float64 {
	return 0.5 * b.Sub(a).Cross(c.Sub(a))
}
