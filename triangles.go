// A quality mesh generator for Go.
//
// This package converts a set of polygons, which may be non-convex, may be
// disjoint, and may contain holes, into a constrained Delaunay triangulation,
// and refines it until every triangle meets a minimum angle and a maximum
// area. See the advanced package for editing meshes point by point.
package triangles

import (
	"github.com/osuushi/triangles/advanced"
	"github.com/osuushi/triangles/internal/svgpoly"
)

type Point = advanced.Point
type Contour = advanced.Contour
type Polygon = advanced.Polygon
type Record = advanced.Record
type Parameters = advanced.Parameters

// Minimum angle of 30 degrees, no area limit.
func DefaultParameters() Parameters {
	return advanced.DefaultParameters()
}

// Triangulate and refine a set of polygons. The orientation of hulls and
// holes does not matter. Polygons must not overlap each other.
func Triangulate(polygons []Polygon, params Parameters) (result []Record, err error) {
	defer func() {
		recoveredErr := advanced.HandlePanicRecover(recover())
		if recoveredErr != nil {
			result = nil
			err = recoveredErr
		}
	}()
	m := advanced.NewMesh()
	if _, err := m.Triangulate(polygons, nil, params); err != nil {
		return nil, err
	}
	return m.Records(), nil
}

// Like Triangulate, for a flat list of contours. Contours nested inside an
// odd number of others are holes.
func TriangulateContours(params Parameters, contours ...[]Point) ([]Record, error) {
	list := make([]Contour, len(contours))
	for i, c := range contours {
		list[i] = c
	}
	return Triangulate(svgpoly.Nest(list), params)
}
