// Package svgpoly reads polygons from SVG documents. This is not a full (or
// even correct) SVG reader: it collects the points of every <polygon> element,
// ignoring transforms and styles, and nests the resulting contours into
// polygons with holes by the even-odd rule. Coordinates are taken as they are,
// so the y axis points down.
package svgpoly

import (
	"embed"
	"io"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	"github.com/JoshVarga/svgparser"
	"github.com/pkg/errors"

	"github.com/osuushi/triangles/internal/geom"
)

// Read the contours of every polygon element in the document, in document
// order.
func ParseContours(r io.Reader) ([]geom.Contour, error) {
	root, err := svgparser.Parse(r, true)
	if err != nil {
		return nil, errors.Wrap(err, "parsing svg")
	}

	elements := root.FindAll("polygon")
	if len(elements) == 0 {
		return nil, errors.New("no polygons found")
	}

	contours := make([]geom.Contour, 0, len(elements))
	for i, element := range elements {
		contour, err := parsePoints(element.Attributes["points"])
		if err != nil {
			return nil, errors.Wrapf(err, "polygon %d", i)
		}
		contours = append(contours, contour)
	}
	return contours, nil
}

// Read the polygons of the document, see Nest.
func Parse(r io.Reader) ([]geom.Polygon, error) {
	contours, err := ParseContours(r)
	if err != nil {
		return nil, err
	}
	return Nest(contours), nil
}

// Points are separated by whitespace and/or commas: "0,0 10,0 10,10"
func parsePoints(s string) (geom.Contour, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields)%2 != 0 {
		return nil, errors.Errorf("odd number of coordinates in %q", s)
	}
	contour := make(geom.Contour, 0, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		x, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid x value %q", fields[i])
		}
		y, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid y value %q", fields[i+1])
		}
		contour = append(contour, geom.Point{X: x, Y: y})
	}
	if len(contour) < 3 {
		return nil, errors.Errorf("need at least 3 points, got %d", len(contour))
	}
	return contour, nil
}

// Group contours into polygons. A contour inside an even number of other
// contours is a hull; one inside an odd number is a hole of the smallest
// hull around it. Contours are assumed not to intersect each other.
func Nest(contours []geom.Contour) []geom.Polygon {
	depths := make([]int, len(contours))
	for i, c := range contours {
		for j, other := range contours {
			if i != j && other.ContainsPointByEvenOdd(c[0]) {
				depths[i]++
			}
		}
	}

	hullIndex := make(map[int]int)
	var polygons []geom.Polygon
	for i, c := range contours {
		if depths[i]%2 == 0 {
			hullIndex[i] = len(polygons)
			polygons = append(polygons, geom.Polygon{Hull: c})
		}
	}

	for i, c := range contours {
		if depths[i]%2 == 0 {
			continue
		}
		// The parent is the containing contour one level up. Being nested,
		// the smallest containing contour at that depth is the one.
		parent := -1
		for j, other := range contours {
			if depths[j] != depths[i]-1 || !other.ContainsPointByEvenOdd(c[0]) {
				continue
			}
			if parent < 0 || absArea(other) < absArea(contours[parent]) {
				parent = j
			}
		}
		if parent < 0 {
			continue
		}
		p := &polygons[hullIndex[parent]]
		p.Holes = append(p.Holes, c)
	}
	return polygons
}

func absArea(c geom.Contour) float64 {
	a := c.SignedArea()
	if a < 0 {
		return -a
	}
	return a
}

// Fixtures are available by name from the fixtures/ directory, sans
// extension.

//go:embed fixtures
var fixtures embed.FS

func Load(name string) ([]geom.Polygon, error) {
	fixture, err := fixtures.Open("fixtures/" + name + ".svg")
	if err != nil {
		return nil, errors.Wrapf(err, "could not load fixture %q", name)
	}
	defer fixture.Close()

	polygons, err := Parse(fixture)
	return polygons, errors.Wrapf(err, "fixture %q", name)
}

// Like Load, for known good fixtures. Panics on failure.
func MustLoad(name string) []geom.Polygon {
	polygons, err := Load(name)
	if err != nil {
		panic(err)
	}
	return polygons
}

func FixtureNames() []string {
	entries, err := fs.ReadDir(fixtures, "fixtures")
	if err != nil {
		return nil
	}
	var names []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".svg") {
			names = append(names, strings.TrimSuffix(name, ".svg"))
		}
	}
	sort.Strings(names)
	return names
}
