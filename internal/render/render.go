// Package render draws triangle meshes to PNG, SVG and PDF. It knows nothing
// about the mesh engine; callers fill a Scene with plain geometry.
package render

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"

	svg "github.com/ajstarks/svgo/float"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/llgcode/draw2d/draw2dpdf"
	imgcat "github.com/martinlindhe/imgcat/lib"
	"github.com/pkg/errors"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/osuushi/triangles/internal/geom"
)

// Padding around the mesh, in output units
const padding = 20

type Triangle struct {
	Points  [3]geom.Point
	Outside bool
	// Nonzero marks are highlighted
	Marks uint64
}

type Scene struct {
	Triangles []Triangle
	// Constraint edges, drawn on top
	Segments []geom.Segment
	Title    string
}

var (
	insideFill   = color.RGBA{0x00, 0x80, 0x00, 0xff}
	outsideFill  = color.RGBA{0x40, 0x40, 0x40, 0xff}
	markedFill   = color.RGBA{0xc0, 0x30, 0x30, 0xff}
	edgeStroke   = color.RGBA{0x00, 0xff, 0xff, 0xff}
	segmentColor = color.RGBA{0xff, 0xff, 0x00, 0xff}
)

func (s Scene) Bounds() geom.Box {
	box := geom.EmptyBox()
	for _, t := range s.Triangles {
		for _, p := range t.Points {
			box = box.Extend(p)
		}
	}
	for _, seg := range s.Segments {
		box = box.Extend(seg.P1).Extend(seg.P2)
	}
	return box
}

func (t Triangle) fill() color.RGBA {
	switch {
	case t.Marks != 0:
		return markedFill
	case t.Outside:
		return outsideFill
	}
	return insideFill
}

// Maps scene coordinates to output coordinates: scaled, padded, and with the y
// axis pointing down.
type transform struct {
	box    geom.Box
	scale  float64
	width  float64
	height float64
}

func (s Scene) transform(scale float64) (transform, error) {
	box := s.Bounds()
	if box.Empty() {
		return transform{}, errors.New("nothing to draw")
	}
	if scale <= 0 {
		return transform{}, errors.Errorf("invalid scale %g", scale)
	}
	return transform{
		box:    box,
		scale:  scale,
		width:  math.Ceil(scale*box.Width()) + 2*padding,
		height: math.Ceil(scale*box.Height()) + 2*padding,
	}, nil
}

func (tr transform) x(x float64) float64 {
	return padding + (x-tr.box.Min.X)*tr.scale
}

func (tr transform) y(y float64) float64 {
	return tr.height - padding - (y-tr.box.Min.Y)*tr.scale
}

func (s Scene) WritePNG(w io.Writer, scale float64) error {
	tr, err := s.transform(scale)
	if err != nil {
		return err
	}

	c := gg.NewContext(int(tr.width), int(tr.height))
	c.SetRGB(0, 0, 0)
	c.DrawRectangle(0, 0, tr.width, tr.height)
	c.Fill()

	c.SetLineWidth(1)
	for _, t := range s.Triangles {
		c.MoveTo(tr.x(t.Points[0].X), tr.y(t.Points[0].Y))
		for _, p := range t.Points[1:] {
			c.LineTo(tr.x(p.X), tr.y(p.Y))
		}
		c.ClosePath()
		c.SetColor(t.fill())
		c.FillPreserve()
		c.SetColor(edgeStroke)
		c.Stroke()
	}

	c.SetLineWidth(2)
	c.SetColor(segmentColor)
	for _, seg := range s.Segments {
		c.DrawLine(tr.x(seg.P1.X), tr.y(seg.P1.Y), tr.x(seg.P2.X), tr.y(seg.P2.Y))
		c.Stroke()
	}

	if s.Title != "" {
		font, err := truetype.Parse(goregular.TTF)
		if err != nil {
			return errors.Wrap(err, "loading font")
		}
		c.SetFontFace(truetype.NewFace(font, &truetype.Options{Size: 12}))
		c.SetRGB(1, 1, 1)
		c.DrawStringAnchored(s.Title, padding/2, padding/2, 0, 0.5)
	}

	return errors.Wrap(c.EncodePNG(w), "encoding png")
}

func (s Scene) WriteSVG(w io.Writer, scale float64) error {
	tr, err := s.transform(scale)
	if err != nil {
		return err
	}

	canvas := svg.New(w)
	canvas.Start(tr.width, tr.height)
	canvas.Rect(0, 0, tr.width, tr.height, "fill: black")
	for _, t := range s.Triangles {
		xs := make([]float64, 0, 3)
		ys := make([]float64, 0, 3)
		for _, p := range t.Points {
			xs = append(xs, tr.x(p.X))
			ys = append(ys, tr.y(p.Y))
		}
		canvas.Polygon(xs, ys, fmt.Sprintf("fill: %s; stroke: %s; stroke-width: 1", cssColor(t.fill()), cssColor(edgeStroke)))
	}
	for _, seg := range s.Segments {
		canvas.Line(tr.x(seg.P1.X), tr.y(seg.P1.Y), tr.x(seg.P2.X), tr.y(seg.P2.Y),
			fmt.Sprintf("stroke: %s; stroke-width: 2", cssColor(segmentColor)))
	}
	if s.Title != "" {
		canvas.Text(padding/2, padding*0.75, s.Title, "fill: white; font-family: sans-serif; font-size: 12px")
	}
	canvas.End()
	return nil
}

// The PDF is a landscape A4 page with the mesh scaled to fit, so there is no
// scale parameter.
func (s Scene) WritePDF(w io.Writer) error {
	const pageWidth, pageHeight = 297.0, 210.0 // mm
	box := s.Bounds()
	if box.Empty() {
		return errors.New("nothing to draw")
	}
	scale := math.Min((pageWidth-2*padding)/math.Max(box.Width(), 1e-12), (pageHeight-2*padding)/math.Max(box.Height(), 1e-12))
	tr := transform{box: box, scale: scale, width: pageWidth, height: pageHeight}

	dest := draw2dpdf.NewPdf("L", "mm", "A4")
	gc := draw2dpdf.NewGraphicContext(dest)
	gc.SetLineWidth(0.1)
	gc.SetStrokeColor(color.RGBA{0x00, 0x00, 0xff, 0xff})
	for _, t := range s.Triangles {
		gc.SetFillColor(t.fill())
		gc.MoveTo(tr.x(t.Points[0].X), tr.y(t.Points[0].Y))
		for _, p := range t.Points[1:] {
			gc.LineTo(tr.x(p.X), tr.y(p.Y))
		}
		gc.Close()
		gc.FillStroke()
	}
	gc.SetLineWidth(0.3)
	gc.SetStrokeColor(color.RGBA{0xc0, 0x00, 0xc0, 0xff})
	for _, seg := range s.Segments {
		gc.MoveTo(tr.x(seg.P1.X), tr.y(seg.P1.Y))
		gc.LineTo(tr.x(seg.P2.X), tr.y(seg.P2.Y))
		gc.Stroke()
	}
	if s.Title != "" {
		dest.SetFont("Helvetica", "", 10)
		dest.Text(10, 8, s.Title)
	}
	return errors.Wrap(dest.Output(w), "writing pdf")
}

// Helper to show a scene in the terminal (iTerm only) for debugging.
func (s Scene) Preview(scale float64) error {
	f, err := os.CreateTemp("", "mesh-*.png")
	if err != nil {
		return errors.Wrap(err, "creating preview file")
	}
	defer os.Remove(f.Name())
	if err := s.WritePNG(f, scale); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "writing preview file")
	}
	imgcat.CatFile(f.Name(), os.Stdout)
	return nil
}

func cssColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
