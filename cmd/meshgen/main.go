// Command meshgen triangulates the polygons of an SVG file and draws the
// refined mesh.
//
//	meshgen shapes.svg -o mesh.png --max-area 4 --min-b 1
//
// Refinement parameters come from an optional YAML file (see
// advanced.LoadParameters); flags given on the command line override it.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kr/pretty"
	"github.com/logrusorgru/aurora"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/osuushi/triangles/advanced"
	"github.com/osuushi/triangles/internal/render"
	"github.com/osuushi/triangles/internal/svgpoly"
)

type options struct {
	input      string
	output     string
	format     string
	config     string
	scale      float64
	verbose    bool
	preview    bool
	dumpParams bool

	minB          float64
	minLength     float64
	maxArea       float64
	maxAreaBorder float64
	maxIterations int
	mark          bool

	// Which of the parameter flags were given
	set map[string]*bool
}

func newApp(opts *options) *kingpin.Application {
	app := kingpin.New("meshgen", "Triangulate the polygons of an SVG file and draw the refined mesh.")
	app.Arg("input", "SVG file with <polygon> elements, or - for stdin").Required().StringVar(&opts.input)
	app.Flag("output", "Output file. Defaults to <input>.mesh.<format>.").Short('o').StringVar(&opts.output)
	app.Flag("format", "Output format. Defaults to the extension of --output, or png.").EnumVar(&opts.format, "png", "svg", "pdf")
	app.Flag("config", "YAML file with refinement parameters").Short('c').ExistingFileVar(&opts.config)
	app.Flag("scale", "Output units per mesh unit (png and svg)").Default("20").Float64Var(&opts.scale)
	app.Flag("verbose", "Log refinement progress").Short('v').BoolVar(&opts.verbose)
	app.Flag("preview", "Show the mesh in the terminal (iTerm only)").BoolVar(&opts.preview)
	app.Flag("dump-params", "Print the resolved parameters and exit").BoolVar(&opts.dumpParams)

	opts.set = make(map[string]*bool)
	paramFlag := func(name, help string) *kingpin.FlagClause {
		set := new(bool)
		opts.set[name] = set
		return app.Flag(name, help).Action(func(*kingpin.ParseContext) error {
			*set = true
			return nil
		})
	}
	paramFlag("min-b", "Minimum ratio of shortest edge to circumradius; 1 is 30 degrees").Float64Var(&opts.minB)
	paramFlag("min-length", "Do not split segments shorter than twice this").Float64Var(&opts.minLength)
	paramFlag("max-area", "Maximum triangle area").Float64Var(&opts.maxArea)
	paramFlag("max-area-border", "Maximum area of triangles touching the outline").Float64Var(&opts.maxAreaBorder)
	paramFlag("max-iterations", "Refinement rounds; 0 is unlimited").IntVar(&opts.maxIterations)
	paramFlag("mark", "Highlight triangles that miss the quality criteria").BoolVar(&opts.mark)
	return app
}

// Parameters from the config file, overridden by flags.
func (opts *options) parameters() (advanced.Parameters, error) {
	params := advanced.DefaultParameters()
	if opts.config != "" {
		f, err := os.Open(opts.config)
		if err != nil {
			return params, errors.Wrap(err, "opening config")
		}
		defer f.Close()
		params, err = advanced.LoadParameters(f)
		if err != nil {
			return params, errors.Wrapf(err, "in %s", opts.config)
		}
	}

	if *opts.set["min-b"] {
		params.MinB = opts.minB
	}
	if *opts.set["min-length"] {
		params.MinLength = opts.minLength
	}
	if *opts.set["max-area"] {
		params.MaxArea = opts.maxArea
	}
	if *opts.set["max-area-border"] {
		params.MaxAreaBorder = opts.maxAreaBorder
	}
	if *opts.set["max-iterations"] {
		params.MaxIterations = opts.maxIterations
	}
	if *opts.set["mark"] {
		params.MarkTriangles = opts.mark
	}
	return params, params.Validate()
}

func (opts *options) resolveOutput() {
	if opts.format == "" {
		switch ext := strings.TrimPrefix(filepath.Ext(opts.output), "."); ext {
		case "png", "svg", "pdf":
			opts.format = ext
		default:
			opts.format = "png"
		}
	}
	if opts.output == "" {
		base := "mesh"
		if opts.input != "-" {
			base = strings.TrimSuffix(opts.input, filepath.Ext(opts.input))
		}
		opts.output = base + ".mesh." + opts.format
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	return cfg.Build()
}

func readPolygons(input string) ([]advanced.Polygon, error) {
	var r io.Reader = os.Stdin
	if input != "-" {
		f, err := os.Open(input)
		if err != nil {
			return nil, errors.Wrap(err, "opening input")
		}
		defer f.Close()
		r = f
	}
	polygons, err := svgpoly.Parse(r)
	return polygons, errors.Wrapf(err, "reading %s", input)
}

func scene(m *advanced.Mesh, params advanced.Parameters) render.Scene {
	var s render.Scene
	for _, r := range m.Records() {
		t := render.Triangle{Points: [3]advanced.Point{r.A, r.B, r.C}, Outside: r.Outside}
		if params.MarkTriangles {
			t.Marks = r.ID & (advanced.MarkSkinny | advanced.MarkInvalid)
		}
		s.Triangles = append(s.Triangles, t)
	}
	s.Segments = m.Segments()
	s.Title = fmt.Sprintf("%d triangles, %d vertices", m.NumTriangles(), m.NumVertices())
	return s
}

func writeScene(s render.Scene, opts *options) error {
	f, err := os.Create(opts.output)
	if err != nil {
		return errors.Wrap(err, "creating output")
	}
	switch opts.format {
	case "svg":
		err = s.WriteSVG(f, opts.scale)
	case "pdf":
		err = s.WritePDF(f)
	default:
		err = s.WritePNG(f, opts.scale)
	}
	if closeErr := f.Close(); err == nil {
		err = errors.Wrap(closeErr, "writing output")
	}
	return err
}

func run(args []string, stdout io.Writer) error {
	opts := &options{}
	app := newApp(opts)
	app.Writer(stdout)
	if _, err := app.Parse(args); err != nil {
		return err
	}

	params, err := opts.parameters()
	if err != nil {
		return err
	}
	if opts.dumpParams {
		_, err := pretty.Fprintf(stdout, "%# v\n", params)
		return err
	}
	opts.resolveOutput()

	logger, err := newLogger(opts.verbose)
	if err != nil {
		return errors.Wrap(err, "creating logger")
	}
	defer logger.Sync()

	polygons, err := readPolygons(opts.input)
	if err != nil {
		return err
	}
	logger.Debug("read polygons", zap.String("input", opts.input), zap.Int("polygons", len(polygons)))

	m := advanced.NewMesh()
	m.SetLogger(logger)
	stats, err := m.Triangulate(polygons, nil, params)
	if err != nil {
		return errors.Wrap(err, "triangulating")
	}
	if !stats.Converged {
		logger.Warn("refinement stopped before reaching the quality criteria", zap.Int("iterations", stats.Iterations))
	}

	s := scene(m, params)
	if err := writeScene(s, opts); err != nil {
		return err
	}
	if opts.preview {
		if err := s.Preview(opts.scale); err != nil {
			logger.Warn("cannot preview", zap.Error(err))
		}
	}

	fmt.Fprintf(stdout, "%s %s: %d triangles, %d vertices, %d iterations, %d flips\n",
		aurora.Green("wrote"),
		aurora.Bold(opts.output),
		m.NumTriangles(),
		m.NumVertices(),
		stats.Iterations,
		m.Flips(),
	)
	return nil
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", aurora.Red("meshgen:"), err)
		os.Exit(1)
	}
}
