package advanced

import (
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Refinement parameters. A zero value disables the respective criterion.
type Parameters struct {
	// Lower bound for the ratio of the shortest edge to the circumradius. 1.0
	// corresponds to a minimum angle of 30 degrees; the ratio of an equilateral
	// triangle is sqrt(3).
	MinB float64 `yaml:"min_b"`
	// Encroached segments shorter than twice this are not split any further.
	MinLength float64 `yaml:"min_length"`
	MaxArea   float64 `yaml:"max_area"`
	// Area limit for triangles touching a segment. Falls back to MaxArea.
	MaxAreaBorder float64 `yaml:"max_area_border"`
	// Zero means no limit.
	MaxIterations int `yaml:"max_iterations"`
	// Replace triangle serials by quality marks (MarkSkinny, MarkInvalid,
	// MarkNonDelaunay) after refinement.
	MarkTriangles bool `yaml:"mark_triangles"`
}

func DefaultParameters() Parameters {
	return Parameters{MinB: 1.0}
}

// Read parameters from YAML. Keys that are not present keep their default
// values.
func LoadParameters(r io.Reader) (Parameters, error) {
	params := DefaultParameters()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&params); err != nil && err != io.EOF {
		return params, errors.Wrap(err, "reading parameters")
	}
	return params, params.Validate()
}

func (p Parameters) Validate() error {
	switch {
	case p.MinB < 0:
		return errors.Errorf("min_b must not be negative, got %g", p.MinB)
	case p.MinLength < 0:
		return errors.Errorf("min_length must not be negative, got %g", p.MinLength)
	case p.MaxArea < 0:
		return errors.Errorf("max_area must not be negative, got %g", p.MaxArea)
	case p.MaxAreaBorder < 0:
		return errors.Errorf("max_area_border must not be negative, got %g", p.MaxAreaBorder)
	case p.MaxIterations < 0:
		return errors.Errorf("max_iterations must not be negative, got %d", p.MaxIterations)
	}
	return nil
}

// Encode as YAML, in the format LoadParameters reads.
func (p Parameters) YAML() ([]byte, error) {
	out, err := yaml.Marshal(p)
	return out, errors.Wrap(err, "writing parameters")
}
