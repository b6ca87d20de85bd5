package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const squareWithHole = `<svg xmlns="http://www.w3.org/2000/svg">
  <polygon points="0,0 10,0 10,10 0,10" />
  <polygon points="3,3 7,3 7,7 3,7" />
</svg>`

func writeFile(t *testing.T, dir, name, content string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "shape.svg", squareWithHole)

	for _, format := range []string{"png", "svg", "pdf"} {
		t.Run(format, func(t *testing.T) {
			output := filepath.Join(dir, "mesh."+format)
			var stdout bytes.Buffer
			require.NoError(t, run([]string{input, "-o", output, "--max-area", "4"}, &stdout))
			assert.Contains(t, stdout.String(), "triangles")

			data, err := os.ReadFile(output)
			require.NoError(t, err)
			switch format {
			case "png":
				assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
			case "svg":
				assert.Contains(t, string(data), "<svg")
			case "pdf":
				assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
			}
		})
	}
}

func TestRun_DefaultOutput(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "shape.svg", squareWithHole)

	var stdout bytes.Buffer
	require.NoError(t, run([]string{path, "--format", "svg", "--mark"}, &stdout))
	_, err := os.Stat(filepath.Join(dir, "shape.mesh.svg"))
	assert.NoError(t, err)

	input, err := os.ReadFile(filepath.Join(dir, "shape.svg"))
	require.NoError(t, err)
	assert.Equal(t, squareWithHole, string(input), "the input is left alone")
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	var stdout bytes.Buffer

	assert.Error(t, run([]string{filepath.Join(dir, "missing.svg")}, &stdout))

	empty := writeFile(t, dir, "empty.svg", `<svg xmlns="http://www.w3.org/2000/svg"></svg>`)
	assert.Error(t, run([]string{empty}, &stdout))

	input := writeFile(t, dir, "shape.svg", squareWithHole)
	assert.Error(t, run([]string{input, "--max-area", "-1"}, &stdout))
	assert.Error(t, run([]string{input, "--format", "gif"}, &stdout))
}

func TestParameters(t *testing.T) {
	dir := t.TempDir()
	config := writeFile(t, dir, "params.yaml", "max_area: 2\nmin_length: 0.5\n")
	input := writeFile(t, dir, "shape.svg", squareWithHole)

	opts := &options{}
	_, err := newApp(opts).Parse([]string{input, "-c", config, "--max-area", "3", "--mark"})
	require.NoError(t, err)
	params, err := opts.parameters()
	require.NoError(t, err)

	assert.Equal(t, 3.0, params.MaxArea, "flags override the config")
	assert.Equal(t, 0.5, params.MinLength, "config overrides the defaults")
	assert.Equal(t, 1.0, params.MinB, "defaults stay")
	assert.True(t, params.MarkTriangles)

	// A flag given with its zero value still overrides the config
	opts = &options{}
	_, err = newApp(opts).Parse([]string{input, "-c", config, "--max-area", "0"})
	require.NoError(t, err)
	params, err = opts.parameters()
	require.NoError(t, err)
	assert.Equal(t, 0.0, params.MaxArea)
	assert.Equal(t, 0.5, params.MinLength)
	assert.False(t, params.MarkTriangles)

	var stdout bytes.Buffer
	require.NoError(t, run([]string{input, "-c", config, "--dump-params"}, &stdout))
	assert.Contains(t, stdout.String(), "MaxArea")
	assert.Contains(t, stdout.String(), "MinLength")
}
