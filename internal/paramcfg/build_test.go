package paramcfg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/noiseparams/internal/param"
)

const document = `
clouds:
  type: sigmoid_noise
  threshold: [-5, 5]
  child:
    type: iterative
    iterations: [1, 3]
    method: [max, avg]
    child:
      type: frequency
      exponent: -2
      size_px_max: [16, 32]
      upscale_method: linear
blobs:
  type: from_lower_resolution
  size_px: [2, 8]
  method: all
  child: {type: normal, loc: 0.5, scale: 0.1}
dots:
  type: clip
  min: 0
  max: 1
  child:
    type: multiply
    factor: 0.25
    child: {type: poisson, lam: [1, 4]}
pick:
  type: choice
  values: [nearest, linear]
  weights: [1, 3]
perlin:
  type: perlin
  size_px_max: 8
  upscale_method: [cubic, area]
`

func TestParseDocument(t *testing.T) {
	params, err := Parse(strings.NewReader(document))
	require.NoError(t, err)
	require.Len(t, params, 5)

	for name, shape := range map[string][]int{
		"clouds": {16, 16},
		"blobs":  {12, 12, 1},
		"dots":   {10},
		"pick":   {4},
		"perlin": {9, 9},
	} {
		arr, err := param.DrawSeeded(params[name], shape, 1)
		require.NoError(t, err, name)
		assert.Equal(t, shape, arr.Shape(), name)
	}

	assert.IsType(t, &param.Sigmoid{}, params["clouds"])
	assert.IsType(t, &param.FromLowerResolution{}, params["blobs"])
	assert.IsType(t, &param.Clip{}, params["dots"])
	assert.IsType(t, &param.Choice{}, params["pick"])
	assert.IsType(t, &param.PerlinNoise{}, params["perlin"])
}

func TestParseEmptyDocument(t *testing.T) {
	params, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, params)
}

func TestBuildArgumentForms(t *testing.T) {
	tests := []struct {
		name string
		spec map[string]any
		want float64
	}{
		{"constant", map[string]any{"type": "deterministic", "value": 4}, 4},
		{"equal range", map[string]any{"type": "uniform", "a": []any{2.0, 2.0}, "b": 2}, 2},
		{"discrete", map[string]any{"type": "discrete_uniform", "a": 3, "b": 3}, 3},
		{"nested", map[string]any{
			"type":   "multiply",
			"factor": -2,
			"child":  map[string]any{"type": "deterministic", "value": 3},
		}, -6},
		{"yaml v2 style map", map[string]any{
			"type":  "clip",
			"max":   1,
			"child": map[any]any{"type": "deterministic", "value": 10},
		}, 1},
		{"inactive sigmoid", map[string]any{
			"type":      "sigmoid",
			"activated": false,
			"child":     map[string]any{"type": "deterministic", "value": 0.75},
		}, 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Build(tt.spec)
			require.NoError(t, err)
			arr, err := param.DrawSeeded(p, []int{3}, 1)
			require.NoError(t, err)
			for _, v := range arr.Floats() {
				assert.Equal(t, tt.want, v)
			}
		})
	}
}

func TestBuildRanges(t *testing.T) {
	p, err := Build(map[string]any{"type": "binomial", "p": []any{0, 1}})
	require.NoError(t, err)
	assert.Contains(t, p.String(), "Uniform")

	p, err = Build(map[string]any{"type": "poisson", "lam": []any{1, 2, 3}})
	require.NoError(t, err)
	assert.Contains(t, p.String(), "Choice")
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		spec map[string]any
		err  error
	}{
		{"missing type", map[string]any{"value": 1}, ErrConfig},
		{"unknown type", map[string]any{"type": "gamma"}, ErrConfig},
		{"unknown key", map[string]any{"type": "poisson", "lam": 1, "lambda": 2}, ErrConfig},
		{"missing child", map[string]any{"type": "clip"}, ErrConfig},
		{"bad child", map[string]any{"type": "clip", "child": 3}, ErrConfig},
		{"bad number", map[string]any{"type": "poisson", "lam": "many"}, ErrConfig},
		{"non-integer", map[string]any{"type": "simplex", "size_px_max": 2.5}, ErrConfig},
		{"out of domain", map[string]any{"type": "binomial", "p": 2}, param.ErrDomain},
		{"bad method", map[string]any{"type": "simplex", "upscale_method": "sinc"}, param.ErrDomain},
		{"both sizes", map[string]any{
			"type":         "from_lower_resolution",
			"size_px":      4,
			"size_percent": 0.5,
			"child":        map[string]any{"type": "deterministic", "value": 1},
		}, param.ErrConstruction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.spec)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestTypes(t *testing.T) {
	types := Types()
	assert.Contains(t, types, "frequency")
	assert.Contains(t, types, "sigmoid_noise")
	assert.Len(t, types, 17)
}
