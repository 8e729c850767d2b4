package resize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in   string
		want Method
	}{
		{"nearest", Nearest},
		{"LINEAR", Linear},
		{"area", Area},
		{"cubic", Cubic},
		{"1", Linear},
		{"3", Area},
		{"lanczos", Lanczos},
	}
	for _, tt := range tests {
		got, err := ParseMethod(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseMethod("bogus")
	assert.ErrorIs(t, err, ErrMethod)
}

func TestPlaneIdentityCopies(t *testing.T) {
	src := []float64{0.1, 0.2, 0.3, 0.4}
	out, err := Plane(src, 2, 2, 2, 2, Cubic)
	require.NoError(t, err)
	assert.Equal(t, src, out)

	out[0] = 9
	assert.Equal(t, 0.1, src[0], "identity must not alias the input")
}

func TestPlaneNearestUpscale(t *testing.T) {
	src := []float64{0, 1, 1, 0}
	out, err := Plane(src, 2, 2, 4, 4, Nearest)
	require.NoError(t, err)
	require.Len(t, out, 16)

	// Each source pixel expands into a 2x2 block.
	assert.InDelta(t, 0.0, out[0], 1e-4)
	assert.InDelta(t, 0.0, out[5], 1e-4)
	assert.InDelta(t, 1.0, out[2], 1e-4)
	assert.InDelta(t, 1.0, out[8], 1e-4)
	assert.InDelta(t, 0.0, out[15], 1e-4)
}

func TestPlaneStaysInSourceRange(t *testing.T) {
	src := []float64{-3, 5, 5, -3, 2, 0, 1, 4, -1}
	for _, m := range []Method{Nearest, Linear, Area, Cubic, Lanczos} {
		out, err := Plane(src, 3, 3, 17, 11, m)
		require.NoError(t, err, m)
		require.Len(t, out, 17*11)
		for _, v := range out {
			assert.GreaterOrEqual(t, v, -3.0-1e-9, m)
			assert.LessOrEqual(t, v, 5.0+1e-9, m)
		}
	}
}

func TestPlaneConstant(t *testing.T) {
	out, err := Plane([]float64{7, 7}, 1, 2, 3, 3, Linear)
	require.NoError(t, err)
	for _, v := range out {
		assert.Equal(t, 7.0, v)
	}
}

func TestPlaneErrors(t *testing.T) {
	_, err := Plane([]float64{1, 2, 3}, 2, 2, 4, 4, Linear)
	assert.Error(t, err)

	_, err = Plane([]float64{1}, 1, 1, 0, 4, Linear)
	assert.Error(t, err)

	_, err = Plane([]float64{1}, 1, 1, 2, 2, Method("median"))
	assert.ErrorIs(t, err, ErrMethod)
}
