package noise

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimplexDeterminism(t *testing.T) {
	a := SimplexPlane(16, 24, 1337)
	b := SimplexPlane(16, 24, 1337)
	assert.Equal(t, a, b)

	c := SimplexPlane(16, 24, 1338)
	different := 0
	for i := range a {
		if a[i] != c[i] {
			different++
		}
	}
	assert.Greater(t, different, len(a)/2, "different seeds should produce mostly different noise")
}

func TestSimplexRangeAndVariation(t *testing.T) {
	plane := SimplexPlane(32, 32, 7)
	lo, hi := 1.0, 0.0
	for _, v := range plane {
		require.GreaterOrEqual(t, v, 0.0)
		require.LessOrEqual(t, v, 1.0)
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	assert.Greater(t, hi-lo, 0.1, "noise should have variation")
}

func TestSimplexRawRange(t *testing.T) {
	s := NewSimplex(3)
	for y := 0.0; y < 20; y += 0.37 {
		for x := 0.0; x < 20; x += 0.41 {
			v := s.At(x, y)
			// three corners, each bounded by 35*sqrt(2)*d*(0.5-d^2)^4 < 0.46
			assert.Less(t, math.Abs(v), 1.4)
		}
	}
}

func TestPerlinPlane(t *testing.T) {
	a := PerlinPlane(8, 12, 42)
	b := PerlinPlane(8, 12, 42)
	require.Equal(t, a, b)
	for _, v := range a {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestFrequencyMagnitudeIsToroidal(t *testing.T) {
	f := FrequencyMagnitude(4, 6)
	assert.Equal(t, 0.0, f[0])
	// (y=0, x=5) wraps to distance 1
	assert.Equal(t, 1.0, f[5])
	// (y=3, x=0) wraps to distance 1
	assert.Equal(t, 1.0, f[3*6])
	// (y=2, x=3) is the farthest bin
	assert.InDelta(t, math.Sqrt(13), f[2*6+3], 1e-12)
}

func TestSpectralScaleRemovesDC(t *testing.T) {
	for _, e := range []float64{-4, -2, 0, 2, 4} {
		s := SpectralScale(5, 5, e)
		assert.Equal(t, 0.0, s[0])
		for _, v := range s[1:] {
			assert.False(t, math.IsInf(v, 0) || math.IsNaN(v))
		}
	}
}

func naiveInverseDFT2(in []complex128, h, w int) []complex128 {
	out := make([]complex128, h*w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum complex128
			for v := 0; v < h; v++ {
				for u := 0; u < w; u++ {
					angle := 2 * math.Pi * (float64(u*x)/float64(w) + float64(v*y)/float64(h))
					sum += in[v*w+u] * cmplx.Exp(complex(0, angle))
				}
			}
			out[y*w+x] = sum / complex(float64(h*w), 0)
		}
	}
	return out
}

func TestInverseFFT2MatchesNaive(t *testing.T) {
	h, w := 4, 6
	field := make([]complex128, h*w)
	for i := range field {
		field[i] = complex(float64(i%5)-2, float64(i%3))
	}
	want := naiveInverseDFT2(field, h, w)

	require.NoError(t, InverseFFT2(field, h, w))
	for i := range field {
		assert.InDelta(t, real(want[i]), real(field[i]), 1e-9)
		assert.InDelta(t, imag(want[i]), imag(field[i]), 1e-9)
	}
}

func TestSpectralNormalised(t *testing.T) {
	h, w := 8, 8
	r := make([]float64, h*w)
	phi := make([]float64, h*w)
	for i := range r {
		r[i] = float64((i*7)%11) + 1
		phi[i] = float64((i*5)%13) / 13 * 2 * math.Pi
	}
	out, err := Spectral(h, w, r, phi, -2)
	require.NoError(t, err)

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range out {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 1.0, hi)
}

func TestSpectralFlatFieldIsZero(t *testing.T) {
	h, w := 4, 4
	r := make([]float64, h*w)
	phi := make([]float64, h*w)
	out, err := Spectral(h, w, r, phi, 1)
	require.NoError(t, err)
	for _, v := range out {
		assert.Equal(t, 0.0, v)
	}
}
