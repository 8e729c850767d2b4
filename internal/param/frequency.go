package param

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"github.com/MeKo-Tech/noiseparams/internal/ndarray"
	"github.com/MeKo-Tech/noiseparams/internal/noise"
	"github.com/MeKo-Tech/noiseparams/internal/randsrc"
)

// minFrequencyGrid floors the spectral working grid; smaller grids give
// degenerate spectra.
const minFrequencyGrid = 4

// Defaults used by NewFrequencyNoise for nil arguments.
var (
	DefaultFrequencyExponent = Range{-4, 4}
	DefaultFrequencySize     = IntRange{4, 32}
)

// FrequencyNoise synthesises 2D noise in [0, 1] in the frequency domain.
// Negative exponents favour low frequencies (large blobs), positive ones
// favour fine repetitive texture.
//
// One parent seed s is drawn per call. size_px_max is sampled with
// Derive(s, 0), the magnitude field with Derive(s, 1), the phase field with
// Derive(s, 2), the exponent with Derive(s, 3) and the upscale method with
// Derive(s, 4).
type FrequencyNoise struct {
	exponent  Parameter
	sizePxMax Parameter
	method    Parameter
}

// NewFrequencyNoise builds a FrequencyNoise. Nil arguments select
// DefaultFrequencyExponent, DefaultFrequencySize and DefaultUpscaleMethods.
func NewFrequencyNoise(exponent, sizePxMax, upscaleMethod any) (*FrequencyNoise, error) {
	if exponent == nil {
		exponent = DefaultFrequencyExponent
	}
	e, err := Float(exponent)
	if err != nil {
		return nil, fmt.Errorf("exponent: %w", err)
	}
	size, err := sizePx(sizePxMax, DefaultFrequencySize)
	if err != nil {
		return nil, err
	}
	m, err := upscaleMethods(upscaleMethod)
	if err != nil {
		return nil, err
	}
	return &FrequencyNoise{exponent: e, sizePxMax: size, method: m}, nil
}

func (f *FrequencyNoise) DrawSamples(shape []int, rng *rand.Rand) (*ndarray.Array, error) {
	h, w, err := requirePlane(shape, "FrequencyNoise")
	if err != nil {
		return nil, err
	}
	if h == 0 || w == 0 {
		return ndarray.New(shape)
	}
	seed := randsrc.DrawSeed(randsrc.OrCurrent(rng))

	maxPx, err := drawSizePx(f.sizePxMax, randsrc.Sub(seed, 0))
	if err != nil {
		return nil, err
	}
	hs, ws := lowResSize(h, w, maxPx, minFrequencyGrid)

	extent := float64(max(hs, ws))
	r := uniformField(hs*ws, extent*extent, randsrc.Sub(seed, 1))
	phi := uniformField(hs*ws, 2*math.Pi, randsrc.Sub(seed, 2))

	exponent, err := drawFloat(f.exponent, randsrc.Sub(seed, 3), "exponent")
	if err != nil {
		return nil, err
	}
	plane, err := noise.Spectral(hs, ws, r, phi, exponent)
	if err != nil {
		return nil, err
	}

	m, err := drawMethod(f.method, randsrc.Sub(seed, 4))
	if err != nil {
		return nil, err
	}
	return upscale(plane, hs, ws, h, w, m)
}

// uniformField draws n values uniformly from [0, scale).
func uniformField(n int, scale float64, rng *rand.Rand) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.Float64() * scale
	}
	return out
}

func (f *FrequencyNoise) String() string {
	return fmt.Sprintf("FrequencyNoise(%s, %s, %s)", f.exponent, f.sizePxMax, f.method)
}
