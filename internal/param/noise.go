package param

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/MeKo-Tech/noiseparams/internal/ndarray"
	"github.com/MeKo-Tech/noiseparams/internal/noise"
	"github.com/MeKo-Tech/noiseparams/internal/randsrc"
	"github.com/MeKo-Tech/noiseparams/internal/resize"
)

// MaxSizePx bounds the size_px_max argument of the noise generators.
const MaxSizePx = 10000

// Defaults used by the noise constructors for nil arguments.
var (
	DefaultSimplexSize    = IntRange{2, 16}
	DefaultUpscaleMethods = []string{string(resize.Linear), string(resize.Nearest)}
)

// lowResSize shrinks (h, w) so that the longer side is at most maxSize,
// keeping the aspect ratio, and floors both sides at floor.
func lowResSize(h, w, maxSize, floor int) (int, int) {
	maxLen := max(h, w)
	if maxLen > maxSize {
		f := float64(maxSize) / float64(maxLen)
		h, w = int(float64(h)*f), int(float64(w)*f)
	}
	return max(h, floor), max(w, floor)
}

// upscale resizes a working plane to the requested size when they differ.
func upscale(plane []float64, hs, ws, h, w int, m resize.Method) (*ndarray.Array, error) {
	if hs != h || ws != w {
		var err error
		if plane, err = resize.Plane(plane, hs, ws, h, w, m); err != nil {
			return nil, err
		}
	}
	return ndarray.FromFloats([]int{h, w}, plane)
}

func sizePx(v any, def IntRange) (Parameter, error) {
	if v == nil {
		v = def
	}
	return intBounded(v, "size_px_max", 1, MaxSizePx)
}

func upscaleMethods(v any) (Parameter, error) {
	if v == nil {
		v = DefaultUpscaleMethods
	}
	p, err := methods(v)
	if err != nil {
		return nil, fmt.Errorf("upscale_method: %w", err)
	}
	return p, nil
}

func drawSizePx(p Parameter, rng *rand.Rand) (int, error) {
	n, err := drawInt(p, rng, "size_px_max")
	if err != nil {
		return 0, err
	}
	if n < 1 || n > MaxSizePx {
		return 0, fmt.Errorf("%w: size_px_max must be within [1, %d], got %d", ErrDomain, MaxSizePx, n)
	}
	return n, nil
}

func drawMethod(p Parameter, rng *rand.Rand) (resize.Method, error) {
	v, err := DrawSample(p, rng)
	if err != nil {
		return "", err
	}
	return methodFrom(v)
}

// coherentNoise is the single-pass low-resolution noise generator shared by
// SimplexNoise and PerlinNoise.
//
// One parent seed s is drawn per call. The upscale method is sampled with
// Derive(s, 0). The iteration seed t = Derive(s, 10) samples size_px_max
// and keys the noise basis.
type coherentNoise struct {
	name      string
	sizePxMax Parameter
	method    Parameter
	basis     func(h, w int, seed int64) []float64
}

func newCoherentNoise(name string, sizePxMax, upscaleMethod any, basis func(h, w int, seed int64) []float64) (coherentNoise, error) {
	size, err := sizePx(sizePxMax, DefaultSimplexSize)
	if err != nil {
		return coherentNoise{}, err
	}
	m, err := upscaleMethods(upscaleMethod)
	if err != nil {
		return coherentNoise{}, err
	}
	return coherentNoise{name: name, sizePxMax: size, method: m, basis: basis}, nil
}

func (c *coherentNoise) DrawSamples(shape []int, rng *rand.Rand) (*ndarray.Array, error) {
	h, w, err := requirePlane(shape, c.name)
	if err != nil {
		return nil, err
	}
	if h == 0 || w == 0 {
		return ndarray.New(shape)
	}
	seed := randsrc.DrawSeed(randsrc.OrCurrent(rng))

	m, err := drawMethod(c.method, randsrc.Sub(seed, 0))
	if err != nil {
		return nil, err
	}
	iter := randsrc.Derive(seed, 10)
	maxPx, err := drawSizePx(c.sizePxMax, randsrc.New(iter))
	if err != nil {
		return nil, err
	}
	hs, ws := lowResSize(h, w, maxPx, 1)
	return upscale(c.basis(hs, ws, iter), hs, ws, h, w, m)
}

func (c *coherentNoise) String() string {
	return fmt.Sprintf("%s(%s, %s)", c.name, c.sizePxMax, c.method)
}

// SimplexNoise generates 2D simplex noise in [0, 1] on a low-resolution
// grid whose longer side is at most size_px_max, then upsamples it.
type SimplexNoise struct {
	coherentNoise
}

// NewSimplexNoise builds a SimplexNoise. Nil arguments select
// DefaultSimplexSize and DefaultUpscaleMethods.
func NewSimplexNoise(sizePxMax, upscaleMethod any) (*SimplexNoise, error) {
	c, err := newCoherentNoise("SimplexNoise", sizePxMax, upscaleMethod, noise.SimplexPlane)
	if err != nil {
		return nil, err
	}
	return &SimplexNoise{c}, nil
}

// PerlinNoise is SimplexNoise with a multi-octave Perlin basis.
type PerlinNoise struct {
	coherentNoise
}

func NewPerlinNoise(sizePxMax, upscaleMethod any) (*PerlinNoise, error) {
	c, err := newCoherentNoise("PerlinNoise", sizePxMax, upscaleMethod, noise.PerlinPlane)
	if err != nil {
		return nil, err
	}
	return &PerlinNoise{c}, nil
}
