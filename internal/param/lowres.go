package param

import (
	"fmt"
	"strconv"

	"golang.org/x/exp/rand"

	"github.com/MeKo-Tech/noiseparams/internal/ndarray"
	"github.com/MeKo-Tech/noiseparams/internal/randsrc"
	"github.com/MeKo-Tech/noiseparams/internal/resize"
)

// DefaultLowResMethod is the interpolation used by FromLowerResolution when
// no method is configured.
const DefaultLowResMethod = string(resize.Cubic)

// LowerResolutionConfig configures FromLowerResolution. Exactly one of
// SizePercent and SizePx must be set.
type LowerResolutionConfig struct {
	// SizePercent is a float argument: the fraction of H and W to sample at.
	SizePercent any
	// SizePx is an integer argument: the absolute low-resolution side length.
	SizePx any
	// Method is an interpolation method name, numeric code, list or All.
	Method any
	// MinSize floors both low-resolution sides. Zero means 1.
	MinSize int
}

// FromLowerResolution samples its child on a smaller grid and upsamples the
// result to the requested size. Requests must be (H, W, C) or (N, H, W, C);
// every one of the N planes gets its own size and method.
//
// Unlike the noise generators it draws straight from the caller's rng:
// sizes as an (N, 2) array, methods as an (N,) array, then the child once
// per plane at (1, h, w, C).
type FromLowerResolution struct {
	child     Parameter
	size      Parameter
	byPercent bool
	method    Parameter
	minSize   int
}

func NewFromLowerResolution(child Parameter, cfg LowerResolutionConfig) (*FromLowerResolution, error) {
	if child == nil {
		return nil, fmt.Errorf("%w: from_lower_resolution needs a child parameter", ErrConstruction)
	}
	if (cfg.SizePercent == nil) == (cfg.SizePx == nil) {
		return nil, fmt.Errorf("%w: set exactly one of size_percent and size_px", ErrConstruction)
	}
	f := &FromLowerResolution{child: child, minSize: cfg.MinSize}
	if f.minSize == 0 {
		f.minSize = 1
	}
	if f.minSize < 1 {
		return nil, fmt.Errorf("%w: min_size must be >= 1, got %d", ErrDomain, cfg.MinSize)
	}

	var err error
	if cfg.SizePercent != nil {
		f.byPercent = true
		f.size, err = Float(cfg.SizePercent)
	} else {
		f.size, err = Int(cfg.SizePx)
	}
	if err != nil {
		return nil, fmt.Errorf("from_lower_resolution size: %w", err)
	}

	method := cfg.Method
	if method == nil {
		method = DefaultLowResMethod
	}
	if f.method, err = methods(method); err != nil {
		return nil, fmt.Errorf("from_lower_resolution method: %w", err)
	}
	return f, nil
}

func (f *FromLowerResolution) DrawSamples(shape []int, rng *rand.Rand) (*ndarray.Array, error) {
	var n, h, w, c int
	switch len(shape) {
	case 3:
		n, h, w, c = 1, shape[0], shape[1], shape[2]
	case 4:
		n, h, w, c = shape[0], shape[1], shape[2], shape[3]
	default:
		return nil, fmt.Errorf("%w: FromLowerResolution expects (H, W, C) or (N, H, W, C), got %s",
			ErrShape, ndarray.FormatShape(shape))
	}
	out, err := ndarray.New(shape)
	if err != nil {
		return nil, err
	}
	if out.Size() == 0 {
		return out, nil
	}
	rng = randsrc.OrCurrent(rng)

	sizes, err := f.size.DrawSamples([]int{n, 2}, rng)
	if err != nil {
		return nil, err
	}
	if err := numeric(sizes, "FromLowerResolution size"); err != nil {
		return nil, err
	}
	ms, err := f.method.DrawSamples([]int{n}, rng)
	if err != nil {
		return nil, err
	}

	dst := out.Floats()
	for i := 0; i < n; i++ {
		hs, ws := f.smallSize(sizes.Float(2*i), sizes.Float(2*i+1), h, w)
		m, err := methodFrom(ms.At(i))
		if err != nil {
			return nil, err
		}
		small, err := f.child.DrawSamples([]int{1, hs, ws, c}, rng)
		if err != nil {
			return nil, err
		}
		if err := numeric(small, "FromLowerResolution"); err != nil {
			return nil, err
		}
		if err := upsampleChannels(small.Floats(), hs, ws, dst[i*h*w*c:(i+1)*h*w*c], h, w, c, m); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (f *FromLowerResolution) smallSize(a, b float64, h, w int) (int, int) {
	var hs, ws int
	if f.byPercent {
		hs, ws = int(a*float64(h)), int(b*float64(w))
	} else {
		hs, ws = int(a), int(b)
	}
	return max(hs, f.minSize), max(ws, f.minSize)
}

// upsampleChannels resizes each channel of an hs×ws×c block into an h×w×c block.
func upsampleChannels(src []float64, hs, ws int, dst []float64, h, w, c int, m resize.Method) error {
	if hs == h && ws == w {
		copy(dst, src)
		return nil
	}
	plane := make([]float64, hs*ws)
	for ch := 0; ch < c; ch++ {
		for j := range plane {
			plane[j] = src[j*c+ch]
		}
		up, err := resize.Plane(plane, hs, ws, h, w, m)
		if err != nil {
			return err
		}
		for j, v := range up {
			dst[j*c+ch] = v
		}
	}
	return nil
}

// methodFrom turns a sampled method name or numeric code into a resize.Method.
func methodFrom(v ndarray.Value) (resize.Method, error) {
	s := v.Text()
	if !v.IsString() {
		s = strconv.Itoa(v.Int())
	}
	m, err := resize.ParseMethod(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDomain, err)
	}
	return m, nil
}

func (f *FromLowerResolution) String() string {
	mode := "px"
	if f.byPercent {
		mode = "percent"
	}
	return fmt.Sprintf("FromLowerResolution(size_%s=%s, method=%s, other_param=%s)", mode, f.size, f.method, f.child)
}
