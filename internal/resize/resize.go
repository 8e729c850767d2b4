// Package resize implements the 2D interpolation primitive used to upscale
// low-resolution sample planes.
package resize

import (
	"errors"
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/disintegration/gift"
)

// ErrMethod reports an unknown interpolation method.
var ErrMethod = errors.New("resize: unknown interpolation method")

// Method names an interpolation method.
type Method string

const (
	Nearest Method = "nearest"
	Linear  Method = "linear"
	Area    Method = "area"
	Cubic   Method = "cubic"
	Lanczos Method = "lanczos"
)

// Methods lists every supported method, in the order used by "all".
var Methods = []Method{Nearest, Linear, Area, Cubic}

// ParseMethod accepts a method name or one of the numeric interpolation codes
// 0 (nearest), 1 (linear), 2 (cubic), 3 (area), 4 (lanczos).
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nearest", "0":
		return Nearest, nil
	case "linear", "bilinear", "1":
		return Linear, nil
	case "cubic", "bicubic", "2":
		return Cubic, nil
	case "area", "box", "3":
		return Area, nil
	case "lanczos", "4":
		return Lanczos, nil
	}
	return "", fmt.Errorf("%w: %q", ErrMethod, s)
}

func (m Method) resampling() (gift.Resampling, error) {
	switch m {
	case Nearest:
		return gift.NearestNeighborResampling, nil
	case Linear:
		return gift.LinearResampling, nil
	case Area:
		return gift.BoxResampling, nil
	case Cubic:
		return gift.CubicResampling, nil
	case Lanczos:
		return gift.LanczosResampling, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrMethod, string(m))
}

// Plane resizes a row-major h×w plane to dstH×dstW.
//
// Values are mapped linearly into a 16-bit gray image spanning the plane's
// own [min, max], resampled by gift, and mapped back, so the output stays
// within the input range (filter overshoot is clamped). Matching sizes
// return a copy without resampling.
func Plane(src []float64, h, w, dstH, dstW int, m Method) ([]float64, error) {
	if h <= 0 || w <= 0 || dstH <= 0 || dstW <= 0 {
		return nil, fmt.Errorf("resize: invalid sizes %dx%d -> %dx%d", h, w, dstH, dstW)
	}
	if len(src) != h*w {
		return nil, fmt.Errorf("resize: plane has %d values, want %d", len(src), h*w)
	}
	resampling, err := m.resampling()
	if err != nil {
		return nil, err
	}
	if h == dstH && w == dstW {
		return append([]float64(nil), src...), nil
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range src {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	out := make([]float64, dstH*dstW)
	if hi == lo || math.IsInf(hi-lo, 0) || math.IsNaN(hi-lo) {
		for i := range out {
			out[i] = src[0]
		}
		return out, nil
	}

	scale := hi - lo
	img := image.NewGray16(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			n := (src[y*w+x] - lo) / scale
			v := uint16(math.Round(n * 65535))
			i := img.PixOffset(x, y)
			img.Pix[i] = uint8(v >> 8)
			img.Pix[i+1] = uint8(v)
		}
	}

	g := gift.New(gift.Resize(dstW, dstH, resampling))
	dst := image.NewGray16(g.Bounds(img.Bounds()))
	g.Draw(dst, img)

	for y := 0; y < dstH; y++ {
		for x := 0; x < dstW; x++ {
			i := dst.PixOffset(x, y)
			v := uint16(dst.Pix[i])<<8 | uint16(dst.Pix[i+1])
			out[y*dstW+x] = lo + scale*float64(v)/65535
		}
	}
	return out, nil
}
