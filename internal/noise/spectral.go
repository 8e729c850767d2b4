package noise

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// FrequencyMagnitude returns, for each cell of an h×w spectrum, the wrapped
// distance sqrt(min(y,h-y)^2 + min(x,w-x)^2) from the zero-frequency bin.
func FrequencyMagnitude(h, w int) []float64 {
	out := make([]float64, h*w)
	for y := 0; y < h; y++ {
		fy := float64(min(y, h-y))
		for x := 0; x < w; x++ {
			fx := float64(min(x, w-x))
			out[y*w+x] = math.Sqrt(fy*fy + fx*fx)
		}
	}
	return out
}

// SpectralScale raises the frequency magnitudes to exponent. The zero
// frequency is pinned to 1 before exponentiation and zeroed afterwards,
// which removes the DC component.
func SpectralScale(h, w int, exponent float64) []float64 {
	f := FrequencyMagnitude(h, w)
	f[0] = 1
	for i, v := range f {
		f[i] = math.Pow(v, exponent)
	}
	f[0] = 0
	return f
}

// InverseFFT2 replaces a row-major h×w spectrum with its inverse 2D discrete
// Fourier transform, normalised by 1/(h*w).
func InverseFFT2(field []complex128, h, w int) error {
	if len(field) != h*w {
		return fmt.Errorf("noise: spectrum has %d cells, want %d", len(field), h*w)
	}
	rows := fourier.NewCmplxFFT(w)
	row := make([]complex128, w)
	for y := 0; y < h; y++ {
		seq := rows.Sequence(row, field[y*w:(y+1)*w])
		copy(field[y*w:(y+1)*w], seq)
	}

	cols := fourier.NewCmplxFFT(h)
	col := make([]complex128, h)
	out := make([]complex128, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			col[y] = field[y*w+x]
		}
		out = cols.Sequence(out, col)
		for y := 0; y < h; y++ {
			field[y*w+x] = out[y]
		}
	}

	norm := complex(1/float64(h*w), 0)
	for i := range field {
		field[i] *= norm
	}
	return nil
}

// Spectral synthesises an h×w noise plane in [0, 1] from a magnitude field r
// and a phase field phi: the complex field r·e^{i·phi} is weighted by
// SpectralScale, inverse transformed, and the real part min-max normalised.
// A flat result maps to all zeros.
func Spectral(h, w int, r, phi []float64, exponent float64) ([]float64, error) {
	if len(r) != h*w || len(phi) != h*w {
		return nil, fmt.Errorf("noise: fields must have %d cells", h*w)
	}
	scale := SpectralScale(h, w, exponent)
	field := make([]complex128, h*w)
	for i := range field {
		re := r[i] * math.Cos(phi[i]) * scale[i]
		im := r[i] * math.Sin(phi[i]) * scale[i]
		field[i] = complex(re, im)
	}
	if err := InverseFFT2(field, h, w); err != nil {
		return nil, err
	}

	out := make([]float64, h*w)
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, c := range field {
		v := real(c)
		out[i] = v
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo
	if span == 0 || math.IsNaN(span) || math.IsInf(span, 0) {
		for i := range out {
			out[i] = 0
		}
		return out, nil
	}
	for i, v := range out {
		out[i] = clamp01((v - lo) / span)
	}
	return out, nil
}
