// Package noise provides the seeded noise kernels behind the spatial noise
// parameters: coordinate-addressed simplex noise, Perlin planes and
// spectrally shaped white noise.
package noise

import (
	"github.com/MeKo-Tech/noiseparams/internal/randsrc"
)

var grad2 = [12][2]float64{
	{1, 1}, {-1, 1}, {1, -1}, {-1, -1},
	{1, 0}, {-1, 0}, {1, 0}, {-1, 0},
	{0, 1}, {0, -1}, {0, 1}, {0, -1},
}

// Simplex is a seeded 2D simplex noise field.
type Simplex struct {
	perm [512]uint8
}

// NewSimplex builds the permutation table for seed.
func NewSimplex(seed int64) *Simplex {
	s := &Simplex{}
	r := randsrc.New(seed)
	p := make([]uint8, 256)
	for i := 0; i < 256; i++ {
		p[i] = uint8(i)
	}
	for i := 255; i > 0; i-- {
		j := r.Intn(i + 1)
		p[i], p[j] = p[j], p[i]
	}
	for i := 0; i < 512; i++ {
		s.perm[i] = p[i&255]
	}
	return s
}

func fastFloor(x float64) int {
	if x >= 0 {
		return int(x)
	}
	return int(x) - 1
}

// At returns the noise value at (x, y), roughly within [-0.5, 0.5].
func (s *Simplex) At(x, y float64) float64 {
	const F2 = 0.36602540378443865 // (sqrt(3)-1)/2
	const G2 = 0.21132486540518713 // (3-sqrt(3))/6

	t := (x + y) * F2
	i := fastFloor(x + t)
	j := fastFloor(y + t)

	t0 := float64(i+j) * G2
	x0 := x - (float64(i) - t0)
	y0 := y - (float64(j) - t0)

	i1, j1 := 0, 1
	if x0 > y0 {
		i1, j1 = 1, 0
	}

	x1 := x0 - float64(i1) + G2
	y1 := y0 - float64(j1) + G2
	x2 := x0 - 1.0 + 2.0*G2
	y2 := y0 - 1.0 + 2.0*G2

	ii := i & 255
	jj := j & 255
	gi0 := s.perm[ii+int(s.perm[jj])] % 12
	gi1 := s.perm[ii+i1+int(s.perm[jj+j1])] % 12
	gi2 := s.perm[ii+1+int(s.perm[jj+1])] % 12

	n0, n1, n2 := 0.0, 0.0, 0.0

	t0c := 0.5 - x0*x0 - y0*y0
	if t0c > 0 {
		t0c *= t0c
		n0 = t0c * t0c * (grad2[gi0][0]*x0 + grad2[gi0][1]*y0)
	}
	t1c := 0.5 - x1*x1 - y1*y1
	if t1c > 0 {
		t1c *= t1c
		n1 = t1c * t1c * (grad2[gi1][0]*x1 + grad2[gi1][1]*y1)
	}
	t2c := 0.5 - x2*x2 - y2*y2
	if t2c > 0 {
		t2c *= t2c
		n2 = t2c * t2c * (grad2[gi2][0]*x2 + grad2[gi2][1]*y2)
	}

	// 70 scales the sum to about [-1, 1]; halve it.
	return 35.0 * (n0 + n1 + n2)
}

// SimplexPlane fills an h×w plane with simplex noise sampled at integer
// grid coordinates, remapped from about [-0.5, 0.5] to [0, 1].
func SimplexPlane(h, w int, seed int64) []float64 {
	s := NewSimplex(seed)
	out := make([]float64, h*w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out[y*w+x] = clamp01(s.At(float64(x), float64(y)) + 0.5)
		}
	}
	return out
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
