package noise

import (
	"github.com/aquilax/go-perlin"
)

// PerlinPlane fills an h×w plane with Perlin noise remapped to [0, 1].
// Cells are sampled at half-integer coordinates scaled by 1/2, since
// gradient noise vanishes on the integer lattice.
func PerlinPlane(h, w int, seed int64) []float64 {
	// alpha: persistence, beta: lacunarity, n: octaves
	p := perlin.NewPerlin(2.0, 2.0, 3, seed)

	out := make([]float64, h*w)
	for y := 0; y < h; y++ {
		ny := (float64(y) + 0.5) / 2
		for x := 0; x < w; x++ {
			nx := (float64(x) + 0.5) / 2
			out[y*w+x] = clamp01((p.Noise2D(nx, ny) + 1.0) / 2.0)
		}
	}
	return out
}
