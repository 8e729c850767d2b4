// Package preview renders sampled arrays as images: 2D planes as grayscale
// pictures and flat samples as histograms.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"github.com/MeKo-Tech/noiseparams/internal/ndarray"
)

// Plane converts a numeric (H, W) array to a grayscale image. Values within
// [0, 1] map directly to black..white; arrays exceeding that range are
// min-max normalised first.
func Plane(arr *ndarray.Array) (*image.Gray, error) {
	if arr.IsString() {
		return nil, fmt.Errorf("preview: cannot render string samples")
	}
	if arr.Rank() != 2 {
		return nil, fmt.Errorf("preview: expected an (H, W) array, got %s", ndarray.FormatShape(arr.Shape()))
	}
	h, w := arr.Dim(0), arr.Dim(1)

	lo, hi := arr.MinMax()
	if lo >= 0 && hi <= 1 {
		lo, hi = 0, 1
	}
	span := hi - lo

	img := image.NewGray(image.Rect(0, 0, w, h))
	data := arr.Floats()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := 0.0
			if span > 0 {
				v = (data[y*w+x] - lo) / span
			}
			img.SetGray(x, y, color.Gray{Y: uint8(math.Round(clamp01(v) * 255))})
		}
	}
	return img, nil
}

// WritePNG encodes img to path.
func WritePNG(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create preview %s: %w", path, err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("failed to encode preview %s: %w", path, err)
	}
	return nil
}

// Mosaic lays equally sized grayscale tiles out in rows of cols, separated
// by a gap of gap pixels filled with mid gray.
func Mosaic(tiles []*image.Gray, cols, gap int) (*image.Gray, error) {
	if len(tiles) == 0 {
		return nil, fmt.Errorf("preview: no tiles")
	}
	if cols <= 0 {
		cols = len(tiles)
	}
	tw, th := tiles[0].Bounds().Dx(), tiles[0].Bounds().Dy()
	for i, t := range tiles {
		if t.Bounds().Dx() != tw || t.Bounds().Dy() != th {
			return nil, fmt.Errorf("preview: tile %d is %v, want %dx%d", i, t.Bounds().Size(), tw, th)
		}
	}
	rows := (len(tiles) + cols - 1) / cols
	n := min(cols, len(tiles))

	out := image.NewGray(image.Rect(0, 0, n*tw+(n-1)*gap, rows*th+(rows-1)*gap))
	for i := range out.Pix {
		out.Pix[i] = 128
	}
	for i, t := range tiles {
		ox := (i % cols) * (tw + gap)
		oy := (i / cols) * (th + gap)
		for y := 0; y < th; y++ {
			src := t.Pix[y*t.Stride : y*t.Stride+tw]
			copy(out.Pix[(oy+y)*out.Stride+ox:], src)
		}
	}
	return out, nil
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
