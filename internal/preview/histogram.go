package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// HistogramOptions configures Histogram.
type HistogramOptions struct {
	Width, Height int
	Bins          int
	Title         string
}

// DefaultHistogramOptions returns a 640x360 chart with 100 bins.
func DefaultHistogramOptions() HistogramOptions {
	return HistogramOptions{Width: 640, Height: 360, Bins: 100}
}

var (
	histBackground = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	histBar        = color.NRGBA{R: 70, G: 110, B: 180, A: 255}
	histInk        = color.NRGBA{R: 0, G: 0, B: 0, A: 255}
)

const (
	histMargin     = 24
	histTitleSpace = 20
	histMaxTitle   = 80
)

// Bins counts values into n equal-width bins over [lo, hi]. A degenerate
// range is widened by 0.5 on each side.
func Bins(values []float64, n int) (counts []int, lo, hi float64) {
	counts = make([]int, n)
	if len(values) == 0 || n <= 0 {
		return counts, 0, 0
	}
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	width := (hi - lo) / float64(n)
	for _, v := range values {
		i := int((v - lo) / width)
		if i >= n {
			i = n - 1
		}
		counts[i]++
	}
	return counts, lo, hi
}

// Histogram draws a bar chart of the distribution of values, with the
// title and value range printed above and below the bars.
func Histogram(values []float64, opts HistogramOptions) (*image.NRGBA, error) {
	if opts.Width <= 2*histMargin || opts.Height <= 2*histMargin+histTitleSpace {
		return nil, fmt.Errorf("preview: histogram of %dx%d is too small", opts.Width, opts.Height)
	}
	if opts.Bins <= 0 {
		return nil, fmt.Errorf("preview: bins must be positive, got %d", opts.Bins)
	}
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("preview: cannot bin non-finite value %v", v)
		}
	}

	img := image.NewNRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(histBackground), image.Point{}, draw.Src)

	counts, lo, hi := Bins(values, opts.Bins)
	peak := 0
	for _, c := range counts {
		peak = max(peak, c)
	}

	left, right := float32(histMargin), float32(opts.Width-histMargin)
	top, bottom := float32(histMargin+histTitleSpace), float32(opts.Height-histMargin)
	barW := (right - left) / float32(opts.Bins)

	if peak > 0 {
		ras := vector.NewRasterizer(opts.Width, opts.Height)
		for i, c := range counts {
			if c == 0 {
				continue
			}
			x0 := left + float32(i)*barW
			y0 := bottom - (bottom-top)*float32(c)/float32(peak)
			rect(ras, x0, y0, x0+barW, bottom)
		}
		ras.Draw(img, img.Bounds(), image.NewUniform(histBar), image.Point{})
	}

	axis := vector.NewRasterizer(opts.Width, opts.Height)
	rect(axis, left, bottom, right, bottom+1)
	axis.Draw(img, img.Bounds(), image.NewUniform(histInk), image.Point{})

	title := opts.Title
	if len(title) > histMaxTitle {
		title = title[:histMaxTitle-3] + "..."
	}
	label(img, histMargin, histMargin+10, title)
	label(img, histMargin, opts.Height-6, formatBound(lo))
	hiText := formatBound(hi)
	label(img, opts.Width-histMargin-7*len(hiText), opts.Height-6, hiText)
	return img, nil
}

func rect(ras *vector.Rasterizer, x0, y0, x1, y1 float32) {
	ras.MoveTo(x0, y0)
	ras.LineTo(x1, y0)
	ras.LineTo(x1, y1)
	ras.LineTo(x0, y1)
	ras.ClosePath()
}

func label(dst draw.Image, x, y int, text string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(histInk),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'g', 4, 64)
}
