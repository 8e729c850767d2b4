package param

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/noiseparams/internal/randsrc"
)

func TestClip(t *testing.T) {
	c := Must(NewClip(Const(10), WithMin(0), WithMax(5)))
	v, err := DrawSample(c, randsrc.New(1))
	require.NoError(t, err)
	assert.Equal(t, 5.0, v.Float())

	c = Must(NewClip(Const(-10), WithMin(0), WithMax(5)))
	v, err = DrawSample(c, randsrc.New(1))
	require.NoError(t, err)
	assert.Equal(t, 0.0, v.Float())

	// one-sided
	c = Must(NewClip(Const(-10), WithMax(5)))
	v, err = DrawSample(c, randsrc.New(1))
	require.NoError(t, err)
	assert.Equal(t, -10.0, v.Float())

	_, err = NewClip(Const(1), WithMin(2), WithMax(1))
	assert.ErrorIs(t, err, ErrDomain)

	_, err = Must(NewClip(ConstString("x"), WithMin(0))).DrawSamples([]int{1}, nil)
	assert.ErrorIs(t, err, ErrDomain)
}

func TestMultiply(t *testing.T) {
	m := Must(NewMultiply(Const(3), -2))
	v, err := DrawSample(m, randsrc.New(1))
	require.NoError(t, err)
	assert.Equal(t, -6.0, v.Float())
	assert.Equal(t, "Multiply(Deterministic(int 3), Deterministic(int -2))", m.String())
}

func TestSigmoid(t *testing.T) {
	t.Run("inactive passes through", func(t *testing.T) {
		s := Must(NewSigmoid(Const(0.7), 0, false, 1, 0))
		v, err := DrawSample(s, randsrc.New(1))
		require.NoError(t, err)
		assert.Equal(t, 0.7, v.Float())
	})

	t.Run("noise preset is centred on one half", func(t *testing.T) {
		s := Must(SigmoidForNoise(Const(0.5), 0, true))
		v, err := DrawSample(s, randsrc.New(1))
		require.NoError(t, err)
		assert.InDelta(t, 0.5, v.Float(), 1e-12)
	})

	t.Run("higher threshold lowers the output", func(t *testing.T) {
		lo := Must(SigmoidForNoise(Const(0.6), -2, true))
		hi := Must(SigmoidForNoise(Const(0.6), 4, true))
		a, err := DrawSample(lo, randsrc.New(1))
		require.NoError(t, err)
		b, err := DrawSample(hi, randsrc.New(1))
		require.NoError(t, err)
		assert.Greater(t, a.Float(), b.Float())
		assert.InDelta(t, 1/(1+math.Exp(-(0.6*20-10+2))), a.Float(), 1e-12)
	})

	t.Run("stochastic arguments are reproducible", func(t *testing.T) {
		s := Must(SigmoidForNoise(Must(NewUniform(0, 1)), nil, 0.5))
		a, err := DrawSeeded(s, []int{6, 6}, 99)
		require.NoError(t, err)
		b, err := DrawSeeded(s, []int{6, 6}, 99)
		require.NoError(t, err)
		assert.True(t, a.Equal(b))
	})

	_, err := NewSigmoid(Const(1), 0, true, 0, 0)
	assert.ErrorIs(t, err, ErrDomain)
	_, err = NewSigmoid(Const(1), 0, "yes", 1, 0)
	assert.ErrorIs(t, err, ErrConstruction)
}

func TestIterativeNoiseAggregator(t *testing.T) {
	agg := Must(NewIterativeNoiseAggregator(Const(1.0), 5, AggregateAvg))
	arr, err := DrawSeeded(agg, []int{4, 4}, 11)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 4}, arr.Shape())
	allEqual(t, arr, 1)

	child := Must(NewUniform(0, 1))
	draw := func(method string) []float64 {
		a := Must(NewIterativeNoiseAggregator(child, 4, method))
		arr, err := DrawSeeded(a, []int{3, 5}, 21)
		require.NoError(t, err)
		return arr.Floats()
	}
	mins, avgs, maxs := draw(AggregateMin), draw(AggregateAvg), draw(AggregateMax)
	for i := range mins {
		assert.LessOrEqual(t, mins[i], avgs[i])
		assert.LessOrEqual(t, avgs[i], maxs[i])
	}

	_, err = agg.DrawSamples([]int{4, 4, 1}, nil)
	assert.ErrorIs(t, err, ErrShape)

	_, err = NewIterativeNoiseAggregator(child, 0, AggregateAvg)
	assert.ErrorIs(t, err, ErrDomain)
	_, err = NewIterativeNoiseAggregator(child, MaxIterations+1, AggregateAvg)
	assert.ErrorIs(t, err, ErrDomain)
	_, err = NewIterativeNoiseAggregator(child, 2, "median")
	assert.ErrorIs(t, err, ErrDomain)

	bad := &IterativeNoiseAggregator{child: child, iterations: Const(2), method: ConstString("median")}
	_, err = bad.DrawSamples([]int{2, 2}, randsrc.New(1))
	assert.ErrorIs(t, err, ErrDomain)
}

func TestFromLowerResolutionIdentity(t *testing.T) {
	child := Must(NewUniform(0, 1))
	lr := Must(NewFromLowerResolution(child, LowerResolutionConfig{SizePx: 8, Method: "nearest"}))

	got, err := lr.DrawSamples([]int{8, 8, 3}, randsrc.New(42))
	require.NoError(t, err)
	want, err := child.DrawSamples([]int{1, 8, 8, 3}, randsrc.New(42))
	require.NoError(t, err)

	assert.Equal(t, []int{8, 8, 3}, got.Shape())
	assert.Equal(t, want.Floats(), got.Floats())
}

func TestFromLowerResolutionUpsamples(t *testing.T) {
	child := Must(NewUniform(0, 1))
	lr := Must(NewFromLowerResolution(child, LowerResolutionConfig{
		SizePercent: Range{0.1, 0.5},
		Method:      All,
	}))

	shape := []int{3, 20, 16, 2}
	a, err := lr.DrawSamples(shape, randsrc.New(5))
	require.NoError(t, err)
	assert.Equal(t, shape, a.Shape())
	requireUnit(t, a.Floats())

	b, err := lr.DrawSamples(shape, randsrc.New(5))
	require.NoError(t, err)
	assert.True(t, a.Equal(b))

	_, err = lr.DrawSamples([]int{20, 16}, nil)
	assert.ErrorIs(t, err, ErrShape)
}

func TestFromLowerResolutionMinSize(t *testing.T) {
	lr := Must(NewFromLowerResolution(Const(0.25), LowerResolutionConfig{
		SizePercent: 0.0,
		Method:      "linear",
	}))
	arr, err := lr.DrawSamples([]int{6, 6, 1}, randsrc.New(1))
	require.NoError(t, err)
	allEqual(t, arr, 0.25)
}

func TestFromLowerResolutionConfig(t *testing.T) {
	child := Const(1)
	_, err := NewFromLowerResolution(child, LowerResolutionConfig{})
	assert.ErrorIs(t, err, ErrConstruction)
	_, err = NewFromLowerResolution(child, LowerResolutionConfig{SizePx: 4, SizePercent: 0.5})
	assert.ErrorIs(t, err, ErrConstruction)
	_, err = NewFromLowerResolution(child, LowerResolutionConfig{SizePx: 4, Method: "bogus"})
	assert.ErrorIs(t, err, ErrDomain)
	_, err = NewFromLowerResolution(child, LowerResolutionConfig{SizePx: 4, MinSize: -1})
	assert.ErrorIs(t, err, ErrDomain)

	// integer method codes are checked up front like names
	_, err = NewFromLowerResolution(child, LowerResolutionConfig{SizePx: 4, Method: 9})
	assert.ErrorIs(t, err, ErrDomain)
	_, err = NewFromLowerResolution(child, LowerResolutionConfig{SizePx: 4, Method: -1})
	assert.ErrorIs(t, err, ErrDomain)
	lr, err := NewFromLowerResolution(child, LowerResolutionConfig{SizePx: 4, Method: 0})
	require.NoError(t, err)
	arr, err := lr.DrawSamples([]int{4, 4, 1}, randsrc.New(1))
	require.NoError(t, err)
	allEqual(t, arr, 1)
}

func noiseGenerators(t *testing.T) map[string]Parameter {
	t.Helper()
	return map[string]Parameter{
		"simplex":   Must(NewSimplexNoise(nil, nil)),
		"perlin":    Must(NewPerlinNoise(IntRange{4, 8}, All)),
		"frequency": Must(NewFrequencyNoise(nil, nil, nil)),
		"blobs":     Must(NewFrequencyNoise(-4, 16, "cubic")),
		"texture":   Must(NewFrequencyNoise(4, 8, "lanczos")),
	}
}

func TestNoiseRangeAndShape(t *testing.T) {
	shapes := [][]int{{1, 1}, {2, 3}, {7, 33}, {64, 64}, {50, 10}}
	for name, p := range noiseGenerators(t) {
		for _, shape := range shapes {
			for seed := int64(0); seed < 4; seed++ {
				arr, err := DrawSeeded(p, shape, seed)
				require.NoError(t, err, "%s %v", name, shape)
				require.Equal(t, shape, arr.Shape(), name)
				t.Run(fmt.Sprintf("%s %v seed=%d", name, shape, seed), func(t *testing.T) {
					requireUnit(t, arr.Floats())
				})
			}
		}
	}
}

func TestNoiseRejectsNonPlaneShapes(t *testing.T) {
	for name, p := range noiseGenerators(t) {
		for _, shape := range [][]int{{16}, {16, 16, 3}, {1, 16, 16, 1}} {
			_, err := p.DrawSamples(shape, randsrc.New(1))
			assert.ErrorIs(t, err, ErrShape, "%s %v", name, shape)
		}
	}
}

func TestNoiseIsDeterministic(t *testing.T) {
	for name, p := range noiseGenerators(t) {
		a, err := DrawSeeded(p, []int{32, 48}, 2024)
		require.NoError(t, err)
		b, err := DrawSeeded(p, []int{32, 48}, 2024)
		require.NoError(t, err)
		assert.True(t, a.Equal(b), name)
	}
}

func TestNoiseEmptyPlane(t *testing.T) {
	arr, err := DrawSeeded(Must(NewSimplexNoise(nil, nil)), []int{0, 5}, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 5}, arr.Shape())
	assert.Equal(t, 0, arr.Size())
}

func TestFrequencyNoiseSpansUnitRange(t *testing.T) {
	// no resize: the working grid equals the request, so min-max
	// normalisation is visible in the output
	f := Must(NewFrequencyNoise(-2, 32, "nearest"))
	arr, err := DrawSeeded(f, []int{16, 16}, 3)
	require.NoError(t, err)
	lo, hi := arr.MinMax()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 1.0, hi)
}

func TestLowResSize(t *testing.T) {
	tests := []struct {
		h, w, maxSize, floor int
		wantH, wantW         int
	}{
		{100, 50, 10, 1, 10, 5},
		{8, 8, 16, 1, 8, 8},
		{1000, 10, 8, 1, 8, 1},
		{1000, 10, 8, 4, 8, 4},
		{2, 2, 32, 4, 4, 4},
	}
	for _, tt := range tests {
		h, w := lowResSize(tt.h, tt.w, tt.maxSize, tt.floor)
		assert.Equal(t, tt.wantH, h)
		assert.Equal(t, tt.wantW, w)
	}
}

func TestAggregatedNoiseComposes(t *testing.T) {
	p := Must(SigmoidForNoise(
		Must(NewIterativeNoiseAggregator(Must(NewSimplexNoise(nil, nil)), IntRange{1, 3}, All)),
		nil, true,
	))
	arr, err := DrawSeeded(p, []int{24, 24}, 7)
	require.NoError(t, err)
	requireUnit(t, arr.Floats())
}
