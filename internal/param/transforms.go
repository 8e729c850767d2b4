package param

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"github.com/MeKo-Tech/noiseparams/internal/ndarray"
	"github.com/MeKo-Tech/noiseparams/internal/randsrc"
)

// Clip clamps the samples of its child to optional bounds.
type Clip struct {
	child    Parameter
	min, max *float64
}

// ClipOption sets a bound on a Clip.
type ClipOption func(*Clip)

// WithMin sets the lower bound.
func WithMin(v float64) ClipOption {
	return func(c *Clip) { c.min = &v }
}

// WithMax sets the upper bound.
func WithMax(v float64) ClipOption {
	return func(c *Clip) { c.max = &v }
}

// NewClip wraps child. Without options the samples pass through unchanged.
func NewClip(child Parameter, opts ...ClipOption) (*Clip, error) {
	if child == nil {
		return nil, fmt.Errorf("%w: clip needs a child parameter", ErrConstruction)
	}
	c := &Clip{child: child}
	for _, opt := range opts {
		opt(c)
	}
	if c.min != nil && c.max != nil && *c.min > *c.max {
		return nil, fmt.Errorf("%w: clip min %v exceeds max %v", ErrDomain, *c.min, *c.max)
	}
	return c, nil
}

func (c *Clip) DrawSamples(shape []int, rng *rand.Rand) (*ndarray.Array, error) {
	arr, err := c.child.DrawSamples(shape, randsrc.OrCurrent(rng))
	if err != nil {
		return nil, err
	}
	if err := numeric(arr, "Clip"); err != nil {
		return nil, err
	}
	lo, hi := math.Inf(-1), math.Inf(1)
	if c.min != nil {
		lo = *c.min
	}
	if c.max != nil {
		hi = *c.max
	}
	arr.Apply(func(v float64) float64 {
		return math.Min(math.Max(v, lo), hi)
	})
	return arr, nil
}

func (c *Clip) String() string {
	bound := func(b *float64) string {
		if b == nil {
			return "None"
		}
		return fmt.Sprintf("%.8f", *b)
	}
	return fmt.Sprintf("Clip(%s, %s, %s)", c.child, bound(c.min), bound(c.max))
}

// Multiply scales the samples of its child by a factor. A stochastic factor
// is resampled once per call.
type Multiply struct {
	child  Parameter
	factor Parameter
}

func NewMultiply(child Parameter, factor any) (*Multiply, error) {
	if child == nil {
		return nil, fmt.Errorf("%w: multiply needs a child parameter", ErrConstruction)
	}
	f, err := Float(factor)
	if err != nil {
		return nil, fmt.Errorf("multiply factor: %w", err)
	}
	return &Multiply{child: child, factor: f}, nil
}

func (m *Multiply) DrawSamples(shape []int, rng *rand.Rand) (*ndarray.Array, error) {
	rng = randsrc.OrCurrent(rng)
	arr, err := m.child.DrawSamples(shape, rng)
	if err != nil {
		return nil, err
	}
	if err := numeric(arr, "Multiply"); err != nil {
		return nil, err
	}
	f, err := drawFloat(m.factor, rng, "multiply factor")
	if err != nil {
		return nil, err
	}
	arr.Apply(func(v float64) float64 { return v * f })
	return arr, nil
}

func (m *Multiply) String() string { return fmt.Sprintf("Multiply(%s, %s)", m.child, m.factor) }

// DefaultSigmoidThreshold is the threshold range used by SigmoidForNoise
// when none is given.
var DefaultSigmoidThreshold = Range{-10, 10}

// Sigmoid optionally squashes the samples of its child through a logistic
// function 1/(1+exp(-(x*mul + add - threshold))).
//
// One parent seed s is drawn per call. The child is sampled with
// Derive(s, 0), the activation gate with Derive(s, 1) and the threshold
// with Derive(s, 2). The gate passes when its sample exceeds 0.5; otherwise
// the child samples are returned unchanged.
type Sigmoid struct {
	child     Parameter
	threshold Parameter
	activated Parameter
	mul, add  float64
}

// NewSigmoid builds a Sigmoid. activated is a bool or a probability (see
// Prob); mul must be positive.
func NewSigmoid(child Parameter, threshold, activated any, mul, add float64) (*Sigmoid, error) {
	if child == nil {
		return nil, fmt.Errorf("%w: sigmoid needs a child parameter", ErrConstruction)
	}
	thr, err := Float(threshold)
	if err != nil {
		return nil, fmt.Errorf("sigmoid threshold: %w", err)
	}
	act, err := Prob(activated)
	if err != nil {
		return nil, fmt.Errorf("sigmoid activated: %w", err)
	}
	if !(mul > 0) {
		return nil, fmt.Errorf("%w: sigmoid mul must be > 0, got %v", ErrDomain, mul)
	}
	if math.IsNaN(add) || math.IsInf(add, 0) {
		return nil, fmt.Errorf("%w: sigmoid add must be finite, got %v", ErrDomain, add)
	}
	return &Sigmoid{child: child, threshold: thr, activated: act, mul: mul, add: add}, nil
}

// SigmoidForNoise presets mul=20 and add=-10, which centres the logistic
// curve on 0.5 for children producing values in [0, 1]. Higher thresholds
// push more outputs towards 0. A nil threshold selects
// DefaultSigmoidThreshold.
func SigmoidForNoise(child Parameter, threshold, activated any) (*Sigmoid, error) {
	if threshold == nil {
		threshold = DefaultSigmoidThreshold
	}
	return NewSigmoid(child, threshold, activated, 20, -10)
}

func (s *Sigmoid) DrawSamples(shape []int, rng *rand.Rand) (*ndarray.Array, error) {
	seed := randsrc.DrawSeed(randsrc.OrCurrent(rng))
	arr, err := s.child.DrawSamples(shape, randsrc.Sub(seed, 0))
	if err != nil {
		return nil, err
	}
	if err := numeric(arr, "Sigmoid"); err != nil {
		return nil, err
	}
	activated, err := drawFloat(s.activated, randsrc.Sub(seed, 1), "sigmoid activated")
	if err != nil {
		return nil, err
	}
	threshold, err := drawFloat(s.threshold, randsrc.Sub(seed, 2), "sigmoid threshold")
	if err != nil {
		return nil, err
	}
	if activated <= 0.5 {
		return arr, nil
	}
	// The threshold is subtracted: raising it shifts the curve right.
	arr.Apply(func(x float64) float64 {
		return 1 / (1 + math.Exp(-(x*s.mul + s.add - threshold)))
	})
	return arr, nil
}

func (s *Sigmoid) String() string {
	return fmt.Sprintf("Sigmoid(%s, %s, %s, %.8f, %.8f)", s.child, s.threshold, s.activated, s.mul, s.add)
}
