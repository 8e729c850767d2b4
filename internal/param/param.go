// Package param implements stochastic parameters: immutable objects that,
// given a requested shape and a random source, deterministically produce
// arrays of sampled values.
//
// Leaf distributions (Deterministic, Choice, Binomial, DiscreteUniform,
// Uniform, Normal, Poisson, Beta) can be parameterised by other parameters.
// Composite parameters transform (Clip, Multiply, Sigmoid), aggregate
// (IterativeNoiseAggregator) or resample (FromLowerResolution) their
// children, and the noise generators (SimplexNoise, PerlinNoise,
// FrequencyNoise) synthesise spatially coherent 2D planes in [0, 1].
//
// Sampling is a pure function of the shape and the generator state: two
// calls with the same shape and equally seeded generators return
// bit-identical arrays. Composite parameters draw one parent seed from the
// caller's generator and derive every sub-sampling from it with
// randsrc.Derive, at the fixed offsets documented on each type.
package param

import (
	"errors"
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/MeKo-Tech/noiseparams/internal/ndarray"
	"github.com/MeKo-Tech/noiseparams/internal/randsrc"
)

var (
	// ErrConstruction reports an invalid constructor argument (wrong type or arity).
	ErrConstruction = errors.New("param: invalid argument")

	// ErrDomain reports a value outside a distribution's valid domain, found
	// either at construction or when a sub-parameter is resampled.
	ErrDomain = errors.New("param: value out of domain")

	// ErrShape reports a requested shape the parameter cannot produce.
	ErrShape = ndarray.ErrShape
)

// Parameter is the sampling contract shared by every stochastic parameter.
//
// DrawSamples returns a new array of exactly the requested shape, owned by
// the caller. A nil rng selects the process-wide generator (randsrc.Current).
// Implementations must not mutate the receiver.
type Parameter interface {
	DrawSamples(shape []int, rng *rand.Rand) (*ndarray.Array, error)
	String() string
}

// DrawSample draws a single value, i.e. the only element of DrawSamples([1]).
func DrawSample(p Parameter, rng *rand.Rand) (ndarray.Value, error) {
	arr, err := p.DrawSamples([]int{1}, rng)
	if err != nil {
		return ndarray.Value{}, err
	}
	return arr.At(0), nil
}

// DrawSeeded draws samples with a fresh generator seeded from seed.
func DrawSeeded(p Parameter, shape []int, seed int64) (*ndarray.Array, error) {
	return p.DrawSamples(shape, randsrc.New(seed))
}

// Must panics if err is non-nil. It is meant for parameters built from
// literal arguments, e.g. Must(NewUniform(0, 1)).
func Must[T Parameter](p T, err error) T {
	if err != nil {
		panic(err)
	}
	return p
}

// drawFloat draws one numeric value from p.
func drawFloat(p Parameter, rng *rand.Rand, name string) (float64, error) {
	v, err := DrawSample(p, rng)
	if err != nil {
		return 0, err
	}
	if v.IsString() {
		return 0, fmt.Errorf("%w: %s must be numeric, got %s", ErrDomain, name, v)
	}
	return v.Float(), nil
}

// drawInt draws one numeric value from p and truncates it toward zero.
func drawInt(p Parameter, rng *rand.Rand, name string) (int, error) {
	f, err := drawFloat(p, rng, name)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// fill builds a numeric array of shape with one call to next per element.
func fill(shape []int, next func() float64) (*ndarray.Array, error) {
	arr, err := ndarray.New(shape)
	if err != nil {
		return nil, err
	}
	data := arr.Floats()
	for i := range data {
		data[i] = next()
	}
	return arr, nil
}

// numeric rejects string arrays produced by a child parameter.
func numeric(arr *ndarray.Array, who string) error {
	if arr.IsString() {
		return fmt.Errorf("%w: %s requires numeric samples", ErrDomain, who)
	}
	return nil
}

func requirePlane(shape []int, who string) (h, w int, err error) {
	if len(shape) != 2 {
		return 0, 0, fmt.Errorf("%w: %s expects shape (H, W), got %s", ErrShape, who, ndarray.FormatShape(shape))
	}
	if shape[0] < 0 || shape[1] < 0 {
		return 0, 0, fmt.Errorf("%w: %s got negative extent %s", ErrShape, who, ndarray.FormatShape(shape))
	}
	return shape[0], shape[1], nil
}
