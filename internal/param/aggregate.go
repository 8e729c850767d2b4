package param

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"github.com/MeKo-Tech/noiseparams/internal/ndarray"
	"github.com/MeKo-Tech/noiseparams/internal/randsrc"
)

// Aggregation methods of IterativeNoiseAggregator.
const (
	AggregateMin = "min"
	AggregateMax = "max"
	AggregateAvg = "avg"
)

// MaxIterations bounds the iteration count of IterativeNoiseAggregator.
const MaxIterations = 10000

// Defaults used by NewIterativeNoiseAggregator for nil arguments.
var (
	DefaultIterations        = IntRange{1, 3}
	DefaultAggregatorMethods = []string{AggregateMax, AggregateAvg}
)

// IterativeNoiseAggregator draws a 2D child several times and combines the
// draws elementwise.
//
// One parent seed s is drawn per call. The method is sampled with
// Derive(s, 0), the iteration count with Derive(s, 1), and iteration i
// draws the child with Derive(s, 2+i).
type IterativeNoiseAggregator struct {
	child      Parameter
	iterations Parameter
	method     Parameter
}

// NewIterativeNoiseAggregator builds an aggregator. iterations is an integer
// argument within [1, MaxIterations]; method is "min", "max", "avg", All or
// a list of those. Nil arguments select the defaults.
func NewIterativeNoiseAggregator(child Parameter, iterations, method any) (*IterativeNoiseAggregator, error) {
	if child == nil {
		return nil, fmt.Errorf("%w: aggregator needs a child parameter", ErrConstruction)
	}
	if iterations == nil {
		iterations = DefaultIterations
	}
	if method == nil {
		method = DefaultAggregatorMethods
	}
	it, err := intBounded(iterations, "iterations", 1, MaxIterations)
	if err != nil {
		return nil, err
	}
	m, err := aggregationMethods(method)
	if err != nil {
		return nil, err
	}
	return &IterativeNoiseAggregator{child: child, iterations: it, method: m}, nil
}

func aggregationMethods(v any) (Parameter, error) {
	switch x := v.(type) {
	case string:
		if x == All {
			return NewChoice([]string{AggregateMin, AggregateMax, AggregateAvg}, true, nil)
		}
		if !isAggregation(x) {
			return nil, fmt.Errorf("%w: unknown aggregation method %q", ErrDomain, x)
		}
	case []string:
		if len(x) == 0 {
			return nil, fmt.Errorf("%w: empty aggregation method list", ErrConstruction)
		}
		for _, s := range x {
			if !isAggregation(s) {
				return nil, fmt.Errorf("%w: unknown aggregation method %q", ErrDomain, s)
			}
		}
	}
	p, err := Strings(v)
	if err != nil {
		return nil, fmt.Errorf("aggregation method: %w", err)
	}
	return p, nil
}

func isAggregation(s string) bool {
	return s == AggregateMin || s == AggregateMax || s == AggregateAvg
}

func (a *IterativeNoiseAggregator) DrawSamples(shape []int, rng *rand.Rand) (*ndarray.Array, error) {
	h, w, err := requirePlane(shape, "IterativeNoiseAggregator")
	if err != nil {
		return nil, err
	}
	seed := randsrc.DrawSeed(randsrc.OrCurrent(rng))

	mv, err := DrawSample(a.method, randsrc.Sub(seed, 0))
	if err != nil {
		return nil, err
	}
	method := mv.Text()
	if !mv.IsString() || !isAggregation(method) {
		return nil, fmt.Errorf("%w: unknown aggregation method %s", ErrDomain, mv)
	}

	n, err := drawInt(a.iterations, randsrc.Sub(seed, 1), "iterations")
	if err != nil {
		return nil, err
	}
	if n < 1 || n > MaxIterations {
		return nil, fmt.Errorf("%w: iterations must be within [1, %d], got %d", ErrDomain, MaxIterations, n)
	}

	plane := []int{h, w}
	var acc []float64
	for i := 0; i < n; i++ {
		arr, err := a.child.DrawSamples(plane, randsrc.Sub(seed, 2+i))
		if err != nil {
			return nil, fmt.Errorf("iteration %d: %w", i, err)
		}
		if err := numeric(arr, "IterativeNoiseAggregator"); err != nil {
			return nil, err
		}
		if !ndarray.SameShape(arr.Shape(), plane) {
			return nil, fmt.Errorf("%w: child returned %s, want %s", ErrShape,
				ndarray.FormatShape(arr.Shape()), ndarray.FormatShape(plane))
		}
		data := arr.Floats()
		if acc == nil {
			acc = append(make([]float64, 0, len(data)), data...)
			continue
		}
		switch method {
		case AggregateAvg:
			for j, v := range data {
				acc[j] += v
			}
		case AggregateMin:
			for j, v := range data {
				acc[j] = math.Min(acc[j], v)
			}
		case AggregateMax:
			for j, v := range data {
				acc[j] = math.Max(acc[j], v)
			}
		}
	}
	if method == AggregateAvg {
		for j := range acc {
			acc[j] /= float64(n)
		}
	}
	return ndarray.FromFloats(plane, acc)
}

func (a *IterativeNoiseAggregator) String() string {
	return fmt.Sprintf("IterativeNoiseAggregator(%s, %s, %s)", a.child, a.iterations, a.method)
}
