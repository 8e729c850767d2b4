package param

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/gonum/stat/sampleuv"

	"github.com/MeKo-Tech/noiseparams/internal/ndarray"
	"github.com/MeKo-Tech/noiseparams/internal/randsrc"
)

// Deterministic always yields the same value.
type Deterministic struct {
	value ndarray.Value
}

// Const returns a numeric constant parameter.
func Const(f float64) *Deterministic {
	return &Deterministic{value: ndarray.Num(f)}
}

// ConstString returns a string constant parameter.
func ConstString(s string) *Deterministic {
	return &Deterministic{value: ndarray.Str(s)}
}

// NewDeterministic wraps a number, a string or an ndarray.Value.
func NewDeterministic(v any) (*Deterministic, error) {
	switch x := v.(type) {
	case string:
		return ConstString(x), nil
	case ndarray.Value:
		return &Deterministic{value: x}, nil
	case Parameter:
		return nil, fmt.Errorf("%w: use DeterministicFrom to freeze a Parameter", ErrConstruction)
	}
	if f, ok := number(v); ok {
		return Const(f), nil
	}
	return nil, fmt.Errorf("%w: expected number or string, got %T", ErrConstruction, v)
}

// DeterministicFrom draws a single value from p and freezes it.
func DeterministicFrom(p Parameter, rng *rand.Rand) (*Deterministic, error) {
	v, err := DrawSample(p, rng)
	if err != nil {
		return nil, err
	}
	return &Deterministic{value: v}, nil
}

// Value returns the constant.
func (d *Deterministic) Value() ndarray.Value { return d.value }

func (d *Deterministic) DrawSamples(shape []int, _ *rand.Rand) (*ndarray.Array, error) {
	return ndarray.FullValue(shape, d.value)
}

func (d *Deterministic) String() string {
	if d.value.IsString() {
		return fmt.Sprintf("Deterministic(%s)", d.value.Text())
	}
	f := d.value.Float()
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return fmt.Sprintf("Deterministic(int %d)", int64(f))
	}
	return fmt.Sprintf("Deterministic(float %.8f)", f)
}

// Choice samples elements from a fixed list of candidates.
type Choice struct {
	nums    []float64
	strs    []string
	replace bool
	weights []float64 // normalised; nil means uniform
}

// NewChoice builds a Choice over candidates ([]float64, []int or []string).
// weights, when given, must align 1:1 with candidates, be non-negative and
// have a positive sum.
func NewChoice(candidates any, replace bool, weights []float64) (*Choice, error) {
	c := &Choice{replace: replace}
	switch x := candidates.(type) {
	case []float64:
		c.nums = append([]float64(nil), x...)
	case []int:
		c.nums = make([]float64, len(x))
		for i, v := range x {
			c.nums[i] = float64(v)
		}
	case []string:
		c.strs = append([]string(nil), x...)
	default:
		return nil, fmt.Errorf("%w: choice candidates must be a list of numbers or strings, got %T", ErrConstruction, candidates)
	}

	n := c.len()
	if n == 0 {
		return nil, fmt.Errorf("%w: choice needs at least one candidate", ErrConstruction)
	}
	if weights != nil {
		if len(weights) != n {
			return nil, fmt.Errorf("%w: %d weights for %d candidates", ErrConstruction, len(weights), n)
		}
		sum := 0.0
		for _, w := range weights {
			if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
				return nil, fmt.Errorf("%w: choice weights must be finite and non-negative, got %v", ErrDomain, w)
			}
			sum += w
		}
		if sum <= 0 {
			return nil, fmt.Errorf("%w: choice weights sum to zero", ErrDomain)
		}
		c.weights = make([]float64, n)
		for i, w := range weights {
			c.weights[i] = w / sum
		}
	}
	return c, nil
}

func (c *Choice) len() int {
	if c.strs != nil {
		return len(c.strs)
	}
	return len(c.nums)
}

func (c *Choice) DrawSamples(shape []int, rng *rand.Rand) (*ndarray.Array, error) {
	rng = randsrc.OrCurrent(rng)
	size, err := ndarray.ShapeSize(shape)
	if err != nil {
		return nil, err
	}
	idx, err := c.indices(size, rng)
	if err != nil {
		return nil, err
	}
	if c.strs != nil {
		out := make([]string, size)
		for i, j := range idx {
			out[i] = c.strs[j]
		}
		return ndarray.FromStrings(shape, out)
	}
	out := make([]float64, size)
	for i, j := range idx {
		out[i] = c.nums[j]
	}
	return ndarray.FromFloats(shape, out)
}

func (c *Choice) indices(size int, rng *rand.Rand) ([]int, error) {
	n := c.len()
	idx := make([]int, size)
	switch {
	case c.replace && c.weights == nil:
		for i := range idx {
			idx[i] = rng.Intn(n)
		}
	case c.replace:
		cat := distuv.NewCategorical(c.weights, rng)
		for i := range idx {
			idx[i] = int(cat.Rand())
		}
	case c.weights == nil:
		if size > n {
			return nil, fmt.Errorf("%w: cannot take %d samples from %d candidates without replacement", ErrDomain, size, n)
		}
		copy(idx, rng.Perm(n)[:size])
	default:
		wt := sampleuv.NewWeighted(append([]float64(nil), c.weights...), rng)
		for i := range idx {
			j, ok := wt.Take()
			if !ok {
				return nil, fmt.Errorf("%w: cannot take %d samples without replacement, only %d candidates have weight", ErrDomain, size, i)
			}
			idx[i] = j
		}
	}
	return idx, nil
}

func (c *Choice) String() string {
	var a string
	if c.strs != nil {
		a = "[" + strings.Join(c.strs, ", ") + "]"
	} else {
		a = fmt.Sprint(c.nums)
	}
	p := "None"
	if c.weights != nil {
		p = fmt.Sprint(c.weights)
	}
	return fmt.Sprintf("Choice(a=%s, replace=%t, p=%s)", a, c.replace, p)
}
