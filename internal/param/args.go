package param

import (
	"fmt"
	"math"
	"strconv"

	"github.com/MeKo-Tech/noiseparams/internal/resize"
)

// Range is a continuous interval argument, resolved to Uniform(a, b).
type Range [2]float64

// IntRange is a discrete interval argument, resolved to DiscreteUniform(a, b).
type IntRange [2]int

// All selects every supported option of a method-valued argument.
const All = "all"

// Float resolves a numeric argument into a parameter:
// numbers become Deterministic, Range (or [2]float64) becomes Uniform,
// IntRange (or [2]int) becomes a continuous Uniform over the same bounds,
// []float64 and []int become Choice, and parameters pass through.
func Float(v any) (Parameter, error) {
	switch x := v.(type) {
	case Parameter:
		return x, nil
	case Range:
		return NewUniform(x[0], x[1])
	case [2]float64:
		return NewUniform(x[0], x[1])
	case IntRange:
		return NewUniform(float64(x[0]), float64(x[1]))
	case [2]int:
		return NewUniform(float64(x[0]), float64(x[1]))
	case []float64:
		return NewChoice(x, true, nil)
	case []int:
		return NewChoice(x, true, nil)
	}
	if f, ok := number(v); ok {
		return Const(f), nil
	}
	return nil, fmt.Errorf("%w: expected number, range, list or Parameter, got %T", ErrConstruction, v)
}

// Int resolves an integer argument: integers become Deterministic,
// IntRange (or [2]int) becomes DiscreteUniform, []int becomes Choice and
// parameters pass through. Whole floats are accepted as integers.
func Int(v any) (Parameter, error) {
	switch x := v.(type) {
	case Parameter:
		return x, nil
	case IntRange:
		return NewDiscreteUniform(x[0], x[1])
	case [2]int:
		return NewDiscreteUniform(x[0], x[1])
	case []int:
		return NewChoice(x, true, nil)
	}
	if f, ok := number(v); ok {
		if f != math.Trunc(f) {
			return nil, fmt.Errorf("%w: expected integer, got %v", ErrConstruction, f)
		}
		return Const(f), nil
	}
	return nil, fmt.Errorf("%w: expected integer, integer range, list or Parameter, got %T", ErrConstruction, v)
}

// Strings resolves a string argument: a string becomes Deterministic,
// []string becomes Choice and parameters pass through.
func Strings(v any) (Parameter, error) {
	switch x := v.(type) {
	case Parameter:
		return x, nil
	case string:
		return ConstString(x), nil
	case []string:
		return NewChoice(x, true, nil)
	}
	return nil, fmt.Errorf("%w: expected string, list of strings or Parameter, got %T", ErrConstruction, v)
}

// Prob resolves a probability-like argument: a bool becomes a constant
// 0 or 1, a number in [0, 1] becomes Binomial(p), and parameters pass
// through unchanged.
func Prob(v any) (Parameter, error) {
	switch x := v.(type) {
	case Parameter:
		return x, nil
	case bool:
		if x {
			return Const(1), nil
		}
		return Const(0), nil
	}
	if f, ok := number(v); ok {
		return NewBinomial(f)
	}
	return nil, fmt.Errorf("%w: expected bool, probability or Parameter, got %T", ErrConstruction, v)
}

// methods resolves an interpolation method argument. Literal names are
// validated here; All picks among nearest, linear, area and cubic.
func methods(v any) (Parameter, error) {
	switch x := v.(type) {
	case string:
		if x == All {
			names := make([]string, len(resize.Methods))
			for i, m := range resize.Methods {
				names[i] = string(m)
			}
			return NewChoice(names, true, nil)
		}
		if _, err := resize.ParseMethod(x); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDomain, err)
		}
	case []string:
		if len(x) == 0 {
			return nil, fmt.Errorf("%w: empty method list", ErrConstruction)
		}
		for _, s := range x {
			if _, err := resize.ParseMethod(s); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrDomain, err)
			}
		}
	case int:
		if _, err := resize.ParseMethod(strconv.Itoa(x)); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDomain, err)
		}
		return Const(float64(x)), nil
	}
	return Strings(v)
}

// intBounded resolves an integer argument and checks literal values
// (constants, range bounds, list entries) against [lo, hi].
func intBounded(v any, name string, lo, hi int) (Parameter, error) {
	check := func(n int) error {
		if n < lo || n > hi {
			return fmt.Errorf("%w: %s must be within [%d, %d], got %d", ErrDomain, name, lo, hi, n)
		}
		return nil
	}
	switch x := v.(type) {
	case IntRange:
		if err := firstErr(check(x[0]), check(x[1])); err != nil {
			return nil, err
		}
	case [2]int:
		if err := firstErr(check(x[0]), check(x[1])); err != nil {
			return nil, err
		}
	case []int:
		if len(x) == 0 {
			return nil, fmt.Errorf("%w: %s list is empty", ErrConstruction, name)
		}
		for _, n := range x {
			if err := check(n); err != nil {
				return nil, err
			}
		}
	default:
		if f, ok := number(v); ok {
			if err := check(int(f)); err != nil {
				return nil, err
			}
		}
	}
	p, err := Int(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return p, nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	}
	return 0, false
}
