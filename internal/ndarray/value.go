package ndarray

import (
	"math"
	"strconv"
)

// Value is a single sampled scalar: a number or a string.
type Value struct {
	f     float64
	s     string
	isStr bool
}

// Num wraps a number.
func Num(f float64) Value { return Value{f: f} }

// Str wraps a string.
func Str(s string) Value { return Value{s: s, isStr: true} }

// IsString reports whether v holds a string.
func (v Value) IsString() bool { return v.isStr }

// Float returns the numeric value, or NaN for strings.
func (v Value) Float() float64 {
	if v.isStr {
		return math.NaN()
	}
	return v.f
}

// Int truncates the numeric value toward zero.
func (v Value) Int() int { return int(v.Float()) }

// Text returns the string value, or the formatted number.
func (v Value) Text() string {
	if v.isStr {
		return v.s
	}
	return strconv.FormatFloat(v.f, 'g', -1, 64)
}

func (v Value) String() string {
	if v.isStr {
		return strconv.Quote(v.s)
	}
	return strconv.FormatFloat(v.f, 'g', -1, 64)
}
