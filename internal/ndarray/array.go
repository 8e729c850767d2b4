// Package ndarray provides the N-dimensional sample arrays produced by
// stochastic parameters.
package ndarray

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrShape reports a malformed or unsupported array shape.
var ErrShape = errors.New("ndarray: invalid shape")

// Array is a dense row-major array of either float64 or string values.
// Exactly one of the two backing slices is in use.
type Array struct {
	shape []int
	data  []float64
	strs  []string
}

// ShapeSize returns the number of elements described by shape.
// A shape must have at least one dimension and no negative extents.
func ShapeSize(shape []int) (int, error) {
	if len(shape) == 0 {
		return 0, fmt.Errorf("%w: empty shape", ErrShape)
	}
	n := 1
	for _, d := range shape {
		if d < 0 {
			return 0, fmt.Errorf("%w: negative extent in %v", ErrShape, shape)
		}
		n *= d
	}
	return n, nil
}

// New returns a zero-filled numeric array.
func New(shape []int) (*Array, error) {
	n, err := ShapeSize(shape)
	if err != nil {
		return nil, err
	}
	return &Array{shape: cloneInts(shape), data: make([]float64, n)}, nil
}

// Full returns a numeric array with every element set to v.
func Full(shape []int, v float64) (*Array, error) {
	a, err := New(shape)
	if err != nil {
		return nil, err
	}
	for i := range a.data {
		a.data[i] = v
	}
	return a, nil
}

// FullString returns a string array with every element set to s.
func FullString(shape []int, s string) (*Array, error) {
	n, err := ShapeSize(shape)
	if err != nil {
		return nil, err
	}
	strs := make([]string, n)
	for i := range strs {
		strs[i] = s
	}
	return &Array{shape: cloneInts(shape), strs: strs}, nil
}

// FullValue fills an array of the given shape with v, string or numeric.
func FullValue(shape []int, v Value) (*Array, error) {
	if v.IsString() {
		return FullString(shape, v.Text())
	}
	return Full(shape, v.Float())
}

// FromFloats wraps data (not copied) as an array of the given shape.
func FromFloats(shape []int, data []float64) (*Array, error) {
	n, err := ShapeSize(shape)
	if err != nil {
		return nil, err
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: %d values do not fill shape %v", ErrShape, len(data), shape)
	}
	return &Array{shape: cloneInts(shape), data: data}, nil
}

// FromStrings wraps data (not copied) as a string array of the given shape.
func FromStrings(shape []int, data []string) (*Array, error) {
	n, err := ShapeSize(shape)
	if err != nil {
		return nil, err
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: %d values do not fill shape %v", ErrShape, len(data), shape)
	}
	return &Array{shape: cloneInts(shape), strs: data}, nil
}

// Shape returns a copy of the array's shape.
func (a *Array) Shape() []int { return cloneInts(a.shape) }

// Rank returns the number of dimensions.
func (a *Array) Rank() int { return len(a.shape) }

// Dim returns the extent of dimension i.
func (a *Array) Dim(i int) int { return a.shape[i] }

// Size returns the number of elements.
func (a *Array) Size() int {
	if a.strs != nil {
		return len(a.strs)
	}
	return len(a.data)
}

// IsString reports whether the array holds strings.
func (a *Array) IsString() bool { return a.strs != nil }

// Floats returns the backing numeric slice. It is nil for string arrays.
func (a *Array) Floats() []float64 { return a.data }

// Strings returns the backing string slice. It is nil for numeric arrays.
func (a *Array) Strings() []string { return a.strs }

// Float returns element i of a numeric array.
func (a *Array) Float(i int) float64 { return a.data[i] }

// At returns element i in flat row-major order.
func (a *Array) At(i int) Value {
	if a.strs != nil {
		return Str(a.strs[i])
	}
	return Num(a.data[i])
}

// Reshape returns a view with a new shape over the same elements.
func (a *Array) Reshape(shape []int) (*Array, error) {
	n, err := ShapeSize(shape)
	if err != nil {
		return nil, err
	}
	if n != a.Size() {
		return nil, fmt.Errorf("%w: cannot reshape %v into %v", ErrShape, a.shape, shape)
	}
	return &Array{shape: cloneInts(shape), data: a.data, strs: a.strs}, nil
}

// Clone returns a deep copy.
func (a *Array) Clone() *Array {
	out := &Array{shape: cloneInts(a.shape)}
	if a.strs != nil {
		out.strs = append([]string(nil), a.strs...)
	} else {
		out.data = append([]float64(nil), a.data...)
	}
	return out
}

// Apply replaces every numeric element x with fn(x).
func (a *Array) Apply(fn func(float64) float64) {
	for i, v := range a.data {
		a.data[i] = fn(v)
	}
}

// MinMax returns the smallest and largest numeric element.
// Both are zero for an empty array.
func (a *Array) MinMax() (lo, hi float64) {
	if len(a.data) == 0 {
		return 0, 0
	}
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range a.data {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// Equal reports whether a and b have the same shape and bit-identical elements.
func (a *Array) Equal(b *Array) bool {
	if a == nil || b == nil {
		return a == b
	}
	if !SameShape(a.shape, b.shape) || a.IsString() != b.IsString() {
		return false
	}
	if a.strs != nil {
		for i := range a.strs {
			if a.strs[i] != b.strs[i] {
				return false
			}
		}
		return true
	}
	for i := range a.data {
		if math.Float64bits(a.data[i]) != math.Float64bits(b.data[i]) {
			return false
		}
	}
	return true
}

func (a *Array) String() string {
	var sb strings.Builder
	sb.WriteString("Array")
	sb.WriteString(FormatShape(a.shape))
	sb.WriteString("[")
	const limit = 8
	n := a.Size()
	for i := 0; i < n && i < limit; i++ {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(a.At(i).String())
	}
	if n > limit {
		sb.WriteString(" ...")
	}
	sb.WriteString("]")
	return sb.String()
}

// SameShape reports whether two shapes are identical.
func SameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// FormatShape renders a shape as "(4, 4)".
func FormatShape(shape []int) string {
	parts := make([]string, len(shape))
	for i, d := range shape {
		parts[i] = strconv.Itoa(d)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// ParseShape parses "4,4" or "4x4" into a shape.
func ParseShape(s string) ([]int, error) {
	s = strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "()"))
	if s == "" {
		return nil, fmt.Errorf("%w: empty shape", ErrShape)
	}
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == 'x' || r == ' ' })
	shape := make([]int, 0, len(fields))
	for _, f := range fields {
		d, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrShape, s, err)
		}
		shape = append(shape, d)
	}
	if _, err := ShapeSize(shape); err != nil {
		return nil, err
	}
	return shape, nil
}

func cloneInts(s []int) []int {
	return append([]int(nil), s...)
}
