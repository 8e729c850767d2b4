// Package paramcfg builds parameter trees from declarative maps, as found
// under the params key of the config file or in a standalone YAML document.
//
// Every node is a map with a type key and the constructor arguments of that
// type. Argument values follow these conventions:
//
//	number        constant
//	[a, b]        range (Uniform, or DiscreteUniform for integer arguments)
//	[a, b, c...]  choice among the listed values
//	[x, y]        choice when the entries are strings
//	{type: ...}   nested parameter
//
// A choice between exactly two numbers needs an explicit {type: choice} node.
package paramcfg

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MeKo-Tech/noiseparams/internal/param"
)

// ErrConfig reports a malformed parameter declaration.
var ErrConfig = errors.New("paramcfg: invalid parameter declaration")

// Parse decodes a YAML document mapping names to parameter declarations and
// builds every entry.
func Parse(r io.Reader) (map[string]param.Parameter, error) {
	var doc map[string]any
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]param.Parameter{}, nil
		}
		return nil, fmt.Errorf("failed to decode parameter document: %w", err)
	}
	return BuildAll(doc)
}

// BuildAll builds every named declaration of specs.
func BuildAll(specs map[string]any) (map[string]param.Parameter, error) {
	out := make(map[string]param.Parameter, len(specs))
	for _, name := range sortedKeys(specs) {
		node, ok := asMap(specs[name])
		if !ok {
			return nil, fmt.Errorf("%w: %s: expected a map, got %T", ErrConfig, name, specs[name])
		}
		p, err := build(name, node)
		if err != nil {
			return nil, err
		}
		out[name] = p
	}
	return out, nil
}

// Build builds a single declaration.
func Build(spec map[string]any) (param.Parameter, error) {
	return build("param", spec)
}

type builder func(n *node) (param.Parameter, error)

var builders map[string]builder

func init() {
	builders = map[string]builder{
		"deterministic": func(n *node) (param.Parameter, error) {
			v, err := n.required("value")
			if err != nil {
				return nil, err
			}
			return param.NewDeterministic(v)
		},
		"choice": func(n *node) (param.Parameter, error) {
			raw, err := n.required("values")
			if err != nil {
				return nil, err
			}
			values, err := n.list("values", raw)
			if err != nil {
				return nil, err
			}
			replace, err := n.boolean("replace", true)
			if err != nil {
				return nil, err
			}
			weights, err := n.floats("weights")
			if err != nil {
				return nil, err
			}
			return param.NewChoice(values, replace, weights)
		},
		"binomial": func(n *node) (param.Parameter, error) {
			p, err := n.floatArg("p", true)
			if err != nil {
				return nil, err
			}
			return param.NewBinomial(p)
		},
		"discrete_uniform": func(n *node) (param.Parameter, error) {
			a, b, err := n.pair("a", "b", n.intArg)
			if err != nil {
				return nil, err
			}
			return param.NewDiscreteUniform(a, b)
		},
		"uniform": func(n *node) (param.Parameter, error) {
			a, b, err := n.pair("a", "b", n.floatArg)
			if err != nil {
				return nil, err
			}
			return param.NewUniform(a, b)
		},
		"normal": func(n *node) (param.Parameter, error) {
			loc, scale, err := n.pair("loc", "scale", n.floatArg)
			if err != nil {
				return nil, err
			}
			return param.NewNormal(loc, scale)
		},
		"poisson": func(n *node) (param.Parameter, error) {
			lam, err := n.floatArg("lam", true)
			if err != nil {
				return nil, err
			}
			return param.NewPoisson(lam)
		},
		"beta": func(n *node) (param.Parameter, error) {
			alpha, beta, err := n.pair("alpha", "beta", n.floatArg)
			if err != nil {
				return nil, err
			}
			eps, err := n.scalar("epsilon", param.DefaultBetaEpsilon)
			if err != nil {
				return nil, err
			}
			return param.NewBeta(alpha, beta, eps)
		},
		"clip": func(n *node) (param.Parameter, error) {
			child, err := n.child()
			if err != nil {
				return nil, err
			}
			var opts []param.ClipOption
			for _, b := range []struct {
				key string
				opt func(float64) param.ClipOption
			}{{"min", param.WithMin}, {"max", param.WithMax}} {
				if _, ok := n.get(b.key); !ok {
					continue
				}
				v, err := n.scalar(b.key, 0)
				if err != nil {
					return nil, err
				}
				opts = append(opts, b.opt(v))
			}
			return param.NewClip(child, opts...)
		},
		"multiply": func(n *node) (param.Parameter, error) {
			child, err := n.child()
			if err != nil {
				return nil, err
			}
			factor, err := n.floatArg("factor", true)
			if err != nil {
				return nil, err
			}
			return param.NewMultiply(child, factor)
		},
		"sigmoid": func(n *node) (param.Parameter, error) {
			child, threshold, activated, err := sigmoidArgs(n)
			if err != nil {
				return nil, err
			}
			mul, err := n.scalar("mul", 1)
			if err != nil {
				return nil, err
			}
			add, err := n.scalar("add", 0)
			if err != nil {
				return nil, err
			}
			if threshold == nil {
				threshold = 0.0
			}
			return param.NewSigmoid(child, threshold, activated, mul, add)
		},
		"sigmoid_noise": func(n *node) (param.Parameter, error) {
			child, threshold, activated, err := sigmoidArgs(n)
			if err != nil {
				return nil, err
			}
			return param.SigmoidForNoise(child, threshold, activated)
		},
		"iterative": func(n *node) (param.Parameter, error) {
			child, err := n.child()
			if err != nil {
				return nil, err
			}
			iterations, err := n.intArg("iterations", false)
			if err != nil {
				return nil, err
			}
			method, err := n.strArg("method")
			if err != nil {
				return nil, err
			}
			return param.NewIterativeNoiseAggregator(child, iterations, method)
		},
		"from_lower_resolution": func(n *node) (param.Parameter, error) {
			child, err := n.child()
			if err != nil {
				return nil, err
			}
			var cfg param.LowerResolutionConfig
			if cfg.SizePercent, err = n.floatArg("size_percent", false); err != nil {
				return nil, err
			}
			if cfg.SizePx, err = n.intArg("size_px", false); err != nil {
				return nil, err
			}
			if cfg.Method, err = n.strArg("method"); err != nil {
				return nil, err
			}
			minSize, err := n.scalar("min_size", 1)
			if err != nil {
				return nil, err
			}
			cfg.MinSize = int(minSize)
			return param.NewFromLowerResolution(child, cfg)
		},
		"simplex": func(n *node) (param.Parameter, error) {
			size, method, err := coherentArgs(n)
			if err != nil {
				return nil, err
			}
			return param.NewSimplexNoise(size, method)
		},
		"perlin": func(n *node) (param.Parameter, error) {
			size, method, err := coherentArgs(n)
			if err != nil {
				return nil, err
			}
			return param.NewPerlinNoise(size, method)
		},
		"frequency": func(n *node) (param.Parameter, error) {
			exponent, err := n.floatArg("exponent", false)
			if err != nil {
				return nil, err
			}
			size, method, err := coherentArgs(n)
			if err != nil {
				return nil, err
			}
			return param.NewFrequencyNoise(exponent, size, method)
		},
	}
}

// Types lists the supported type names.
func Types() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sigmoidArgs(n *node) (param.Parameter, any, any, error) {
	child, err := n.child()
	if err != nil {
		return nil, nil, nil, err
	}
	threshold, err := n.floatArg("threshold", false)
	if err != nil {
		return nil, nil, nil, err
	}
	activated, err := n.probArg("activated")
	if err != nil {
		return nil, nil, nil, err
	}
	if activated == nil {
		activated = true
	}
	return child, threshold, activated, nil
}

func coherentArgs(n *node) (size, method any, err error) {
	if size, err = n.intArg("size_px_max", false); err != nil {
		return nil, nil, err
	}
	if method, err = n.strArg("upscale_method"); err != nil {
		return nil, nil, err
	}
	return size, method, nil
}

func build(path string, spec map[string]any) (param.Parameter, error) {
	n := &node{path: path, spec: spec, used: map[string]bool{"type": true}}
	raw, ok := spec["type"]
	if !ok {
		return nil, fmt.Errorf("%w: %s: missing type", ErrConfig, path)
	}
	typ, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("%w: %s: type must be a string, got %T", ErrConfig, path, raw)
	}
	b, ok := builders[strings.ToLower(typ)]
	if !ok {
		return nil, fmt.Errorf("%w: %s: unknown type %q (known: %s)", ErrConfig, path, typ, strings.Join(Types(), ", "))
	}
	p, err := b(n)
	if err != nil {
		if errors.Is(err, ErrConfig) {
			return nil, err
		}
		return nil, fmt.Errorf("%s (%s): %w", path, typ, err)
	}
	if err := n.unused(); err != nil {
		return nil, err
	}
	return p, nil
}

// node tracks one declaration while its arguments are consumed.
type node struct {
	path string
	spec map[string]any
	used map[string]bool
}

func (n *node) get(key string) (any, bool) {
	v, ok := n.spec[key]
	if ok {
		n.used[key] = true
	}
	return v, ok && v != nil
}

func (n *node) errorf(key, format string, args ...any) error {
	return fmt.Errorf("%w: %s.%s: %s", ErrConfig, n.path, key, fmt.Sprintf(format, args...))
}

func (n *node) unused() error {
	var extra []string
	for key := range n.spec {
		if !n.used[key] {
			extra = append(extra, key)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return fmt.Errorf("%w: %s: unknown keys %s", ErrConfig, n.path, strings.Join(extra, ", "))
	}
	return nil
}

func (n *node) required(key string) (any, error) {
	v, ok := n.get(key)
	if !ok {
		return nil, n.errorf(key, "required")
	}
	return v, nil
}

func (n *node) child() (param.Parameter, error) {
	v, err := n.required("child")
	if err != nil {
		return nil, err
	}
	m, ok := asMap(v)
	if !ok {
		return nil, n.errorf("child", "expected a parameter declaration, got %T", v)
	}
	return build(n.path+".child", m)
}

// nested builds v when it is a parameter declaration.
func (n *node) nested(key string, v any) (param.Parameter, bool, error) {
	m, ok := asMap(v)
	if !ok {
		return nil, false, nil
	}
	p, err := build(n.path+"."+key, m)
	return p, true, err
}

func (n *node) pair(a, b string, arg func(string, bool) (any, error)) (any, any, error) {
	va, err := arg(a, true)
	if err != nil {
		return nil, nil, err
	}
	vb, err := arg(b, true)
	if err != nil {
		return nil, nil, err
	}
	return va, vb, nil
}

// floatArg reads a float argument for param.Float.
func (n *node) floatArg(key string, required bool) (any, error) {
	v, ok := n.get(key)
	if !ok {
		if required {
			return nil, n.errorf(key, "required")
		}
		return nil, nil
	}
	if p, ok, err := n.nested(key, v); ok {
		return p, err
	}
	if f, ok := toFloat(v); ok {
		return f, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, n.errorf(key, "expected number, list or parameter, got %T", v)
	}
	fs := make([]float64, len(items))
	for i, item := range items {
		f, ok := toFloat(item)
		if !ok {
			return nil, n.errorf(key, "entry %d is not a number", i)
		}
		fs[i] = f
	}
	if len(fs) == 2 {
		return param.Range{fs[0], fs[1]}, nil
	}
	return fs, nil
}

// intArg reads an integer argument for param.Int.
func (n *node) intArg(key string, required bool) (any, error) {
	v, ok := n.get(key)
	if !ok {
		if required {
			return nil, n.errorf(key, "required")
		}
		return nil, nil
	}
	if p, ok, err := n.nested(key, v); ok {
		return p, err
	}
	if i, ok := toInt(v); ok {
		return i, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, n.errorf(key, "expected integer, list or parameter, got %T", v)
	}
	is := make([]int, len(items))
	for i, item := range items {
		x, ok := toInt(item)
		if !ok {
			return nil, n.errorf(key, "entry %d is not an integer", i)
		}
		is[i] = x
	}
	if len(is) == 2 {
		return param.IntRange{is[0], is[1]}, nil
	}
	return is, nil
}

// strArg reads a string-valued argument such as an interpolation or
// aggregation method. Integers pass through as method codes.
func (n *node) strArg(key string) (any, error) {
	v, ok := n.get(key)
	if !ok {
		return nil, nil
	}
	if p, ok, err := n.nested(key, v); ok {
		return p, err
	}
	switch x := v.(type) {
	case string:
		return x, nil
	case int:
		return x, nil
	case []any:
		ss := make([]string, len(x))
		for i, item := range x {
			s, ok := item.(string)
			if !ok {
				return nil, n.errorf(key, "entry %d is not a string", i)
			}
			ss[i] = s
		}
		return ss, nil
	}
	return nil, n.errorf(key, "expected string, list of strings or parameter, got %T", v)
}

// probArg reads a bool, probability or parameter for param.Prob.
func (n *node) probArg(key string) (any, error) {
	v, ok := n.get(key)
	if !ok {
		return nil, nil
	}
	if p, ok, err := n.nested(key, v); ok {
		return p, err
	}
	if b, ok := v.(bool); ok {
		return b, nil
	}
	if f, ok := toFloat(v); ok {
		return f, nil
	}
	return nil, n.errorf(key, "expected bool, probability or parameter, got %T", v)
}

// scalar reads a plain number with a default.
func (n *node) scalar(key string, def float64) (float64, error) {
	v, ok := n.get(key)
	if !ok {
		return def, nil
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, n.errorf(key, "expected number, got %T", v)
	}
	return f, nil
}

func (n *node) boolean(key string, def bool) (bool, error) {
	v, ok := n.get(key)
	if !ok {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, n.errorf(key, "expected bool, got %T", v)
	}
	return b, nil
}

func (n *node) floats(key string) ([]float64, error) {
	v, ok := n.get(key)
	if !ok {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, n.errorf(key, "expected a list of numbers, got %T", v)
	}
	out := make([]float64, len(items))
	for i, item := range items {
		f, ok := toFloat(item)
		if !ok {
			return nil, n.errorf(key, "entry %d is not a number", i)
		}
		out[i] = f
	}
	return out, nil
}

// list converts choice candidates into []string or []float64.
func (n *node) list(key string, v any) (any, error) {
	items, ok := v.([]any)
	if !ok || len(items) == 0 {
		return nil, n.errorf(key, "expected a non-empty list")
	}
	if _, isStr := items[0].(string); isStr {
		ss := make([]string, len(items))
		for i, item := range items {
			s, ok := item.(string)
			if !ok {
				return nil, n.errorf(key, "entry %d is not a string", i)
			}
			ss[i] = s
		}
		return ss, nil
	}
	fs := make([]float64, len(items))
	for i, item := range items {
		f, ok := toFloat(item)
		if !ok {
			return nil, n.errorf(key, "entry %d is not a number", i)
		}
		fs[i] = f
	}
	return fs, nil
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			s, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[s] = val
		}
		return out, true
	}
	return nil, false
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float64:
		return x, true
	case float32:
		return float64(x), true
	}
	return 0, false
}

func toInt(v any) (int, bool) {
	f, ok := toFloat(v)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
