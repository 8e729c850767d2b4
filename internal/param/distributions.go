package param

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/MeKo-Tech/noiseparams/internal/ndarray"
	"github.com/MeKo-Tech/noiseparams/internal/randsrc"
)

// DefaultBetaEpsilon is the lower clamp applied to Beta shape parameters.
const DefaultBetaEpsilon = 0.0001

// checkConst validates p at construction when it is a numeric constant.
func checkConst(p Parameter, check func(float64) error) error {
	d, ok := p.(*Deterministic)
	if !ok || d.value.IsString() {
		return nil
	}
	return check(d.value.Float())
}

func probability(p float64) error {
	if !(p >= 0 && p <= 1) {
		return fmt.Errorf("%w: probability must be within [0, 1], got %v", ErrDomain, p)
	}
	return nil
}

func nonNegativeScale(s float64) error {
	if !(s >= 0) {
		return fmt.Errorf("%w: scale must be >= 0, got %v", ErrDomain, s)
	}
	return nil
}

// Binomial draws Bernoulli trials (0 or 1) with success probability p.
// p is resampled once per call and must lie in [0, 1].
type Binomial struct {
	p Parameter
}

func NewBinomial(p any) (*Binomial, error) {
	pp, err := Float(p)
	if err != nil {
		return nil, fmt.Errorf("binomial p: %w", err)
	}
	if err := checkConst(pp, probability); err != nil {
		return nil, err
	}
	return &Binomial{p: pp}, nil
}

func (b *Binomial) DrawSamples(shape []int, rng *rand.Rand) (*ndarray.Array, error) {
	rng = randsrc.OrCurrent(rng)
	p, err := drawFloat(b.p, rng, "binomial p")
	if err != nil {
		return nil, err
	}
	if err := probability(p); err != nil {
		return nil, err
	}
	d := distuv.Bernoulli{P: p, Src: rng}
	return fill(shape, d.Rand)
}

func (b *Binomial) String() string { return fmt.Sprintf("Binomial(%s)", b.p) }

// DiscreteUniform draws integers uniformly from [min(a,b), max(a,b)].
type DiscreteUniform struct {
	a, b Parameter
}

func NewDiscreteUniform(a, b any) (*DiscreteUniform, error) {
	pa, err := Int(a)
	if err != nil {
		return nil, fmt.Errorf("discrete uniform a: %w", err)
	}
	pb, err := Int(b)
	if err != nil {
		return nil, fmt.Errorf("discrete uniform b: %w", err)
	}
	return &DiscreteUniform{a: pa, b: pb}, nil
}

func (d *DiscreteUniform) DrawSamples(shape []int, rng *rand.Rand) (*ndarray.Array, error) {
	rng = randsrc.OrCurrent(rng)
	a, err := drawInt(d.a, rng, "discrete uniform a")
	if err != nil {
		return nil, err
	}
	b, err := drawInt(d.b, rng, "discrete uniform b")
	if err != nil {
		return nil, err
	}
	if a > b {
		a, b = b, a
	}
	if a == b {
		return ndarray.Full(shape, float64(a))
	}
	span := int64(b) - int64(a) + 1
	return fill(shape, func() float64 {
		return float64(int64(a) + rng.Int63n(span))
	})
}

func (d *DiscreteUniform) String() string {
	return fmt.Sprintf("DiscreteUniform(%s, %s)", d.a, d.b)
}

// Uniform draws floats uniformly from [min(a,b), max(a,b)).
type Uniform struct {
	a, b Parameter
}

func NewUniform(a, b any) (*Uniform, error) {
	pa, err := Float(a)
	if err != nil {
		return nil, fmt.Errorf("uniform a: %w", err)
	}
	pb, err := Float(b)
	if err != nil {
		return nil, fmt.Errorf("uniform b: %w", err)
	}
	return &Uniform{a: pa, b: pb}, nil
}

func (u *Uniform) DrawSamples(shape []int, rng *rand.Rand) (*ndarray.Array, error) {
	rng = randsrc.OrCurrent(rng)
	a, err := drawFloat(u.a, rng, "uniform a")
	if err != nil {
		return nil, err
	}
	b, err := drawFloat(u.b, rng, "uniform b")
	if err != nil {
		return nil, err
	}
	if a > b {
		a, b = b, a
	}
	if a == b {
		return ndarray.Full(shape, a)
	}
	d := distuv.Uniform{Min: a, Max: b, Src: rng}
	return fill(shape, d.Rand)
}

func (u *Uniform) String() string { return fmt.Sprintf("Uniform(%s, %s)", u.a, u.b) }

// Normal draws from a normal distribution. scale is resampled once per call
// and must be >= 0; a zero scale yields loc everywhere.
type Normal struct {
	loc, scale Parameter
}

func NewNormal(loc, scale any) (*Normal, error) {
	pl, err := Float(loc)
	if err != nil {
		return nil, fmt.Errorf("normal loc: %w", err)
	}
	ps, err := Float(scale)
	if err != nil {
		return nil, fmt.Errorf("normal scale: %w", err)
	}
	if err := checkConst(ps, nonNegativeScale); err != nil {
		return nil, err
	}
	return &Normal{loc: pl, scale: ps}, nil
}

func (n *Normal) DrawSamples(shape []int, rng *rand.Rand) (*ndarray.Array, error) {
	rng = randsrc.OrCurrent(rng)
	loc, err := drawFloat(n.loc, rng, "normal loc")
	if err != nil {
		return nil, err
	}
	scale, err := drawFloat(n.scale, rng, "normal scale")
	if err != nil {
		return nil, err
	}
	if err := nonNegativeScale(scale); err != nil {
		return nil, err
	}
	if scale == 0 {
		return ndarray.Full(shape, loc)
	}
	d := distuv.Normal{Mu: loc, Sigma: scale, Src: rng}
	return fill(shape, d.Rand)
}

func (n *Normal) String() string {
	return fmt.Sprintf("Normal(loc=%s, scale=%s)", n.loc, n.scale)
}

// Poisson draws from a Poisson distribution. lam is resampled once per call
// and clamped to >= 0.
type Poisson struct {
	lam Parameter
}

func NewPoisson(lam any) (*Poisson, error) {
	pl, err := Float(lam)
	if err != nil {
		return nil, fmt.Errorf("poisson lam: %w", err)
	}
	return &Poisson{lam: pl}, nil
}

func (p *Poisson) DrawSamples(shape []int, rng *rand.Rand) (*ndarray.Array, error) {
	rng = randsrc.OrCurrent(rng)
	lam, err := drawFloat(p.lam, rng, "poisson lam")
	if err != nil {
		return nil, err
	}
	lam = math.Max(lam, 0)
	if lam == 0 {
		return ndarray.New(shape)
	}
	d := distuv.Poisson{Lambda: lam, Src: rng}
	return fill(shape, d.Rand)
}

func (p *Poisson) String() string { return fmt.Sprintf("Poisson(%s)", p.lam) }

// Beta draws from a beta distribution. alpha and beta are resampled once per
// call and clamped to at least epsilon.
type Beta struct {
	alpha, beta Parameter
	epsilon     float64
}

// NewBeta builds a Beta with the given clamp; pass DefaultBetaEpsilon
// unless a different floor is needed.
func NewBeta(alpha, beta any, epsilon float64) (*Beta, error) {
	pa, err := Float(alpha)
	if err != nil {
		return nil, fmt.Errorf("beta alpha: %w", err)
	}
	pb, err := Float(beta)
	if err != nil {
		return nil, fmt.Errorf("beta beta: %w", err)
	}
	if !(epsilon > 0) || math.IsInf(epsilon, 0) {
		return nil, fmt.Errorf("%w: beta epsilon must be positive, got %v", ErrDomain, epsilon)
	}
	return &Beta{alpha: pa, beta: pb, epsilon: epsilon}, nil
}

func (b *Beta) DrawSamples(shape []int, rng *rand.Rand) (*ndarray.Array, error) {
	rng = randsrc.OrCurrent(rng)
	alpha, err := drawFloat(b.alpha, rng, "beta alpha")
	if err != nil {
		return nil, err
	}
	beta, err := drawFloat(b.beta, rng, "beta beta")
	if err != nil {
		return nil, err
	}
	alpha, beta = math.Max(alpha, b.epsilon), math.Max(beta, b.epsilon)
	if alpha < 1 && beta < 1 {
		return fill(shape, func() float64 { return johnk(alpha, beta, rng) })
	}
	d := distuv.Beta{Alpha: alpha, Beta: beta, Src: rng}
	return fill(shape, d.Rand)
}

// johnk draws Beta(a, b) for a, b < 1 with Jöhnk's rejection method. The
// gamma-ratio method underflows to 0/0 for small shapes; when x+y underflows
// here the ratio is taken in log space instead.
func johnk(a, b float64, rng *rand.Rand) float64 {
	for {
		// 1-Float64 is in (0, 1], keeping the logs finite
		logX := math.Log(1-rng.Float64()) / a
		logY := math.Log(1-rng.Float64()) / b
		x, y := math.Exp(logX), math.Exp(logY)
		if sum := x + y; sum <= 1 {
			if sum > 0 {
				return x / sum
			}
			m := math.Max(logX, logY)
			logX -= m
			logY -= m
			return math.Exp(logX - math.Log(math.Exp(logX)+math.Exp(logY)))
		}
	}
}

func (b *Beta) String() string { return fmt.Sprintf("Beta(%s, %s)", b.alpha, b.beta) }
