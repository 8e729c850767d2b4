// Package randsrc provides the seeded random sources used by stochastic
// parameters, the stable seed-derivation scheme, and the process-wide
// fallback source used when a caller does not supply one.
package randsrc

import (
	"sync"
	"time"

	"golang.org/x/exp/rand"
)

// SeedMax bounds the parent seeds drawn at the start of composite samplings.
const SeedMax = 1_000_000

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a generator seeded deterministically from seed.
func New(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(mix(uint64(seed) + goldenRatio64)))
}

// Derive maps a parent seed and an offset to a child seed.
// The mapping is parent+index and must stay stable: recorded samples depend on it.
func Derive(parent int64, index int) int64 {
	return parent + int64(index)
}

// Sub returns a fresh generator for Derive(parent, index).
func Sub(parent int64, index int) *rand.Rand {
	return New(Derive(parent, index))
}

// DrawSeed draws a parent seed in [0, SeedMax) from rng.
func DrawSeed(rng *rand.Rand) int64 {
	return rng.Int63n(SeedMax)
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// lockedSource serialises access to the shared fallback generator.
type lockedSource struct {
	mu  sync.Mutex
	src rand.Source
}

func (s *lockedSource) Uint64() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Uint64()
}

func (s *lockedSource) Seed(seed uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.src.Seed(seed)
}

var (
	currentSrc = &lockedSource{src: rand.NewSource(mix(uint64(time.Now().UnixNano())))}
	current    = rand.New(currentSrc)
)

// Current returns the process-wide generator. It is safe for concurrent use,
// but interleaved callers observe each other's draws.
func Current() *rand.Rand {
	return current
}

// SeedCurrent reseeds the process-wide generator.
func SeedCurrent(seed int64) {
	currentSrc.Seed(mix(uint64(seed) + goldenRatio64))
}

// OrCurrent returns rng, or the process-wide generator when rng is nil.
func OrCurrent(rng *rand.Rand) *rand.Rand {
	if rng == nil {
		return current
	}
	return rng
}
