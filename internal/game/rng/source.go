// Package rng provides the randomness abstraction used by the combat
// simulation. Every decision that draws randomness goes through an injected
// Source so that a seeded source reproduces a match bit-for-bit.
package rng

import (
	"crypto/rand"
	"math/big"
	mathrand "math/rand"
)

// Source is the randomness provider for the simulation.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int

	// Float64 returns a random float64 in [0.0, 1.0).
	Float64() float64
}

// cryptoSource implements Source using crypto/rand.
//
// Invariant: all values produced are uniformly distributed in their range.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand. It is safe for
// concurrent use and suitable for live matches where replay is not required.
//
// Postcondition: every value returned by Intn is in [0, n).
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Intn returns a cryptographically secure random int in [0, n).
//
// Precondition: n > 0. Panics with "rng: Intn called with n <= 0" if n <= 0.
// Panics with "rng: crypto/rand failure: <err>" if crypto/rand fails.
func (c *cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("rng: Intn called with n <= 0")
	}
	val, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("rng: crypto/rand failure: " + err.Error())
	}
	return int(val.Int64())
}

// Float64 returns a cryptographically secure random float64 in [0.0, 1.0).
func (c *cryptoSource) Float64() float64 {
	const resolution = 1 << 53
	val, err := rand.Int(rand.Reader, big.NewInt(resolution))
	if err != nil {
		panic("rng: crypto/rand failure: " + err.Error())
	}
	return float64(val.Int64()) / resolution
}

// seededSource implements Source using a deterministic PRNG.
type seededSource struct {
	r *mathrand.Rand
}

// NewSeededSource returns a deterministic Source seeded with seed. Two
// sources created with the same seed produce identical value streams, which
// is what makes AI decisions and match outcomes replayable.
//
// The returned Source is NOT safe for concurrent use; a match owns its
// source and draws from it only inside its own tick.
func NewSeededSource(seed int64) Source {
	return &seededSource{r: mathrand.New(mathrand.NewSource(seed))}
}

// Intn returns a deterministic random int in [0, n).
//
// Precondition: n > 0. Panics with "rng: Intn called with n <= 0" if n <= 0.
func (s *seededSource) Intn(n int) int {
	if n <= 0 {
		panic("rng: Intn called with n <= 0")
	}
	return s.r.Intn(n)
}

// Float64 returns a deterministic random float64 in [0.0, 1.0).
func (s *seededSource) Float64() float64 {
	return s.r.Float64()
}
