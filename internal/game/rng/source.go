// Package rng provides the randomness source and the inclusive-range draw used
// by every round of the simulator.
package rng

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand/v2"
	"sync"
)

// Source is the provider of raw 32-bit random values.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Uint32 returns a uniformly distributed 32-bit value.
	Uint32() uint32
}

// cryptoSource implements Source using crypto/rand.
//
// Invariant: all values produced are cryptographically secure.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
func NewCryptoSource() Source {
	return cryptoSource{}
}

// Uint32 reads four bytes from crypto/rand.
//
// Panics with "rng: crypto/rand failure: <err>" if crypto/rand fails.
func (cryptoSource) Uint32() uint32 {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic("rng: crypto/rand failure: " + err.Error())
	}
	return binary.BigEndian.Uint32(buf[:])
}

// seededSource is a reproducible PCG source for simulations and tests.
type seededSource struct {
	mu sync.Mutex
	r  *mrand.Rand
}

// NewSeededSource returns a deterministic Source. It is not cryptographically
// strong and must never back a live game.
func NewSeededSource(seed uint64) Source {
	return &seededSource{r: mrand.New(mrand.NewPCG(seed, 0))}
}

func (s *seededSource) Uint32() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Uint32()
}
