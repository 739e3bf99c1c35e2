package auth

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand/v2"
	"sync"
)

// Generator produces session tokens from a ChaCha8 stream. A fixed seed
// makes the sequence reproducible; production generators are seeded from
// the operating system's CSPRNG.
type Generator struct {
	mu  sync.Mutex
	rng *mrand.ChaCha8
}

func NewGenerator(seed [32]byte) *Generator {
	return &Generator{rng: mrand.NewChaCha8(seed)}
}

// NewRandomGenerator seeds a Generator from crypto/rand.
func NewRandomGenerator() (*Generator, error) {
	var seed [32]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return nil, err
	}
	return NewGenerator(seed), nil
}

// New returns the next token. Safe for concurrent use.
func (g *Generator) New() SessionToken {
	g.mu.Lock()
	lo, hi := g.rng.Uint64(), g.rng.Uint64()
	g.mu.Unlock()

	var t SessionToken
	binary.LittleEndian.PutUint64(t[:8], lo)
	binary.LittleEndian.PutUint64(t[8:], hi)
	return t
}
