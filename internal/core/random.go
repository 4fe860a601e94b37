package core

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"time"
)

// Rand is the random source consumed by breeding. *rand.Rand satisfies it.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

// NewSeededRand returns a deterministic PCG source for the seed.
func NewSeededRand(seed int64) *rand.Rand {
	// Non-cryptographic PRNG is intentional for reproducible breeding.
	// #nosec G404
	return rand.New(rand.NewPCG(seedWord(seed, "a"), seedWord(seed, "b")))
}

func newClockSeededRand() *rand.Rand {
	return NewSeededRand(time.Now().UnixNano())
}

func seedWord(seed int64, salt string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(fmt.Sprintf("%d:%s", seed, salt)))
	return h.Sum64()
}

func coinFlip(r Rand) bool {
	return r.IntN(2) == 0
}
