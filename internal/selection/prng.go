package selection

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand"
)

// NewTickRNG returns the deterministic PRNG for one tick, reseeded from
// (rngSeed, tickIndex) per spec §4.6 stage 7 and §9's design note that
// replaying a subrange must not require replaying the whole prefix.
// It wraps an explicit rand.Source rather than the package-level
// functions, which Go guarantees reproduce the same sequence for the
// same seed across Go versions.
func NewTickRNG(rngSeed int64, tickIndex int) *rand.Rand {
	return rand.New(rand.NewSource(mixSeed(rngSeed, tickIndex)))
}

func mixSeed(rngSeed int64, tickIndex int) int64 {
	h := fnv.New64a()
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(rngSeed))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(int64(tickIndex)))
	h.Write(buf[:])
	return int64(h.Sum64())
}
