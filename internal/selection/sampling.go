package selection

import (
	"math"
	"math/rand"
	"sort"
)

// weightedSampleWithoutReplacement implements spec §4.6 stage 7: for
// each candidate with weight w_i > 0, draw u_i ~ Uniform(0,1) and
// compute key_i = -ln(u_i)/w_i; the k smallest keys are selected, in
// ascending-key order. Candidates are drawn from rng in author order so
// the sequence of rng.Float64() calls — and therefore the result — is
// deterministic given (candidates order, rng). Zero-weight candidates
// never consume a draw and are never selected.
func weightedSampleWithoutReplacement(candidates []*candidate, k int, rng *rand.Rand) []*candidate {
	type keyed struct {
		c    *candidate
		key  float64
		rank int // author order, for deterministic tie-breaking
	}

	keys := make([]keyed, 0, len(candidates))
	for i, c := range candidates {
		if c.Weight <= 0 {
			continue
		}
		u := rng.Float64()
		// u is in [0,1); avoid log(0) by flooring away from exactly zero.
		if u <= 0 {
			u = math.SmallestNonzeroFloat64
		}
		key := -math.Log(u) / c.Weight
		keys = append(keys, keyed{c: c, key: key, rank: i})
	}

	sort.SliceStable(keys, func(i, j int) bool {
		if keys[i].key != keys[j].key {
			return keys[i].key < keys[j].key
		}
		return keys[i].rank < keys[j].rank
	})

	if k > len(keys) {
		k = len(keys)
	}

	out := make([]*candidate, 0, k)
	for i := 0; i < k; i++ {
		out = append(out, keys[i].c)
	}
	return out
}
