// Package sampling draws without replacement from an explicit, seedable source.
package sampling

import "math/rand/v2"

// NewSource returns a reproducible generator for seed.
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Sample shuffles a copy of items and returns its first n elements.
// n larger than len(items) returns every item; items is never modified.
func Sample[T any](rng *rand.Rand, items []T, n int) []T {
	out := make([]T, len(items))
	copy(out, items)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	if n < 0 {
		n = 0
	}
	if n < len(out) {
		out = out[:n]
	}
	return out
}
