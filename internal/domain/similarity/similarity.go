// Package similarity ranks vectors by cosine similarity. It holds no state.
package similarity

import (
	"math"
	"sort"
)

// Item is a rankable identifier with an optional vector.
type Item struct {
	ID     string
	Vector []float32
}

// Scored is an identifier with its similarity to the query.
type Scored struct {
	ID    string
	Score float64
}

// Cosine returns dot(a,b) / (|a|*|b|).
// Zero norms, empty vectors and length mismatches yield 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// rounding can push parallel vectors marginally past the bounds
	return math.Max(-1, math.Min(1, sim))
}

// TopK scores every item against query, sorts descending with ties kept in
// input order, and returns at most k entries. Items without a vector score 0.
func TopK(query []float32, items []Item, k int) []Scored {
	scored := make([]Scored, len(items))
	for i, it := range items {
		scored[i] = Scored{ID: it.ID, Score: Cosine(query, it.Vector)}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if k < 0 {
		k = 0
	}
	if k < len(scored) {
		scored = scored[:k]
	}
	return scored
}

// IDs returns the identifiers of scored entries in order.
func IDs(scored []Scored) []string {
	ids := make([]string, len(scored))
	for i, s := range scored {
		ids[i] = s.ID
	}
	return ids
}

// MostSimilar returns the index and score of the vector in others closest to v.
// Index is -1 when others is empty.
func MostSimilar(v []float32, others [][]float32) (int, float64) {
	best, bestScore := -1, math.Inf(-1)
	for i, o := range others {
		if s := Cosine(v, o); s > bestScore {
			best, bestScore = i, s
		}
	}
	if best < 0 {
		return -1, 0
	}
	return best, bestScore
}
