package domain

import (
	"context"
	"sync"
)

type usageKey struct{}

// Usage collects provider token usage for a single run.
// The command puts a pointer into the context; decorators add to it after each call.
type Usage struct {
	mu               sync.Mutex
	embeddingTokens  int
	generationTokens int
	embeddingCalls   int
	generationCalls  int
}

// NewContextWithUsage returns a context with a usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *Usage) {
	u := &Usage{}
	return context.WithValue(ctx, usageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *Usage {
	u, _ := ctx.Value(usageKey{}).(*Usage)
	return u
}

// AddEmbedding records an embedding call. Safe on a nil receiver.
func (u *Usage) AddEmbedding(tokens int) {
	if u == nil {
		return
	}
	u.mu.Lock()
	u.embeddingTokens += tokens
	u.embeddingCalls++
	u.mu.Unlock()
}

// AddGeneration records a generation call. Safe on a nil receiver.
func (u *Usage) AddGeneration(tokens int) {
	if u == nil {
		return
	}
	u.mu.Lock()
	u.generationTokens += tokens
	u.generationCalls++
	u.mu.Unlock()
}

// UsageSnapshot is a point-in-time copy of collected usage.
type UsageSnapshot struct {
	EmbeddingTokens  int
	EmbeddingCalls   int
	GenerationTokens int
	GenerationCalls  int
}

// Snapshot returns the collected totals.
func (u *Usage) Snapshot() UsageSnapshot {
	if u == nil {
		return UsageSnapshot{}
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return UsageSnapshot{
		EmbeddingTokens:  u.embeddingTokens,
		EmbeddingCalls:   u.embeddingCalls,
		GenerationTokens: u.generationTokens,
		GenerationCalls:  u.generationCalls,
	}
}
