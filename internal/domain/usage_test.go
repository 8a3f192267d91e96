package domain

import (
	"context"
	"testing"
)

func TestUsage_Context(t *testing.T) {
	ctx, u := NewContextWithUsage(context.Background())

	UsageFromContext(ctx).AddEmbedding(12)
	UsageFromContext(ctx).AddEmbedding(0)
	UsageFromContext(ctx).AddGeneration(40)

	snap := u.Snapshot()
	if snap.EmbeddingTokens != 12 || snap.EmbeddingCalls != 2 {
		t.Errorf("embedding usage = %+v", snap)
	}
	if snap.GenerationTokens != 40 || snap.GenerationCalls != 1 {
		t.Errorf("generation usage = %+v", snap)
	}
}

func TestUsage_NilSafe(t *testing.T) {
	u := UsageFromContext(context.Background())
	if u != nil {
		t.Fatal("expected nil collector")
	}
	u.AddEmbedding(5)
	u.AddGeneration(5)
	if snap := u.Snapshot(); snap != (UsageSnapshot{}) {
		t.Errorf("nil snapshot = %+v", snap)
	}
}
