package queryset

import (
	"context"

	"github.com/kailas-cloud/toolsel/internal/domain"
	"github.com/kailas-cloud/toolsel/internal/domain/query"
)

// Repository persists the test query set.
type Repository interface {
	Load(ctx context.Context) ([]query.TestQuery, error)
	Save(ctx context.Context, queries []query.TestQuery) error
}

// Embedder vectorizes generated queries for batch dedup.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// FunctionCaller produces structured function calls.
type FunctionCaller interface {
	CallFunction(ctx context.Context, messages []domain.Message, fn domain.FunctionSpec) ([]domain.FunctionCall, error)
}
