package corpus

import (
	"context"

	"github.com/kailas-cloud/toolsel/internal/domain"
	"github.com/kailas-cloud/toolsel/internal/domain/tool"
)

// Repository persists the full tool catalog.
type Repository interface {
	Load(ctx context.Context) ([]tool.Tool, error)
	Save(ctx context.Context, tools []tool.Tool) error
}

// Embedder vectorizes tool descriptions (document side).
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Generator writes tool descriptions and names.
type Generator interface {
	Complete(ctx context.Context, messages []domain.Message) (domain.Completion, error)
}
