package retrieval

import (
	"context"

	"github.com/kailas-cloud/toolsel/internal/domain"
	"github.com/kailas-cloud/toolsel/internal/domain/tool"
)

// ToolSource exposes the session corpus read-only.
type ToolSource interface {
	Tools() []tool.Tool
}

// Embedder vectorizes the (possibly expanded) query.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Generator writes hypothetical tool descriptions.
type Generator interface {
	Complete(ctx context.Context, messages []domain.Message) (domain.Completion, error)
}
