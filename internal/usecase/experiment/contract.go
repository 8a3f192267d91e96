package experiment

import (
	"context"

	"github.com/kailas-cloud/toolsel/internal/domain/tool"
)

// Selector narrows the corpus for one query.
type Selector interface {
	Select(ctx context.Context, query string, useHyDE bool, k int) ([]string, error)
}

// ToolSource exposes the session corpus read-only.
type ToolSource interface {
	Tools() []tool.Tool
}
