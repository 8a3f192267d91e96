// Package retrieval narrows the corpus to the tools most similar to a query.
package retrieval

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/toolsel/internal/domain/similarity"
	"github.com/kailas-cloud/toolsel/internal/logger"
)

// Service ranks corpus tools against a query. It never mutates the corpus.
type Service struct {
	tools    ToolSource
	embedder Embedder
	gen      Generator
	logger   *zap.Logger
}

// New creates a retrieval service. embedder should be the query-side embedder.
func New(tools ToolSource, embedder Embedder, gen Generator, logger *zap.Logger) *Service {
	return &Service{tools: tools, embedder: embedder, gen: gen, logger: logger}
}

// Select returns the names of the k tools most similar to q, best first.
// With useHyDE the query is first rewritten into a hypothetical tool description.
func (s *Service) Select(ctx context.Context, q string, useHyDE bool, k int) ([]string, error) {
	text := q
	if useHyDE {
		expanded, err := s.expand(ctx, q)
		if err != nil {
			return nil, err
		}
		text = expanded
	}

	emb, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	tools := s.tools.Tools()
	items := make([]similarity.Item, len(tools))
	for i := range tools {
		items[i] = similarity.Item{ID: tools[i].Name(), Vector: tools[i].Embedding()}
	}
	return similarity.IDs(similarity.TopK(emb.Embedding, items, k)), nil
}

func (s *Service) expand(ctx context.Context, q string) (string, error) {
	c, err := s.gen.Complete(ctx, hydePrompt(q))
	if err != nil {
		return "", fmt.Errorf("hyde expansion: %w", err)
	}
	desc := strings.TrimSpace(c.Text)
	if desc == "" {
		logger.FromContextOr(ctx, s.logger).Warn("Empty HyDE expansion, embedding raw query")
		return q, nil
	}
	logger.FromContextOr(ctx, s.logger).Debug("HyDE expansion", zap.String("description", desc))
	return desc, nil
}
