package corpus

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/toolsel/internal/domain"
	"github.com/kailas-cloud/toolsel/internal/domain/sampling"
	"github.com/kailas-cloud/toolsel/internal/domain/tool"
)

// mockRepo records saves and serves a fixed load result.
type mockRepo struct {
	loaded  []tool.Tool
	loadErr error
	saveErr error
	saves   [][]tool.Tool
}

func (m *mockRepo) Load(_ context.Context) ([]tool.Tool, error) {
	return m.loaded, m.loadErr
}

func (m *mockRepo) Save(_ context.Context, tools []tool.Tool) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves = append(m.saves, tools)
	return nil
}

// reply is one scripted generator response.
type reply struct {
	text string
	err  error
}

// scriptedGenerator answers Complete calls in order.
type scriptedGenerator struct {
	replies []reply
	calls   int
}

func (g *scriptedGenerator) Complete(_ context.Context, _ []domain.Message) (domain.Completion, error) {
	if g.calls >= len(g.replies) {
		return domain.Completion{}, errors.New("script exhausted")
	}
	r := g.replies[g.calls]
	g.calls++
	return domain.Completion{Text: r.text}, r.err
}

// vectorEmbedder maps known texts to fixed vectors.
type vectorEmbedder struct {
	vectors map[string][]float32
	calls   int
}

func (e *vectorEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	e.calls++
	v, ok := e.vectors[text]
	if !ok {
		return domain.EmbeddingResult{}, fmt.Errorf("no vector for %q", text)
	}
	return domain.EmbeddingResult{Embedding: v, TotalTokens: 1}, nil
}

// unit returns the i-th basis vector of size n.
func unit(n, i int) []float32 {
	v := make([]float32, n)
	v[i] = 1
	return v
}

// at returns a 3-d unit vector with cosine c to the first axis.
func at(c float64) []float32 {
	return []float32{float32(c), float32(math.Sqrt(1 - c*c)), 0}
}

func newTestService(repo *mockRepo, gen *scriptedGenerator, emb *vectorEmbedder) *Service {
	return New(repo, gen, emb, sampling.NewSource(7), zap.NewNop())
}

func names(tools []tool.Tool) map[string]bool {
	out := make(map[string]bool, len(tools))
	for i := range tools {
		out[tools[i].Name()] = true
	}
	return out
}

func mustTools(t *testing.T, n int, withEmbeddings bool) []tool.Tool {
	t.Helper()
	out := make([]tool.Tool, n)
	for i := range out {
		var vec []float32
		if withEmbeddings {
			vec = unit(n, i)
		}
		out[i] = tool.New(fmt.Sprintf("Tool%c", 'A'+i), fmt.Sprintf("desc %d", i), "Utilities", vec)
	}
	return out
}
