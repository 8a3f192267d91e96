package experiment

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/toolsel/internal/domain"
	domexp "github.com/kailas-cloud/toolsel/internal/domain/experiment"
	"github.com/kailas-cloud/toolsel/internal/domain/query"
	"github.com/kailas-cloud/toolsel/internal/domain/tool"
)

type staticTools []tool.Tool

func (s staticTools) Tools() []tool.Tool { return s }

type cannedSelector struct {
	byQuery map[string][]string
	err     error
	hyde    []bool
}

func (c *cannedSelector) Select(_ context.Context, q string, useHyDE bool, _ int) ([]string, error) {
	c.hyde = append(c.hyde, useHyDE)
	if c.err != nil {
		return nil, c.err
	}
	return c.byQuery[q], nil
}

func corpus() staticTools {
	return staticTools{
		tool.New("SendEmail", "Sends mail", "Communication", []float32{1, 0}),
		tool.New("SetReminder", "Reminds", "Productivity", []float32{0, 1}),
	}
}

func testConfig(t *testing.T, hyde bool) domexp.Config {
	t.Helper()
	cfg, err := domexp.NewConfig(2, 4, hyde, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestRun_AccuracyAndTokens(t *testing.T) {
	sel := &cannedSelector{byQuery: map[string][]string{
		"mail bob":   {"SendEmail"},
		"remind me":  {"SendEmail"},
		"email team": {"SendEmail"},
		"ping later": {"SetReminder"},
	}}
	queries := []query.TestQuery{
		query.New("mail bob", "SendEmail"),
		query.New("remind me", "SetReminder"),
		query.New("email team", "SendEmail"),
		query.New("ping later", "SetReminder"),
	}

	core, logs := observer.New(zap.InfoLevel)
	r := NewRunner(sel, corpus(), testConfig(t, true), zap.New(core))

	results, err := r.Run(context.Background(), queries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	for i, want := range []bool{true, false, true, true} {
		if results[i].Correct() != want {
			t.Errorf("result %d correct = %v, want %v", i, results[i].Correct(), want)
		}
		if results[i].Query() != queries[i].Text() {
			t.Errorf("result %d out of order", i)
		}
	}

	// "SendEmail"+"Sends mail" = 19, "SetReminder"+"Reminds" = 18
	if results[0].VectorTokenCount() != 19 || results[0].FullToolsTokenCount() != 37 {
		t.Errorf("token proxy = %d / %d", results[0].VectorTokenCount(), results[0].FullToolsTokenCount())
	}

	s := domexp.Aggregate(results)
	if math.Abs(s.Accuracy-0.75) > 1e-9 {
		t.Errorf("accuracy = %f, want 0.75", s.Accuracy)
	}

	entries := logs.FilterMessage("Query processed").All()
	if len(entries) != 4 {
		t.Fatalf("expected a log entry per query, got %d", len(entries))
	}
	if acc := entries[1].ContextMap()["running_accuracy"]; acc != 0.5 {
		t.Errorf("running accuracy after 2 queries = %v, want 0.5", acc)
	}
	if entries[3].ContextMap()["query"] != int64(4) {
		t.Errorf("expected query index field, got %v", entries[3].ContextMap())
	}
	for _, h := range sel.hyde {
		if !h {
			t.Error("HyDE flag must be passed through")
		}
	}
}

func TestRun_RequiresEmbeddedCorpus(t *testing.T) {
	tools := staticTools{tool.New("SendEmail", "Sends mail", "Communication", nil)}
	r := NewRunner(&cannedSelector{}, tools, testConfig(t, false), zap.NewNop())

	_, err := r.Run(context.Background(), []query.TestQuery{query.New("q", "SendEmail")})
	if !errors.Is(err, domain.ErrNotEmbedded) {
		t.Fatalf("expected ErrNotEmbedded, got %v", err)
	}
}

func TestRun_SelectionErrorAborts(t *testing.T) {
	sel := &cannedSelector{err: domain.ErrEmbeddingProviderError}
	r := NewRunner(sel, corpus(), testConfig(t, false), zap.NewNop())

	_, err := r.Run(context.Background(), []query.TestQuery{query.New("q", "SendEmail"), query.New("r", "SendEmail")})
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected provider error, got %v", err)
	}
	if len(sel.hyde) != 1 {
		t.Errorf("run must stop at the first failure, got %d selections", len(sel.hyde))
	}
}

func TestRun_NoQueries(t *testing.T) {
	results, err := NewRunner(&cannedSelector{}, corpus(), testConfig(t, false), zap.NewNop()).
		Run(context.Background(), nil)
	if err != nil || len(results) != 0 {
		t.Fatalf("got %d results, err=%v", len(results), err)
	}
}

func TestWriteReport(t *testing.T) {
	results := []domexp.Result{
		domexp.NewResult("a", "X", domexp.Measurement{Tools: []string{"X"}, TokenCount: 60},
			domexp.Measurement{TokenCount: 300}),
		domexp.NewResult("b", "X", domexp.Measurement{Tools: []string{"Y"}, TokenCount: 60},
			domexp.Measurement{TokenCount: 300}),
	}
	var buf bytes.Buffer
	err := WriteReport(&buf, testConfig(t, true), domexp.Aggregate(results),
		domain.UsageSnapshot{EmbeddingTokens: 12, EmbeddingCalls: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"50.00% (1/2)", "80.00%", "embedding 12 tokens / 3 calls", "HyDE=true"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestWriteReport_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReport(&buf, testConfig(t, false), domexp.Aggregate(nil), domain.UsageSnapshot{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "no results") {
		t.Errorf("expected no results line, got %q", buf.String())
	}
	if strings.Contains(buf.String(), "NaN") {
		t.Error("empty report must not contain NaN")
	}
}
