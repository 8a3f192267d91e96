package queryset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/sashabaranov/go-openai/jsonschema"
	"go.uber.org/zap"

	"github.com/kailas-cloud/toolsel/internal/domain"
	"github.com/kailas-cloud/toolsel/internal/domain/query"
	"github.com/kailas-cloud/toolsel/internal/domain/sampling"
	"github.com/kailas-cloud/toolsel/internal/domain/tool"
)

// --- Mocks ---

type mockRepo struct {
	loaded  []query.TestQuery
	loadErr error
	saves   [][]query.TestQuery
}

func (m *mockRepo) Load(_ context.Context) ([]query.TestQuery, error) { return m.loaded, m.loadErr }

func (m *mockRepo) Save(_ context.Context, qs []query.TestQuery) error {
	m.saves = append(m.saves, qs)
	return nil
}

// step answers one CallFunction given the allowed tool names.
type step func(allowed []string) ([]domain.FunctionCall, error)

type scriptedCaller struct {
	steps []step
	calls int
}

func (c *scriptedCaller) CallFunction(
	_ context.Context, _ []domain.Message, fn domain.FunctionSpec,
) ([]domain.FunctionCall, error) {
	if c.calls >= len(c.steps) {
		return nil, errors.New("script exhausted")
	}
	def := fn.Parameters.(jsonschema.Definition)
	allowed := def.Properties["tool"].Enum
	s := c.steps[c.calls]
	c.calls++
	return s(allowed)
}

func call(q, tl string) domain.FunctionCall {
	args, _ := json.Marshal(createQueryArgs{Query: q, Tool: tl})
	return domain.FunctionCall{Name: FunctionName, Arguments: args}
}

// ok returns a valid call for the first grounding tool.
func ok(q string) step {
	return func(allowed []string) ([]domain.FunctionCall, error) {
		return []domain.FunctionCall{call(q, allowed[0])}, nil
	}
}

func calls(n int) step {
	return func(allowed []string) ([]domain.FunctionCall, error) {
		out := make([]domain.FunctionCall, n)
		for i := range out {
			out[i] = call(fmt.Sprintf("q%d", i), allowed[0])
		}
		return out, nil
	}
}

// textEmbedder gives every distinct text its own axis; texts in same share a vector.
type textEmbedder struct {
	axes map[string]int
	same map[string]string
}

func (e *textEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	if alias, ok := e.same[text]; ok {
		text = alias
	}
	if e.axes == nil {
		e.axes = map[string]int{}
	}
	i, ok := e.axes[text]
	if !ok {
		i = len(e.axes)
		e.axes[text] = i
	}
	v := make([]float32, 16)
	v[i%16] = 1
	return domain.EmbeddingResult{Embedding: v}, nil
}

func corpus() []tool.Tool {
	return []tool.Tool{
		tool.New("SendEmail", "Sends an email", "Communication", nil),
		tool.New("ConvertUnits", "Converts units", "Utilities", nil),
		tool.New("SetReminder", "Sets a reminder", "Productivity", nil),
	}
}

func newTestService(repo *mockRepo, caller *scriptedCaller, emb *textEmbedder) *Service {
	return New(repo, caller, emb, sampling.NewSource(3), zap.NewNop())
}

// --- Tests ---

func TestEnsureSize_GrowFromEmpty(t *testing.T) {
	repo := &mockRepo{}
	caller := &scriptedCaller{steps: []step{ok("a"), ok("b"), ok("c")}}

	qs, err := newTestService(repo, caller, &textEmbedder{}).EnsureSize(context.Background(), 3, corpus())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(qs) != 3 {
		t.Fatalf("expected 3 queries, got %d", len(qs))
	}
	known := map[string]bool{"SendEmail": true, "ConvertUnits": true, "SetReminder": true}
	for i := range qs {
		if !known[qs[i].ExpectedTool()] {
			t.Errorf("query %d expects unknown tool %q", i, qs[i].ExpectedTool())
		}
	}
	if len(repo.saves) != 1 || len(repo.saves[0]) != 3 {
		t.Errorf("expected one save of 3 queries, got %v", repo.saves)
	}
}

func TestEnsureSize_PersistsOldThenNew(t *testing.T) {
	old := []query.TestQuery{query.New("old one", "SendEmail"), query.New("old two", "SetReminder")}
	repo := &mockRepo{loaded: old}
	caller := &scriptedCaller{steps: []step{ok("new one"), ok("new two")}}

	qs, err := newTestService(repo, caller, &textEmbedder{}).EnsureSize(context.Background(), 4, corpus())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(qs) != 4 {
		t.Fatalf("expected 4 queries, got %d", len(qs))
	}
	saved := repo.saves[0]
	want := []string{"old one", "old two", "new one", "new two"}
	for i, w := range want {
		if saved[i].Text() != w {
			t.Errorf("saved[%d] = %q, want %q", i, saved[i].Text(), w)
		}
	}
}

func TestEnsureSize_MalformedCallsConsumeAttempts(t *testing.T) {
	repo := &mockRepo{}
	wrongTool := func(_ []string) ([]domain.FunctionCall, error) {
		return []domain.FunctionCall{call("q", "NotSampled")}, nil
	}
	badJSON := func(_ []string) ([]domain.FunctionCall, error) {
		return []domain.FunctionCall{{Name: FunctionName, Arguments: json.RawMessage(`{"query":`)}}, nil
	}
	failing := func(_ []string) ([]domain.FunctionCall, error) {
		return nil, domain.ErrGenerationProviderError
	}
	caller := &scriptedCaller{steps: []step{calls(0), calls(2), wrongTool, badJSON, failing, ok("fine")}}

	qs, err := newTestService(repo, caller, &textEmbedder{}).EnsureSize(context.Background(), 1, corpus())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(qs) != 1 || qs[0].Text() != "fine" {
		t.Errorf("unexpected queries: %+v", qs)
	}
	if caller.calls != 6 {
		t.Errorf("expected 6 attempts, got %d", caller.calls)
	}
}

func TestEnsureSize_DedupWithinBatchOnly(t *testing.T) {
	repo := &mockRepo{loaded: []query.TestQuery{query.New("email bob", "SendEmail")}}
	emb := &textEmbedder{same: map[string]string{"mail bob": "email bob", "e-mail bob": "email bob"}}
	caller := &scriptedCaller{steps: []step{ok("mail bob"), ok("e-mail bob"), ok("convert feet")}}

	qs, err := newTestService(repo, caller, emb).EnsureSize(context.Background(), 3, corpus())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := []string{qs[0].Text(), qs[1].Text(), qs[2].Text()}
	want := []string{"email bob", "mail bob", "convert feet"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("queries = %v, want %v", got, want)
		}
	}
}

func TestEnsureSize_ExhaustionAbortsGrowth(t *testing.T) {
	repo := &mockRepo{}
	caller := &scriptedCaller{steps: []step{ok("first"), calls(0), calls(0)}}
	svc := newTestService(repo, caller, &textEmbedder{}).WithMaxAttempts(2)

	_, err := svc.EnsureSize(context.Background(), 2, corpus())
	if !errors.Is(err, domain.ErrDedupExhausted) {
		t.Fatalf("expected ErrDedupExhausted, got %v", err)
	}
	if !errors.Is(err, domain.ErrMalformedCall) {
		t.Errorf("expected last failure in chain, got %v", err)
	}
	if len(repo.saves) != 0 {
		t.Error("aborted growth must not persist")
	}
}

func TestEnsureSize_ShrinkSamples(t *testing.T) {
	var cached []query.TestQuery
	for i := range 5 {
		cached = append(cached, query.New(fmt.Sprintf("q%d", i), "SendEmail"))
	}
	repo := &mockRepo{loaded: cached}
	caller := &scriptedCaller{}

	qs, err := newTestService(repo, caller, &textEmbedder{}).EnsureSize(context.Background(), 2, corpus())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(qs) != 2 || qs[0].Text() == qs[1].Text() {
		t.Errorf("expected 2 distinct queries, got %+v", qs)
	}
	if len(repo.saves) != 0 || caller.calls != 0 {
		t.Error("shrink must neither generate nor persist")
	}
}

func TestEnsureSize_NoTools(t *testing.T) {
	_, err := newTestService(&mockRepo{}, &scriptedCaller{}, &textEmbedder{}).EnsureSize(context.Background(), 1, nil)
	if !errors.Is(err, ErrNoTools) {
		t.Fatalf("expected ErrNoTools, got %v", err)
	}
}

func TestEnsureSize_ColdStart(t *testing.T) {
	repo := &mockRepo{loadErr: errors.New("permission denied")}
	caller := &scriptedCaller{steps: []step{ok("x")}}

	qs, err := newTestService(repo, caller, &textEmbedder{}).EnsureSize(context.Background(), 1, corpus())
	if err != nil || len(qs) != 1 {
		t.Fatalf("got %d queries, err=%v", len(qs), err)
	}
}

func TestCreateQueryFunction_Schema(t *testing.T) {
	fn := createQueryFunction([]string{"SendEmail"})
	raw, err := json.Marshal(fn.Parameters)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var schema struct {
		Type       string                     `json:"type"`
		Required   []string                   `json:"required"`
		Properties map[string]json.RawMessage `json:"properties"`
	}
	if err := json.Unmarshal(raw, &schema); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if schema.Type != "object" || len(schema.Required) != 2 || len(schema.Properties) != 2 {
		t.Errorf("unexpected schema: %s", raw)
	}
}
