package querycache

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/toolsel/internal/db"
	"github.com/kailas-cloud/toolsel/internal/domain/query"
)

// memKV implements snapshot.KV for tests.
type memKV struct {
	data map[string][]byte
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memKV) Set(_ context.Context, key string, value []byte) error {
	m.data[key] = value
	return nil
}

func TestRepo_KVRoundTrip(t *testing.T) {
	kv := &memKV{data: map[string][]byte{}}
	r := NewKV(kv, "toolsel:"+DefaultKey)
	ctx := context.Background()

	if qs, err := r.Load(ctx); err != nil || len(qs) != 0 {
		t.Fatalf("expected empty set, got %d err=%v", len(qs), err)
	}

	in := []query.TestQuery{
		query.New("email bob the report", "SendEmail"),
		query.New("how many feet in a mile", "ConvertUnits"),
	}
	if err := r.Save(ctx, in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	want := `{"testQueries":[{"query":"email bob the report","expectedTool":"SendEmail"},` +
		`{"query":"how many feet in a mile","expectedTool":"ConvertUnits"}]}`
	if got := string(kv.data["toolsel:test_queries"]); got != want {
		t.Errorf("stored document:\ngot:  %s\nwant: %s", got, want)
	}

	out, err := r.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(out) != 2 || out[1].Text() != "how many feet in a mile" || out[1].ExpectedTool() != "ConvertUnits" {
		t.Errorf("unexpected queries: %+v", out)
	}
}

func TestRepo_CorruptValue(t *testing.T) {
	kv := &memKV{data: map[string][]byte{"k": []byte("garbage")}}

	_, err := NewKV(kv, "k").Load(context.Background())
	if err == nil {
		t.Fatal("expected decode error")
	}
	if errors.Is(err, db.ErrKeyNotFound) {
		t.Error("decode failure must not look like a missing key")
	}
}
