package snapshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kailas-cloud/toolsel/internal/db"
)

type doc struct {
	Items []string `json:"items"`
}

func TestFileStore_MissingFile(t *testing.T) {
	s := NewFile[doc](filepath.Join(t.TempDir(), "absent.json"))

	_, ok, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected absent document")
	}
}

func TestFileStore_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "items.json")
	s := NewFile[doc](path)
	ctx := context.Background()

	if err := s.Save(ctx, doc{Items: []string{"a", "b"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(raw), "\n  \"items\"") {
		t.Errorf("expected indented JSON, got %s", raw)
	}

	got, ok, err := s.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if len(got.Items) != 2 || got.Items[1] != "b" {
		t.Errorf("unexpected doc: %+v", got)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("expected temp files to be cleaned up, dir has %d entries", len(entries))
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, _, err := NewFile[doc](path).Load(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
}

type memKV struct {
	data   map[string][]byte
	getErr error
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memKV) Set(_ context.Context, key string, value []byte) error {
	if m.data == nil {
		m.data = map[string][]byte{}
	}
	m.data[key] = value
	return nil
}

func TestKVStore_SaveLoad(t *testing.T) {
	kv := &memKV{}
	s := NewKV[doc](kv, "toolsel:tools")
	ctx := context.Background()

	if _, ok, err := s.Load(ctx); err != nil || ok {
		t.Fatalf("expected absent, got ok=%v err=%v", ok, err)
	}
	if err := s.Save(ctx, doc{Items: []string{"x"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if string(kv.data["toolsel:tools"]) != `{"items":["x"]}` {
		t.Errorf("unexpected stored value %s", kv.data["toolsel:tools"])
	}
	got, ok, err := s.Load(ctx)
	if err != nil || !ok || len(got.Items) != 1 {
		t.Fatalf("Load: %+v ok=%v err=%v", got, ok, err)
	}
}

func TestKVStore_GetError(t *testing.T) {
	boom := &db.Error{Op: db.OpGet, Err: errors.New("connection refused")}
	s := NewKV[doc](&memKV{getErr: boom}, "k")

	_, _, err := s.Load(context.Background())
	var dbErr *db.Error
	if !errors.As(err, &dbErr) {
		t.Fatalf("expected db.Error, got %v", err)
	}
}
