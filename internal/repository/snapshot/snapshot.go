// Package snapshot persists a whole document of type T and loads it back.
// Stores are read once at the start of an operation and written once at its end;
// concurrent writers are not supported.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kailas-cloud/toolsel/internal/db"
)

// Store loads and saves a single document. Load reports false when nothing was persisted yet.
type Store[T any] interface {
	Load(ctx context.Context) (T, bool, error)
	Save(ctx context.Context, doc T) error
}

// FileStore keeps the document as indented JSON in one file.
type FileStore[T any] struct {
	path string
}

// NewFile creates a file-backed store.
func NewFile[T any](path string) *FileStore[T] {
	return &FileStore[T]{path: path}
}

// Path returns the backing file path.
func (s *FileStore[T]) Path() string { return s.path }

// Load reads and decodes the file. A missing file is not an error.
func (s *FileStore[T]) Load(_ context.Context) (T, bool, error) {
	var doc T
	data, err := os.ReadFile(filepath.Clean(s.path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return doc, false, nil
		}
		return doc, false, fmt.Errorf("read %s: %w", s.path, err)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, false, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return doc, true, nil
}

// Save writes to a temp file in the same directory and renames it over the target,
// so a crash mid-write never leaves a truncated document behind.
func (s *FileStore[T]) Save(_ context.Context, doc T) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.path, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }() // no-op after a successful rename

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("rename to %s: %w", s.path, err)
	}
	return nil
}

// KV is the consumer interface for remote snapshots (ISP).
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// KVStore keeps the document as JSON under one Redis/Valkey key.
type KVStore[T any] struct {
	store KV
	key   string
}

// NewKV creates a key-value backed store.
func NewKV[T any](s KV, key string) *KVStore[T] {
	return &KVStore[T]{store: s, key: key}
}

// Key returns the backing key.
func (s *KVStore[T]) Key() string { return s.key }

// Load fetches and decodes the key. A missing key is not an error.
func (s *KVStore[T]) Load(ctx context.Context) (T, bool, error) {
	var doc T
	data, err := s.store.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return doc, false, nil
		}
		return doc, false, fmt.Errorf("get %s: %w", s.key, err)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, false, fmt.Errorf("decode %s: %w", s.key, err)
	}
	return doc, true, nil
}

// Save encodes and stores the document. SET replaces the value atomically.
func (s *KVStore[T]) Save(ctx context.Context, doc T) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.key, err)
	}
	if err := s.store.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("set %s: %w", s.key, err)
	}
	return nil
}
