// Package toolcache persists the tool catalog as a {"tools":[...]} document.
package toolcache

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/toolsel/internal/domain/tool"
	"github.com/kailas-cloud/toolsel/internal/repository/snapshot"
)

// DefaultKey is the Redis/Valkey key suffix for the catalog.
const DefaultKey = "tools"

// Repo implements usecase/corpus.Repository.
type Repo struct {
	store snapshot.Store[document]
}

// NewFile creates a repository backed by a JSON file (tools.json).
func NewFile(path string) *Repo {
	return &Repo{store: snapshot.NewFile[document](path)}
}

// NewKV creates a repository backed by one Redis/Valkey key.
func NewKV(kv snapshot.KV, key string) *Repo {
	return &Repo{store: snapshot.NewKV[document](kv, key)}
}

// Load returns the persisted catalog; nothing persisted yields an empty catalog.
func (r *Repo) Load(ctx context.Context) ([]tool.Tool, error) {
	doc, ok, err := r.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tools: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return fromDocument(doc), nil
}

// Save replaces the persisted catalog.
func (r *Repo) Save(ctx context.Context, tools []tool.Tool) error {
	if err := r.store.Save(ctx, toDocument(tools)); err != nil {
		return fmt.Errorf("save tools: %w", err)
	}
	return nil
}
