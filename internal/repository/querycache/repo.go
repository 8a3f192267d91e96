// Package querycache persists the test query set as a {"testQueries":[...]} document.
package querycache

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/toolsel/internal/domain/query"
	"github.com/kailas-cloud/toolsel/internal/repository/snapshot"
)

// DefaultKey is the Redis/Valkey key suffix for the query set.
const DefaultKey = "test_queries"

// Repo implements usecase/queryset.Repository.
type Repo struct {
	store snapshot.Store[document]
}

// NewFile creates a repository backed by a JSON file (test_queries.json).
func NewFile(path string) *Repo {
	return &Repo{store: snapshot.NewFile[document](path)}
}

// NewKV creates a repository backed by one Redis/Valkey key.
func NewKV(kv snapshot.KV, key string) *Repo {
	return &Repo{store: snapshot.NewKV[document](kv, key)}
}

// Load returns the persisted queries; nothing persisted yields an empty set.
func (r *Repo) Load(ctx context.Context) ([]query.TestQuery, error) {
	doc, ok, err := r.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load test queries: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return fromDocument(doc), nil
}

// Save replaces the persisted queries.
func (r *Repo) Save(ctx context.Context, queries []query.TestQuery) error {
	if err := r.store.Save(ctx, toDocument(queries)); err != nil {
		return fmt.Errorf("save test queries: %w", err)
	}
	return nil
}
