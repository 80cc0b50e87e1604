package database

import (
	"context"

	"bookrag/types"
)

// VectorRecord is one entry to upsert: the chunk id, its embedding and
// the metadata stored alongside the vector. Chunk text stays in the
// local chunk store, the index never carries it.
type VectorRecord struct {
	ID       string
	Vector   []float32
	Metadata map[string]interface{}
}

// VectorDatabase defines the vector index operations the pipeline needs.
type VectorDatabase interface {
	UpsertBatch(ctx context.Context, records []VectorRecord) error
	QueryByVector(ctx context.Context, vector []float32, topK int, bookSlug string) ([]types.Match, error)
	DeleteBook(ctx context.Context, bookSlug string) error
}
