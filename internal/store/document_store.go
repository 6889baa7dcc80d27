package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DocumentStore manages document rows and cosine similarity search.
type DocumentStore interface {
	Insert(ctx context.Context, content string, embedding []float32, metadata json.RawMessage) (Document, error)
	Get(ctx context.Context, id uuid.UUID) (Document, error)
	SetEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error
	Search(ctx context.Context, embedding []float32, limit int) ([]DocumentMatch, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	Count(ctx context.Context) (int64, error)
}
