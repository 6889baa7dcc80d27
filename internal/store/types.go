package store

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Document is a row in the documents table: raw content plus an optional
// embedding used for cosine similarity search.
type Document struct {
	ID        uuid.UUID       `json:"id"`
	Content   string          `json:"content"`
	Embedding []float32       `json:"embedding,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// DocumentMatch is a similarity search hit. Similarity is 1 - cosine
// distance, so 1.0 means identical direction.
type DocumentMatch struct {
	ID         uuid.UUID       `json:"id"`
	Content    string          `json:"content"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	Similarity float64         `json:"similarity"`
}

// Node is a graph entity. The id is an external key assigned by the
// ingesting service, not a surrogate.
type Node struct {
	ID        string          `json:"id"`
	NodeType  string          `json:"node_type"`
	Data      json.RawMessage `json:"data,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Edge is a directed, labeled relationship between two nodes. The
// (from, to, relationship) triple is unique; deleting either endpoint
// deletes the edge.
type Edge struct {
	ID           int64           `json:"id"`
	FromNode     string          `json:"from_node"`
	ToNode       string          `json:"to_node"`
	Relationship string          `json:"relationship"`
	Data         json.RawMessage `json:"data,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// CleanupStats reports what an age-based cleanup removed (or, for a dry
// run, would remove).
type CleanupStats struct {
	Documents int64 `json:"documents"`
	Nodes     int64 `json:"nodes"`
	Edges     int64 `json:"edges"`
}

// GenNewID generates a new UUID v7 (time-ordered).
func GenNewID() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

// IndexStrategy selects which approximate nearest neighbor indexes are
// built on documents.embedding.
type IndexStrategy string

const (
	// IndexIVFFlat builds only the ivfflat index: fast to build, needs
	// existing rows for good list centroids.
	IndexIVFFlat IndexStrategy = "ivfflat"

	// IndexHNSW builds only the hnsw index: slower build, better recall,
	// no training data needed.
	IndexHNSW IndexStrategy = "hnsw"

	// IndexBoth builds both; the planner picks per query.
	IndexBoth IndexStrategy = "both"
)

// ParseIndexStrategy parses a user-supplied strategy name.
func ParseIndexStrategy(s string) (IndexStrategy, error) {
	switch IndexStrategy(strings.ToLower(strings.TrimSpace(s))) {
	case IndexIVFFlat:
		return IndexIVFFlat, nil
	case IndexHNSW:
		return IndexHNSW, nil
	case IndexBoth:
		return IndexBoth, nil
	default:
		return "", fmt.Errorf("unknown index strategy %q (want ivfflat, hnsw or both)", s)
	}
}
