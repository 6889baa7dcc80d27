package pg

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/memfoundry/hybridstore/internal/store"
)

// VectorIndexOptions controls the approximate nearest neighbor indexes
// built on documents.embedding. Both index types use cosine distance,
// matching the <=> ordering in the search queries.
type VectorIndexOptions struct {
	Strategy           store.IndexStrategy
	IVFFlatLists       int
	HNSWM              int
	HNSWEfConstruction int
}

// DefaultVectorIndexOptions returns the tuning the service containers
// ship with: both indexes, ivfflat lists=100, hnsw m=16/ef_construction=64.
func DefaultVectorIndexOptions() VectorIndexOptions {
	return VectorIndexOptions{
		Strategy:           store.IndexBoth,
		IVFFlatLists:       100,
		HNSWM:              16,
		HNSWEfConstruction: 64,
	}
}

func (o VectorIndexOptions) withDefaults() VectorIndexOptions {
	d := DefaultVectorIndexOptions()
	if o.Strategy == "" {
		o.Strategy = d.Strategy
	}
	if o.IVFFlatLists <= 0 {
		o.IVFFlatLists = d.IVFFlatLists
	}
	if o.HNSWM <= 0 {
		o.HNSWM = d.HNSWM
	}
	if o.HNSWEfConstruction <= 0 {
		o.HNSWEfConstruction = d.HNSWEfConstruction
	}
	return o
}

// IndexNames returns the names of the indexes the strategy builds.
func (o VectorIndexOptions) IndexNames() []string {
	switch o.Strategy {
	case store.IndexIVFFlat:
		return []string{"idx_documents_embedding_ivfflat"}
	case store.IndexHNSW:
		return []string{"idx_documents_embedding_hnsw"}
	default:
		return []string{"idx_documents_embedding_ivfflat", "idx_documents_embedding_hnsw"}
	}
}

func vectorIndexStatements(opts VectorIndexOptions) []string {
	ivfflat := fmt.Sprintf(
		"CREATE INDEX IF NOT EXISTS idx_documents_embedding_ivfflat ON documents USING ivfflat (embedding vector_cosine_ops) WITH (lists = %d)",
		opts.IVFFlatLists)
	hnsw := fmt.Sprintf(
		"CREATE INDEX IF NOT EXISTS idx_documents_embedding_hnsw ON documents USING hnsw (embedding vector_cosine_ops) WITH (m = %d, ef_construction = %d)",
		opts.HNSWM, opts.HNSWEfConstruction)

	switch opts.Strategy {
	case store.IndexIVFFlat:
		return []string{ivfflat}
	case store.IndexHNSW:
		return []string{hnsw}
	default:
		return []string{ivfflat, hnsw}
	}
}

// EnsureVectorIndexes builds the configured vector indexes. Statements use
// IF NOT EXISTS, so re-running with the same strategy is a no-op; widening
// the strategy later adds the missing index.
func EnsureVectorIndexes(ctx context.Context, db *sqlx.DB, opts VectorIndexOptions) error {
	opts = opts.withDefaults()
	for _, stmt := range vectorIndexStatements(opts) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:min(len(stmt), 60)], err)
		}
	}
	return nil
}
