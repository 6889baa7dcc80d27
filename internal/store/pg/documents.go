package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"

	"github.com/memfoundry/hybridstore/internal/store"
)

const defaultSearchLimit = 10

// PGDocumentStore implements store.DocumentStore backed by Postgres with
// pgvector.
type PGDocumentStore struct {
	db *sqlx.DB
}

func NewPGDocumentStore(db *sqlx.DB) *PGDocumentStore {
	return &PGDocumentStore{db: db}
}

type documentRow struct {
	ID        uuid.UUID        `db:"id"`
	Content   string           `db:"content"`
	Embedding *pgvector.Vector `db:"embedding"`
	Metadata  json.RawMessage  `db:"metadata"`
	CreatedAt time.Time        `db:"created_at"`
}

func (r documentRow) toDocument() store.Document {
	doc := store.Document{
		ID:        r.ID,
		Content:   r.Content,
		Metadata:  r.Metadata,
		CreatedAt: r.CreatedAt,
	}
	if r.Embedding != nil {
		doc.Embedding = r.Embedding.Slice()
	}
	return doc
}

func (s *PGDocumentStore) Insert(ctx context.Context, content string, embedding []float32, metadata json.RawMessage) (store.Document, error) {
	if err := store.ValidateEmbedding(embedding); err != nil {
		return store.Document{}, err
	}

	id := store.GenNewID()
	var vec any
	if embedding != nil {
		vec = pgvector.NewVector(embedding)
	}

	var createdAt time.Time
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO documents (id, content, embedding, metadata)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		id, content, vec, jsonOrEmpty(metadata),
	).Scan(&createdAt)
	if err != nil {
		return store.Document{}, fmt.Errorf("insert document: %w", err)
	}

	return store.Document{
		ID:        id,
		Content:   content,
		Embedding: embedding,
		Metadata:  jsonOrEmpty(metadata),
		CreatedAt: createdAt,
	}, nil
}

func (s *PGDocumentStore) Get(ctx context.Context, id uuid.UUID) (store.Document, error) {
	var row documentRow
	err := s.db.GetContext(ctx, &row,
		"SELECT id, content, embedding, metadata, created_at FROM documents WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Document{}, store.ErrNotFound
	}
	if err != nil {
		return store.Document{}, fmt.Errorf("get document %s: %w", id, err)
	}
	return row.toDocument(), nil
}

// SetEmbedding backfills the embedding of a document inserted without one.
func (s *PGDocumentStore) SetEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error {
	if len(embedding) == 0 {
		return fmt.Errorf("%w: empty", store.ErrInvalidEmbedding)
	}
	if err := store.ValidateEmbedding(embedding); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE documents SET embedding = $1 WHERE id = $2",
		pgvector.NewVector(embedding), id)
	if err != nil {
		return fmt.Errorf("set embedding %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Search returns the documents closest to the query embedding by cosine
// distance, best match first. Rows without an embedding are skipped.
func (s *PGDocumentStore) Search(ctx context.Context, embedding []float32, limit int) ([]store.DocumentMatch, error) {
	if len(embedding) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", store.ErrInvalidEmbedding)
	}
	if err := store.ValidateEmbedding(embedding); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	vec := pgvector.NewVector(embedding)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, content, metadata, created_at,
				1 - (embedding <=> $1) AS similarity
			FROM documents
			WHERE embedding IS NOT NULL
			ORDER BY embedding <=> $2
			LIMIT $3`,
		vec, vec, limit)
	if err != nil {
		return nil, fmt.Errorf("document search: %w", err)
	}
	defer rows.Close()

	var results []store.DocumentMatch
	for rows.Next() {
		var m store.DocumentMatch
		if err := rows.Scan(&m.ID, &m.Content, &m.Metadata, &m.CreatedAt, &m.Similarity); err != nil {
			continue
		}
		results = append(results, m)
	}
	return results, rows.Err()
}

func (s *PGDocumentStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE created_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old documents: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (s *PGDocumentStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM documents"); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}
