package store

import "fmt"

// EmbeddingDim is the embedding dimensionality accepted by the documents
// table. Matches the vector(1536) column in the database schema.
const EmbeddingDim = 1536

// ValidateEmbedding checks that an embedding has exactly EmbeddingDim
// dimensions. A nil embedding is allowed; rows may be inserted first and
// have their embedding backfilled later.
func ValidateEmbedding(emb []float32) error {
	if emb == nil {
		return nil
	}
	if len(emb) != EmbeddingDim {
		return fmt.Errorf("%w: %d dims (want %d)", ErrInvalidEmbedding, len(emb), EmbeddingDim)
	}
	return nil
}

// ValidateNodeID checks that a node identifier is non-empty. The nodes
// table uses TEXT keys, so the engine would happily accept "", which is
// never what a caller meant.
func ValidateNodeID(id string) error {
	if id == "" {
		return fmt.Errorf("empty node id")
	}
	return nil
}
