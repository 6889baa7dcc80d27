package store

import "errors"

var (
	// ErrNotFound is returned when a document, node or edge does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNodeNotFound is returned when an edge references a node id that
	// does not exist (foreign key violation).
	ErrNodeNotFound = errors.New("node not found")

	// ErrDuplicateEdge is returned when an edge with the same
	// (from, to, relationship) triple already exists.
	ErrDuplicateEdge = errors.New("duplicate edge")

	// ErrInvalidEmbedding is returned when an embedding does not have
	// exactly EmbeddingDim dimensions.
	ErrInvalidEmbedding = errors.New("invalid embedding")
)
