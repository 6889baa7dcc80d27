package store

import (
	"context"
	"encoding/json"
)

// GraphStore manages nodes and the directed, labeled edges between them.
type GraphStore interface {
	// Nodes
	UpsertNode(ctx context.Context, id, nodeType string, data json.RawMessage) (Node, error)
	GetNode(ctx context.Context, id string) (Node, error)
	DeleteNode(ctx context.Context, id string) (bool, error)
	NodesByType(ctx context.Context, nodeType string, limit int) ([]Node, error)

	// Edges
	CreateEdge(ctx context.Context, from, to, relationship string, data json.RawMessage) (Edge, error)
	DeleteEdge(ctx context.Context, id int64) (bool, error)
	EdgesFrom(ctx context.Context, nodeID string) ([]Edge, error)
	EdgesTo(ctx context.Context, nodeID string) ([]Edge, error)
	CountEdges(ctx context.Context, relationship string) (int64, error)

	// Traversal
	Neighbors(ctx context.Context, nodeID, relationship string) ([]Node, error)
}
