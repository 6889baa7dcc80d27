package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/memfoundry/hybridstore/internal/store"
)

// Postgres error codes the graph layer maps to sentinel errors.
const (
	pgErrForeignKeyViolation = "23503"
	pgErrUniqueViolation     = "23505"
)

// PGGraphStore implements store.GraphStore backed by Postgres.
type PGGraphStore struct {
	db *sqlx.DB
}

func NewPGGraphStore(db *sqlx.DB) *PGGraphStore {
	return &PGGraphStore{db: db}
}

type nodeRow struct {
	ID        string          `db:"id"`
	NodeType  string          `db:"node_type"`
	Data      json.RawMessage `db:"data"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

func (r nodeRow) toNode() store.Node {
	return store.Node{
		ID:        r.ID,
		NodeType:  r.NodeType,
		Data:      r.Data,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type edgeRow struct {
	ID           int64           `db:"id"`
	FromNode     string          `db:"from_node"`
	ToNode       string          `db:"to_node"`
	Relationship string          `db:"relationship"`
	Data         json.RawMessage `db:"data"`
	CreatedAt    time.Time       `db:"created_at"`
}

func (r edgeRow) toEdge() store.Edge {
	return store.Edge{
		ID:           r.ID,
		FromNode:     r.FromNode,
		ToNode:       r.ToNode,
		Relationship: r.Relationship,
		Data:         r.Data,
		CreatedAt:    r.CreatedAt,
	}
}

// UpsertNode inserts a node or, if the id exists, replaces its type and
// data and bumps updated_at.
func (s *PGGraphStore) UpsertNode(ctx context.Context, id, nodeType string, data json.RawMessage) (store.Node, error) {
	if err := store.ValidateNodeID(id); err != nil {
		return store.Node{}, err
	}
	if nodeType == "" {
		return store.Node{}, fmt.Errorf("empty node type")
	}

	var row nodeRow
	err := s.db.GetContext(ctx, &row,
		`INSERT INTO nodes (id, node_type, data)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET
			node_type = EXCLUDED.node_type,
			data = EXCLUDED.data,
			updated_at = NOW()
		 RETURNING id, node_type, data, created_at, updated_at`,
		id, nodeType, jsonOrEmpty(data))
	if err != nil {
		return store.Node{}, fmt.Errorf("upsert node %s: %w", id, err)
	}
	return row.toNode(), nil
}

func (s *PGGraphStore) GetNode(ctx context.Context, id string) (store.Node, error) {
	var row nodeRow
	err := s.db.GetContext(ctx, &row,
		"SELECT id, node_type, data, created_at, updated_at FROM nodes WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Node{}, store.ErrNotFound
	}
	if err != nil {
		return store.Node{}, fmt.Errorf("get node %s: %w", id, err)
	}
	return row.toNode(), nil
}

// DeleteNode removes a node and, via the cascade FKs, every edge touching
// it. Reports whether a node was actually removed.
func (s *PGGraphStore) DeleteNode(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM nodes WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("delete node %s: %w", id, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *PGGraphStore) NodesByType(ctx context.Context, nodeType string, limit int) ([]store.Node, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	var rows []nodeRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT id, node_type, data, created_at, updated_at FROM nodes WHERE node_type = $1 ORDER BY id LIMIT $2",
		nodeType, limit)
	if err != nil {
		return nil, fmt.Errorf("nodes by type %s: %w", nodeType, err)
	}
	nodes := make([]store.Node, 0, len(rows))
	for _, r := range rows {
		nodes = append(nodes, r.toNode())
	}
	return nodes, nil
}

// CreateEdge inserts a directed, labeled edge. Both endpoints must exist
// (store.ErrNodeNotFound otherwise) and the (from, to, relationship)
// triple must be new (store.ErrDuplicateEdge otherwise).
func (s *PGGraphStore) CreateEdge(ctx context.Context, from, to, relationship string, data json.RawMessage) (store.Edge, error) {
	if err := store.ValidateNodeID(from); err != nil {
		return store.Edge{}, err
	}
	if err := store.ValidateNodeID(to); err != nil {
		return store.Edge{}, err
	}
	if relationship == "" {
		return store.Edge{}, fmt.Errorf("empty relationship")
	}

	var row edgeRow
	err := s.db.GetContext(ctx, &row,
		`INSERT INTO edges (from_node, to_node, relationship, data)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, from_node, to_node, relationship, data, created_at`,
		from, to, relationship, jsonOrEmpty(data))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgErrForeignKeyViolation:
				return store.Edge{}, fmt.Errorf("edge %s-[%s]->%s: %w", from, relationship, to, store.ErrNodeNotFound)
			case pgErrUniqueViolation:
				return store.Edge{}, fmt.Errorf("edge %s-[%s]->%s: %w", from, relationship, to, store.ErrDuplicateEdge)
			}
		}
		return store.Edge{}, fmt.Errorf("create edge: %w", err)
	}
	return row.toEdge(), nil
}

func (s *PGGraphStore) DeleteEdge(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM edges WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("delete edge %d: %w", id, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *PGGraphStore) EdgesFrom(ctx context.Context, nodeID string) ([]store.Edge, error) {
	return s.selectEdges(ctx,
		"SELECT id, from_node, to_node, relationship, data, created_at FROM edges WHERE from_node = $1 ORDER BY id", nodeID)
}

func (s *PGGraphStore) EdgesTo(ctx context.Context, nodeID string) ([]store.Edge, error) {
	return s.selectEdges(ctx,
		"SELECT id, from_node, to_node, relationship, data, created_at FROM edges WHERE to_node = $1 ORDER BY id", nodeID)
}

func (s *PGGraphStore) selectEdges(ctx context.Context, query string, args ...any) ([]store.Edge, error) {
	var rows []edgeRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select edges: %w", err)
	}
	edges := make([]store.Edge, 0, len(rows))
	for _, r := range rows {
		edges = append(edges, r.toEdge())
	}
	return edges, nil
}

// CountEdges counts edges with the given relationship label, or all edges
// when the label is empty.
func (s *PGGraphStore) CountEdges(ctx context.Context, relationship string) (int64, error) {
	var n int64
	var err error
	if relationship == "" {
		err = s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM edges")
	} else {
		err = s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM edges WHERE relationship = $1", relationship)
	}
	if err != nil {
		return 0, fmt.Errorf("count edges: %w", err)
	}
	return n, nil
}

// Neighbors returns the nodes reachable from nodeID over outgoing edges
// with the given relationship label.
func (s *PGGraphStore) Neighbors(ctx context.Context, nodeID, relationship string) ([]store.Node, error) {
	var rows []nodeRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT n.id, n.node_type, n.data, n.created_at, n.updated_at
			FROM edges e
			JOIN nodes n ON n.id = e.to_node
			WHERE e.from_node = $1 AND e.relationship = $2
			ORDER BY n.id`,
		nodeID, relationship)
	if err != nil {
		return nil, fmt.Errorf("neighbors of %s: %w", nodeID, err)
	}
	nodes := make([]store.Node, 0, len(rows))
	for _, r := range rows {
		nodes = append(nodes, r.toNode())
	}
	return nodes, nil
}
