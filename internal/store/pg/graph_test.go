package pg

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/memfoundry/hybridstore/internal/store"
)

func TestNodeUpsert(t *testing.T) {
	db := testDB(t)
	graph := NewPGGraphStore(db)
	ctx := context.Background()

	n1, err := graph.UpsertNode(ctx, "n1", "person", json.RawMessage(`{"name":"Alice"}`))
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if n1.UpdatedAt.Before(n1.CreatedAt) {
		t.Errorf("updated_at %v before created_at %v", n1.UpdatedAt, n1.CreatedAt)
	}

	n2, err := graph.UpsertNode(ctx, "n1", "human", json.RawMessage(`{"name":"Alice","age":30}`))
	if err != nil {
		t.Fatalf("re-upsert: %v", err)
	}
	if n2.NodeType != "human" {
		t.Errorf("node type after upsert = %q, want human", n2.NodeType)
	}
	if !n2.CreatedAt.Equal(n1.CreatedAt) {
		t.Errorf("created_at changed on upsert: %v -> %v", n1.CreatedAt, n2.CreatedAt)
	}
	if n2.UpdatedAt.Before(n2.CreatedAt) {
		t.Errorf("updated_at %v before created_at %v after upsert", n2.UpdatedAt, n2.CreatedAt)
	}

	got, err := graph.GetNode(ctx, "n1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.NodeType != "human" {
		t.Errorf("stored node type = %q", got.NodeType)
	}

	if _, err := graph.GetNode(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("get of unknown node: err = %v, want ErrNotFound", err)
	}

	if _, err := graph.UpsertNode(ctx, "", "person", nil); err == nil {
		t.Error("upsert with empty id succeeded")
	}
}

func TestEdgeReferentialIntegrity(t *testing.T) {
	db := testDB(t)
	graph := NewPGGraphStore(db)
	ctx := context.Background()

	_, err := graph.CreateEdge(ctx, "ghost1", "ghost2", "knows", nil)
	if !errors.Is(err, store.ErrNodeNotFound) {
		t.Fatalf("edge to missing nodes: err = %v, want ErrNodeNotFound", err)
	}
}

func TestEdgeUniqueTriple(t *testing.T) {
	db := testDB(t)
	graph := NewPGGraphStore(db)
	ctx := context.Background()

	mustNode(t, graph, "a", "person")
	mustNode(t, graph, "b", "person")

	if _, err := graph.CreateEdge(ctx, "a", "b", "knows", nil); err != nil {
		t.Fatalf("first edge: %v", err)
	}
	if _, err := graph.CreateEdge(ctx, "a", "b", "knows", nil); !errors.Is(err, store.ErrDuplicateEdge) {
		t.Fatalf("duplicate triple: err = %v, want ErrDuplicateEdge", err)
	}

	// Same endpoints, different label is a different edge.
	if _, err := graph.CreateEdge(ctx, "a", "b", "trusts", nil); err != nil {
		t.Fatalf("same endpoints with new label: %v", err)
	}
}

func TestCascadeDelete(t *testing.T) {
	db := testDB(t)
	graph := NewPGGraphStore(db)
	ctx := context.Background()

	mustNode(t, graph, "n1", "person")
	mustNode(t, graph, "n2", "city")
	if _, err := graph.CreateEdge(ctx, "n1", "n2", "lives_in", nil); err != nil {
		t.Fatalf("create edge: %v", err)
	}

	n, err := graph.CountEdges(ctx, "lives_in")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("edge count before delete = %d, want 1", n)
	}

	removed, err := graph.DeleteNode(ctx, "n1")
	if err != nil {
		t.Fatalf("delete node: %v", err)
	}
	if !removed {
		t.Fatal("delete reported no row removed")
	}

	n, err = graph.CountEdges(ctx, "lives_in")
	if err != nil {
		t.Fatalf("count after delete: %v", err)
	}
	if n != 0 {
		t.Errorf("edge count after deleting endpoint = %d, want 0", n)
	}

	// The surviving endpoint is untouched.
	if _, err := graph.GetNode(ctx, "n2"); err != nil {
		t.Errorf("surviving node gone: %v", err)
	}

	if removed, _ := graph.DeleteNode(ctx, "n1"); removed {
		t.Error("second delete reported a removed row")
	}
}

func TestNeighborsAndEdgeLists(t *testing.T) {
	db := testDB(t)
	graph := NewPGGraphStore(db)
	ctx := context.Background()

	mustNode(t, graph, "alice", "person")
	mustNode(t, graph, "berlin", "city")
	mustNode(t, graph, "acme", "company")

	if _, err := graph.CreateEdge(ctx, "alice", "berlin", "lives_in", nil); err != nil {
		t.Fatalf("edge lives_in: %v", err)
	}
	edge, err := graph.CreateEdge(ctx, "alice", "acme", "works_at", nil)
	if err != nil {
		t.Fatalf("edge works_at: %v", err)
	}

	neighbors, err := graph.Neighbors(ctx, "alice", "lives_in")
	if err != nil {
		t.Fatalf("neighbors: %v", err)
	}
	if len(neighbors) != 1 || neighbors[0].ID != "berlin" {
		t.Errorf("neighbors(alice, lives_in) = %+v, want [berlin]", neighbors)
	}

	out, err := graph.EdgesFrom(ctx, "alice")
	if err != nil {
		t.Fatalf("edges from: %v", err)
	}
	if len(out) != 2 {
		t.Errorf("edges from alice = %d, want 2", len(out))
	}

	in, err := graph.EdgesTo(ctx, "berlin")
	if err != nil {
		t.Fatalf("edges to: %v", err)
	}
	if len(in) != 1 || in[0].Relationship != "lives_in" {
		t.Errorf("edges to berlin = %+v", in)
	}

	removed, err := graph.DeleteEdge(ctx, edge.ID)
	if err != nil || !removed {
		t.Fatalf("delete edge: removed=%v err=%v", removed, err)
	}
	if n, _ := graph.CountEdges(ctx, ""); n != 1 {
		t.Errorf("total edges after delete = %d, want 1", n)
	}
}

func TestNodesByType(t *testing.T) {
	db := testDB(t)
	graph := NewPGGraphStore(db)
	ctx := context.Background()

	mustNode(t, graph, "bob", "person")
	mustNode(t, graph, "alice", "person")
	mustNode(t, graph, "berlin", "city")

	people, err := graph.NodesByType(ctx, "person", 10)
	if err != nil {
		t.Fatalf("nodes by type: %v", err)
	}
	if len(people) != 2 {
		t.Fatalf("got %d people, want 2", len(people))
	}
	if people[0].ID != "alice" || people[1].ID != "bob" {
		t.Errorf("people not ordered by id: %s, %s", people[0].ID, people[1].ID)
	}
}

func mustNode(t *testing.T, graph *PGGraphStore, id, nodeType string) {
	t.Helper()
	if _, err := graph.UpsertNode(context.Background(), id, nodeType, nil); err != nil {
		t.Fatalf("upsert node %s: %v", id, err)
	}
}
