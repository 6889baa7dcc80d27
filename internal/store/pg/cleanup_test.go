package pg

import (
	"context"
	"testing"
)

func TestCleanup(t *testing.T) {
	db := testDB(t)
	docs := NewPGDocumentStore(db)
	graph := NewPGGraphStore(db)
	ctx := context.Background()

	oldDoc, err := docs.Insert(ctx, "old", nil, nil)
	if err != nil {
		t.Fatalf("insert old doc: %v", err)
	}
	if _, err := docs.Insert(ctx, "fresh", nil, nil); err != nil {
		t.Fatalf("insert fresh doc: %v", err)
	}

	mustNode(t, graph, "old1", "person")
	mustNode(t, graph, "old2", "city")
	mustNode(t, graph, "fresh1", "person")
	if _, err := graph.CreateEdge(ctx, "old1", "old2", "lives_in", nil); err != nil {
		t.Fatalf("create edge: %v", err)
	}

	if _, err := db.ExecContext(ctx,
		"UPDATE documents SET created_at = NOW() - INTERVAL '120 days' WHERE id = $1", oldDoc.ID); err != nil {
		t.Fatalf("backdate document: %v", err)
	}
	if _, err := db.ExecContext(ctx,
		`UPDATE nodes SET created_at = NOW() - INTERVAL '120 days',
		                  updated_at = NOW() - INTERVAL '100 days'
		  WHERE id IN ('old1', 'old2')`); err != nil {
		t.Fatalf("backdate nodes: %v", err)
	}

	cutoff := CutoffForDays(90)

	// Dry run reports without deleting.
	stats, err := Cleanup(ctx, db, CleanupOptions{Cutoff: cutoff, DryRun: true})
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if stats.Documents != 1 || stats.Nodes != 2 || stats.Edges != 1 {
		t.Errorf("dry run stats = %+v, want {1 2 1}", stats)
	}
	if n, _ := docs.Count(ctx); n != 2 {
		t.Fatalf("dry run deleted documents: %d left", n)
	}
	if n, _ := graph.CountEdges(ctx, ""); n != 1 {
		t.Fatalf("dry run deleted edges: %d left", n)
	}

	// Real run removes the stale rows and cascades the edge.
	stats, err = Cleanup(ctx, db, CleanupOptions{Cutoff: cutoff})
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if stats.Documents != 1 || stats.Nodes != 2 || stats.Edges != 1 {
		t.Errorf("cleanup stats = %+v, want {1 2 1}", stats)
	}

	if n, _ := docs.Count(ctx); n != 1 {
		t.Errorf("%d documents left, want 1", n)
	}
	if _, err := graph.GetNode(ctx, "fresh1"); err != nil {
		t.Errorf("fresh node removed: %v", err)
	}
	if _, err := graph.GetNode(ctx, "old1"); err == nil {
		t.Error("stale node survived cleanup")
	}
	if n, _ := graph.CountEdges(ctx, ""); n != 0 {
		t.Errorf("%d edges left, want 0", n)
	}
}

func TestCleanupNothingStale(t *testing.T) {
	db := testDB(t)
	docs := NewPGDocumentStore(db)
	ctx := context.Background()

	if _, err := docs.Insert(ctx, "fresh", nil, nil); err != nil {
		t.Fatalf("insert: %v", err)
	}

	stats, err := Cleanup(ctx, db, CleanupOptions{Cutoff: CutoffForDays(90)})
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if stats.Documents != 0 || stats.Nodes != 0 || stats.Edges != 0 {
		t.Errorf("stats = %+v, want all zero", stats)
	}
	if n, _ := docs.Count(ctx); n != 1 {
		t.Errorf("%d documents left, want 1", n)
	}
}
