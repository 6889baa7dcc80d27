package pg

import (
	"context"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/memfoundry/hybridstore/internal/store"
)

// testDB opens the database named by HYBRIDSTORE_TEST_DSN, provisions it
// and truncates the core tables so every test starts clean. Integration
// tests are skipped when the variable is unset.
func testDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := os.Getenv("HYBRIDSTORE_TEST_DSN")
	if dsn == "" {
		t.Skip("HYBRIDSTORE_TEST_DSN not set")
	}

	ctx := context.Background()
	db, err := OpenDB(ctx, dsn)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := Provision(ctx, db, ProvisionOptions{ServiceRole: currentUser(t, db)}); err != nil {
		t.Fatalf("provision test database: %v", err)
	}

	if _, err := db.ExecContext(ctx, "TRUNCATE documents, nodes, edges RESTART IDENTITY CASCADE"); err != nil {
		t.Fatalf("truncate core tables: %v", err)
	}
	return db
}

func currentUser(t *testing.T, db *sqlx.DB) string {
	t.Helper()
	var role string
	if err := db.Get(&role, "SELECT current_user"); err != nil {
		t.Fatalf("resolve current user: %v", err)
	}
	return role
}

// testEmbedding returns a unit vector with 1.0 at the given position.
func testEmbedding(hot int) []float32 {
	v := make([]float32, store.EmbeddingDim)
	v[hot] = 1
	return v
}
