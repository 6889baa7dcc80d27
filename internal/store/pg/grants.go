package pg

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

func grantStatements(role string) []string {
	quoted := pq.QuoteIdentifier(role)
	return []string{
		"GRANT ALL PRIVILEGES ON ALL TABLES IN SCHEMA public TO " + quoted,
		"GRANT ALL PRIVILEGES ON ALL SEQUENCES IN SCHEMA public TO " + quoted,
		"ALTER DEFAULT PRIVILEGES IN SCHEMA public GRANT ALL PRIVILEGES ON TABLES TO " + quoted,
		"ALTER DEFAULT PRIVILEGES IN SCHEMA public GRANT ALL PRIVILEGES ON SEQUENCES TO " + quoted,
	}
}

// GrantServiceRole grants the service account full access to every table
// and sequence in the working schema. The ALTER DEFAULT PRIVILEGES pair
// covers objects created by later migrations, so re-granting is never
// needed. The role must already exist.
func GrantServiceRole(ctx context.Context, db *sqlx.DB, role string) error {
	if role == "" {
		return fmt.Errorf("grant: empty role")
	}
	for _, stmt := range grantStatements(role) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:min(len(stmt), 60)], err)
		}
	}
	return nil
}

// AnalyzeTables refreshes planner statistics for the core tables so the
// first real queries after provisioning plan against current row counts.
func AnalyzeTables(ctx context.Context, db *sqlx.DB) error {
	for _, table := range coreTables {
		stmt := "ANALYZE " + pq.QuoteIdentifier(table)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt, err)
		}
	}
	return nil
}
