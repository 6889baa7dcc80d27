package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/memfoundry/hybridstore/internal/store"
)

// CleanupOptions configures an age-based cleanup pass.
type CleanupOptions struct {
	// Cutoff: documents created before it and nodes last updated before it
	// are removed.
	Cutoff time.Time

	// DryRun reports counts without deleting anything.
	DryRun bool
}

// CutoffForDays returns the cutoff for a days-to-keep retention window.
func CutoffForDays(days int) time.Time {
	return nowUTC().AddDate(0, 0, -days)
}

// Cleanup removes rows older than the cutoff in one transaction:
// documents by created_at, nodes by updated_at. Edges touching a removed
// node go with it via the cascade FKs; their count is measured before the
// delete so it can be reported.
func Cleanup(ctx context.Context, db *sqlx.DB, opts CleanupOptions) (store.CleanupStats, error) {
	var stats store.CleanupStats

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("begin cleanup: %w", err)
	}
	defer tx.Rollback()

	err = tx.GetContext(ctx, &stats.Edges,
		`SELECT COUNT(*) FROM edges
			WHERE from_node IN (SELECT id FROM nodes WHERE updated_at < $1)
			   OR to_node   IN (SELECT id FROM nodes WHERE updated_at < $1)`,
		opts.Cutoff)
	if err != nil {
		return stats, fmt.Errorf("count stale edges: %w", err)
	}

	if opts.DryRun {
		if err := tx.GetContext(ctx, &stats.Documents,
			"SELECT COUNT(*) FROM documents WHERE created_at < $1", opts.Cutoff); err != nil {
			return stats, fmt.Errorf("count stale documents: %w", err)
		}
		if err := tx.GetContext(ctx, &stats.Nodes,
			"SELECT COUNT(*) FROM nodes WHERE updated_at < $1", opts.Cutoff); err != nil {
			return stats, fmt.Errorf("count stale nodes: %w", err)
		}
		return stats, nil
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE created_at < $1", opts.Cutoff)
	if err != nil {
		return stats, fmt.Errorf("delete stale documents: %w", err)
	}
	stats.Documents, _ = res.RowsAffected()

	res, err = tx.ExecContext(ctx, "DELETE FROM nodes WHERE updated_at < $1", opts.Cutoff)
	if err != nil {
		return stats, fmt.Errorf("delete stale nodes: %w", err)
	}
	stats.Nodes, _ = res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("commit cleanup: %w", err)
	}
	return stats, nil
}
