package pg

import (
	"context"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// coreTables are the tables this provisioner owns, in dependency order.
var coreTables = []string{"documents", "nodes", "edges"}

// ProvisionOptions configures a provisioning run.
type ProvisionOptions struct {
	// ServiceRole receives full grants on tables and sequences. Must be an
	// existing role; usually the account the memory services connect as.
	ServiceRole string

	// Vector selects which approximate vector indexes are built.
	Vector VectorIndexOptions
}

// ProvisionResult summarizes what a provisioning run left behind.
type ProvisionResult struct {
	SchemaVersion uint     `json:"schema_version"`
	VectorIndexes []string `json:"vector_indexes"`
	GrantedTo     string   `json:"granted_to"`
}

// Provision brings the database to the state the memory services expect:
// extensions, tables, indexes, grants and fresh planner statistics. Every
// phase is idempotent, so re-running against a provisioned database is a
// safe no-op. The first failing statement aborts the run.
func Provision(ctx context.Context, db *sqlx.DB, opts ProvisionOptions) (*ProvisionResult, error) {
	version, err := Migrate(db)
	if err != nil {
		return nil, err
	}

	vecOpts := opts.Vector.withDefaults()
	if err := EnsureVectorIndexes(ctx, db, vecOpts); err != nil {
		return nil, err
	}

	if err := GrantServiceRole(ctx, db, opts.ServiceRole); err != nil {
		return nil, err
	}

	if err := AnalyzeTables(ctx, db); err != nil {
		return nil, err
	}

	slog.Info("hybrid store provisioned",
		"schema_version", version,
		"index_strategy", vecOpts.Strategy,
		"service_role", opts.ServiceRole)

	return &ProvisionResult{
		SchemaVersion: version,
		VectorIndexes: vecOpts.IndexNames(),
		GrantedTo:     opts.ServiceRole,
	}, nil
}
