package pg

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// requiredExtensions must be installed for the store to function. The
// vector extension provides the embedding type and operators;
// pg_stat_statements gives operators statement statistics.
var requiredExtensions = []string{"vector", "pg_stat_statements"}

// ExtensionInfo is an installed extension and its version.
type ExtensionInfo struct {
	Name    string `db:"extname" json:"name"`
	Version string `db:"extversion" json:"version"`
}

// TableInfo is a provisioned table with its row count and index names.
type TableInfo struct {
	Name    string   `json:"name"`
	Rows    int64    `json:"rows"`
	Indexes []string `json:"indexes"`
}

// SchemaReport describes the provisioned state of a database.
type SchemaReport struct {
	SchemaVersion     uint            `json:"schema_version"`
	Dirty             bool            `json:"dirty,omitempty"`
	Extensions        []ExtensionInfo `json:"extensions"`
	MissingExtensions []string        `json:"missing_extensions,omitempty"`
	Tables            []TableInfo     `json:"tables"`
	MissingTables     []string        `json:"missing_tables,omitempty"`
	VectorIndexes     []string        `json:"vector_indexes"`
}

// Provisioned reports whether everything the memory services need is in
// place: all extensions, all tables and at least one vector index.
func (r *SchemaReport) Provisioned() bool {
	return len(r.MissingExtensions) == 0 &&
		len(r.MissingTables) == 0 &&
		len(r.VectorIndexes) > 0
}

// Inspect reports extensions, tables, indexes and row counts for the
// hybrid store schema. It works against unprovisioned databases too,
// reporting what is missing instead of failing.
func Inspect(ctx context.Context, db *sqlx.DB) (*SchemaReport, error) {
	rep := &SchemaReport{}

	version, dirty, err := MigrationVersion(db)
	if err != nil {
		return nil, err
	}
	rep.SchemaVersion = version
	rep.Dirty = dirty

	if err := db.SelectContext(ctx, &rep.Extensions,
		"SELECT extname, extversion FROM pg_extension WHERE extname IN ('vector', 'pg_stat_statements') ORDER BY extname"); err != nil {
		return nil, fmt.Errorf("list extensions: %w", err)
	}
	installed := make(map[string]bool, len(rep.Extensions))
	for _, ext := range rep.Extensions {
		installed[ext.Name] = true
	}
	for _, name := range requiredExtensions {
		if !installed[name] {
			rep.MissingExtensions = append(rep.MissingExtensions, name)
		}
	}

	for _, table := range coreTables {
		var exists bool
		if err := db.GetContext(ctx, &exists,
			"SELECT EXISTS (SELECT 1 FROM pg_tables WHERE schemaname = 'public' AND tablename = $1)",
			table); err != nil {
			return nil, fmt.Errorf("check table %s: %w", table, err)
		}
		if !exists {
			rep.MissingTables = append(rep.MissingTables, table)
			continue
		}

		info := TableInfo{Name: table}
		if err := db.GetContext(ctx, &info.Rows,
			"SELECT COUNT(*) FROM "+pq.QuoteIdentifier(table)); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}

		rows, err := db.QueryContext(ctx,
			"SELECT indexname, indexdef FROM pg_indexes WHERE schemaname = 'public' AND tablename = $1 ORDER BY indexname",
			table)
		if err != nil {
			return nil, fmt.Errorf("list indexes for %s: %w", table, err)
		}
		for rows.Next() {
			var name, def string
			if err := rows.Scan(&name, &def); err != nil {
				continue
			}
			info.Indexes = append(info.Indexes, name)
			if strings.Contains(def, " USING ivfflat ") || strings.Contains(def, " USING hnsw ") {
				rep.VectorIndexes = append(rep.VectorIndexes, name)
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("list indexes for %s: %w", table, err)
		}

		rep.Tables = append(rep.Tables, info)
	}

	return rep, nil
}
