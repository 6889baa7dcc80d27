package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/memfoundry/hybridstore/internal/config"
	"github.com/memfoundry/hybridstore/internal/store/pg"
)

func statusCmd() *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the provisioned state of the database",
		Run: func(cmd *cobra.Command, args []string) {
			runStatus(jsonOutput)
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func runStatus(jsonOutput bool) {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := pg.OpenDB(ctx, cfg.Database.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to %s:%d/%s: %v\n",
			cfg.Database.Host, cfg.Database.Port, cfg.Database.Name, err)
		os.Exit(1)
	}
	defer db.Close()

	rep, err := pg.Inspect(ctx, db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error inspecting schema: %v\n", err)
		os.Exit(1)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(rep, "", "  ")
		fmt.Println(string(data))
		return
	}

	state := "provisioned"
	if !rep.Provisioned() {
		state = "NOT provisioned"
	}
	fmt.Printf("Database %s:%d/%s: %s (schema version %d)\n",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.Name, state, rep.SchemaVersion)
	if rep.Dirty {
		fmt.Println("WARNING: a migration is marked dirty; repair before re-running init.")
	}

	fmt.Println()
	fmt.Println("Extensions:")
	for _, ext := range rep.Extensions {
		fmt.Printf("  %-20s %s\n", ext.Name, ext.Version)
	}
	for _, name := range rep.MissingExtensions {
		fmt.Printf("  %-20s MISSING\n", name)
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TABLE\tROWS\tINDEXES")
	for _, tbl := range rep.Tables {
		fmt.Fprintf(w, "%s\t%d\t%s\n", tbl.Name, tbl.Rows, strings.Join(tbl.Indexes, ", "))
	}
	for _, name := range rep.MissingTables {
		fmt.Fprintf(w, "%s\t-\tMISSING\n", name)
	}
	w.Flush()

	if len(rep.VectorIndexes) > 0 {
		fmt.Println()
		fmt.Printf("Vector indexes: %s\n", strings.Join(rep.VectorIndexes, ", "))
	}
}
