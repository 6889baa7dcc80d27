package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/memfoundry/hybridstore/internal/config"
	"github.com/memfoundry/hybridstore/internal/store"
	"github.com/memfoundry/hybridstore/internal/store/pg"
)

func initCmd() *cobra.Command {
	var indexOverride string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Provision the database schema (idempotent)",
		Run: func(cmd *cobra.Command, args []string) {
			runInit(indexOverride)
		},
	}
	cmd.Flags().StringVar(&indexOverride, "index", "", "vector index strategy: ivfflat, hnsw or both (default from config)")
	return cmd
}

func runInit(indexOverride string) {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	strategyName := cfg.Vector.Index
	if indexOverride != "" {
		strategyName = indexOverride
	}
	strategy, err := store.ParseIndexStrategy(strategyName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := pg.OpenDB(ctx, cfg.Database.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to %s:%d/%s: %v\n",
			cfg.Database.Host, cfg.Database.Port, cfg.Database.Name, err)
		os.Exit(1)
	}
	defer db.Close()

	res, err := pg.Provision(ctx, db, pg.ProvisionOptions{
		ServiceRole: cfg.Database.GrantRole(),
		Vector: pg.VectorIndexOptions{
			Strategy:           strategy,
			IVFFlatLists:       cfg.Vector.IVFFlatLists,
			HNSWM:              cfg.Vector.HNSWM,
			HNSWEfConstruction: cfg.Vector.HNSWEfConstruction,
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: provisioning failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Database %q provisioned.\n", cfg.Database.Name)
	fmt.Printf("  Schema version: %d\n", res.SchemaVersion)
	fmt.Printf("  Vector indexes: %s\n", strings.Join(res.VectorIndexes, ", "))
	fmt.Printf("  Grants:         ALL on tables and sequences to %q\n", res.GrantedTo)
	fmt.Println()
	fmt.Println("Re-running init is safe; an up-to-date database is a no-op.")
}
