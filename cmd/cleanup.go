package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/memfoundry/hybridstore/internal/config"
	"github.com/memfoundry/hybridstore/internal/store/pg"
)

func cleanupCmd() *cobra.Command {
	var days int
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete documents and graph nodes older than the retention window",
		Long: `Removes documents created before the cutoff and nodes not updated
since then. Edges attached to removed nodes are removed with them.
The same deletion the memory services run through their delete
endpoints, available here for operators.`,
		Run: func(cmd *cobra.Command, args []string) {
			runCleanup(days, dryRun)
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "retention window in days (default from config)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would be deleted without deleting")
	return cmd
}

func runCleanup(days int, dryRun bool) {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if days <= 0 {
		days = cfg.Cleanup.RetentionDays
	}
	if days <= 0 {
		fmt.Fprintln(os.Stderr, "Error: retention window must be positive (set --days or cleanup.retention_days)")
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

	cutoff := pg.CutoffForDays(days)
	stats, err := pg.Cleanup(ctx, db, pg.CleanupOptions{Cutoff: cutoff, DryRun: dryRun})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cleanup failed: %v\n", err)
		os.Exit(1)
	}

	verb := "Deleted"
	if dryRun {
		verb = "Would delete"
	}
	fmt.Printf("%s rows older than %d days (cutoff %s):\n", verb, days, cutoff.Format("2006-01-02"))
	fmt.Printf("  Documents: %d\n", stats.Documents)
	fmt.Printf("  Nodes:     %d\n", stats.Nodes)
	fmt.Printf("  Edges:     %d (cascade)\n", stats.Edges)
}
