package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is the CLI version reported by doctor.
const Version = "0.1.0"

var configPath string

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hybridstore",
		Short: "Provision and inspect the shared vector + graph store",
		Long: `hybridstore prepares the PostgreSQL database shared by the memory
services (Mem0, Graphiti, Cognee): extensions, tables, vector and
lookup indexes, grants and planner statistics. Every operation is
idempotent; re-running init against a provisioned database is a no-op.`,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default hybridstore.yaml)")

	cmd.AddCommand(initCmd())
	cmd.AddCommand(statusCmd())
	cmd.AddCommand(cleanupCmd())
	cmd.AddCommand(doctorCmd())
	return cmd
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	if env := os.Getenv("HYBRIDSTORE_CONFIG"); env != "" {
		return env
	}
	return "hybridstore.yaml"
}
