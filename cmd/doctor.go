package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/memfoundry/hybridstore/internal/config"
	"github.com/memfoundry/hybridstore/internal/store/pg"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check database, schema and service health",
		Run: func(cmd *cobra.Command, args []string) {
			runDoctor()
		},
	}
}

func runDoctor() {
	fmt.Println("hybridstore doctor")
	fmt.Printf("  Version:  %s\n", Version)
	fmt.Printf("  OS:       %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Printf("  Go:       %s\n", runtime.Version())
	fmt.Println()

	cfgPath := resolveConfigPath()
	fmt.Printf("  Config:   %s", cfgPath)
	if _, err := os.Stat(cfgPath); err != nil {
		fmt.Println(" (NOT FOUND, using defaults)")
	} else {
		fmt.Println(" (OK)")
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("  Config load error: %s\n", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Println()
	fmt.Println("  Database:")
	fmt.Printf("    %-12s %s:%d/%s\n", "Target:", cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)
	checkDatabase(ctx, cfg)

	fmt.Println()
	fmt.Println("  Services:")
	checkServices(ctx, cfg)

	fmt.Println()
	fmt.Println("Doctor check complete.")
}

func checkDatabase(ctx context.Context, cfg *config.Config) {
	db, err := pg.OpenDB(ctx, cfg.Database.DSN())
	if err != nil {
		fmt.Printf("    %-12s FAILED (%v)\n", "Connection:", err)
		return
	}
	defer db.Close()
	fmt.Printf("    %-12s OK\n", "Connection:")

	rep, err := pg.Inspect(ctx, db)
	if err != nil {
		fmt.Printf("    %-12s FAILED (%v)\n", "Schema:", err)
		return
	}

	for _, ext := range rep.Extensions {
		fmt.Printf("    %-12s %s %s\n", "Extension:", ext.Name, ext.Version)
	}
	for _, name := range rep.MissingExtensions {
		fmt.Printf("    %-12s %s NOT INSTALLED\n", "Extension:", name)
	}

	if rep.Provisioned() {
		fmt.Printf("    %-12s provisioned (version %d, %d vector indexes)\n",
			"Schema:", rep.SchemaVersion, len(rep.VectorIndexes))
	} else {
		fmt.Printf("    %-12s NOT provisioned (missing tables: %s), run: hybridstore init\n",
			"Schema:", strings.Join(rep.MissingTables, ", "))
	}
}

func checkServices(ctx context.Context, cfg *config.Config) {
	checks := []struct {
		name string
		url  string
	}{
		{"Mem0", cfg.Services.Mem0URL},
		{"Graphiti", cfg.Services.GraphitiURL},
		{"Cognee", cfg.Services.CogneeURL},
	}

	type result struct {
		status int
		err    error
	}
	results := make([]result, len(checks))

	g, ctx := errgroup.WithContext(ctx)
	for i, c := range checks {
		i, c := i, c
		g.Go(func() error {
			results[i].status, results[i].err = probeHealth(ctx, c.url, cfg.Services.HealthTimeout())
			return nil
		})
	}
	g.Wait()

	for i, c := range checks {
		switch {
		case results[i].err != nil:
			fmt.Printf("    %-12s UNREACHABLE (%v)\n", c.name+":", results[i].err)
		case results[i].status != http.StatusOK:
			fmt.Printf("    %-12s UNHEALTHY (HTTP %d)\n", c.name+":", results[i].status)
		default:
			fmt.Printf("    %-12s OK (%s)\n", c.name+":", c.url)
		}
	}
}

func probeHealth(ctx context.Context, baseURL string, timeout time.Duration) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+"/health", nil)
	if err != nil {
		return 0, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}
