package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/factorlab/internal/batch"
	"github.com/wonny/factorlab/internal/catalog"
	"github.com/wonny/factorlab/internal/evaluation"
	"github.com/wonny/factorlab/internal/factors"
	"github.com/wonny/factorlab/pkg/redis"
)

var (
	batchFrom string
	batchTo   string
)

// batchCmd runs every registered factor through evaluation and admission
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Evaluate all registered factors and admit the passers",
	Long: `Runs the full factor batch: every registered factor is computed over
the panel, evaluated at every configured horizon, and admitted to the
catalog at the first horizon that passes the admission rule.

One factor failing never stops the batch.

Example:
  go run ./cmd/factorlab batch --from 2024-01-02 --to 2025-12-30`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&batchFrom, "from", "", "panel start date (YYYY-MM-DD)")
	batchCmd.Flags().StringVar(&batchTo, "to", "", "panel end date (YYYY-MM-DD)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, log, err := initRuntime()
	if err != nil {
		return err
	}
	rc, err := loadRunConfig(cfg, log)
	if err != nil {
		return err
	}

	from, to, err := parseRange(batchFrom, batchTo)
	if err != nil {
		return err
	}

	loader, cleanupPanel, err := openPanelSource(cfg)
	if err != nil {
		return err
	}
	defer cleanupPanel()

	store, cleanupStore, err := openCatalogStore(cfg, log)
	if err != nil {
		return err
	}
	defer cleanupStore()

	svc, err := catalog.NewService(store, rc.Admission, log)
	if err != nil {
		return err
	}

	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()
	cache := redis.NewCache(redisClient, "factorlab")

	processor := batch.NewProcessor(rc, factors.Builtins(), evaluation.NewEngine(log), svc, cache, log)

	ctx := context.Background()
	panel, err := loader.LoadPanel(ctx, from, to)
	if err != nil {
		return fmt.Errorf("load panel: %w", err)
	}

	summary, err := processor.Run(ctx, panel)
	if err != nil {
		return err
	}

	fmt.Printf("\n=== Batch %s ===\n", summary.RunID)
	fmt.Printf("evaluated: %d  admitted: %d  failed: %d  elapsed: %s\n\n",
		summary.Evaluated, summary.Admitted, summary.Failed, summary.Elapsed)
	for _, o := range summary.Outcomes {
		switch {
		case o.Err != "":
			fmt.Printf("  ✗ %-20s error: %s\n", o.FactorName, o.Err)
		case o.Admitted:
			fmt.Printf("  ✓ %-20s admitted at %dd\n", o.FactorName, o.Horizon)
		default:
			fmt.Printf("  - %-20s rejected\n", o.FactorName)
		}
	}
	fmt.Println()
	return nil
}
