package commands

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/factorlab/internal/evaluation"
	"github.com/wonny/factorlab/internal/factors"
)

var (
	evalFrom     string
	evalTo       string
	evalHorizons []int
)

// evaluateCmd scores one factor across the configured horizons
var evaluateCmd = &cobra.Command{
	Use:   "evaluate [factor_name]",
	Short: "Evaluate one factor against forward returns",
	Long: `Computes a registered factor over the daily price panel and scores it
against forward returns at every horizon: IC, rank IC, decile spread,
turnover and monotonicity.

Example:
  go run ./cmd/factorlab evaluate momentum_20 --from 2024-01-02 --to 2025-12-30
  go run ./cmd/factorlab evaluate reversal_5 --horizons 1,5`,
	Args: cobra.ExactArgs(1),
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVar(&evalFrom, "from", "", "panel start date (YYYY-MM-DD)")
	evaluateCmd.Flags().StringVar(&evalTo, "to", "", "panel end date (YYYY-MM-DD)")
	evaluateCmd.Flags().IntSliceVar(&evalHorizons, "horizons", nil, "horizons in trading days (default from run config)")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	cfg, log, err := initRuntime()
	if err != nil {
		return err
	}
	rc, err := loadRunConfig(cfg, log)
	if err != nil {
		return err
	}

	registry := factors.Builtins()
	def, err := registry.Get(args[0])
	if err != nil {
		return err
	}

	from, to, err := parseRange(evalFrom, evalTo)
	if err != nil {
		return err
	}

	loader, cleanup, err := openPanelSource(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := context.Background()
	panel, err := loader.LoadPanel(ctx, from, to)
	if err != nil {
		return fmt.Errorf("load panel: %w", err)
	}
	if panel.Len() == 0 {
		return fmt.Errorf("panel is empty for %s..%s", evalFrom, evalTo)
	}

	factor, err := def.Compute(panel)
	if err != nil {
		return fmt.Errorf("compute factor: %w", err)
	}

	horizons := evalHorizons
	if len(horizons) == 0 {
		horizons = rc.Evaluation.Horizons
	}

	engine := evaluation.NewEngine(log)
	results, err := engine.EvaluateMultiHorizon(
		rc.Evaluation.Evaluator, factor, panel,
		cfg.Data.PriceColumn, rc.Evaluation.ReturnKind, horizons, rc.Evaluation.Params(1))
	if err != nil {
		return err
	}

	printResults(def.Name, horizons, results)
	return nil
}

func parseRange(fromStr, toStr string) (time.Time, time.Time, error) {
	if fromStr == "" || toStr == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("--from and --to are required (YYYY-MM-DD)")
	}
	from, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --from: %w", err)
	}
	to, err := time.Parse("2006-01-02", toStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --to: %w", err)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("--to is before --from")
	}
	return from, to, nil
}

func printResults(factorName string, horizons []int, results map[int]*evaluation.EvalResult) {
	fmt.Printf("\n=== %s ===\n", factorName)
	for _, h := range horizons {
		res := results[h]
		if res == nil {
			continue
		}
		fmt.Printf("\n[horizon %dd]\n", h)
		if len(res.Metrics) == 0 {
			fmt.Printf("  (no defined metrics)\n")
		}

		names := make([]string, 0, len(res.Metrics))
		for name := range res.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %-20s %+.4f\n", name, res.Metrics[name])
		}
		for key, note := range res.Notes {
			fmt.Printf("  note: %s=%s\n", key, note)
		}
	}
	fmt.Println()
}
