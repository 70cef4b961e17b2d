package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/factorlab/internal/catalog"
)

// catalogCmd manages the factor catalog
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and manage the factor catalog",
	Long: `Lists, shows and removes cataloged factors.

Subcommands:
  list    - all admitted factors
  show    - one factor's metrics snapshot
  remove  - drop a factor from the catalog

Example:
  go run ./cmd/factorlab catalog list
  go run ./cmd/factorlab catalog show momentum_20
  go run ./cmd/factorlab catalog remove momentum_20`,
}

var (
	catalogListCmd = &cobra.Command{
		Use:   "list",
		Short: "List admitted factors",
		RunE:  runCatalogList,
	}

	catalogShowCmd = &cobra.Command{
		Use:   "show [factor_name]",
		Short: "Show one catalog entry",
		Args:  cobra.ExactArgs(1),
		RunE:  runCatalogShow,
	}

	catalogRemoveCmd = &cobra.Command{
		Use:   "remove [factor_name]",
		Short: "Remove a factor from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE:  runCatalogRemove,
	}
)

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogRemoveCmd)
}

func openCatalogService() (*catalog.Service, func(), error) {
	cfg, log, err := initRuntime()
	if err != nil {
		return nil, nil, err
	}
	rc, err := loadRunConfig(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	store, cleanup, err := openCatalogStore(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	svc, err := catalog.NewService(store, rc.Admission, log)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return svc, cleanup, nil
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	svc, cleanup, err := openCatalogService()
	if err != nil {
		return err
	}
	defer cleanup()

	entries, err := svc.List(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("\n=== Catalog (%d) ===\n", len(entries))
	for _, e := range entries {
		fmt.Printf("  %-20s v%-8s horizon=%dd source=%-6s admitted=%s\n",
			e.FactorName, e.Version, e.Horizon, e.Source, e.AdmittedAt.Format("2006-01-02"))
	}
	fmt.Println()
	return nil
}

func runCatalogShow(cmd *cobra.Command, args []string) error {
	svc, cleanup, err := openCatalogService()
	if err != nil {
		return err
	}
	defer cleanup()

	entry, err := svc.Get(context.Background(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("\n=== %s ===\n", entry.FactorName)
	fmt.Printf("version:  %s\n", entry.Version)
	fmt.Printf("evaluator: %s\n", entry.Evaluator)
	fmt.Printf("horizon:  %dd\n", entry.Horizon)
	fmt.Printf("source:   %s\n", entry.Source)
	fmt.Printf("admitted: %s\n", entry.AdmittedAt.Format("2006-01-02 15:04:05"))
	fmt.Println("metrics:")
	for name, v := range entry.Metrics {
		fmt.Printf("  %-20s %+.4f\n", name, v)
	}
	fmt.Println()
	return nil
}

func runCatalogRemove(cmd *cobra.Command, args []string) error {
	svc, cleanup, err := openCatalogService()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := svc.Remove(context.Background(), args[0]); err != nil {
		return err
	}
	fmt.Printf("removed %s from catalog\n", args[0])
	return nil
}
