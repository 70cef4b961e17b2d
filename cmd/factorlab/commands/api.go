package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/factorlab/internal/api"
	"github.com/wonny/factorlab/internal/api/handlers"
	"github.com/wonny/factorlab/internal/catalog"
	"github.com/wonny/factorlab/internal/evaluation"
	"github.com/wonny/factorlab/internal/factors"
)

// apiCmd starts the HTTP API server
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server.

Endpoints:
  GET    /health               - Health check
  GET    /api/catalog          - List admitted factors
  GET    /api/catalog/{name}   - One catalog entry
  DELETE /api/catalog/{name}   - Remove a catalog entry
  GET    /api/factors          - Registered factor definitions
  POST   /api/evaluate         - Evaluate one factor on demand

Example:
  go run ./cmd/factorlab api
  go run ./cmd/factorlab api --port 8090`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	cfg, log, err := initRuntime()
	if err != nil {
		return err
	}
	if apiPort != "" {
		cfg.Port = apiPort
	}
	rc, err := loadRunConfig(cfg, log)
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

	registry := factors.Builtins()
	engine := evaluation.NewEngine(log)

	catalogHandler := handlers.NewCatalogHandler(svc, log)
	evalHandler := handlers.NewEvalHandler(rc, registry, engine, loader, log)
	router := api.NewRouter(catalogHandler, evalHandler, log)

	server := api.New(cfg, log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
