package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/wonny/factorlab/internal/catalog"
	"github.com/wonny/factorlab/internal/dataset"
	"github.com/wonny/factorlab/internal/evalconfig"
	"github.com/wonny/factorlab/pkg/config"
	"github.com/wonny/factorlab/pkg/database"
	"github.com/wonny/factorlab/pkg/logger"
)

// initRuntime loads configuration and the logger, the first step of every
// command
func initRuntime() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, logger.New(cfg), nil
}

// loadRunConfig reads the YAML run config; a missing file falls back to the
// built-in defaults
func loadRunConfig(cfg *config.Config, log *logger.Logger) (*evalconfig.Config, error) {
	rc, _, err := evalconfig.Load(cfg.Eval.ConfigPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.WithField("path", cfg.Eval.ConfigPath).Warn("run config not found, using defaults")
			return evalconfig.Default(), nil
		}
		return nil, fmt.Errorf("load run config %s: %w", cfg.Eval.ConfigPath, err)
	}

	hash, err := evalconfig.Hash(rc)
	if err != nil {
		return nil, err
	}
	log.WithFields(map[string]interface{}{
		"run_id":      rc.Meta.RunID,
		"config_hash": hash[:12],
	}).Info("Run config loaded")
	return rc, nil
}

// panelLoader supplies the daily price panel for a date range
type panelLoader interface {
	LoadPanel(ctx context.Context, from, to time.Time) (*dataset.Frame, error)
}

// csvLoader reads the panel from a local CSV file
type csvLoader struct {
	path string
}

func (l csvLoader) LoadPanel(_ context.Context, from, to time.Time) (*dataset.Frame, error) {
	return dataset.LoadCSV(l.path, from, to)
}

// openPanelSource wires the configured panel source. The cleanup function
// must run when the command finishes.
func openPanelSource(cfg *config.Config) (panelLoader, func(), error) {
	switch cfg.Data.Source {
	case "postgres":
		db, err := database.New(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		return dataset.NewPriceRepository(db.Pool), db.Close, nil
	default:
		return csvLoader{path: cfg.Data.CSVPath}, func() {}, nil
	}
}

// openCatalogStore wires the catalog store: Postgres when a database URL is
// configured, in-memory otherwise
func openCatalogStore(cfg *config.Config, log *logger.Logger) (catalog.Store, func(), error) {
	if cfg.Database.URL != "" {
		db, err := database.New(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		return catalog.NewPostgresStore(db), db.Close, nil
	}

	log.Warn("DATABASE_URL not set, catalog entries will not survive this process")
	return catalog.NewMemoryStore(), func() {}, nil
}
