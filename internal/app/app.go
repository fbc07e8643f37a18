// Package app wires configuration, storage, clients, and services into the
// shared core used by the stockline command.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/stockline/internal/clients/moex"
	"github.com/bobmcallan/stockline/internal/common"
	"github.com/bobmcallan/stockline/internal/interfaces"
	"github.com/bobmcallan/stockline/internal/services/analysis"
	"github.com/bobmcallan/stockline/internal/services/ingest"
	"github.com/bobmcallan/stockline/internal/services/report"
	"github.com/bobmcallan/stockline/internal/services/watchlist"
	"github.com/bobmcallan/stockline/internal/storage"
)

// App holds all initialized services, clients, and storage.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Storage          interfaces.StorageManager
	MOEXClient       interfaces.BarSource
	IngestService    interfaces.IngestService
	AnalysisService  interfaces.AnalysisService
	WatchlistService interfaces.WatchlistService
	ReportService    interfaces.ReportService
	StartupTime      time.Time
}

// NewApp initializes all services, clients, and storage.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	if configPath == "" {
		configPath = os.Getenv("STOCKLINE_CONFIG")
	}
	if configPath == "" {
		configPath = "stockline.toml"
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = filepath.Join("config", "stockline.toml")
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	storageManager, err := storage.NewStorageManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	moexClient := moex.NewClient(
		moex.WithBaseURL(config.Clients.MOEX.BaseURL),
		moex.WithLogger(logger),
		moex.WithRateLimit(config.Clients.MOEX.RateLimit),
		moex.WithTimeout(config.Clients.MOEX.GetTimeout()),
		moex.WithPageSize(config.Clients.MOEX.PageSize),
		moex.WithRetries(config.Clients.MOEX.Retries),
	)

	app := &App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		MOEXClient:       moexClient,
		IngestService:    ingest.NewService(moexClient, storageManager, logger, config.Ingest),
		AnalysisService:  analysis.NewService(storageManager, logger, config.Analysis),
		WatchlistService: watchlist.NewService(storageManager, logger),
		ReportService:    report.NewService(storageManager, logger, config.Report),
		StartupTime:      time.Now(),
	}

	logger.Debug().
		Str("version", common.GetVersion()).
		Str("environment", config.Environment).
		Str("data_path", storageManager.DataPath()).
		Msg("Application initialized")

	return app, nil
}

// Close releases storage resources.
func (a *App) Close() error {
	if a.Storage != nil {
		return a.Storage.Close()
	}
	return nil
}
