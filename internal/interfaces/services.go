package interfaces

import (
	"context"

	"github.com/bobmcallan/stockline/internal/models"
)

// IngestService fetches new bars and merges them into stored series.
type IngestService interface {
	// UpdateSeries fetches bars after the last stored date (or the configured
	// initial lookback for a new ticker) and merges them. Returns false when
	// the fetch yielded zero new rows; that is a normal outcome, not an error.
	UpdateSeries(ctx context.Context, ticker string) (bool, error)

	// UpdateWatchlist updates every ticker, isolating per-ticker failures.
	// The result maps ticker to nil on success or the error that stopped it.
	UpdateWatchlist(ctx context.Context, tickers []string) map[string]error
}

// AnalysisService derives indicators and scores from stored series.
type AnalysisService interface {
	// AnalyzeTicker loads the series, computes indicators, applies manual
	// key-level overrides, and scores the result.
	AnalyzeTicker(ctx context.Context, ticker string) (*models.TickerAnalysis, error)

	// AnalyzeWatchlist analyzes every ticker, isolating per-ticker failures,
	// and returns results sorted by score descending.
	AnalyzeWatchlist(ctx context.Context, tickers []string) ([]*models.TickerAnalysis, map[string]error)
}

// WatchlistService manages the tracked ticker set.
type WatchlistService interface {
	Get(ctx context.Context) (*models.Watchlist, error)
	Add(ctx context.Context, ticker string) (*models.Watchlist, error)
	Remove(ctx context.Context, ticker string) (*models.Watchlist, error)
	SetKeyLevels(ctx context.Context, ticker string, levels models.KeyLevels) error
}

// ReportService renders analysis results.
type ReportService interface {
	// Generate writes the markdown report (and charts when enabled) and
	// returns the report file path.
	Generate(ctx context.Context, results []*models.TickerAnalysis) (string, error)
}
