// Package ingest fetches daily bars from the configured source and merges
// them into stored series.
package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/stockline/internal/common"
	"github.com/bobmcallan/stockline/internal/interfaces"
	"github.com/bobmcallan/stockline/internal/models"
)

// Service implements interfaces.IngestService.
type Service struct {
	source      interfaces.BarSource
	storage     interfaces.StorageManager
	logger      *common.Logger
	lookback    time.Duration
	concurrency int
}

// Compile-time interface check
var _ interfaces.IngestService = (*Service)(nil)

// NewService creates the ingest service.
func NewService(source interfaces.BarSource, storage interfaces.StorageManager, logger *common.Logger, cfg common.IngestConfig) *Service {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Service{
		source:      source,
		storage:     storage,
		logger:      logger,
		lookback:    time.Duration(cfg.InitialLookbackDays) * 24 * time.Hour,
		concurrency: concurrency,
	}
}

// UpdateSeries fetches everything after the last stored date and merges it.
// A ticker with no stored series starts from the configured lookback. The
// stored series is left untouched when the fetch fails; zero fetched rows
// reports updated=false without an error.
func (s *Service) UpdateSeries(ctx context.Context, ticker string) (bool, error) {
	ticker = models.NormalizeTicker(ticker)
	series := s.storage.SeriesStorage()

	from := time.Now().Add(-s.lookback)
	last, ok, err := series.LastDate(ctx, ticker)
	if err != nil {
		return false, err
	}
	if ok {
		from = last.AddDate(0, 0, 1)
	}
	to := time.Now()

	if from.After(to) {
		s.logger.Debug().Str("ticker", ticker).Msg("Series already current")
		return false, nil
	}

	bars, err := s.source.FetchRange(ctx, ticker, from, to)
	if err != nil {
		return false, err
	}
	if len(bars) == 0 {
		s.logger.Debug().Str("ticker", ticker).Msg("No new bars")
		return false, nil
	}

	merged, err := series.Merge(ctx, ticker, bars)
	if err != nil {
		return false, err
	}

	s.logger.Info().
		Str("ticker", ticker).
		Str("source", s.source.Name()).
		Int("new_bars", len(bars)).
		Int("total_bars", merged.Len()).
		Msg("Series updated")

	return true, nil
}

// UpdateWatchlist updates every ticker through a bounded worker pool. One
// ticker failing never stops the others; the result maps each ticker to nil
// or the error that stopped it.
func (s *Service) UpdateWatchlist(ctx context.Context, tickers []string) map[string]error {
	runID := uuid.New().String()[:8]
	log := s.logger.With().Str("run_id", runID).Logger()

	log.Info().Int("tickers", len(tickers)).Msg("Watchlist update started")

	results := make(map[string]error, len(tickers))
	var mu sync.Mutex
	var wg sync.WaitGroup

	sem := make(chan struct{}, s.concurrency)
	for _, ticker := range tickers {
		ticker := models.NormalizeTicker(ticker)
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			_, err := s.UpdateSeries(ctx, ticker)
			if err != nil {
				log.Warn().Str("ticker", ticker).Err(err).Msg("Ticker update failed")
			}

			mu.Lock()
			results[ticker] = err
			mu.Unlock()
		}()
	}
	wg.Wait()

	failed := 0
	for _, err := range results {
		if err != nil {
			failed++
		}
	}
	log.Info().Int("ok", len(results)-failed).Int("failed", failed).Msg("Watchlist update finished")

	return results
}
