// Package analysis computes indicators and scores for stored series.
package analysis

import (
	"context"
	"sort"

	"github.com/bobmcallan/stockline/internal/common"
	"github.com/bobmcallan/stockline/internal/indicators"
	"github.com/bobmcallan/stockline/internal/interfaces"
	"github.com/bobmcallan/stockline/internal/models"
	"github.com/bobmcallan/stockline/internal/scoring"
)

// Service implements interfaces.AnalysisService.
type Service struct {
	storage  interfaces.StorageManager
	logger   *common.Logger
	computer *indicators.Computer
	scorer   *scoring.Engine
}

// Compile-time interface check
var _ interfaces.AnalysisService = (*Service)(nil)

// NewService creates the analysis service.
func NewService(storage interfaces.StorageManager, logger *common.Logger, cfg common.AnalysisConfig) *Service {
	return &Service{
		storage:  storage,
		logger:   logger,
		computer: indicators.NewComputer(cfg),
		scorer:   scoring.NewEngine(),
	}
}

// AnalyzeTicker loads the stored series, computes the indicator set, and
// scores it. Manually configured key levels replace the computed
// support/resistance pair in the displayed outcome only.
func (s *Service) AnalyzeTicker(ctx context.Context, ticker string) (*models.TickerAnalysis, error) {
	ticker = models.NormalizeTicker(ticker)

	series, err := s.storage.SeriesStorage().Load(ctx, ticker)
	if err != nil {
		return nil, err
	}

	result, err := s.computer.Compute(series)
	if err != nil {
		return nil, err
	}

	manual, err := s.manualLevels(ctx, ticker)
	if err != nil {
		return nil, err
	}

	score := s.scorer.Score(result, manual)
	if score.Levels.Manual {
		result.Levels = score.Levels
	}

	s.logger.Debug().
		Str("ticker", ticker).
		Int("score", score.Score).
		Str("signal", string(score.Signal)).
		Int("conditions", len(result.Conditions)).
		Msg("Ticker analyzed")

	return &models.TickerAnalysis{
		Ticker:     ticker,
		Indicators: *result,
		Score:      score,
	}, nil
}

// AnalyzeWatchlist analyzes every ticker, isolating failures, and returns
// results sorted by score descending with ticker as the tie-break.
func (s *Service) AnalyzeWatchlist(ctx context.Context, tickers []string) ([]*models.TickerAnalysis, map[string]error) {
	results := make([]*models.TickerAnalysis, 0, len(tickers))
	failures := make(map[string]error)

	for _, ticker := range tickers {
		ticker = models.NormalizeTicker(ticker)
		analysis, err := s.AnalyzeTicker(ctx, ticker)
		if err != nil {
			s.logger.Warn().Str("ticker", ticker).Err(err).Msg("Analysis failed")
			failures[ticker] = err
			continue
		}
		results = append(results, analysis)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score.Score != results[j].Score.Score {
			return results[i].Score.Score > results[j].Score.Score
		}
		return results[i].Ticker < results[j].Ticker
	})

	return results, failures
}

// manualLevels loads the watchlist entry for a ticker, if any.
func (s *Service) manualLevels(ctx context.Context, ticker string) (*models.KeyLevels, error) {
	wl, err := s.storage.WatchlistStorage().Get(ctx)
	if err != nil {
		return nil, err
	}
	return wl.Levels(ticker), nil
}
