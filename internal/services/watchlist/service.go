// Package watchlist manages the tracked ticker set and its key levels.
package watchlist

import (
	"context"
	"fmt"

	"github.com/bobmcallan/stockline/internal/common"
	"github.com/bobmcallan/stockline/internal/interfaces"
	"github.com/bobmcallan/stockline/internal/models"
)

// Service implements interfaces.WatchlistService.
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
}

// Compile-time interface check
var _ interfaces.WatchlistService = (*Service)(nil)

// NewService creates the watchlist service.
func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{storage: storage, logger: logger}
}

// Get returns the current watchlist.
func (s *Service) Get(ctx context.Context) (*models.Watchlist, error) {
	return s.storage.WatchlistStorage().Get(ctx)
}

// Add inserts a ticker. Adding a ticker that is already tracked is a no-op.
func (s *Service) Add(ctx context.Context, ticker string) (*models.Watchlist, error) {
	ticker = models.NormalizeTicker(ticker)
	if ticker == "" {
		return nil, fmt.Errorf("empty ticker")
	}

	wl, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	if !wl.Add(ticker) {
		s.logger.Debug().Str("ticker", ticker).Msg("Ticker already tracked")
		return wl, nil
	}

	if err := s.storage.WatchlistStorage().Save(ctx, wl); err != nil {
		return nil, err
	}

	s.logger.Info().Str("ticker", ticker).Int("tickers", len(wl.Tickers)).Msg("Ticker added")
	return wl, nil
}

// Remove deletes a ticker, its key levels, and the stored series.
func (s *Service) Remove(ctx context.Context, ticker string) (*models.Watchlist, error) {
	ticker = models.NormalizeTicker(ticker)

	wl, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	if !wl.Remove(ticker) {
		return wl, fmt.Errorf("ticker %s is not tracked", ticker)
	}

	if err := s.storage.WatchlistStorage().Save(ctx, wl); err != nil {
		return nil, err
	}
	if err := s.storage.SeriesStorage().Reset(ctx, ticker); err != nil {
		return nil, fmt.Errorf("failed to remove series for %s: %w", ticker, err)
	}

	s.logger.Info().Str("ticker", ticker).Msg("Ticker removed")
	return wl, nil
}

// SetKeyLevels stores manual support/resistance levels for a tracked ticker.
func (s *Service) SetKeyLevels(ctx context.Context, ticker string, levels models.KeyLevels) error {
	ticker = models.NormalizeTicker(ticker)

	wl, err := s.Get(ctx)
	if err != nil {
		return err
	}
	if !wl.Contains(ticker) {
		return fmt.Errorf("ticker %s is not tracked", ticker)
	}

	if wl.KeyLevels == nil {
		wl.KeyLevels = map[string]models.KeyLevels{}
	}
	wl.KeyLevels[ticker] = levels

	if err := s.storage.WatchlistStorage().Save(ctx, wl); err != nil {
		return err
	}

	s.logger.Info().
		Str("ticker", ticker).
		Int("support", len(levels.Support)).
		Int("resistance", len(levels.Resistance)).
		Msg("Key levels set")
	return nil
}
