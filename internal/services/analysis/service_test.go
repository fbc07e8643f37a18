package analysis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stockline/internal/common"
	"github.com/bobmcallan/stockline/internal/interfaces"
	"github.com/bobmcallan/stockline/internal/models"
	"github.com/bobmcallan/stockline/internal/storage"
)

func newTestStorage(t *testing.T) interfaces.StorageManager {
	t.Helper()
	cfg := common.NewDefaultConfig()
	cfg.Storage.Path = t.TempDir()
	manager, err := storage.NewStorageManager(common.NewSilentLogger(), cfg)
	require.NoError(t, err)
	return manager
}

func newTestService(store interfaces.StorageManager) *Service {
	return NewService(store, common.NewSilentLogger(), common.NewDefaultConfig().Analysis)
}

func seedSeries(t *testing.T, store interfaces.StorageManager, ticker string, n int, step float64) {
	t.Helper()
	base := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, n)
	for i := range bars {
		close := 100 + step*float64(i)
		bars[i] = models.Bar{
			Date:   base.AddDate(0, 0, i),
			Open:   close - 0.2,
			High:   close + 0.5,
			Low:    close - 0.5,
			Close:  close,
			Volume: int64(1000 + 10*i),
		}
	}
	_, err := store.SeriesStorage().Merge(context.Background(), ticker, bars)
	require.NoError(t, err)
}

func TestAnalyzeTicker_RisingSeriesScoresHold(t *testing.T) {
	store := newTestStorage(t)
	seedSeries(t, store, "SBER", 300, 0.5)

	svc := newTestService(store)
	analysis, err := svc.AnalyzeTicker(context.Background(), "sber")
	require.NoError(t, err)

	// Uptrend +40, overbought RSI -30, above both EMAs +20, rising volume +10.
	assert.Equal(t, 40, analysis.Score.Score)
	assert.Equal(t, models.SignalHold, analysis.Score.Signal)
	assert.Equal(t, models.TrendUp, analysis.Indicators.Trend.Direction)

	// The exact factor composition, in weight-table order.
	assert.Equal(t, []models.Factor{
		{Label: "uptrend", Weight: 40},
		{Label: "RSI overbought", Weight: -30},
		{Label: "price above EMA20 above EMA50", Weight: 20},
		{Label: "rising volume", Weight: 10},
	}, analysis.Score.Factors)
}

func TestAnalyzeTicker_MissingSeries(t *testing.T) {
	svc := newTestService(newTestStorage(t))

	_, err := svc.AnalyzeTicker(context.Background(), "NONE")
	assert.ErrorIs(t, err, models.ErrNoData)
}

func TestAnalyzeTicker_ManualLevelsReplaceDisplay(t *testing.T) {
	store := newTestStorage(t)
	seedSeries(t, store, "SBER", 300, 0.5)

	ctx := context.Background()
	wl := &models.Watchlist{
		Tickers: []string{"SBER"},
		KeyLevels: map[string]models.KeyLevels{
			"SBER": {Support: []float64{200, 210}, Resistance: []float64{260}},
		},
	}
	require.NoError(t, store.WatchlistStorage().Save(ctx, wl))

	svc := newTestService(store)
	withOverride, err := svc.AnalyzeTicker(ctx, "SBER")
	require.NoError(t, err)

	assert.True(t, withOverride.Indicators.Levels.Manual)
	assert.Equal(t, 205.0, withOverride.Indicators.Levels.Support)
	assert.Equal(t, 260.0, withOverride.Indicators.Levels.Resistance)

	// The override shifts displayed levels, never the score.
	require.NoError(t, store.WatchlistStorage().Save(ctx, &models.Watchlist{Tickers: []string{"SBER"}}))
	withoutOverride, err := svc.AnalyzeTicker(ctx, "SBER")
	require.NoError(t, err)
	assert.Equal(t, withoutOverride.Score.Score, withOverride.Score.Score)
	assert.False(t, withoutOverride.Indicators.Levels.Manual)
}

func TestAnalyzeWatchlist_SortsByScoreAndIsolatesFailures(t *testing.T) {
	store := newTestStorage(t)
	seedSeries(t, store, "RISE", 300, 0.5)
	seedSeries(t, store, "FALL", 300, -0.2)

	svc := newTestService(store)
	results, failures := svc.AnalyzeWatchlist(context.Background(), []string{"FALL", "MISSING", "RISE"})

	require.Len(t, results, 2)
	assert.Equal(t, "RISE", results[0].Ticker)
	assert.Equal(t, "FALL", results[1].Ticker)
	assert.GreaterOrEqual(t, results[0].Score.Score, results[1].Score.Score)

	require.Len(t, failures, 1)
	assert.Error(t, failures["MISSING"])
}
