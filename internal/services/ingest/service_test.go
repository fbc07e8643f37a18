package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stockline/internal/common"
	"github.com/bobmcallan/stockline/internal/interfaces"
	"github.com/bobmcallan/stockline/internal/models"
	"github.com/bobmcallan/stockline/internal/storage"
)

// fakeSource scripts per-ticker responses and records the requested windows.
type fakeSource struct {
	mu    sync.Mutex
	bars  map[string][]models.Bar
	fails map[string]error
	calls []fetchCall
}

type fetchCall struct {
	ticker string
	from   time.Time
	to     time.Time
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		bars:  map[string][]models.Bar{},
		fails: map[string]error{},
	}
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) FetchRange(_ context.Context, ticker string, from, to time.Time) ([]models.Bar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fetchCall{ticker: ticker, from: from, to: to})
	if err, ok := f.fails[ticker]; ok {
		return nil, err
	}
	var inRange []models.Bar
	for _, b := range f.bars[ticker] {
		if b.Date.Before(from) || b.Date.After(to) {
			continue
		}
		inRange = append(inRange, b)
	}
	return inRange, nil
}

var _ interfaces.BarSource = (*fakeSource)(nil)

func newTestStorage(t *testing.T) interfaces.StorageManager {
	t.Helper()
	cfg := common.NewDefaultConfig()
	cfg.Storage.Path = t.TempDir()
	manager, err := storage.NewStorageManager(common.NewSilentLogger(), cfg)
	require.NoError(t, err)
	return manager
}

func newTestService(source interfaces.BarSource, store interfaces.StorageManager, concurrency int) *Service {
	return NewService(source, store, common.NewSilentLogger(), common.IngestConfig{
		InitialLookbackDays: 365,
		Concurrency:         concurrency,
	})
}

func barsBackFrom(now time.Time, n int) []models.Bar {
	bars := make([]models.Bar, n)
	for i := range bars {
		date := now.AddDate(0, 0, -(n - 1 - i))
		bars[i] = models.Bar{
			Date: date, Open: 99, High: 101, Low: 98, Close: 100 + float64(i), Volume: 1000,
		}
	}
	return bars
}

func TestUpdateSeries_InitialFetchUsesLookback(t *testing.T) {
	store := newTestStorage(t)
	source := newFakeSource()
	now := time.Now().Truncate(24 * time.Hour)
	source.bars["SBER"] = barsBackFrom(now, 30)

	svc := newTestService(source, store, 1)
	updated, err := svc.UpdateSeries(context.Background(), "sber")
	require.NoError(t, err)
	assert.True(t, updated)

	require.Len(t, source.calls, 1)
	call := source.calls[0]
	assert.Equal(t, "SBER", call.ticker)
	// Roughly a year back for a ticker with no stored series.
	assert.WithinDuration(t, now.AddDate(0, 0, -365), call.from, 24*time.Hour)

	series, err := store.SeriesStorage().Load(context.Background(), "SBER")
	require.NoError(t, err)
	assert.Equal(t, 30, series.Len())
}

func TestUpdateSeries_IncrementalFetchStartsAfterLastDate(t *testing.T) {
	store := newTestStorage(t)
	source := newFakeSource()
	// Stored history ends a few days ago so the second update has a window
	// left to request.
	now := time.Now().Truncate(24 * time.Hour)
	source.bars["SBER"] = barsBackFrom(now.AddDate(0, 0, -3), 30)

	svc := newTestService(source, store, 1)
	ctx := context.Background()

	_, err := svc.UpdateSeries(ctx, "SBER")
	require.NoError(t, err)

	last, ok, err := store.SeriesStorage().LastDate(ctx, "SBER")
	require.NoError(t, err)
	require.True(t, ok)

	_, err = svc.UpdateSeries(ctx, "SBER")
	require.NoError(t, err)

	require.Len(t, source.calls, 2)
	second := source.calls[1]
	assert.Equal(t, last.AddDate(0, 0, 1).Format("2006-01-02"), second.from.Format("2006-01-02"))
}

func TestUpdateSeries_NoNewRowsIsNotAnError(t *testing.T) {
	store := newTestStorage(t)
	source := newFakeSource()

	svc := newTestService(source, store, 1)
	updated, err := svc.UpdateSeries(context.Background(), "GAZP")
	require.NoError(t, err)
	assert.False(t, updated)

	// Nothing fetched, nothing persisted.
	_, err = store.SeriesStorage().Load(context.Background(), "GAZP")
	assert.ErrorIs(t, err, models.ErrNoData)
}

func TestUpdateSeries_ZeroRowsLeavesFileByteIdentical(t *testing.T) {
	store := newTestStorage(t)
	source := newFakeSource()
	now := time.Now().Truncate(24 * time.Hour)
	source.bars["SBER"] = barsBackFrom(now.AddDate(0, 0, -5), 10)

	svc := newTestService(source, store, 1)
	ctx := context.Background()

	_, err := svc.UpdateSeries(ctx, "SBER")
	require.NoError(t, err)

	path := filepath.Join(store.DataPath(), "series", "SBER.csv")
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	// Nothing newer upstream: the update reports false and never rewrites.
	updated, err := svc.UpdateSeries(ctx, "SBER")
	require.NoError(t, err)
	assert.False(t, updated)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestUpdateSeries_FetchFailureLeavesStoredSeriesIntact(t *testing.T) {
	store := newTestStorage(t)
	source := newFakeSource()
	now := time.Now().Truncate(24 * time.Hour)
	source.bars["SBER"] = barsBackFrom(now.AddDate(0, 0, -5), 10)

	svc := newTestService(source, store, 1)
	ctx := context.Background()

	_, err := svc.UpdateSeries(ctx, "SBER")
	require.NoError(t, err)
	before, err := store.SeriesStorage().Load(ctx, "SBER")
	require.NoError(t, err)

	source.fails["SBER"] = errors.New("network down")
	updated, err := svc.UpdateSeries(ctx, "SBER")
	require.Error(t, err)
	assert.False(t, updated)

	after, err := store.SeriesStorage().Load(ctx, "SBER")
	require.NoError(t, err)
	assert.Equal(t, before.Bars, after.Bars)
}

func TestUpdateWatchlist_IsolatesFailures(t *testing.T) {
	store := newTestStorage(t)
	source := newFakeSource()
	now := time.Now().Truncate(24 * time.Hour)
	source.bars["SBER"] = barsBackFrom(now, 5)
	source.bars["LKOH"] = barsBackFrom(now, 5)
	source.fails["GAZP"] = errors.New("boom")

	svc := newTestService(source, store, 2)
	results := svc.UpdateWatchlist(context.Background(), []string{"SBER", "GAZP", "LKOH"})

	require.Len(t, results, 3)
	assert.NoError(t, results["SBER"])
	assert.NoError(t, results["LKOH"])
	assert.Error(t, results["GAZP"])

	// The failing ticker never blocks the others.
	_, err := store.SeriesStorage().Load(context.Background(), "LKOH")
	assert.NoError(t, err)
}
