package seriesfs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stockline/internal/common"
	"github.com/bobmcallan/stockline/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(common.NewSilentLogger(), t.TempDir())
	require.NoError(t, err)
	return store
}

func day(offset int) time.Time {
	return time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func bar(offset int, close float64, volume int64) models.Bar {
	return models.Bar{
		Date:   day(offset),
		Open:   close - 1,
		High:   close + 1,
		Low:    close - 2,
		Close:  close,
		Volume: volume,
	}
}

func TestSeries_LoadMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.SeriesStorage().Load(context.Background(), "SBER")
	assert.ErrorIs(t, err, models.ErrNoData)
}

func TestSeries_MergeRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	bars := []models.Bar{bar(0, 100, 1000), bar(1, 101, 1100), bar(2, 102, 1200)}

	merged, err := store.SeriesStorage().Merge(ctx, "sber", bars)
	require.NoError(t, err)
	assert.Equal(t, 3, merged.Len())

	loaded, err := store.SeriesStorage().Load(ctx, "SBER")
	require.NoError(t, err)
	assert.Equal(t, "SBER", loaded.Ticker)
	assert.Equal(t, merged.Bars, loaded.Bars)
}

func TestSeries_MergeIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	bars := []models.Bar{bar(0, 100, 1000), bar(1, 101, 1100)}

	first, err := store.SeriesStorage().Merge(ctx, "GAZP", bars)
	require.NoError(t, err)
	second, err := store.SeriesStorage().Merge(ctx, "GAZP", bars)
	require.NoError(t, err)

	assert.Equal(t, first.Bars, second.Bars)
}

func TestSeries_MergeNewBarWinsCollision(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.SeriesStorage().Merge(ctx, "LKOH", []models.Bar{bar(0, 100, 1000)})
	require.NoError(t, err)

	// Same date, corrected close.
	merged, err := store.SeriesStorage().Merge(ctx, "LKOH", []models.Bar{bar(0, 250, 9000)})
	require.NoError(t, err)

	require.Equal(t, 1, merged.Len())
	assert.Equal(t, 250.0, merged.Bars[0].Close)
	assert.Equal(t, int64(9000), merged.Bars[0].Volume)
}

func TestSeries_MergeIsOrderIndependent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	older := []models.Bar{bar(0, 100, 1000), bar(1, 101, 1100)}
	newer := []models.Bar{bar(5, 105, 1500), bar(6, 106, 1600)}

	_, err := store.SeriesStorage().Merge(ctx, "A", older)
	require.NoError(t, err)
	fromOlderFirst, err := store.SeriesStorage().Merge(ctx, "A", newer)
	require.NoError(t, err)

	_, err = store.SeriesStorage().Merge(ctx, "B", newer)
	require.NoError(t, err)
	fromNewerFirst, err := store.SeriesStorage().Merge(ctx, "B", older)
	require.NoError(t, err)

	assert.Equal(t, fromOlderFirst.Bars, fromNewerFirst.Bars)
}

func TestSeries_MergeKeepsAscendingOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Out-of-order input still persists sorted.
	merged, err := store.SeriesStorage().Merge(ctx, "ROSN", []models.Bar{
		bar(4, 104, 1400), bar(1, 101, 1100), bar(2, 102, 1200),
	})
	require.NoError(t, err)

	require.NoError(t, merged.Validate())
	assert.Equal(t, day(1), merged.FirstDate())
	assert.Equal(t, day(4), merged.LastDate())
}

func TestSeries_CorruptFileLeftUntouchedByMerge(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	path := filepath.Join(store.seriesDir, "BAD.csv")
	garbage := []byte("DATE,OPEN,HIGH,LOW,CLOSE,VOLUME\nnot-a-date,1,2,0,1,100\n")
	require.NoError(t, os.WriteFile(path, garbage, 0o644))

	_, err := store.SeriesStorage().Merge(ctx, "BAD", []models.Bar{bar(0, 100, 1000)})
	var corrupt *models.CorruptDataError
	require.ErrorAs(t, err, &corrupt)

	// The failed merge must not have rewritten the file.
	after, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, garbage, after)
}

func TestSeries_LoadRejectsMissingHeader(t *testing.T) {
	store := newTestStore(t)

	path := filepath.Join(store.seriesDir, "NOHDR.csv")
	require.NoError(t, os.WriteFile(path, []byte("2025-03-03,99,101,98,100,1000\n"), 0o644))

	_, err := store.SeriesStorage().Load(context.Background(), "NOHDR")
	var corrupt *models.CorruptDataError
	require.ErrorAs(t, err, &corrupt)
	assert.Contains(t, corrupt.Reason, "header")
}

func TestSeries_LastDate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, ok, err := store.SeriesStorage().LastDate(ctx, "NONE")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.SeriesStorage().Merge(ctx, "SBER", []models.Bar{bar(0, 100, 1000), bar(3, 103, 1300)})
	require.NoError(t, err)

	last, ok, err := store.SeriesStorage().LastDate(ctx, "SBER")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, day(3), last)
}

func TestSeries_ResetAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.SeriesStorage().Merge(ctx, "GAZP", []models.Bar{bar(0, 100, 1000)})
	require.NoError(t, err)
	_, err = store.SeriesStorage().Merge(ctx, "SBER", []models.Bar{bar(0, 200, 2000)})
	require.NoError(t, err)

	tickers, err := store.SeriesStorage().List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"GAZP", "SBER"}, tickers)

	require.NoError(t, store.SeriesStorage().Reset(ctx, "GAZP"))
	// Resetting twice is fine.
	require.NoError(t, store.SeriesStorage().Reset(ctx, "GAZP"))

	tickers, err = store.SeriesStorage().List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"SBER"}, tickers)

	_, err = store.SeriesStorage().Load(ctx, "GAZP")
	assert.ErrorIs(t, err, models.ErrNoData)
}

func TestSeries_PricePrecisionSurvivesRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	in := bar(0, 123.4567, 1000)
	in.Open = 0.0001

	_, err := store.SeriesStorage().Merge(ctx, "PREC", []models.Bar{in})
	require.NoError(t, err)

	loaded, err := store.SeriesStorage().Load(ctx, "PREC")
	require.NoError(t, err)
	require.Equal(t, 1, loaded.Len())
	assert.Equal(t, 123.4567, loaded.Bars[0].Close)
	assert.Equal(t, 0.0001, loaded.Bars[0].Open)
}
