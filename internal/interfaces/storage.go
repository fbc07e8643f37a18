package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/stockline/internal/models"
)

// StorageManager coordinates all storage areas.
type StorageManager interface {
	SeriesStorage() SeriesStorage
	WatchlistStorage() WatchlistStorage

	// DataPath returns the base data directory path.
	DataPath() string

	// WriteRaw writes arbitrary binary data to a subdirectory atomically.
	// Key is sanitized for safe filenames (e.g. "SBER.png").
	WriteRaw(subdir, key string, data []byte) error

	Close() error
}

// SeriesStorage handles per-ticker bar series persistence.
type SeriesStorage interface {
	// Load reads the persisted series. Returns models.ErrNoData when no file
	// exists, and a models.CorruptDataError when the stored rows violate the
	// date-ordering invariant.
	Load(ctx context.Context, ticker string) (*models.Series, error)

	// Merge combines new bars with the existing series: union by date with
	// the new bar winning collisions, re-sorted ascending, persisted
	// atomically. Merge is commutative and idempotent.
	Merge(ctx context.Context, ticker string, bars []models.Bar) (*models.Series, error)

	// LastDate returns the most recent stored date for a ticker.
	// ok is false for an empty or nonexistent series.
	LastDate(ctx context.Context, ticker string) (last time.Time, ok bool, err error)

	// Reset deletes the persisted series so it can be rebuilt from scratch.
	Reset(ctx context.Context, ticker string) error

	// List returns the tickers that have a stored series.
	List(ctx context.Context) ([]string, error)
}

// WatchlistStorage persists the watchlist and its manual key levels.
type WatchlistStorage interface {
	// Get returns the stored watchlist, or an empty one when none exists.
	Get(ctx context.Context) (*models.Watchlist, error)

	Save(ctx context.Context, watchlist *models.Watchlist) error
}
