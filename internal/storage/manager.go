// Package storage wires the concrete storage backends behind StorageManager.
package storage

import (
	"github.com/bobmcallan/stockline/internal/common"
	"github.com/bobmcallan/stockline/internal/interfaces"
	"github.com/bobmcallan/stockline/internal/storage/seriesfs"
)

// Manager implements interfaces.StorageManager over the file store.
type Manager struct {
	files *seriesfs.Store
}

// Compile-time interface check
var _ interfaces.StorageManager = (*Manager)(nil)

// NewStorageManager creates the storage manager for the configured data path.
func NewStorageManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	files, err := seriesfs.NewStore(logger, config.Storage.Path)
	if err != nil {
		return nil, err
	}
	return &Manager{files: files}, nil
}

// SeriesStorage returns the per-ticker series storage.
func (m *Manager) SeriesStorage() interfaces.SeriesStorage {
	return m.files.SeriesStorage()
}

// WatchlistStorage returns the watchlist storage.
func (m *Manager) WatchlistStorage() interfaces.WatchlistStorage {
	return m.files.WatchlistStorage()
}

// DataPath returns the base data directory path.
func (m *Manager) DataPath() string {
	return m.files.DataPath()
}

// WriteRaw writes arbitrary binary data to a subdirectory atomically.
func (m *Manager) WriteRaw(subdir, key string, data []byte) error {
	return m.files.WriteRaw(subdir, key, data)
}

// Close releases storage resources.
func (m *Manager) Close() error {
	return m.files.Close()
}
