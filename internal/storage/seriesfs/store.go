// Package seriesfs implements file-based storage for per-ticker bar series
// and the watchlist. Series are stored as one CSV file per ticker with
// columns DATE,OPEN,HIGH,LOW,CLOSE,VOLUME in ascending date order; the
// watchlist is a single JSON document. All writes are atomic
// (write-temp-then-rename), so a partially written file is never visible.
package seriesfs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bobmcallan/stockline/internal/common"
	"github.com/bobmcallan/stockline/internal/interfaces"
)

// Store provides file-based storage rooted at a data directory.
type Store struct {
	basePath  string
	seriesDir string
	logger    *common.Logger
}

// NewStore opens (creating if needed) a file store at path.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store path %s: %w", path, err)
	}
	seriesDir := filepath.Join(path, "series")
	if err := os.MkdirAll(seriesDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create series dir: %w", err)
	}

	logger.Info().Str("path", path).Msg("Series store opened")
	return &Store{
		basePath:  path,
		seriesDir: seriesDir,
		logger:    logger,
	}, nil
}

// DataPath returns the base data path.
func (s *Store) DataPath() string {
	return s.basePath
}

// SeriesStorage returns the series storage interface.
func (s *Store) SeriesStorage() interfaces.SeriesStorage {
	return &seriesStorage{store: s}
}

// WatchlistStorage returns the watchlist storage interface.
func (s *Store) WatchlistStorage() interfaces.WatchlistStorage {
	return &watchlistStorage{store: s}
}

// WriteRaw writes arbitrary binary data to a subdirectory atomically.
func (s *Store) WriteRaw(subdir, key string, data []byte) error {
	dir := filepath.Join(s.basePath, subdir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return writeAtomic(filepath.Join(dir, sanitizeKey(key)), data)
}

// Close is a no-op for file-based storage.
func (s *Store) Close() error {
	return nil
}

// --- helpers ---

func sanitizeKey(key string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_")
	return r.Replace(key)
}

// writeAtomic writes data to target via a temp file in the same directory.
func writeAtomic(target string, data []byte) error {
	dir := filepath.Dir(target)

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func writeJSONAtomic(target string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	data = append(data, '\n')
	return writeAtomic(target, data)
}
