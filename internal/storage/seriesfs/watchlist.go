package seriesfs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/stockline/internal/models"
)

const watchlistFile = "watchlist.json"

type watchlistStorage struct {
	store *Store
}

func (ws *watchlistStorage) path() string {
	return filepath.Join(ws.store.basePath, watchlistFile)
}

// Get returns the stored watchlist, or an empty one when none exists yet.
func (ws *watchlistStorage) Get(_ context.Context) (*models.Watchlist, error) {
	data, err := os.ReadFile(ws.path())
	if err != nil {
		if os.IsNotExist(err) {
			return &models.Watchlist{KeyLevels: map[string]models.KeyLevels{}}, nil
		}
		return nil, fmt.Errorf("failed to read watchlist: %w", err)
	}

	var wl models.Watchlist
	if err := json.Unmarshal(data, &wl); err != nil {
		return nil, fmt.Errorf("failed to parse watchlist: %w", err)
	}
	if wl.KeyLevels == nil {
		wl.KeyLevels = map[string]models.KeyLevels{}
	}
	return &wl, nil
}

func (ws *watchlistStorage) Save(_ context.Context, wl *models.Watchlist) error {
	wl.UpdatedAt = time.Now()
	if err := writeJSONAtomic(ws.path(), wl); err != nil {
		return fmt.Errorf("failed to save watchlist: %w", err)
	}
	ws.store.logger.Debug().Int("tickers", len(wl.Tickers)).Msg("Watchlist saved")
	return nil
}
