package models

import (
	"strings"
	"time"
)

// Watchlist is the ordered set of tickers the system tracks, together with
// any manually maintained key levels per ticker.
type Watchlist struct {
	Tickers   []string             `json:"tickers"`
	KeyLevels map[string]KeyLevels `json:"key_levels,omitempty"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// KeyLevels holds manually configured support/resistance levels for a ticker.
// They replace computed levels in reports but never affect scoring.
type KeyLevels struct {
	Support    []float64 `json:"support,omitempty"`
	Resistance []float64 `json:"resistance,omitempty"`
	Notes      string    `json:"notes,omitempty"`
}

// NormalizeTicker upper-cases and trims a ticker symbol.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// Contains reports whether the watchlist already holds ticker.
func (w *Watchlist) Contains(ticker string) bool {
	ticker = NormalizeTicker(ticker)
	for _, t := range w.Tickers {
		if t == ticker {
			return true
		}
	}
	return false
}

// Add appends a normalized ticker, keeping order and rejecting duplicates.
// Returns false if the ticker was already present.
func (w *Watchlist) Add(ticker string) bool {
	ticker = NormalizeTicker(ticker)
	if ticker == "" || w.Contains(ticker) {
		return false
	}
	w.Tickers = append(w.Tickers, ticker)
	return true
}

// Remove deletes a ticker and its key levels. Returns false if absent.
func (w *Watchlist) Remove(ticker string) bool {
	ticker = NormalizeTicker(ticker)
	for i, t := range w.Tickers {
		if t == ticker {
			w.Tickers = append(w.Tickers[:i], w.Tickers[i+1:]...)
			delete(w.KeyLevels, ticker)
			return true
		}
	}
	return false
}

// Levels returns the manual key levels for a ticker, or nil.
func (w *Watchlist) Levels(ticker string) *KeyLevels {
	if w.KeyLevels == nil {
		return nil
	}
	if kl, ok := w.KeyLevels[NormalizeTicker(ticker)]; ok {
		return &kl
	}
	return nil
}
