// Package models defines data structures for Stockline
package models

import (
	"time"
)

// Bar represents a single day's OHLCV data for a ticker.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Series is an ordered sequence of daily bars for one ticker,
// sorted ascending by date with no duplicate dates.
type Series struct {
	Ticker string `json:"ticker"`
	Bars   []Bar  `json:"bars"`
}

// Len returns the number of bars in the series.
func (s *Series) Len() int {
	return len(s.Bars)
}

// IsEmpty reports whether the series has no bars.
func (s *Series) IsEmpty() bool {
	return len(s.Bars) == 0
}

// LastDate returns the most recent bar date, or the zero time for an empty series.
func (s *Series) LastDate() time.Time {
	if len(s.Bars) == 0 {
		return time.Time{}
	}
	return s.Bars[len(s.Bars)-1].Date
}

// FirstDate returns the oldest bar date, or the zero time for an empty series.
func (s *Series) FirstDate() time.Time {
	if len(s.Bars) == 0 {
		return time.Time{}
	}
	return s.Bars[0].Date
}

// LastClose returns the most recent closing price, or 0 for an empty series.
func (s *Series) LastClose() float64 {
	if len(s.Bars) == 0 {
		return 0
	}
	return s.Bars[len(s.Bars)-1].Close
}

// Closes extracts the close column in series order.
func (s *Series) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Validate checks the strictly-increasing-date invariant.
// Returns a CorruptDataError naming the first offending row.
func (s *Series) Validate() error {
	for i := 1; i < len(s.Bars); i++ {
		if !s.Bars[i].Date.After(s.Bars[i-1].Date) {
			return &CorruptDataError{
				Ticker: s.Ticker,
				Row:    i,
				Reason: "dates not strictly increasing",
			}
		}
	}
	return nil
}

// SeriesStats summarizes a stored series for display.
type SeriesStats struct {
	Ticker      string    `json:"ticker"`
	Records     int       `json:"records"`
	DateFrom    time.Time `json:"date_from"`
	DateTo      time.Time `json:"date_to"`
	AvgClose    float64   `json:"avg_close"`
	MinClose    float64   `json:"min_close"`
	MaxClose    float64   `json:"max_close"`
	TotalVolume int64     `json:"total_volume"`
}

// Stats computes summary statistics over the series.
func (s *Series) Stats() SeriesStats {
	stats := SeriesStats{Ticker: s.Ticker, Records: len(s.Bars)}
	if len(s.Bars) == 0 {
		return stats
	}
	stats.DateFrom = s.Bars[0].Date
	stats.DateTo = s.Bars[len(s.Bars)-1].Date
	stats.MinClose = s.Bars[0].Close
	stats.MaxClose = s.Bars[0].Close
	sum := 0.0
	for _, b := range s.Bars {
		sum += b.Close
		if b.Close < stats.MinClose {
			stats.MinClose = b.Close
		}
		if b.Close > stats.MaxClose {
			stats.MaxClose = b.Close
		}
		stats.TotalVolume += b.Volume
	}
	stats.AvgClose = sum / float64(len(s.Bars))
	return stats
}
