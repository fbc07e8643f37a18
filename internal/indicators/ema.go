// Package indicators provides technical indicator calculations over a bar
// series. All functions are pure and deterministic; bars are expected in
// ascending date order. Columns are aligned to the input series, with NaN
// marking warmup indices that have no value yet.
package indicators

import (
	"errors"
	"math"

	"github.com/bobmcallan/stockline/internal/models"
)

// EMA calculates the exponential moving average column for the given window.
// The seed at index window-1 is the simple average of the first window
// closes; subsequent values follow ema[t] = close[t]*k + ema[t-1]*(1-k)
// with k = 2/(window+1).
func EMA(closes []float64, window int) ([]float64, error) {
	if window <= 0 {
		return nil, errors.New("window must be positive")
	}
	if len(closes) < window {
		return nil, &models.InsufficientDataError{Indicator: "EMA", Need: window, Have: len(closes)}
	}

	col := nanColumn(len(closes))

	seed := 0.0
	for i := 0; i < window; i++ {
		seed += closes[i]
	}
	seed /= float64(window)
	col[window-1] = seed

	k := 2.0 / float64(window+1)
	for t := window; t < len(closes); t++ {
		col[t] = closes[t]*k + col[t-1]*(1-k)
	}

	return col, nil
}

func nanColumn(n int) []float64 {
	col := make([]float64, n)
	for i := range col {
		col[i] = math.NaN()
	}
	return col
}
