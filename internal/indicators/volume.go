package indicators

import (
	"errors"
	"math"

	"github.com/bobmcallan/stockline/internal/models"
)

const (
	// volumeTrendWindow is the averaging span for the recent side of the
	// volume comparison.
	volumeTrendWindow = 10
	// volumeFlatBand is the relative band inside which volume counts as flat.
	volumeFlatBand = 0.05
)

// Profile buckets closes into equal-width price bins weighted by traded
// volume. The point of control is the midpoint of the heaviest bin. The
// volume trend compares the last ten sessions against the full-series
// average.
func Profile(bars []models.Bar, bins int) (models.VolumeProfile, error) {
	if bins <= 0 {
		return models.VolumeProfile{}, errors.New("bins must be positive")
	}
	if len(bars) == 0 {
		return models.VolumeProfile{}, &models.InsufficientDataError{Indicator: "volume profile", Need: 1, Have: 0}
	}

	profile := models.VolumeProfile{}

	var totalVolume int64
	lo, hi := bars[0].Close, bars[0].Close
	for _, b := range bars {
		totalVolume += b.Volume
		if b.Close < lo {
			lo = b.Close
		}
		if b.Close > hi {
			hi = b.Close
		}
	}
	profile.AvgVolume = float64(totalVolume) / float64(len(bars))

	if lo == hi {
		// Flat series collapses to a single level.
		profile.PointOfControl = lo
	} else {
		width := (hi - lo) / float64(bins)
		weights := make([]int64, bins)
		for _, b := range bars {
			idx := int((b.Close - lo) / width)
			if idx >= bins {
				idx = bins - 1
			}
			weights[idx] += b.Volume
		}
		best := 0
		for i, w := range weights {
			if w > weights[best] {
				best = i
			}
		}
		profile.PointOfControl = lo + width*(float64(best)+0.5)
	}

	trend, err := volumeTrend(bars)
	if err != nil {
		profile.Insufficient = true
		profile.Trend = models.VolumeFlat
		return profile, nil
	}
	profile.Trend = trend

	return profile, nil
}

// volumeTrend compares the recent average volume to the whole-series
// average, holding a small band around parity as flat. Anchoring on the full
// window keeps a steady ramp classified as increasing however long the
// series grows; a recent-vs-preceding split washes the ramp out of the
// ratio on long histories.
func volumeTrend(bars []models.Bar) (models.VolumeTrend, error) {
	if len(bars) < 2*volumeTrendWindow {
		return models.VolumeFlat, &models.InsufficientDataError{Indicator: "volume trend", Need: 2 * volumeTrendWindow, Have: len(bars)}
	}

	recent := avgVolume(bars[len(bars)-volumeTrendWindow:])
	whole := avgVolume(bars)

	if whole == 0 {
		if recent > 0 {
			return models.VolumeIncreasing, nil
		}
		return models.VolumeFlat, nil
	}

	ratio := recent / whole
	switch {
	case ratio > 1+volumeFlatBand:
		return models.VolumeIncreasing, nil
	case ratio < 1-volumeFlatBand:
		return models.VolumeDecreasing, nil
	default:
		return models.VolumeFlat, nil
	}
}

func avgVolume(bars []models.Bar) float64 {
	var sum int64
	for _, b := range bars {
		sum += b.Volume
	}
	return float64(sum) / float64(len(bars))
}

// Volatility is the standard deviation of daily returns over the trailing
// window, as a percentage.
func Volatility(closes []float64, window int) (float64, error) {
	if window <= 1 {
		return 0, errors.New("window must exceed one")
	}
	if len(closes) < window+1 {
		return 0, &models.InsufficientDataError{Indicator: "volatility", Need: window + 1, Have: len(closes)}
	}

	tail := closes[len(closes)-window-1:]
	returns := make([]float64, 0, window)
	for i := 1; i < len(tail); i++ {
		if tail[i-1] == 0 {
			continue
		}
		returns = append(returns, tail[i]/tail[i-1]-1)
	}
	if len(returns) == 0 {
		return 0, nil
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns))

	return math.Sqrt(variance) * 100, nil
}
