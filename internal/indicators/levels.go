package indicators

import (
	"errors"

	"github.com/bobmcallan/stockline/internal/models"
)

// SupportResistance derives levels from the trailing window: support is the
// minimum low and resistance the maximum high of the last window bars.
// When the window is degenerate (support equals resistance, for example a
// single flat session) the scan widens backwards to the two most recent
// distinct extremes so the levels stay usable.
func SupportResistance(bars []models.Bar, window int) (models.SupportResistance, error) {
	if window <= 0 {
		return models.SupportResistance{}, errors.New("window must be positive")
	}
	if len(bars) < window {
		return models.SupportResistance{}, &models.InsufficientDataError{Indicator: "support/resistance", Need: window, Have: len(bars)}
	}

	tail := bars[len(bars)-window:]
	support := tail[0].Low
	resistance := tail[0].High
	for _, b := range tail[1:] {
		if b.Low < support {
			support = b.Low
		}
		if b.High > resistance {
			resistance = b.High
		}
	}

	if support == resistance {
		support, resistance = widenDegenerate(bars, support)
	}

	return models.SupportResistance{Support: support, Resistance: resistance}, nil
}

// widenDegenerate walks the full series backwards collecting the two most
// recent distinct price extremes around the flat level. A truly flat series
// keeps the equal levels.
func widenDegenerate(bars []models.Bar, level float64) (float64, float64) {
	support, resistance := level, level
	for i := len(bars) - 1; i >= 0; i-- {
		if bars[i].Low < support {
			support = bars[i].Low
		}
		if bars[i].High > resistance {
			resistance = bars[i].High
		}
		if support != resistance {
			break
		}
	}
	return support, resistance
}
