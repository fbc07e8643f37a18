package indicators

import (
	"errors"

	"github.com/bobmcallan/stockline/internal/models"
)

// RSI calculates the Wilder-smoothed relative strength index column.
// The seed averages the first period gains/losses; later values use
// Wilder's recursive smoothing avg = (avg*(period-1) + x) / period.
// RSI is 100 when the average loss is exactly zero. The first valid value
// sits at index period; earlier indices are NaN.
func RSI(closes []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	if len(closes) < period+1 {
		return nil, &models.InsufficientDataError{Indicator: "RSI", Need: period + 1, Have: len(closes)}
	}

	col := nanColumn(len(closes))

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	col[period] = rsiValue(avgGain, avgLoss)

	for t := period + 1; t < len(closes); t++ {
		change := closes[t] - closes[t-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		col[t] = rsiValue(avgGain, avgLoss)
	}

	return col, nil
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
