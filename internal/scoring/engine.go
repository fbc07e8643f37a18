// Package scoring turns indicator results into a weighted score and a
// discrete BUY/HOLD/SELL signal.
package scoring

import (
	"github.com/bobmcallan/stockline/internal/models"
)

// Signal thresholds: strictly above buyThreshold is BUY, strictly below
// sellThreshold is SELL, everything between holds.
const (
	buyThreshold  = 70
	sellThreshold = 30
)

// Weight table, applied in order. Indicators that reported insufficient
// data contribute nothing.
const (
	weightUptrend      = 40
	weightDowntrend    = -20
	weightOversold     = 30
	weightOverbought   = -30
	weightAboveEMAs    = 20
	weightRisingVolume = 10
)

// RSI bands for the oversold/overbought factors.
const (
	rsiOversold   = 30.0
	rsiOverbought = 70.0
)

// Engine scores indicator results. It is stateless and safe for concurrent use.
type Engine struct{}

// NewEngine creates a scoring engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Score applies the weight table to the indicators and classifies the total.
// Factors are recorded in table order so identical inputs always produce an
// identical factor list. When manual key levels are provided they replace
// the computed support/resistance pair in the outcome; the score itself is
// unaffected.
func (e *Engine) Score(ind *models.IndicatorResult, manual *models.KeyLevels) models.ScoreResult {
	result := models.ScoreResult{
		Ticker: ind.Ticker,
		Levels: ind.Levels,
	}

	add := func(label string, weight int) {
		result.Score += weight
		result.Factors = append(result.Factors, models.Factor{Label: label, Weight: weight})
	}

	if !ind.Trend.Insufficient {
		switch ind.Trend.Direction {
		case models.TrendUp:
			add("uptrend", weightUptrend)
		case models.TrendDown:
			add("downtrend", weightDowntrend)
		}
	}

	if rsi, ok := ind.LastRSI(); ok {
		if rsi < rsiOversold {
			add("RSI oversold", weightOversold)
		} else if rsi > rsiOverbought {
			add("RSI overbought", weightOverbought)
		}
	}

	ema20, ok20 := ind.LastEMA(20)
	ema50, ok50 := ind.LastEMA(50)
	if ok20 && ok50 && ind.CurrentPrice > ema20 && ema20 > ema50 {
		add("price above EMA20 above EMA50", weightAboveEMAs)
	}

	if !ind.Volume.Insufficient && ind.Volume.Trend == models.VolumeIncreasing {
		add("rising volume", weightRisingVolume)
	}

	result.Signal = Classify(result.Score)

	if manual != nil {
		if levels, ok := manualLevels(manual); ok {
			result.Levels = levels
		}
	}

	return result
}

// Classify maps a score to its signal band.
func Classify(score int) models.Signal {
	switch {
	case score > buyThreshold:
		return models.SignalBuy
	case score < sellThreshold:
		return models.SignalSell
	default:
		return models.SignalHold
	}
}

// manualLevels reduces configured key-level lists to a single display pair,
// averaging each list. Empty lists keep nothing to display.
func manualLevels(kl *models.KeyLevels) (models.SupportResistance, bool) {
	if len(kl.Support) == 0 && len(kl.Resistance) == 0 {
		return models.SupportResistance{}, false
	}
	return models.SupportResistance{
		Support:    mean(kl.Support),
		Resistance: mean(kl.Resistance),
		Manual:     true,
	}, true
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
