package indicators

import (
	"fmt"
	"time"

	"github.com/bobmcallan/stockline/internal/common"
	"github.com/bobmcallan/stockline/internal/models"
)

// volatilityWindow is the trailing span for the daily-return deviation.
const volatilityWindow = 20

// Computer derives the full indicator set for a series using the configured
// window parameters. Indicators that lack data degrade individually: the
// result carries a condition per degraded indicator instead of failing the
// whole computation.
type Computer struct {
	cfg common.AnalysisConfig
}

// NewComputer creates a computer with the given analysis parameters.
func NewComputer(cfg common.AnalysisConfig) *Computer {
	return &Computer{cfg: cfg}
}

// Compute runs every indicator over the series. The series must be
// non-empty and date-ordered.
func (c *Computer) Compute(series *models.Series) (*models.IndicatorResult, error) {
	if series.IsEmpty() {
		return nil, models.ErrNoData
	}

	closes := series.Closes()
	result := &models.IndicatorResult{
		Ticker:       series.Ticker,
		Computed:     time.Now(),
		Bars:         series.Len(),
		CurrentPrice: closes[len(closes)-1],
		EMA:          make(map[int][]float64, len(c.cfg.EMAWindows)),
	}
	if closes[0] != 0 {
		result.PriceChangePct = (closes[len(closes)-1]/closes[0] - 1) * 100
	}

	for _, window := range c.cfg.EMAWindows {
		col, err := EMA(closes, window)
		if err != nil {
			result.Conditions = append(result.Conditions, fmt.Sprintf("EMA(%d): %v", window, err))
			continue
		}
		result.EMA[window] = col
	}

	rsi, err := RSI(closes, c.cfg.RSIPeriod)
	if err != nil {
		result.Conditions = append(result.Conditions, fmt.Sprintf("RSI(%d): %v", c.cfg.RSIPeriod, err))
	} else {
		result.RSI = rsi
	}

	trend, err := Trend(series.Bars, c.cfg.ADXPeriod)
	if err != nil {
		result.Conditions = append(result.Conditions, fmt.Sprintf("ADX(%d): %v", c.cfg.ADXPeriod, err))
		trend = models.TrendInfo{
			Direction:    models.TrendSideways,
			Strength:     models.StrengthWeak,
			Insufficient: true,
		}
	}
	if ema20, ok := result.LastEMA(20); ok {
		trend.AboveEMA20 = result.CurrentPrice > ema20
	}
	if ema50, ok := result.LastEMA(50); ok {
		trend.AboveEMA50 = result.CurrentPrice > ema50
	}
	result.Trend = trend

	levels, err := SupportResistance(series.Bars, c.cfg.SRWindow)
	if err != nil {
		result.Conditions = append(result.Conditions, fmt.Sprintf("levels(%d): %v", c.cfg.SRWindow, err))
	} else {
		result.Levels = levels
	}

	profile, err := Profile(series.Bars, c.cfg.VolumeBins)
	if err != nil {
		result.Conditions = append(result.Conditions, fmt.Sprintf("volume profile: %v", err))
	} else {
		result.Volume = profile
		if profile.Insufficient {
			result.Conditions = append(result.Conditions, "volume trend: insufficient history")
		}
	}

	vol, err := Volatility(closes, volatilityWindow)
	if err != nil {
		result.Conditions = append(result.Conditions, fmt.Sprintf("volatility(%d): %v", volatilityWindow, err))
	} else {
		result.Volatility = vol
	}

	return result, nil
}
