package models

import (
	"math"
	"time"
)

// TrendDirection classifies the price trend direction.
type TrendDirection string

const (
	TrendUp       TrendDirection = "up"
	TrendDown     TrendDirection = "down"
	TrendSideways TrendDirection = "sideways"
)

// TrendStrength classifies trend strength from the ADX reading.
type TrendStrength string

const (
	StrengthWeak     TrendStrength = "weak"
	StrengthModerate TrendStrength = "moderate"
	StrengthStrong   TrendStrength = "strong"
)

// VolumeTrend classifies the recent volume direction.
type VolumeTrend string

const (
	VolumeIncreasing VolumeTrend = "increasing"
	VolumeDecreasing VolumeTrend = "decreasing"
	VolumeFlat       VolumeTrend = "flat"
)

// Signal is the discrete trading recommendation.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalHold Signal = "HOLD"
	SignalSell Signal = "SELL"
)

// TrendInfo describes the classified trend for a series.
type TrendInfo struct {
	Direction  TrendDirection `json:"direction"`
	Strength   TrendStrength  `json:"strength"`
	ADX        float64        `json:"adx"`
	AboveEMA20 bool           `json:"above_ema20"`
	AboveEMA50 bool           `json:"above_ema50"`
	// Insufficient is set when the series is too short for the ADX window;
	// direction/strength then default to sideways/weak.
	Insufficient bool `json:"insufficient,omitempty"`
}

// SupportResistance holds a support/resistance level pair.
type SupportResistance struct {
	Support    float64 `json:"support"`
	Resistance float64 `json:"resistance"`
	// Manual is set when configured key levels replaced the computed pair.
	Manual bool `json:"manual,omitempty"`
}

// VolumeProfile summarizes the volume distribution over the trailing window.
type VolumeProfile struct {
	PointOfControl float64     `json:"point_of_control"`
	AvgVolume      float64     `json:"avg_volume"`
	Trend          VolumeTrend `json:"trend"`
	Insufficient   bool        `json:"insufficient,omitempty"`
}

// IndicatorResult holds all derived indicators for one series. It is
// recomputed on demand and never persisted.
type IndicatorResult struct {
	Ticker         string    `json:"ticker"`
	Computed       time.Time `json:"computed"`
	Bars           int       `json:"bars"`
	CurrentPrice   float64   `json:"current_price"`
	PriceChangePct float64   `json:"price_change_pct"`

	// EMA columns keyed by window, aligned to the series; warmup indices
	// hold NaN. RSI likewise.
	EMA map[int][]float64 `json:"-"`
	RSI []float64         `json:"-"`

	Volatility float64           `json:"volatility"`
	Trend      TrendInfo         `json:"trend"`
	Levels     SupportResistance `json:"levels"`
	Volume     VolumeProfile     `json:"volume"`

	// Conditions lists indicators that reported insufficient data.
	Conditions []string `json:"conditions,omitempty"`
}

// LastEMA returns the most recent EMA value for a window, and whether it is valid.
func (r *IndicatorResult) LastEMA(window int) (float64, bool) {
	col, ok := r.EMA[window]
	if !ok || len(col) == 0 {
		return 0, false
	}
	v := col[len(col)-1]
	if math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// LastRSI returns the most recent RSI value, and whether it is valid.
func (r *IndicatorResult) LastRSI() (float64, bool) {
	if len(r.RSI) == 0 {
		return 0, false
	}
	v := r.RSI[len(r.RSI)-1]
	if math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// Factor records one scoring condition that fired, in weight-table order.
type Factor struct {
	Label  string `json:"label"`
	Weight int    `json:"weight"`
}

// ScoreResult is the scored outcome for one ticker.
type ScoreResult struct {
	Ticker  string            `json:"ticker"`
	Score   int               `json:"score"`
	Signal  Signal            `json:"signal"`
	Factors []Factor          `json:"factors"`
	Levels  SupportResistance `json:"levels"`
}

// TickerAnalysis pairs the indicator and score results for report rendering.
type TickerAnalysis struct {
	Ticker     string          `json:"ticker"`
	Indicators IndicatorResult `json:"indicators"`
	Score      ScoreResult     `json:"score"`
}
