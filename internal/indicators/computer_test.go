package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stockline/internal/common"
	"github.com/bobmcallan/stockline/internal/models"
)

func testAnalysisConfig() common.AnalysisConfig {
	return common.AnalysisConfig{
		EMAWindows: []int{20, 50, 200},
		RSIPeriod:  14,
		ADXPeriod:  14,
		SRWindow:   20,
		VolumeBins: 20,
	}
}

func TestComputer_LongRisingSeries(t *testing.T) {
	computer := NewComputer(testAnalysisConfig())
	series := &models.Series{Ticker: "SBER", Bars: risingBars(300)}

	result, err := computer.Compute(series)
	require.NoError(t, err)

	assert.Equal(t, "SBER", result.Ticker)
	assert.Equal(t, 300, result.Bars)
	assert.Empty(t, result.Conditions)

	assert.Equal(t, models.TrendUp, result.Trend.Direction)
	assert.True(t, result.Trend.AboveEMA20)
	assert.True(t, result.Trend.AboveEMA50)

	rsi, ok := result.LastRSI()
	require.True(t, ok)
	assert.Greater(t, rsi, 70.0)

	ema20, ok := result.LastEMA(20)
	require.True(t, ok)
	ema50, ok := result.LastEMA(50)
	require.True(t, ok)
	assert.Greater(t, result.CurrentPrice, ema20)
	assert.Greater(t, ema20, ema50)

	assert.Equal(t, models.VolumeIncreasing, result.Volume.Trend)
	assert.False(t, result.Volume.Insufficient)
	assert.Greater(t, result.PriceChangePct, 0.0)
}

func TestComputer_ShortOscillatingSeries(t *testing.T) {
	computer := NewComputer(testAnalysisConfig())
	series := &models.Series{Ticker: "GAZP", Bars: oscillatingBars(60)}

	result, err := computer.Compute(series)
	require.NoError(t, err)

	assert.Equal(t, models.TrendSideways, result.Trend.Direction)
	assert.Equal(t, models.StrengthWeak, result.Trend.Strength)
	assert.Equal(t, models.VolumeFlat, result.Volume.Trend)

	// 60 bars cannot seed the 200-bar EMA.
	_, ok := result.LastEMA(200)
	assert.False(t, ok)
	require.NotEmpty(t, result.Conditions)
	assert.Contains(t, result.Conditions[0], "EMA(200)")
}

func TestComputer_TinySeriesDegradesPerIndicator(t *testing.T) {
	computer := NewComputer(testAnalysisConfig())
	series := &models.Series{Ticker: "LKOH", Bars: risingBars(10)}

	result, err := computer.Compute(series)
	require.NoError(t, err)

	// Every windowed indicator reports its own condition instead of failing
	// the computation.
	assert.True(t, result.Trend.Insufficient)
	assert.Equal(t, models.TrendSideways, result.Trend.Direction)
	assert.NotEmpty(t, result.Conditions)
	assert.InDelta(t, 4.5, result.PriceChangePct, 1e-9, "price change over 100 -> 104.5")
}

func TestComputer_EmptySeries(t *testing.T) {
	computer := NewComputer(testAnalysisConfig())

	_, err := computer.Compute(&models.Series{Ticker: "EMPTY"})
	assert.ErrorIs(t, err, models.ErrNoData)
}
