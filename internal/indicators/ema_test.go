package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stockline/internal/models"
)

func TestEMA_ConstantSeriesStaysConstant(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 10.0
	}

	col, err := EMA(closes, 5)
	require.NoError(t, err)
	require.Len(t, col, 30)

	for i := 0; i < 4; i++ {
		assert.True(t, math.IsNaN(col[i]), "index %d should be warmup", i)
	}
	for i := 4; i < 30; i++ {
		assert.InDelta(t, 10.0, col[i], 1e-9, "index %d", i)
	}
}

func TestEMA_SeedIsSimpleAverage(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5, 6}

	col, err := EMA(closes, 5)
	require.NoError(t, err)

	assert.InDelta(t, 3.0, col[4], 1e-9)
	// k = 2/6; ema[5] = 6*k + 3*(1-k) = 4
	assert.InDelta(t, 4.0, col[5], 1e-9)
}

func TestEMA_LagsRisingSeries(t *testing.T) {
	closes := make([]float64, 100)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}

	col, err := EMA(closes, 20)
	require.NoError(t, err)

	last := col[len(col)-1]
	assert.Less(t, last, closes[len(closes)-1])
	assert.Greater(t, last, closes[0])
}

func TestEMA_InsufficientData(t *testing.T) {
	_, err := EMA([]float64{1, 2, 3}, 5)
	require.Error(t, err)

	var insufficient *models.InsufficientDataError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 5, insufficient.Need)
	assert.Equal(t, 3, insufficient.Have)
}

