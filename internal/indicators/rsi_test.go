package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stockline/internal/models"
)

func TestRSI_MonotonicRiseSaturatesAtHundred(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}

	col, err := RSI(closes, 14)
	require.NoError(t, err)

	for i := 0; i < 14; i++ {
		assert.True(t, math.IsNaN(col[i]), "index %d should be warmup", i)
	}
	for i := 14; i < len(col); i++ {
		assert.InDelta(t, 100.0, col[i], 1e-9, "index %d", i)
	}
}

func TestRSI_MonotonicFallApproachesZero(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 200 - float64(i)
	}

	col, err := RSI(closes, 14)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, col[len(col)-1], 1e-9)
}

func TestRSI_BoundedOnMixedSeries(t *testing.T) {
	closes := make([]float64, 60)
	price := 100.0
	for i := range closes {
		if i%3 == 0 {
			price += 2.5
		} else {
			price -= 1.0
		}
		closes[i] = price
	}

	col, err := RSI(closes, 14)
	require.NoError(t, err)

	for i := 14; i < len(col); i++ {
		assert.GreaterOrEqual(t, col[i], 0.0, "index %d", i)
		assert.LessOrEqual(t, col[i], 100.0, "index %d", i)
	}
}

func TestRSI_InsufficientData(t *testing.T) {
	closes := make([]float64, 14)
	_, err := RSI(closes, 14)

	var insufficient *models.InsufficientDataError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 15, insufficient.Need)
}
