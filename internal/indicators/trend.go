package indicators

import (
	"errors"
	"math"

	"github.com/bobmcallan/stockline/internal/models"
)

// ADX strength thresholds.
const (
	adxStrong   = 25.0
	adxModerate = 20.0
)

// Trend determines trend direction and strength from Wilder's ADX.
// Direction comes from the smoothed directional movement balance: up when
// +DM dominates, down when -DM dominates. Strength is strong above 25,
// moderate between 20 and 25, weak below. A weak reading is reported as
// sideways regardless of the directional balance.
//
// Needs at least 2*period bars to seed both smoothing passes.
func Trend(bars []models.Bar, period int) (models.TrendInfo, error) {
	if period <= 0 {
		return models.TrendInfo{}, errors.New("period must be positive")
	}
	if len(bars) < 2*period {
		return models.TrendInfo{}, &models.InsufficientDataError{Indicator: "ADX", Need: 2 * period, Have: len(bars)}
	}

	n := len(bars)
	tr := make([]float64, n)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)

	for t := 1; t < n; t++ {
		cur, prev := bars[t], bars[t-1]

		hl := cur.High - cur.Low
		hc := math.Abs(cur.High - prev.Close)
		lc := math.Abs(cur.Low - prev.Close)
		tr[t] = math.Max(hl, math.Max(hc, lc))

		upMove := cur.High - prev.High
		downMove := prev.Low - cur.Low
		if upMove > downMove && upMove > 0 {
			plusDM[t] = upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM[t] = downMove
		}
	}

	// Wilder smoothing: seed with the sum over the first period, then
	// sm = sm - sm/period + x.
	var smTR, smPlus, smMinus float64
	for t := 1; t <= period; t++ {
		smTR += tr[t]
		smPlus += plusDM[t]
		smMinus += minusDM[t]
	}

	var adx float64
	dx := dxValue(smPlus, smMinus, smTR)
	adxSum := dx
	dxCount := 1

	for t := period + 1; t < n; t++ {
		smTR = smTR - smTR/float64(period) + tr[t]
		smPlus = smPlus - smPlus/float64(period) + plusDM[t]
		smMinus = smMinus - smMinus/float64(period) + minusDM[t]

		dx = dxValue(smPlus, smMinus, smTR)
		dxCount++

		if dxCount < period {
			adxSum += dx
		} else if dxCount == period {
			adxSum += dx
			adx = adxSum / float64(period)
		} else {
			adx = (adx*float64(period-1) + dx) / float64(period)
		}
	}

	info := models.TrendInfo{ADX: adx}
	switch {
	case adx > adxStrong:
		info.Strength = models.StrengthStrong
	case adx >= adxModerate:
		info.Strength = models.StrengthModerate
	default:
		info.Strength = models.StrengthWeak
	}

	if info.Strength == models.StrengthWeak {
		info.Direction = models.TrendSideways
	} else if smPlus > smMinus {
		info.Direction = models.TrendUp
	} else {
		info.Direction = models.TrendDown
	}

	return info, nil
}

// dxValue is the directional index: 100*|+DI - -DI| / (+DI + -DI).
func dxValue(smPlus, smMinus, smTR float64) float64 {
	if smTR == 0 {
		return 0
	}
	plusDI := 100 * smPlus / smTR
	minusDI := 100 * smMinus / smTR
	sum := plusDI + minusDI
	if sum == 0 {
		return 0
	}
	return 100 * math.Abs(plusDI-minusDI) / sum
}
