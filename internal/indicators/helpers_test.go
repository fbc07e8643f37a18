package indicators

import (
	"time"

	"github.com/bobmcallan/stockline/internal/models"
)

var testEpoch = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

// risingBars builds a steadily climbing series with growing volume.
func risingBars(n int) []models.Bar {
	bars := make([]models.Bar, n)
	for i := range bars {
		close := 100 + 0.5*float64(i)
		bars[i] = models.Bar{
			Date:   testEpoch.AddDate(0, 0, i),
			Open:   close - 0.2,
			High:   close + 0.5,
			Low:    close - 0.5,
			Close:  close,
			Volume: int64(1000 + 10*i),
		}
	}
	return bars
}

// oscillatingBars alternates up and down around a flat base with steady volume.
func oscillatingBars(n int) []models.Bar {
	bars := make([]models.Bar, n)
	for i := range bars {
		close := 100.0
		if i%2 == 0 {
			close = 101.0
		}
		bars[i] = models.Bar{
			Date:   testEpoch.AddDate(0, 0, i),
			Open:   100.5,
			High:   close + 0.5,
			Low:    close - 0.5,
			Close:  close,
			Volume: 1000,
		}
	}
	return bars
}
