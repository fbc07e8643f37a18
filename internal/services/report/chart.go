package report

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/stockline/internal/models"
)

const chartSubdir = "charts"

// renderChart draws the close price with the EMA20/EMA50 overlays and stores
// the PNG under the data directory.
func (s *Service) renderChart(ctx context.Context, analysis *models.TickerAnalysis) error {
	series, err := s.storage.SeriesStorage().Load(ctx, analysis.Ticker)
	if err != nil {
		return err
	}
	if series.Len() < 2 {
		return fmt.Errorf("series too short to chart")
	}

	dates := make([]time.Time, series.Len())
	closes := make([]float64, series.Len())
	for i, bar := range series.Bars {
		dates[i] = bar.Date
		closes[i] = bar.Close
	}

	graph := chart.Chart{
		Title:  analysis.Ticker,
		Width:  1024,
		Height: 400,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "close",
				XValues: dates,
				YValues: closes,
			},
		},
	}

	for _, overlay := range []struct {
		window int
		color  drawing.Color
	}{
		{20, chart.ColorRed},
		{50, chart.ColorBlue},
	} {
		col, ok := analysis.Indicators.EMA[overlay.window]
		if !ok {
			continue
		}
		xs, ys := validTail(dates, col)
		if len(xs) < 2 {
			continue
		}
		graph.Series = append(graph.Series, chart.TimeSeries{
			Name:    fmt.Sprintf("EMA%d", overlay.window),
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: overlay.color,
			},
		})
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}

	return s.storage.WriteRaw(chartSubdir, analysis.Ticker+".png", buf.Bytes())
}

// validTail strips the NaN warmup prefix of an indicator column, keeping
// dates aligned.
func validTail(dates []time.Time, col []float64) ([]time.Time, []float64) {
	start := 0
	for start < len(col) && math.IsNaN(col[start]) {
		start++
	}
	return dates[start:], col[start:]
}
