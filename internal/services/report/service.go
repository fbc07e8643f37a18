// Package report renders watchlist analysis into a markdown report with
// optional price charts.
package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bobmcallan/stockline/internal/common"
	"github.com/bobmcallan/stockline/internal/interfaces"
	"github.com/bobmcallan/stockline/internal/models"
)

// Service implements interfaces.ReportService.
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
	dir     string
	charts  bool
}

// Compile-time interface check
var _ interfaces.ReportService = (*Service)(nil)

// NewService creates the report service.
func NewService(storage interfaces.StorageManager, logger *common.Logger, cfg common.ReportConfig) *Service {
	dir := cfg.Dir
	if dir == "" {
		dir = "reports"
	}
	return &Service{
		storage: storage,
		logger:  logger,
		dir:     dir,
		charts:  cfg.Charts,
	}
}

// Generate writes the ranked markdown report for the analyzed tickers and
// returns its path. Results are expected pre-sorted by score descending.
// Chart rendering failures are logged but never fail the report.
func (s *Service) Generate(ctx context.Context, results []*models.TickerAnalysis) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report dir: %w", err)
	}

	now := time.Now()
	path := filepath.Join(s.dir, fmt.Sprintf("report_%s.md", now.Format("2006-01-02")))

	var b strings.Builder
	fmt.Fprintf(&b, "# Watchlist report %s\n\n", now.Format("2006-01-02"))
	fmt.Fprintf(&b, "Analyzed %d tickers at %s.\n\n", len(results), now.Format("15:04"))

	s.writeRankingTable(&b, results)
	s.writeSignalSections(&b, results)

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	if s.charts {
		for _, r := range results {
			if err := s.renderChart(ctx, r); err != nil {
				s.logger.Warn().Str("ticker", r.Ticker).Err(err).Msg("Chart rendering failed")
			}
		}
	}

	s.logger.Info().Str("path", path).Int("tickers", len(results)).Msg("Report generated")
	return path, nil
}

func (s *Service) writeRankingTable(b *strings.Builder, results []*models.TickerAnalysis) {
	b.WriteString("| # | Ticker | Price | Change | Volatility | Score | Signal | RSI | Trend | Support | Resistance | Top factor |\n")
	b.WriteString("|---|--------|-------|--------|------------|-------|--------|-----|-------|---------|------------|------------|\n")

	for i, r := range results {
		ind := &r.Indicators
		rsi := "n/a"
		if v, ok := ind.LastRSI(); ok {
			rsi = fmt.Sprintf("%.1f", v)
		}
		trend := string(ind.Trend.Direction)
		if ind.Trend.Insufficient {
			trend = "n/a"
		} else if ind.Trend.Direction != models.TrendSideways {
			trend = fmt.Sprintf("%s (%s)", ind.Trend.Direction, ind.Trend.Strength)
		}
		support, resistance := levelCells(ind.Levels)

		fmt.Fprintf(b, "| %d | %s | %s | %+.1f%% | %.2f%% | %d | %s | %s | %s | %s | %s | %s |\n",
			i+1, r.Ticker,
			formatPrice(ind.CurrentPrice), ind.PriceChangePct, ind.Volatility,
			r.Score.Score, r.Score.Signal,
			rsi, trend, support, resistance, topFactor(r.Score.Factors))
	}
	b.WriteString("\n")
}

// writeSignalSections lists the candidates per signal with their factors,
// then any degraded computations.
func (s *Service) writeSignalSections(b *strings.Builder, results []*models.TickerAnalysis) {
	for _, signal := range []models.Signal{models.SignalBuy, models.SignalSell, models.SignalHold} {
		var matched []*models.TickerAnalysis
		for _, r := range results {
			if r.Score.Signal == signal {
				matched = append(matched, r)
			}
		}
		if len(matched) == 0 {
			continue
		}

		fmt.Fprintf(b, "## %s candidates\n\n", signal)
		for _, r := range matched {
			fmt.Fprintf(b, "### %s (score %d)\n\n", r.Ticker, r.Score.Score)
			for _, f := range r.Score.Factors {
				fmt.Fprintf(b, "- %s (%+d)\n", f.Label, f.Weight)
			}
			if r.Indicators.Levels.Manual {
				b.WriteString("- levels: manual override\n")
			}
			b.WriteString("\n")
		}
	}

	var degraded []*models.TickerAnalysis
	for _, r := range results {
		if len(r.Indicators.Conditions) > 0 {
			degraded = append(degraded, r)
		}
	}
	if len(degraded) > 0 {
		b.WriteString("## Data conditions\n\n")
		for _, r := range degraded {
			for _, cond := range r.Indicators.Conditions {
				fmt.Fprintf(b, "- %s: %s\n", r.Ticker, cond)
			}
		}
		b.WriteString("\n")
	}
}

// topFactor is the highest-priority condition that fired, by table order.
func topFactor(factors []models.Factor) string {
	if len(factors) == 0 {
		return "-"
	}
	return fmt.Sprintf("%s (%+d)", factors[0].Label, factors[0].Weight)
}

func levelCells(levels models.SupportResistance) (string, string) {
	if levels.Support == 0 && levels.Resistance == 0 {
		return "n/a", "n/a"
	}
	support := formatPrice(levels.Support)
	resistance := formatPrice(levels.Resistance)
	if levels.Manual {
		support += "*"
		resistance += "*"
	}
	return support, resistance
}

func formatPrice(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
