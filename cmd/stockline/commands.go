package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bobmcallan/stockline/internal/app"
	"github.com/bobmcallan/stockline/internal/common"
	"github.com/bobmcallan/stockline/internal/models"
)

const dateLayout = "2006-01-02"

// runUpdate fetches new bars for one ticker or the whole watchlist.
func runUpdate(ctx context.Context, a *app.App, args []string) error {
	if len(args) > 0 {
		ticker := models.NormalizeTicker(args[0])
		updated, err := a.IngestService.UpdateSeries(ctx, ticker)
		if err != nil {
			return err
		}
		if updated {
			fmt.Printf("%s: updated\n", ticker)
		} else {
			fmt.Printf("%s: already current\n", ticker)
		}
		return nil
	}

	wl, err := a.WatchlistService.Get(ctx)
	if err != nil {
		return err
	}
	if len(wl.Tickers) == 0 {
		return models.ErrEmptyWatchlist
	}

	results := a.IngestService.UpdateWatchlist(ctx, wl.Tickers)

	failed := 0
	for _, ticker := range sortedKeys(results) {
		if err := results[ticker]; err != nil {
			failed++
			fmt.Printf("%s: FAILED: %v\n", ticker, err)
		} else {
			fmt.Printf("%s: ok\n", ticker)
		}
	}
	fmt.Printf("\n%d updated, %d failed\n", len(results)-failed, failed)
	if failed == len(results) {
		return fmt.Errorf("all tickers failed")
	}
	return nil
}

// runAnalyze scores one ticker, or the whole watchlist with a report.
func runAnalyze(ctx context.Context, a *app.App, args []string) error {
	if len(args) > 0 {
		analysis, err := a.AnalysisService.AnalyzeTicker(ctx, args[0])
		if err != nil {
			return err
		}
		printAnalysis(analysis)
		return nil
	}

	wl, err := a.WatchlistService.Get(ctx)
	if err != nil {
		return err
	}
	if len(wl.Tickers) == 0 {
		return models.ErrEmptyWatchlist
	}

	results, failures := a.AnalysisService.AnalyzeWatchlist(ctx, wl.Tickers)
	for _, r := range results {
		fmt.Printf("%-8s score %4d  %s\n", r.Ticker, r.Score.Score, r.Score.Signal)
	}
	for _, ticker := range sortedKeys(failures) {
		fmt.Printf("%-8s FAILED: %v\n", ticker, failures[ticker])
	}

	if len(results) == 0 {
		return fmt.Errorf("no analyzable tickers")
	}

	path, err := a.ReportService.Generate(ctx, results)
	if err != nil {
		return err
	}
	fmt.Printf("\nReport: %s\n", path)
	return nil
}

// runAdd starts tracking a ticker and fetches its initial history.
func runAdd(ctx context.Context, a *app.App, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: stockline add <ticker>")
	}
	ticker := models.NormalizeTicker(args[0])

	if _, err := a.WatchlistService.Add(ctx, ticker); err != nil {
		return err
	}
	fmt.Printf("%s: tracked\n", ticker)

	updated, err := a.IngestService.UpdateSeries(ctx, ticker)
	if err != nil {
		return fmt.Errorf("initial fetch failed (ticker stays tracked): %w", err)
	}
	if updated {
		fmt.Printf("%s: history fetched\n", ticker)
	} else {
		fmt.Printf("%s: no history available yet\n", ticker)
	}
	return nil
}

func runRemove(ctx context.Context, a *app.App, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: stockline remove <ticker>")
	}
	ticker := models.NormalizeTicker(args[0])
	if _, err := a.WatchlistService.Remove(ctx, ticker); err != nil {
		return err
	}
	fmt.Printf("%s: removed\n", ticker)
	return nil
}

func runList(ctx context.Context, a *app.App) error {
	wl, err := a.WatchlistService.Get(ctx)
	if err != nil {
		return err
	}
	if len(wl.Tickers) == 0 {
		fmt.Println("Watchlist is empty")
		return nil
	}
	for _, ticker := range wl.Tickers {
		line := ticker
		if kl := wl.Levels(ticker); kl != nil {
			line += fmt.Sprintf("  (manual levels: %d support, %d resistance)",
				len(kl.Support), len(kl.Resistance))
		}
		fmt.Println(line)
	}
	return nil
}

func runInfo(ctx context.Context, a *app.App, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: stockline info <ticker>")
	}

	series, err := a.Storage.SeriesStorage().Load(ctx, models.NormalizeTicker(args[0]))
	if err != nil {
		return err
	}

	stats := series.Stats()
	fmt.Printf("Ticker:       %s\n", stats.Ticker)
	fmt.Printf("Records:      %d\n", stats.Records)
	fmt.Printf("Date range:   %s .. %s\n", stats.DateFrom.Format(dateLayout), stats.DateTo.Format(dateLayout))
	fmt.Printf("Close:        avg %.2f, min %.2f, max %.2f\n", stats.AvgClose, stats.MinClose, stats.MaxClose)
	fmt.Printf("Total volume: %d\n", stats.TotalVolume)
	return nil
}

func runStatus(ctx context.Context, a *app.App) error {
	fmt.Printf("stockline %s (%s)\n", common.GetVersion(), common.GetGitCommit())
	fmt.Printf("Environment:  %s\n", a.Config.Environment)
	fmt.Printf("Data path:    %s\n", a.Storage.DataPath())

	wl, err := a.WatchlistService.Get(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Watchlist:    %d tickers\n", len(wl.Tickers))

	stored, err := a.Storage.SeriesStorage().List(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Stored:       %d series\n", len(stored))

	for _, ticker := range stored {
		last, ok, err := a.Storage.SeriesStorage().LastDate(ctx, ticker)
		if err != nil || !ok {
			fmt.Printf("  %-8s (empty)\n", ticker)
			continue
		}
		fmt.Printf("  %-8s through %s\n", ticker, last.Format(dateLayout))
	}
	return nil
}

func printAnalysis(a *models.TickerAnalysis) {
	ind := &a.Indicators
	fmt.Printf("%s  %.2f (%+.1f%%)\n", a.Ticker, ind.CurrentPrice, ind.PriceChangePct)
	fmt.Printf("Score:  %d (%s)\n", a.Score.Score, a.Score.Signal)

	if len(a.Score.Factors) > 0 {
		labels := make([]string, len(a.Score.Factors))
		for i, f := range a.Score.Factors {
			labels[i] = fmt.Sprintf("%s %+d", f.Label, f.Weight)
		}
		fmt.Printf("Factors: %s\n", strings.Join(labels, ", "))
	}

	if ind.Trend.Insufficient {
		fmt.Println("Trend:  insufficient data")
	} else {
		fmt.Printf("Trend:  %s (%s, ADX %.1f)\n", ind.Trend.Direction, ind.Trend.Strength, ind.Trend.ADX)
	}
	if rsi, ok := ind.LastRSI(); ok {
		fmt.Printf("RSI:    %.1f\n", rsi)
	}
	for _, window := range []int{20, 50, 200} {
		if v, ok := ind.LastEMA(window); ok {
			fmt.Printf("EMA%-3d  %.2f\n", window, v)
		}
	}

	levels := ind.Levels
	if levels.Support != 0 || levels.Resistance != 0 {
		suffix := ""
		if levels.Manual {
			suffix = " (manual)"
		}
		fmt.Printf("Levels: support %.2f, resistance %.2f%s\n", levels.Support, levels.Resistance, suffix)
	}
	fmt.Printf("Volume: trend %s, POC %.2f\n", ind.Volume.Trend, ind.Volume.PointOfControl)
	fmt.Printf("Volatility: %.2f%%\n", ind.Volatility)

	for _, cond := range ind.Conditions {
		fmt.Printf("Note:   %s\n", cond)
	}
}

func sortedKeys(m map[string]error) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
