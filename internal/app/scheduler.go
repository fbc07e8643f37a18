package app

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
)

// RunScheduler runs the update-analyze-report cycle on the configured cron
// schedule until the context is cancelled. The expression carries a seconds
// field, e.g. "0 30 19 * * 1-5" for weekdays at 19:30.
func (a *App) RunScheduler(ctx context.Context) error {
	schedule := a.Config.Schedule.UpdateCron

	c := cron.New(cron.WithSeconds())
	_, err := c.AddFunc(schedule, func() {
		a.runCycle(ctx)
	})
	if err != nil {
		return err
	}

	a.Logger.Info().Str("schedule", schedule).Msg("Scheduler started")
	c.Start()

	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
	a.Logger.Info().Msg("Scheduler stopped")
	return nil
}

// runCycle executes one full update, analysis, and report pass over the
// watchlist. Failures are logged; the scheduler keeps running.
func (a *App) runCycle(ctx context.Context) {
	start := time.Now()

	wl, err := a.WatchlistService.Get(ctx)
	if err != nil {
		a.Logger.Error().Err(err).Msg("Scheduled cycle: watchlist unavailable")
		return
	}
	if len(wl.Tickers) == 0 {
		a.Logger.Info().Msg("Scheduled cycle: watchlist empty, nothing to do")
		return
	}

	a.IngestService.UpdateWatchlist(ctx, wl.Tickers)

	results, failures := a.AnalysisService.AnalyzeWatchlist(ctx, wl.Tickers)
	if len(results) == 0 {
		a.Logger.Warn().Int("failed", len(failures)).Msg("Scheduled cycle: no analyzable tickers")
		return
	}

	path, err := a.ReportService.Generate(ctx, results)
	if err != nil {
		a.Logger.Error().Err(err).Msg("Scheduled cycle: report generation failed")
		return
	}

	a.Logger.Info().
		Str("report", path).
		Int("analyzed", len(results)).
		Int("failed", len(failures)).
		Dur("elapsed", time.Since(start)).
		Msg("Scheduled cycle: complete")
}
