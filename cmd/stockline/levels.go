package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/bobmcallan/stockline/internal/app"
	"github.com/bobmcallan/stockline/internal/models"
)

// runLevels sets manual support/resistance levels for a tracked ticker.
// Passing empty lists clears the override.
func runLevels(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("levels", flag.ContinueOnError)
	support := fs.String("support", "", "comma-separated support prices")
	resistance := fs.String("resistance", "", "comma-separated resistance prices")
	notes := fs.String("notes", "", "free-form note")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: stockline levels <ticker> [-support 95.5,100] [-resistance 120] [-notes text]")
	}

	if len(args) == 0 {
		fs.Usage()
		return fmt.Errorf("missing ticker")
	}
	ticker := models.NormalizeTicker(args[0])
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	supportLevels, err := parsePrices(*support)
	if err != nil {
		return fmt.Errorf("bad support levels: %w", err)
	}
	resistanceLevels, err := parsePrices(*resistance)
	if err != nil {
		return fmt.Errorf("bad resistance levels: %w", err)
	}

	levels := models.KeyLevels{
		Support:    supportLevels,
		Resistance: resistanceLevels,
		Notes:      *notes,
	}
	if err := a.WatchlistService.SetKeyLevels(ctx, ticker, levels); err != nil {
		return err
	}

	if len(supportLevels) == 0 && len(resistanceLevels) == 0 {
		fmt.Printf("%s: manual levels cleared\n", ticker)
	} else {
		fmt.Printf("%s: %d support, %d resistance\n", ticker, len(supportLevels), len(resistanceLevels))
	}
	return nil
}

func parsePrices(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	prices := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, err
		}
		if v <= 0 {
			return nil, fmt.Errorf("price must be positive: %v", v)
		}
		prices = append(prices, v)
	}
	return prices, nil
}
