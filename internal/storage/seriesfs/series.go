package seriesfs

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bobmcallan/stockline/internal/models"
)

const dateLayout = "2006-01-02"

// csvHeader is the fixed column order of a persisted series file.
var csvHeader = []string{"DATE", "OPEN", "HIGH", "LOW", "CLOSE", "VOLUME"}

type seriesStorage struct {
	store *Store
}

func (ss *seriesStorage) path(ticker string) string {
	return filepath.Join(ss.store.seriesDir, sanitizeKey(models.NormalizeTicker(ticker))+".csv")
}

// Load reads the persisted series for a ticker. The strictly-increasing-date
// invariant is checked on every load; a violation surfaces as a
// CorruptDataError so the caller can decide to quarantine or rebuild.
func (ss *seriesStorage) Load(_ context.Context, ticker string) (*models.Series, error) {
	ticker = models.NormalizeTicker(ticker)

	f, err := os.Open(ss.path(ticker))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("series for %s: %w", ticker, models.ErrNoData)
		}
		return nil, fmt.Errorf("failed to open series for %s: %w", ticker, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(csvHeader)

	rows, err := r.ReadAll()
	if err != nil {
		return nil, &models.CorruptDataError{Ticker: ticker, Reason: fmt.Sprintf("unreadable csv: %v", err)}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("series for %s: %w", ticker, models.ErrNoData)
	}
	if !isHeader(rows[0]) {
		return nil, &models.CorruptDataError{Ticker: ticker, Reason: "missing header row"}
	}

	series := &models.Series{Ticker: ticker, Bars: make([]models.Bar, 0, len(rows)-1)}
	for i, row := range rows[1:] {
		bar, err := parseRow(row)
		if err != nil {
			return nil, &models.CorruptDataError{Ticker: ticker, Row: i + 1, Reason: err.Error()}
		}
		series.Bars = append(series.Bars, bar)
	}

	if err := series.Validate(); err != nil {
		return nil, err
	}
	return series, nil
}

// Merge unions newBars with the stored series keyed by date. On a date
// collision the new bar wins: fetched data supersedes the stale cached row.
// The merged series is re-sorted, re-validated, and persisted atomically.
func (ss *seriesStorage) Merge(ctx context.Context, ticker string, newBars []models.Bar) (*models.Series, error) {
	ticker = models.NormalizeTicker(ticker)

	existing, err := ss.Load(ctx, ticker)
	if err != nil {
		if !errors.Is(err, models.ErrNoData) {
			return nil, err
		}
		existing = &models.Series{Ticker: ticker}
	}

	byDate := make(map[string]models.Bar, len(existing.Bars)+len(newBars))
	for _, b := range existing.Bars {
		byDate[b.Date.Format(dateLayout)] = b
	}
	for _, b := range newBars {
		byDate[b.Date.Format(dateLayout)] = b
	}

	merged := &models.Series{Ticker: ticker, Bars: make([]models.Bar, 0, len(byDate))}
	for _, b := range byDate {
		merged.Bars = append(merged.Bars, b)
	}
	sort.Slice(merged.Bars, func(i, j int) bool {
		return merged.Bars[i].Date.Before(merged.Bars[j].Date)
	})

	if err := merged.Validate(); err != nil {
		return nil, err
	}

	if err := ss.save(merged); err != nil {
		return nil, err
	}

	ss.store.logger.Debug().
		Str("ticker", ticker).
		Int("existing", len(existing.Bars)).
		Int("incoming", len(newBars)).
		Int("merged", len(merged.Bars)).
		Msg("Series merged")

	return merged, nil
}

// LastDate returns the most recent stored date for a ticker.
func (ss *seriesStorage) LastDate(ctx context.Context, ticker string) (time.Time, bool, error) {
	series, err := ss.Load(ctx, ticker)
	if err != nil {
		if errors.Is(err, models.ErrNoData) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	if series.IsEmpty() {
		return time.Time{}, false, nil
	}
	return series.LastDate(), true, nil
}

// Reset deletes the persisted series file.
func (ss *seriesStorage) Reset(_ context.Context, ticker string) error {
	err := os.Remove(ss.path(ticker))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to reset series for %s: %w", ticker, err)
	}
	ss.store.logger.Info().Str("ticker", models.NormalizeTicker(ticker)).Msg("Series reset")
	return nil
}

// List returns tickers that have a stored series file.
func (ss *seriesStorage) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(ss.store.seriesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read series dir: %w", err)
	}
	var tickers []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasSuffix(name, ".csv") && !strings.HasPrefix(name, ".tmp-") {
			tickers = append(tickers, strings.TrimSuffix(name, ".csv"))
		}
	}
	sort.Strings(tickers)
	return tickers, nil
}

func (ss *seriesStorage) save(series *models.Series) error {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, b := range series.Bars {
		row := []string{
			b.Date.Format(dateLayout),
			formatPrice(b.Open),
			formatPrice(b.High),
			formatPrice(b.Low),
			formatPrice(b.Close),
			strconv.FormatInt(b.Volume, 10),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}

	return writeAtomic(ss.path(series.Ticker), []byte(sb.String()))
}

func isHeader(row []string) bool {
	if len(row) != len(csvHeader) {
		return false
	}
	for i, col := range csvHeader {
		if !strings.EqualFold(strings.TrimSpace(row[i]), col) {
			return false
		}
	}
	return true
}

func parseRow(row []string) (models.Bar, error) {
	var bar models.Bar

	date, err := time.Parse(dateLayout, strings.TrimSpace(row[0]))
	if err != nil {
		return bar, fmt.Errorf("bad DATE %q", row[0])
	}
	bar.Date = date

	prices := []struct {
		name string
		dest *float64
	}{
		{"OPEN", &bar.Open},
		{"HIGH", &bar.High},
		{"LOW", &bar.Low},
		{"CLOSE", &bar.Close},
	}
	for i, p := range prices {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i+1]), 64)
		if err != nil || v < 0 {
			return bar, fmt.Errorf("bad %s %q", p.name, row[i+1])
		}
		*p.dest = v
	}

	vol, err := strconv.ParseInt(strings.TrimSpace(row[5]), 10, 64)
	if err != nil || vol < 0 {
		return bar, fmt.Errorf("bad VOLUME %q", row[5])
	}
	bar.Volume = vol

	return bar, nil
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
