// Package moex provides a client for the MOEX ISS history API
package moex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/stockline/internal/common"
	"github.com/bobmcallan/stockline/internal/interfaces"
	"github.com/bobmcallan/stockline/internal/models"
)

const (
	DefaultBaseURL    = "https://iss.moex.com/iss/history/engines/stock/markets/shares/securities"
	DefaultTimeout    = 10 * time.Second
	DefaultRateLimit  = 5 // requests per second
	DefaultPageSize   = 100
	DefaultRetries    = 3
	DefaultRetryDelay = time.Second
)

// Client implements the BarSource interface against the MOEX ISS endpoint.
// The upstream caps pages at 100 rows; FetchRange pages through with an
// increasing row offset until a short page signals the end of data.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
	pageSize   int
	retries    int
	retryDelay time.Duration
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithPageSize sets the page size (capped at the upstream limit of 100)
func WithPageSize(size int) ClientOption {
	return func(c *Client) {
		if size > 0 && size <= 100 {
			c.pageSize = size
		}
	}
}

// WithRetries sets the per-page retry attempt count
func WithRetries(retries int) ClientOption {
	return func(c *Client) {
		if retries > 0 {
			c.retries = retries
		}
	}
}

// WithRetryDelay sets the base delay between retry attempts
func WithRetryDelay(delay time.Duration) ClientOption {
	return func(c *Client) {
		c.retryDelay = delay
	}
}

// NewClient creates a new MOEX ISS client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:     common.NewSilentLogger(),
		pageSize:   DefaultPageSize,
		retries:    DefaultRetries,
		retryDelay: DefaultRetryDelay,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Name identifies the source for logging.
func (c *Client) Name() string { return "moex" }

// historyResponse is the ISS tabular payload: a columns list plus rows of
// positional values.
type historyResponse struct {
	History *struct {
		Columns []string            `json:"columns"`
		Data    [][]json.RawMessage `json:"data"`
	} `json:"history"`
}

// FetchRange retrieves daily bars for [from, to], paging until a short page.
// A page that fails after all retry attempts aborts the whole range: the
// caller never receives a partially fetched sequence.
func (c *Client) FetchRange(ctx context.Context, ticker string, from, to time.Time) ([]models.Bar, error) {
	ticker = models.NormalizeTicker(ticker)

	var all []models.Bar
	start := 0

	for {
		bars, err := c.fetchPage(ctx, ticker, from, to, start)
		if err != nil {
			return nil, err
		}

		all = append(all, bars...)

		if len(bars) < c.pageSize {
			break
		}
		start += c.pageSize
	}

	all = normalizeBars(all)

	c.logger.Debug().
		Str("ticker", ticker).
		Int("bars", len(all)).
		Msg("MOEX range fetched")

	return all, nil
}

// fetchPage requests one page, retrying transient failures up to the
// configured attempt count with a linear backoff. Schema errors are not
// retried: a malformed payload will not fix itself.
func (c *Client) fetchPage(ctx context.Context, ticker string, from, to time.Time, start int) ([]models.Bar, error) {
	var lastErr error

	for attempt := 1; attempt <= c.retries; attempt++ {
		bars, err := c.requestPage(ctx, ticker, from, to, start)
		if err == nil {
			return bars, nil
		}

		var schemaErr *models.SchemaError
		if errors.As(err, &schemaErr) {
			return nil, err
		}

		lastErr = err
		c.logger.Warn().
			Str("ticker", ticker).
			Int("offset", start).
			Int("attempt", attempt).
			Err(err).
			Msg("Page fetch failed")

		if attempt < c.retries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay * time.Duration(attempt)):
			}
		}
	}

	return nil, &models.FetchError{
		Ticker:   ticker,
		Offset:   start,
		Attempts: c.retries,
		Err:      lastErr,
	}
}

func (c *Client) requestPage(ctx context.Context, ticker string, from, to time.Time, start int) ([]models.Bar, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("iss.only", "history")
	params.Set("start", strconv.Itoa(start))
	params.Set("limit", strconv.Itoa(c.pageSize))
	if !from.IsZero() {
		params.Set("from", from.Format("2006-01-02"))
	}
	if !to.IsZero() {
		params.Set("till", to.Format("2006-01-02"))
	}

	reqURL := fmt.Sprintf("%s/%s.json?%s", c.baseURL, url.PathEscape(ticker), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("moex: status %d: %s", resp.StatusCode, string(body))
	}

	var payload historyResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &models.SchemaError{Ticker: ticker, Reason: fmt.Sprintf("undecodable response: %v", err)}
	}
	if payload.History == nil {
		return nil, &models.SchemaError{Ticker: ticker, Reason: "missing history payload"}
	}

	return mapRows(ticker, payload.History.Columns, payload.History.Data)
}

// requiredColumns maps ISS column names to Bar fields.
var requiredColumns = []string{"TRADEDATE", "OPEN", "HIGH", "LOW", "CLOSE", "VOLUME"}

// mapRows converts the positional ISS rows to bars using the columns index.
func mapRows(ticker string, columns []string, data [][]json.RawMessage) ([]models.Bar, error) {
	idx := make(map[string]int, len(columns))
	for i, col := range columns {
		idx[col] = i
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, &models.SchemaError{Ticker: ticker, Reason: fmt.Sprintf("missing column %s", col)}
		}
	}

	bars := make([]models.Bar, 0, len(data))
	for _, row := range data {
		if len(row) < len(columns) {
			return nil, &models.SchemaError{Ticker: ticker, Reason: "row shorter than columns"}
		}

		dateStr, err := rawString(row[idx["TRADEDATE"]])
		if err != nil {
			return nil, &models.SchemaError{Ticker: ticker, Reason: "bad TRADEDATE value"}
		}
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, &models.SchemaError{Ticker: ticker, Reason: fmt.Sprintf("bad TRADEDATE %q", dateStr)}
		}

		bars = append(bars, models.Bar{
			Date:   date,
			Open:   rawFloat(row[idx["OPEN"]]),
			High:   rawFloat(row[idx["HIGH"]]),
			Low:    rawFloat(row[idx["LOW"]]),
			Close:  rawFloat(row[idx["CLOSE"]]),
			Volume: int64(rawFloat(row[idx["VOLUME"]])),
		})
	}
	return bars, nil
}

func rawString(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", err
	}
	return s, nil
}

// rawFloat tolerates null and string-encoded numbers in ISS rows.
func rawFloat(raw json.RawMessage) float64 {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return v
		}
	}
	return 0
}

// normalizeBars drops non-trading rows (zero volume), collapses duplicate
// dates keeping the higher-volume session, and sorts ascending by date.
func normalizeBars(bars []models.Bar) []models.Bar {
	byDate := make(map[string]models.Bar, len(bars))
	for _, b := range bars {
		if b.Volume <= 0 {
			continue
		}
		key := b.Date.Format("2006-01-02")
		if prev, ok := byDate[key]; !ok || b.Volume > prev.Volume {
			byDate[key] = b
		}
	}

	out := make([]models.Bar, 0, len(byDate))
	for _, b := range byDate {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Ensure Client implements BarSource
var _ interfaces.BarSource = (*Client)(nil)
