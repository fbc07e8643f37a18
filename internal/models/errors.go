package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNoData indicates a requested series does not exist or is empty.
	ErrNoData = errors.New("no stored data")

	// ErrEmptyWatchlist indicates an operation that needs at least one ticker.
	ErrEmptyWatchlist = errors.New("watchlist is empty")
)

// FetchError reports a failed page fetch after all retry attempts.
// It is transient and non-fatal to the rest of the batch.
type FetchError struct {
	Ticker   string
	Offset   int
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch failed for %s at offset %d after %d attempts: %v",
		e.Ticker, e.Offset, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// SchemaError reports an upstream response that does not match the expected
// payload shape (missing history key, unknown columns, malformed rows).
type SchemaError struct {
	Ticker string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error for %s: %s", e.Ticker, e.Reason)
}

// CorruptDataError reports a persisted series that violates the
// strictly-increasing-date invariant. Fatal for that ticker until rebuilt.
type CorruptDataError struct {
	Ticker string
	Row    int
	Reason string
}

func (e *CorruptDataError) Error() string {
	return fmt.Sprintf("corrupt series for %s at row %d: %s", e.Ticker, e.Row, e.Reason)
}

// InsufficientDataError reports that an indicator window exceeds the
// available series length. It degrades that indicator, not the whole run.
type InsufficientDataError struct {
	Indicator string
	Need      int
	Have      int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: insufficient data (need %d bars, have %d)", e.Indicator, e.Need, e.Have)
}

// IsInsufficientData reports whether err is an InsufficientDataError.
func IsInsufficientData(err error) bool {
	var ie *InsufficientDataError
	return errors.As(err, &ie)
}
