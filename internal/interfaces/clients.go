// Package interfaces defines service contracts for Stockline
package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/stockline/internal/models"
)

// BarSource provides daily bars from a remote market data provider.
// Implementations page through the upstream source internally and return the
// full range, or an error when any page could not be fetched. A partial
// range is never returned.
type BarSource interface {
	// FetchRange retrieves daily bars for the date range [from, to].
	// An empty result is a normal outcome, not an error.
	FetchRange(ctx context.Context, ticker string, from, to time.Time) ([]models.Bar, error)

	// Name identifies the source for logging.
	Name() string
}
