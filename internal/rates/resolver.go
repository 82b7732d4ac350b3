// Package rates resolves historical exchange rates with a day-by-day
// fallback walk-back and a two-level (pair, date) cache.
package rates

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sellerdesk/payout-reconciler/internal/domain"
)

// maxAttempts bounds the walk-back: the requested date plus up to four
// earlier calendar days.
const maxAttempts = 5

type Resolver struct {
	cache  *Cache
	logger *zap.Logger
	now    func() time.Time
}

func NewResolver(cache *Cache, logger *zap.Logger) *Resolver {
	return &Resolver{cache: cache, logger: logger, now: time.Now}
}

// Resolve returns the rate for the source's pair on the requested date,
// walking backward one day at a time when the exact date is unavailable.
// The first successful value wins; on exhaustion the caller gets
// ErrRateNotFound and is expected to leave the dependent field nil, never
// zero. Dates that have not yet occurred are refused up front.
func (r *Resolver) Resolve(ctx context.Context, src Source, date time.Time) (decimal.Decimal, error) {
	date = day(date)
	if date.After(day(r.now())) {
		return decimal.Decimal{}, domain.ErrRateNotFound
	}

	if rate, ok := r.cache.Get(src.Pair(), date); ok {
		return rate, nil
	}

	candidates := make([]time.Time, 0, maxAttempts)
	for i := 0; i < maxAttempts; i++ {
		candidates = append(candidates, date.AddDate(0, 0, -i))
	}

	rate, hit, err := firstSuccess(candidates, func(d time.Time) (decimal.Decimal, error) {
		if cached, ok := r.cache.Get(src.Pair(), d); ok {
			return cached, nil
		}
		return src.Rate(ctx, d)
	})
	if err != nil {
		r.logger.Warn("rate fallback exhausted",
			zap.String("pair", src.Pair()),
			zap.String("source", src.Name()),
			zap.String("date", date.Format(domain.DateKey)),
			zap.Error(err),
		)
		return decimal.Decimal{}, domain.ErrRateNotFound
	}

	// Cache under both the day that answered and the day that was asked,
	// so sibling orders in the same period hit the cache directly.
	r.cache.Put(src.Pair(), hit, rate, src.Name())
	if !hit.Equal(date) {
		r.cache.Put(src.Pair(), date, rate, src.Name())
	}
	return rate, nil
}

// firstSuccess runs lookup over the candidate dates in order and returns
// the first successful value. Not-found and transient failures both move
// on to the next candidate; only exhaustion is an error.
func firstSuccess(candidates []time.Time, lookup func(time.Time) (decimal.Decimal, error)) (decimal.Decimal, time.Time, error) {
	var lastErr error
	for _, d := range candidates {
		rate, err := lookup(d)
		if err == nil {
			return rate, d, nil
		}
		lastErr = err
	}
	return decimal.Decimal{}, time.Time{}, lastErr
}

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
