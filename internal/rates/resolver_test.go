package rates

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sellerdesk/payout-reconciler/internal/domain"
	"github.com/sellerdesk/payout-reconciler/internal/repository"
)

type fakeSource struct {
	pair  string
	rates map[string]decimal.Decimal
	calls map[string]int
}

func newFakeSource(pair string) *fakeSource {
	return &fakeSource{pair: pair, rates: map[string]decimal.Decimal{}, calls: map[string]int{}}
}

func (f *fakeSource) set(day string, rate float64) {
	f.rates[day] = decimal.NewFromFloat(rate)
}

func (f *fakeSource) Name() string { return "fake" }
func (f *fakeSource) Pair() string { return f.pair }

func (f *fakeSource) Rate(_ context.Context, date time.Time) (decimal.Decimal, error) {
	key := date.Format(domain.DateKey)
	f.calls[key]++
	if r, ok := f.rates[key]; ok {
		return r, nil
	}
	return decimal.Decimal{}, domain.ErrRateNotFound
}

func newTestResolver(t *testing.T, now time.Time) *Resolver {
	t.Helper()

	db, err := repository.InitDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cache, err := NewCache(64, repository.NewRateRepo(db))
	require.NoError(t, err)

	r := NewResolver(cache, zap.NewNop())
	r.now = func() time.Time { return now }
	return r
}

func mustDay(tb testing.TB, s string) time.Time {
	tb.Helper()
	d, err := time.Parse(domain.DateKey, s)
	if err != nil {
		tb.Fatal(err)
	}
	return d
}

func TestResolveExactDate(t *testing.T) {
	r := newTestResolver(t, mustDay(t, "2025-06-30"))
	src := newFakeSource("TRY/USD")
	src.set("2025-06-16", 35)

	rate, err := r.Resolve(context.Background(), src, mustDay(t, "2025-06-16"))
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.NewFromInt(35)))
}

func TestResolveWalksBackAndStopsAtFirstHit(t *testing.T) {
	r := newTestResolver(t, mustDay(t, "2025-06-30"))
	src := newFakeSource("TRY/USD")
	// D and D-1 missing, D-2 and D-3 present: D-2 must win and D-3 must
	// never be asked for.
	src.set("2025-06-14", 34.8)
	src.set("2025-06-13", 34.5)

	rate, err := r.Resolve(context.Background(), src, mustDay(t, "2025-06-16"))
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.NewFromFloat(34.8)))
	assert.Equal(t, 0, src.calls["2025-06-13"], "walk-back must not continue past the first success")
}

func TestResolveExhaustsFallbackWindow(t *testing.T) {
	r := newTestResolver(t, mustDay(t, "2025-06-30"))
	src := newFakeSource("TRY/USD")
	// A value exists just outside the 5-day window.
	src.set("2025-06-11", 34)

	_, err := r.Resolve(context.Background(), src, mustDay(t, "2025-06-16"))
	assert.ErrorIs(t, err, domain.ErrRateNotFound)
	assert.Equal(t, 0, src.calls["2025-06-11"], "window is five attempts, not six")
}

func TestResolveRefusesFutureDates(t *testing.T) {
	r := newTestResolver(t, mustDay(t, "2025-06-16"))
	src := newFakeSource("TRY/USD")
	src.set("2025-06-20", 35)

	_, err := r.Resolve(context.Background(), src, mustDay(t, "2025-06-20"))
	assert.ErrorIs(t, err, domain.ErrRateNotFound)
	assert.Empty(t, src.calls, "no speculative lookups for dates that have not occurred")
}

func TestResolveCachesResolvedValues(t *testing.T) {
	r := newTestResolver(t, mustDay(t, "2025-06-30"))
	src := newFakeSource("TRY/USD")
	src.set("2025-06-16", 35)

	for i := 0; i < 3; i++ {
		rate, err := r.Resolve(context.Background(), src, mustDay(t, "2025-06-16"))
		require.NoError(t, err)
		assert.True(t, rate.Equal(decimal.NewFromInt(35)))
	}

	assert.Equal(t, 1, src.calls["2025-06-16"], "second and third resolve must hit the cache")
}

func TestResolveCachesUnderRequestedDateAfterWalkBack(t *testing.T) {
	r := newTestResolver(t, mustDay(t, "2025-06-30"))
	src := newFakeSource("TRY/USD")
	src.set("2025-06-14", 34.8)

	_, err := r.Resolve(context.Background(), src, mustDay(t, "2025-06-16"))
	require.NoError(t, err)

	// Asking again for the same unavailable date must not re-walk.
	_, err = r.Resolve(context.Background(), src, mustDay(t, "2025-06-16"))
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls["2025-06-16"])
	assert.Equal(t, 1, src.calls["2025-06-15"])
}
