package repository

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sellerdesk/payout-reconciler/internal/domain"
)

func testRepos(t *testing.T) (*OrderRepo, *SummaryRepo, *RateRepo) {
	t.Helper()
	db, err := InitDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewOrderRepo(db), NewSummaryRepo(db), NewRateRepo(db)
}

func dec(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}

func tm(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func sampleRecord(orderID string) *domain.OrderFinancialRecord {
	return &domain.OrderFinancialRecord{
		OrderID:                 orderID,
		ProductName:             "ceramic mug",
		PurchaseCostLocal:       dec(1000),
		SettlementAmountReserve: dec(50),
		SettlementAmountLocal:   dec(2000),
		NetProfitReserve:        dec(21.43),
		NetProfitLocal:          dec(1000),
		OrderDate:               tm("2025-06-02T00:00:00Z"),
		DeliveryDate:            tm("2025-06-10T00:00:00Z"),
		ProfitCalculatedAt:      tm("2025-07-01T12:00:00Z"),
	}
}

func TestOrderUpsertIsIdempotent(t *testing.T) {
	orders, _, _ := testRepos(t)
	rec := sampleRecord("ORD-1")

	require.NoError(t, orders.Upsert(rec))
	first, err := orders.Get("ORD-1")
	require.NoError(t, err)

	require.NoError(t, orders.Upsert(rec))
	second, err := orders.Get("ORD-1")
	require.NoError(t, err)

	assert.Equal(t, first.ProductName, second.ProductName)
	assert.True(t, first.NetProfitReserve.Equal(*second.NetProfitReserve))
	assert.True(t, first.SettlementAmountLocal.Equal(*second.SettlementAmountLocal))
	assert.Equal(t, first.DeliveryDate, second.DeliveryDate)

	n, err := orders.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n, "upserts never create a second row for the same order")
}

func TestOrderUpsertFullyOverwritesProfitFields(t *testing.T) {
	orders, _, _ := testRepos(t)
	require.NoError(t, orders.Upsert(sampleRecord("ORD-1")))

	// A recompute that could not resolve rates writes nils over the
	// previous values: no partial merge.
	require.NoError(t, orders.Upsert(&domain.OrderFinancialRecord{
		OrderID:           "ORD-1",
		PurchaseCostLocal: dec(1000),
	}))

	got, err := orders.Get("ORD-1")
	require.NoError(t, err)
	assert.Nil(t, got.NetProfitReserve)
	assert.Nil(t, got.SettlementAmountLocal)
	assert.Empty(t, got.ProductName)
}

func TestUpsertPurchaseCostPreservesComputedFields(t *testing.T) {
	orders, _, _ := testRepos(t)
	require.NoError(t, orders.Upsert(sampleRecord("ORD-1")))

	require.NoError(t, orders.UpsertPurchaseCost("ORD-1", decimal.NewFromInt(1200)))

	got, err := orders.Get("ORD-1")
	require.NoError(t, err)
	assert.True(t, got.PurchaseCostLocal.Equal(decimal.NewFromInt(1200)))
	require.NotNil(t, got.NetProfitReserve, "setting the cost does not clobber computed fields")
}

func TestGetMissingOrder(t *testing.T) {
	orders, _, _ := testRepos(t)
	_, err := orders.Get("nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMarkCancelledCreatesRecord(t *testing.T) {
	orders, _, _ := testRepos(t)
	require.NoError(t, orders.MarkCancelled("ORD-9"))

	got, err := orders.Get("ORD-9")
	require.NoError(t, err)
	assert.True(t, got.IsCancelled)
}

func TestListIncomplete(t *testing.T) {
	orders, _, _ := testRepos(t)

	complete := sampleRecord("ORD-complete")
	require.NoError(t, orders.Upsert(complete))

	noDelivery := sampleRecord("ORD-no-delivery")
	noDelivery.DeliveryDate = nil
	require.NoError(t, orders.Upsert(noDelivery))

	noReserve := sampleRecord("ORD-no-reserve")
	noReserve.SettlementAmountReserve = nil
	require.NoError(t, orders.Upsert(noReserve))

	cancelled := sampleRecord("ORD-cancelled")
	cancelled.DeliveryDate = nil
	cancelled.IsCancelled = true
	require.NoError(t, orders.Upsert(cancelled))

	got, err := orders.ListIncomplete(time.Now().AddDate(0, 0, -60), 50)
	require.NoError(t, err)

	ids := make([]string, 0, len(got))
	for _, r := range got {
		ids = append(ids, r.OrderID)
	}
	assert.ElementsMatch(t, []string{"ORD-no-delivery", "ORD-no-reserve"}, ids)
}

func TestListIncompleteHonorsLimit(t *testing.T) {
	orders, _, _ := testRepos(t)
	for _, id := range []string{"a", "b", "c"} {
		rec := sampleRecord(id)
		rec.DeliveryDate = nil
		require.NoError(t, orders.Upsert(rec))
	}

	got, err := orders.ListIncomplete(time.Now().AddDate(0, 0, -60), 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestResetComputedPreservesImportedFacts(t *testing.T) {
	orders, _, _ := testRepos(t)
	rec := sampleRecord("ORD-1")
	rec.IsCancelled = true
	require.NoError(t, orders.Upsert(rec))

	n, err := orders.ResetComputed()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := orders.Get("ORD-1")
	require.NoError(t, err)
	assert.True(t, got.PurchaseCostLocal.Equal(decimal.NewFromInt(1000)), "purchase cost survives a reset")
	assert.True(t, got.IsCancelled, "cancellation flag survives a reset")
	assert.Nil(t, got.NetProfitReserve)
	assert.Nil(t, got.SettlementAmountReserve)
	assert.Nil(t, got.DeliveryDate)
}

func TestSummaryReplaceIsFullSnapshot(t *testing.T) {
	_, summaries, _ := testRepos(t)

	first := &domain.MonthlyProfitSummary{
		ID: "run-1", Seller: "acme", Year: 2025, Month: 6,
		Processed:          3,
		TotalProfitReserve: decimal.NewFromInt(64),
		Details: []domain.OrderResult{
			{OrderID: "ORD-1"}, {OrderID: "ORD-2"}, {OrderID: "ORD-3"},
		},
		GeneratedAt: time.Now(),
	}
	require.NoError(t, summaries.Replace(first))

	second := &domain.MonthlyProfitSummary{
		ID: "run-2", Seller: "acme", Year: 2025, Month: 6,
		Processed:          1,
		TotalProfitReserve: decimal.NewFromInt(21),
		Details:            []domain.OrderResult{{OrderID: "ORD-1"}},
		GeneratedAt:        time.Now(),
	}
	require.NoError(t, summaries.Replace(second))

	got, err := summaries.Get("acme", 2025, 6)
	require.NoError(t, err)
	assert.Equal(t, "run-2", got.ID)
	assert.Equal(t, 1, got.Processed)
	assert.Len(t, got.Details, 1, "the detail list is replaced together with the counts")
	assert.True(t, got.TotalProfitReserve.Equal(decimal.NewFromInt(21)))
}

func TestSummaryGetMissing(t *testing.T) {
	_, summaries, _ := testRepos(t)
	_, err := summaries.Get("acme", 2025, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRateSampleRoundTrip(t *testing.T) {
	_, _, ratesRepo := testRepos(t)
	date := time.Date(2025, time.June, 16, 0, 0, 0, 0, time.UTC)

	require.NoError(t, ratesRepo.Put(&domain.ExchangeRateSample{
		Pair: "TRY/USD", Date: date,
		Rate: decimal.NewFromFloat(35.41), Source: "source-a",
		FetchedAt: time.Now(),
	}))

	got, err := ratesRepo.Get("TRY/USD", date)
	require.NoError(t, err)
	assert.True(t, got.Rate.Equal(decimal.NewFromFloat(35.41)))
	assert.Equal(t, "source-a", got.Source)
}

func TestRateSampleFirstValueWins(t *testing.T) {
	_, _, ratesRepo := testRepos(t)
	date := time.Date(2025, time.June, 16, 0, 0, 0, 0, time.UTC)

	require.NoError(t, ratesRepo.Put(&domain.ExchangeRateSample{
		Pair: "TRY/USD", Date: date, Rate: decimal.NewFromInt(35), Source: "source-a", FetchedAt: time.Now(),
	}))
	require.NoError(t, ratesRepo.Put(&domain.ExchangeRateSample{
		Pair: "TRY/USD", Date: date, Rate: decimal.NewFromInt(36), Source: "source-a", FetchedAt: time.Now(),
	}))

	got, err := ratesRepo.Get("TRY/USD", date)
	require.NoError(t, err)
	assert.True(t, got.Rate.Equal(decimal.NewFromInt(35)), "one value per (pair, date) once resolved")
}

func TestRateSampleMissing(t *testing.T) {
	_, _, ratesRepo := testRepos(t)
	_, err := ratesRepo.Get("USD/RUB", time.Now())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
