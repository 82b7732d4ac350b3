// Package recon orchestrates the reconciliation engine: aggregate →
// classify → (calendar + rates) → profit → store. Outcomes are computed
// fresh from classified input on every pass; every write is a full
// overwrite, which is what makes idempotent recompute the consistency
// model rather than a hazard.
package recon

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sellerdesk/payout-reconciler/internal/calendar"
	"github.com/sellerdesk/payout-reconciler/internal/classify"
	"github.com/sellerdesk/payout-reconciler/internal/domain"
	"github.com/sellerdesk/payout-reconciler/internal/profit"
	"github.com/sellerdesk/payout-reconciler/internal/rates"
	"github.com/sellerdesk/payout-reconciler/internal/repository"
)

// ErrNoOperations means the feed returned nothing for an order: financial
// data not yet available. Recorded per order, never fatal to a batch.
var ErrNoOperations = errors.New("no settlement operations yet")

// OperationCollector is the aggregator surface the engine consumes.
type OperationCollector interface {
	Collect(ctx context.Context, orderID string, from, to time.Time) []domain.SettlementOperation
}

type Service struct {
	ops       OperationCollector
	resolver  *rates.Resolver
	sourceA   rates.Source // settlement -> reserve, fixed at rate-lookup date
	sourceB   rates.Source // reserve -> local, fixed at payout date
	orders    *repository.OrderRepo
	summaries *repository.SummaryRepo

	// limiter spaces calls to the transaction feed. One token is taken per
	// order, so batch spacing is a policy of the injected limiter rather
	// than an inline sleep.
	limiter *rate.Limiter

	seller          string
	batchWindowDays int
	batchMaxOrders  int

	logger *zap.Logger
	now    func() time.Time
}

func NewService(
	ops OperationCollector,
	resolver *rates.Resolver,
	sourceA, sourceB rates.Source,
	orders *repository.OrderRepo,
	summaries *repository.SummaryRepo,
	limiter *rate.Limiter,
	seller string,
	batchWindowDays, batchMaxOrders int,
	logger *zap.Logger,
) *Service {
	return &Service{
		ops:             ops,
		resolver:        resolver,
		sourceA:         sourceA,
		sourceB:         sourceB,
		orders:          orders,
		summaries:       summaries,
		limiter:         limiter,
		seller:          seller,
		batchWindowDays: batchWindowDays,
		batchMaxOrders:  batchMaxOrders,
		logger:          logger,
		now:             time.Now,
	}
}

// ProcessOrder runs the full pipeline for one order and upserts the cached
// record. The returned error covers feed emptiness and persistence only;
// an unresolved rate is not an error — the dependent fields stay nil.
func (s *Service) ProcessOrder(ctx context.Context, orderID string, from, to time.Time, fallbackRate *decimal.Decimal) (domain.OrderResult, error) {
	res := domain.OrderResult{OrderID: orderID}

	if err := s.limiter.Wait(ctx); err != nil {
		return res, err
	}

	ops := s.ops.Collect(ctx, orderID, from, to)
	if len(ops) == 0 {
		return res, ErrNoOperations
	}

	existing, err := s.orders.Get(orderID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return res, fmt.Errorf("load record %s: %w", orderID, err)
	}

	cls := classify.Classify(ops)

	var purchaseCost *decimal.Decimal
	isCancelled := false
	if existing != nil {
		purchaseCost = existing.PurchaseCostLocal
		isCancelled = existing.IsCancelled
	}

	now := s.now()
	var period *domain.PaymentPeriod
	if cls.DeliveryDate != nil {
		p := calendar.PeriodFor(*cls.DeliveryDate, now)
		period = &p
	}

	var rateReserve, rateLocal *decimal.Decimal
	if period != nil {
		if r, rerr := s.resolver.Resolve(ctx, s.sourceA, period.RateLookupDate); rerr == nil {
			rateReserve = &r
		} else if fallbackRate != nil {
			rateReserve = fallbackRate
		}

		// The payout date must have occurred before the reserve→local rate
		// is even requested; isPaid itself stays a pure date comparison
		// regardless of whether this lookup succeeds.
		if !period.PayoutDate.After(now) {
			if r, rerr := s.resolver.Resolve(ctx, s.sourceB, period.PayoutDate); rerr == nil {
				rateLocal = &r
			}
		}
	}

	out := profit.Compute(profit.Inputs{
		SettlementTotal:   cls.Total,
		PurchaseCostLocal: purchaseCost,
		RateReserve:       rateReserve,
		RateLocal:         rateLocal,
		IsReturn:          cls.IsReturn,
		IsCancelled:       isCancelled,
	})

	calculatedAt := now
	rec := domain.OrderFinancialRecord{
		OrderID:                 orderID,
		ProductName:             cls.ProductName,
		PurchaseCostLocal:       purchaseCost,
		SettlementAmountReserve: out.SettlementAmountReserve,
		SettlementAmountLocal:   out.SettlementAmountLocal,
		NetProfitReserve:        out.NetProfitReserve,
		NetProfitLocal:          out.NetProfitLocal,
		IsCancelled:             isCancelled,
		IsReturn:                cls.IsReturn,
		OrderDate:               cls.OrderDate,
		DeliveryDate:            cls.DeliveryDate,
		ProfitCalculatedAt:      &calculatedAt,
	}
	if err := s.orders.Upsert(&rec); err != nil {
		return res, fmt.Errorf("store record %s: %w", orderID, err)
	}

	res.ProductName = cls.ProductName
	res.PurchaseCost = purchaseCost
	res.SettlementAmountLocal = out.SettlementAmountLocal
	res.NetProfitLocal = out.NetProfitLocal
	res.RateUsed = rateReserve
	res.IsCancelled = isCancelled
	res.IsReturn = cls.IsReturn
	res.OrderDate = cls.OrderDate
	res.DeliveryDate = cls.DeliveryDate
	res.IsPendingPayment = period == nil || !period.IsPaid
	if period != nil {
		res.RateLookupDate = &period.RateLookupDate
		res.PayoutDate = &period.PayoutDate
	}
	if out.SettlementAmountReserve != nil {
		res.SettlementAmountReserve = *out.SettlementAmountReserve
	}
	if out.NetProfitReserve != nil {
		res.NetProfitReserve = *out.NetProfitReserve
	}
	if out.Skipped {
		res.Error = "purchase cost missing"
	}

	return res, nil
}
