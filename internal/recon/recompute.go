package recon

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sellerdesk/payout-reconciler/internal/domain"
)

// RecomputeRequest is the explicit recompute trigger: a list of orders and
// the target month whose summary snapshot gets replaced. FallbackRate, when
// set, substitutes for an unresolvable settlement→reserve rate.
type RecomputeRequest struct {
	OrderIDs     []string         `json:"order_ids"`
	Year         int              `json:"year"`
	Month        int              `json:"month"`
	FallbackRate *decimal.Decimal `json:"fallback_rate,omitempty"`
}

// Recompute processes every requested order, always producing a
// partial-success result: succeeded orders in Details, failed ones in
// Errors. The month's summary snapshot is replaced wholesale afterwards;
// only a summary write failure aborts the operation.
func (s *Service) Recompute(ctx context.Context, req RecomputeRequest) (*domain.RecomputeResult, error) {
	from := time.Date(req.Year, time.Month(req.Month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	to := s.now()

	result := &domain.RecomputeResult{
		Details: []domain.OrderResult{},
		Errors:  []domain.OrderFailure{},
	}

	for _, orderID := range req.OrderIDs {
		if ctx.Err() != nil {
			break
		}

		res, err := s.ProcessOrder(ctx, orderID, from, to, req.FallbackRate)
		if err != nil {
			result.Errors = append(result.Errors, domain.OrderFailure{
				OrderID: orderID,
				Message: err.Error(),
			})
			continue
		}

		result.Details = append(result.Details, res)
		s.tally(result, res)
	}

	summary := &domain.MonthlyProfitSummary{
		ID:                    uuid.NewString(),
		Seller:                s.seller,
		Year:                  req.Year,
		Month:                 req.Month,
		Processed:             result.Processed,
		SkippedNoPurchaseCost: result.SkippedNoPurchaseCost,
		SkippedReturn:         result.SkippedReturn,
		Cancelled:             result.Cancelled,
		TotalProfitReserve:    result.TotalProfitReserve,
		TotalProfitLocal:      result.TotalProfitLocal,
		CancelledLossReserve:  result.CancelledLossReserve,
		CancelledLossLocal:    result.CancelledLossLocal,
		Details:               result.Details,
		GeneratedAt:           s.now(),
	}
	if err := s.summaries.Replace(summary); err != nil {
		return nil, err
	}

	s.logger.Info("recompute finished",
		zap.Int("year", req.Year),
		zap.Int("month", req.Month),
		zap.Int("requested", len(req.OrderIDs)),
		zap.Int("processed", result.Processed),
		zap.Int("skipped_no_purchase_cost", result.SkippedNoPurchaseCost),
		zap.Int("skipped_return", result.SkippedReturn),
		zap.Int("cancelled", result.Cancelled),
		zap.Int("errors", len(result.Errors)),
	)

	return result, nil
}

// tally folds one per-order result into the aggregate counters. Returned
// and cancelled orders are counted but excluded from total-profit sums;
// cancelled orders additionally contribute their sunk purchase cost to the
// cancelled-loss sums, independent of the return flag.
func (s *Service) tally(result *domain.RecomputeResult, res domain.OrderResult) {
	if res.IsPendingPayment {
		result.PendingPaymentCount++
	}

	if res.IsCancelled {
		result.Cancelled++
		if res.PurchaseCost != nil {
			result.CancelledLossLocal = result.CancelledLossLocal.Add(*res.PurchaseCost)
			if res.RateUsed != nil && !res.RateUsed.IsZero() {
				result.CancelledLossReserve = result.CancelledLossReserve.Add(res.PurchaseCost.Div(*res.RateUsed))
			}
		}
	}
	if res.IsReturn {
		result.SkippedReturn++
	}
	if res.IsCancelled || res.IsReturn {
		return
	}

	if res.PurchaseCost == nil {
		result.SkippedNoPurchaseCost++
		return
	}

	result.Processed++
	result.TotalProfitReserve = result.TotalProfitReserve.Add(res.NetProfitReserve)
	if res.NetProfitLocal != nil {
		result.TotalProfitLocal = result.TotalProfitLocal.Add(*res.NetProfitLocal)
	}
}
