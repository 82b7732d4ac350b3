package recon

import (
	"context"

	"go.uber.org/zap"

	"github.com/sellerdesk/payout-reconciler/internal/domain"
)

// RunNightlyBatch scans a trailing window for orders still missing a
// delivery date or a settlement-reserve amount and reprocesses at most
// batchMaxOrders of them, oldest first. Per-order failures increment the
// error counter and the run continues; only an unavailable store aborts.
// Cancelling ctx stops issuing new per-order work — records already
// written stay intact because every write is atomic per order.
func (s *Service) RunNightlyBatch(ctx context.Context) (domain.BatchSummary, error) {
	var summary domain.BatchSummary

	now := s.now()
	since := now.AddDate(0, 0, -s.batchWindowDays)

	candidates, err := s.orders.ListIncomplete(since, s.batchMaxOrders)
	if err != nil {
		return summary, err
	}
	summary.Scanned = len(candidates)

	for _, rec := range candidates {
		if ctx.Err() != nil {
			break
		}

		res, err := s.ProcessOrder(ctx, rec.OrderID, since, now, nil)
		if err != nil {
			summary.Errors++
			s.logger.Warn("nightly batch: order failed",
				zap.String("order_id", rec.OrderID),
				zap.Error(err),
			)
			continue
		}

		summary.Synced++
		if res.RateUsed != nil && res.PurchaseCost != nil && !res.IsReturn && !res.IsCancelled {
			summary.Calculated++
		}
	}

	s.logger.Info("nightly batch finished",
		zap.Int("scanned", summary.Scanned),
		zap.Int("synced", summary.Synced),
		zap.Int("calculated", summary.Calculated),
		zap.Int("errors", summary.Errors),
	)

	return summary, nil
}
