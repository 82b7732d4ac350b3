package recon

import (
	"time"

	"go.uber.org/zap"

	"github.com/sellerdesk/payout-reconciler/internal/calendar"
	"github.com/sellerdesk/payout-reconciler/internal/domain"
)

// Forecast buckets cached order records into the two upcoming payout
// groups relative to today: deliveries from the first half of the current
// month (paid on the 20th) and deliveries from the second half of the
// previous month (paid on the 10th). Reads only the store — never triggers
// a fetch — and fails closed with zero buckets when data is absent.
func (s *Service) Forecast() *domain.Forecast {
	now := s.now()
	y, m, _ := now.Date()

	curFirstStart, curFirstEnd, _, _ := calendar.MonthHalves(now)
	_, _, prevSecondStart, prevSecondEnd := calendar.MonthHalves(now.AddDate(0, -1, 0))

	return &domain.Forecast{
		MidMonth: s.bucket("current month, first half",
			curFirstStart, curFirstEnd,
			time.Date(y, m, 20, 0, 0, 0, 0, time.UTC), now),
		MonthStart: s.bucket("previous month, second half",
			prevSecondStart, prevSecondEnd,
			time.Date(y, m, 10, 0, 0, 0, 0, time.UTC), now),
	}
}

func (s *Service) bucket(label string, from, to, payout, now time.Time) domain.PayoutBucket {
	b := domain.PayoutBucket{
		Label:      label,
		PayoutDate: payout,
		IsPast:     now.After(payout),
	}

	recs, err := s.orders.ListDeliveredBetween(from, to)
	if err != nil {
		s.logger.Warn("forecast read failed, returning empty bucket",
			zap.String("label", label),
			zap.Error(err),
		)
		return b
	}

	for _, rec := range recs {
		b.OrderCount++
		if rec.SettlementAmountReserve != nil {
			b.AmountReserve = b.AmountReserve.Add(*rec.SettlementAmountReserve)
		}
		if rec.SettlementAmountLocal != nil {
			b.AmountLocal = b.AmountLocal.Add(*rec.SettlementAmountLocal)
		}
	}
	return b
}
