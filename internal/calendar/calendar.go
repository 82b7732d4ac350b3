// Package calendar implements the marketplace's bi-monthly payment
// schedule. Pure date arithmetic, no I/O.
package calendar

import (
	"time"

	"github.com/sellerdesk/payout-reconciler/internal/domain"
)

// PeriodFor maps a delivery date onto the payout schedule:
//
//	delivered on day 1..15  -> rate fixed on the 16th, paid on the 20th
//	delivered on day 16..31 -> rate fixed on the 1st of the next month,
//	                           paid on the 10th of the next month
//
// IsPaid is true only when now is strictly after the payout date; on the
// payout date itself the order still counts as pending.
func PeriodFor(delivery, now time.Time) domain.PaymentPeriod {
	y, m, d := delivery.Date()

	var lookup, payout time.Time
	if d <= 15 {
		lookup = time.Date(y, m, 16, 0, 0, 0, 0, time.UTC)
		payout = time.Date(y, m, 20, 0, 0, 0, 0, time.UTC)
	} else {
		// time.Date normalizes month 13 into January of the next year.
		lookup = time.Date(y, m+1, 1, 0, 0, 0, 0, time.UTC)
		payout = time.Date(y, m+1, 10, 0, 0, 0, 0, time.UTC)
	}

	return domain.PaymentPeriod{
		RateLookupDate: lookup,
		PayoutDate:     payout,
		IsPaid:         now.After(payout),
	}
}

// MonthHalves returns the boundaries used by the payment forecast: the
// first half of the month containing t ([1st, 15th]) and the second half
// ([16th, last day]).
func MonthHalves(t time.Time) (firstStart, firstEnd, secondStart, secondEnd time.Time) {
	y, m, _ := t.Date()
	firstStart = time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	firstEnd = time.Date(y, m, 15, 23, 59, 59, 0, time.UTC)
	secondStart = time.Date(y, m, 16, 0, 0, 0, 0, time.UTC)
	secondEnd = time.Date(y, m+1, 1, 0, 0, 0, 0, time.UTC).Add(-time.Second)
	return
}
