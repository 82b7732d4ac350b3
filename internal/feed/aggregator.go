package feed

import (
	"context"
	"regexp"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/sellerdesk/payout-reconciler/internal/domain"
)

// OperationFetcher is the slice of the feed client the aggregator needs.
type OperationFetcher interface {
	FetchOperations(ctx context.Context, orderID string, from, to time.Time) ([]domain.SettlementOperation, error)
}

// Aggregator fetches and deduplicates settlement operations for an order,
// looking at both the order itself and its parent grouping.
type Aggregator struct {
	feed   OperationFetcher
	logger *zap.Logger
}

func NewAggregator(feed OperationFetcher, logger *zap.Logger) *Aggregator {
	return &Aggregator{feed: feed, logger: logger}
}

// posting numbers look like "0087345-0412-2"; the last dash group is the
// shipment index within the parent order. Some fee operations are only
// attached at the parent level, so both identifiers are queried. This is
// an observed property of the marketplace's identifier format, not a
// documented contract.
var shipmentSuffix = regexp.MustCompile(`-\d+$`)

// ParentOrderID strips the trailing shipment suffix, returning "" when the
// identifier has no parent form.
func ParentOrderID(orderID string) string {
	parent := shipmentSuffix.ReplaceAllString(orderID, "")
	if parent == orderID {
		return ""
	}
	return parent
}

// Collect returns the deduplicated operations for the order. A feed
// failure yields an empty list: downstream treats "no operations yet" as
// financial data not yet available, not as an error.
func (a *Aggregator) Collect(ctx context.Context, orderID string, from, to time.Time) []domain.SettlementOperation {
	ids := []string{orderID}
	if parent := ParentOrderID(orderID); parent != "" {
		ids = append(ids, parent)
	}

	seen := make(map[int64]struct{})
	var merged []domain.SettlementOperation

	for _, id := range ids {
		ops, err := a.feed.FetchOperations(ctx, id, from, to)
		if err != nil {
			a.logger.Warn("transaction feed unavailable",
				zap.String("order_id", id),
				zap.Error(err),
			)
			continue
		}
		for _, op := range ops {
			if _, dup := seen[op.ID]; dup {
				continue
			}
			seen[op.ID] = struct{}{}
			merged = append(merged, op)
		}
	}

	sort.Slice(merged, func(i, j int) bool { return merged[i].Date.Before(merged[j].Date) })
	return merged
}
