// Package feed fetches settlement operations from the marketplace
// transaction feed and aggregates them per order.
package feed

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/sellerdesk/payout-reconciler/internal/domain"
	"github.com/sellerdesk/payout-reconciler/internal/transport"
)

// Client talks to the read-only, paginated, rate-limited transaction feed:
// GET {base}/operations?posting=X&from=...&to=...&page=N.
type Client struct {
	baseURL string
	http    *transport.Client
}

func NewClient(baseURL string, http *transport.Client) *Client {
	return &Client{baseURL: baseURL, http: http}
}

type operationsPage struct {
	Operations []domain.SettlementOperation `json:"operations"`
	HasNext    bool                         `json:"has_next"`
}

// FetchOperations returns every settlement operation attached to the given
// posting number inside [from, to], following pagination to the end.
func (c *Client) FetchOperations(ctx context.Context, orderID string, from, to time.Time) ([]domain.SettlementOperation, error) {
	var ops []domain.SettlementOperation

	for page := 1; ; page++ {
		u := fmt.Sprintf("%s/operations?posting=%s&from=%s&to=%s&page=%d",
			c.baseURL, url.QueryEscape(orderID),
			from.UTC().Format(domain.DateKey), to.UTC().Format(domain.DateKey), page)

		var body operationsPage
		if err := c.http.GetJSON(ctx, u, &body); err != nil {
			return nil, fmt.Errorf("fetch operations for %s page %d: %w", orderID, page, err)
		}

		ops = append(ops, body.Operations...)
		if !body.HasNext {
			return ops, nil
		}
	}
}
