package rates

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sellerdesk/payout-reconciler/internal/domain"
	"github.com/sellerdesk/payout-reconciler/internal/transport"
)

// Source yields the historical exchange rate for one fixed currency pair
// on a given date. ErrRateNotFound means the source has no value for that
// date (weekend, holiday, not yet published).
type Source interface {
	Name() string
	Pair() string
	Rate(ctx context.Context, date time.Time) (decimal.Decimal, error)
}

// HTTPSource talks to a historical-rate collaborator exposing
// GET {base}/rates?date=2006-01-02 -> {"rate": "35.41"}.
type HTTPSource struct {
	name    string
	pair    string
	baseURL string
	client  *transport.Client
}

func NewHTTPSource(name, pair, baseURL string, client *transport.Client) *HTTPSource {
	return &HTTPSource{name: name, pair: pair, baseURL: baseURL, client: client}
}

func (s *HTTPSource) Name() string { return s.name }
func (s *HTTPSource) Pair() string { return s.pair }

func (s *HTTPSource) Rate(ctx context.Context, date time.Time) (decimal.Decimal, error) {
	u := fmt.Sprintf("%s/rates?date=%s", s.baseURL, url.QueryEscape(date.Format(domain.DateKey)))

	var body struct {
		Rate decimal.Decimal `json:"rate"`
	}
	if err := s.client.GetJSON(ctx, u, &body); err != nil {
		if transport.IsNotFound(err) {
			return decimal.Decimal{}, domain.ErrRateNotFound
		}
		return decimal.Decimal{}, fmt.Errorf("source %s: %w", s.name, err)
	}
	if body.Rate.IsZero() {
		return decimal.Decimal{}, domain.ErrRateNotFound
	}
	return body.Rate, nil
}
