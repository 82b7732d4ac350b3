package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderFinancialRecord is the cached per-order reconciliation result. There
// is at most one record per order identifier; profit fields are fully
// overwritten on every recompute, never merged.
type OrderFinancialRecord struct {
	OrderID                 string           `json:"order_id"`
	ProductName             string           `json:"product_name,omitempty"`
	PurchaseCostLocal       *decimal.Decimal `json:"purchase_cost_local,omitempty"`
	SettlementAmountReserve *decimal.Decimal `json:"settlement_amount_reserve,omitempty"`
	SettlementAmountLocal   *decimal.Decimal `json:"settlement_amount_local,omitempty"`
	NetProfitReserve        *decimal.Decimal `json:"net_profit_reserve,omitempty"`
	NetProfitLocal          *decimal.Decimal `json:"net_profit_local,omitempty"`
	IsCancelled             bool             `json:"is_cancelled"`
	IsReturn                bool             `json:"is_return"`
	OrderDate               *time.Time       `json:"order_date,omitempty"`
	DeliveryDate            *time.Time       `json:"delivery_date,omitempty"`
	ProfitCalculatedAt      *time.Time       `json:"profit_calculated_at,omitempty"`
	CreatedAt               time.Time        `json:"created_at"`
	UpdatedAt               time.Time        `json:"updated_at"`
}

// PaymentPeriod maps a delivery date onto the marketplace's bi-monthly
// payout schedule. Value object, never persisted.
type PaymentPeriod struct {
	RateLookupDate time.Time `json:"rate_lookup_date"`
	PayoutDate     time.Time `json:"payout_date"`
	IsPaid         bool      `json:"is_paid"`
}

// ExchangeRateSample is one resolved historical rate, cached per
// (pair, date). Dates are day-granular, stored as 2006-01-02.
type ExchangeRateSample struct {
	Pair      string          `json:"pair"`
	Date      time.Time       `json:"date"`
	Rate      decimal.Decimal `json:"rate"`
	Source    string          `json:"source"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// DateKey is the canonical day-granular key format for rate samples.
const DateKey = "2006-01-02"
