package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderResult is the per-order outcome of a reconciliation pass. It is both
// the recompute response detail entry and the stored summary detail row.
type OrderResult struct {
	OrderID                 string           `json:"order_id"`
	ProductName             string           `json:"product_name,omitempty"`
	SettlementAmountReserve decimal.Decimal  `json:"settlement_amount_reserve"`
	SettlementAmountLocal   *decimal.Decimal `json:"settlement_amount_local,omitempty"`
	PurchaseCost            *decimal.Decimal `json:"purchase_cost,omitempty"`
	NetProfitReserve        decimal.Decimal  `json:"net_profit_reserve"`
	NetProfitLocal          *decimal.Decimal `json:"net_profit_local,omitempty"`
	RateUsed                *decimal.Decimal `json:"rate_used,omitempty"`
	IsCancelled             bool             `json:"is_cancelled"`
	IsReturn                bool             `json:"is_return"`
	IsPendingPayment        bool             `json:"is_pending_payment"`
	OrderDate               *time.Time       `json:"order_date,omitempty"`
	DeliveryDate            *time.Time       `json:"delivery_date,omitempty"`
	RateLookupDate          *time.Time       `json:"rate_lookup_date,omitempty"`
	PayoutDate              *time.Time       `json:"payout_date,omitempty"`
	Error                   string           `json:"error,omitempty"`
}

// RecomputeResult is the partial-success response for a multi-order
// recompute: succeeded orders land in Details, failed ones in Errors.
// A multi-order request never fails all-or-nothing.
type RecomputeResult struct {
	Processed             int              `json:"processed"`
	SkippedNoPurchaseCost int              `json:"skipped_no_purchase_cost"`
	SkippedReturn         int              `json:"skipped_return"`
	Cancelled             int              `json:"cancelled"`
	PendingPaymentCount   int              `json:"pending_payment_count"`
	TotalProfitReserve    decimal.Decimal  `json:"total_profit_reserve"`
	TotalProfitLocal      decimal.Decimal  `json:"total_profit_local"`
	CancelledLossReserve  decimal.Decimal  `json:"cancelled_loss_reserve"`
	CancelledLossLocal    decimal.Decimal  `json:"cancelled_loss_local"`
	Details               []OrderResult    `json:"details"`
	Errors                []OrderFailure   `json:"errors"`
}

type OrderFailure struct {
	OrderID string `json:"order_id"`
	Message string `json:"message"`
}

// MonthlyProfitSummary is a full snapshot keyed by (seller, year, month).
// Recompute replaces the entire snapshot so the counts and the detail list
// they summarize can never drift apart.
type MonthlyProfitSummary struct {
	ID                    string          `json:"id"`
	Seller                string          `json:"seller"`
	Year                  int             `json:"year"`
	Month                 int             `json:"month"`
	Processed             int             `json:"processed"`
	SkippedNoPurchaseCost int             `json:"skipped_no_purchase_cost"`
	SkippedReturn         int             `json:"skipped_return"`
	Cancelled             int             `json:"cancelled"`
	TotalProfitReserve    decimal.Decimal `json:"total_profit_reserve"`
	TotalProfitLocal      decimal.Decimal `json:"total_profit_local"`
	CancelledLossReserve  decimal.Decimal `json:"cancelled_loss_reserve"`
	CancelledLossLocal    decimal.Decimal `json:"cancelled_loss_local"`
	Details               []OrderResult   `json:"details"`
	GeneratedAt           time.Time       `json:"generated_at"`
}

// BatchSummary is the operational result of a nightly batch run.
type BatchSummary struct {
	Scanned    int `json:"scanned"`
	Synced     int `json:"synced"`
	Calculated int `json:"calculated"`
	Errors     int `json:"errors"`
}

// PayoutBucket is one of the two rolling forecast groups.
type PayoutBucket struct {
	Label         string          `json:"label"`
	PayoutDate    time.Time       `json:"payout_date"`
	IsPast        bool            `json:"is_past"`
	OrderCount    int             `json:"order_count"`
	AmountReserve decimal.Decimal `json:"amount_reserve"`
	AmountLocal   decimal.Decimal `json:"amount_local"`
}

type Forecast struct {
	MidMonth   PayoutBucket `json:"mid_month"`
	MonthStart PayoutBucket `json:"month_start"`
}
