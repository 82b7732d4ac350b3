package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OperationType string

const (
	// OpDeliveredToCustomer is the single operation that carries the sale
	// itself: product name, order/delivery dates, accrued revenue and the
	// marketplace commission.
	OpDeliveredToCustomer OperationType = "OperationAgentDeliveredToCustomer"

	// OpClientReturn marks the order as returned by the customer. Its
	// presence anywhere in an order's operation set is a classification
	// outcome, not an error.
	OpClientReturn OperationType = "ClientReturnAgentOperation"

	OpCurrencyTransferFee OperationType = "MarketplaceCurrencyTransferFee"
	OpAgencyFee           OperationType = "OperationMarketplaceAgencyFee"
	OpAcquiringFee        OperationType = "MarketplaceRedistributionOfAcquiringOperation"
)

// SettlementOperation is one line item from the marketplace transaction
// feed. Operations are ephemeral: fetched per request, never persisted.
type SettlementOperation struct {
	ID            int64           `json:"operation_id"`
	Type          OperationType   `json:"operation_type"`
	Date          time.Time       `json:"operation_date"`
	OrderDate     *time.Time      `json:"order_date,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Accruals      decimal.Decimal `json:"accruals_for_sale"`
	Commission    decimal.Decimal `json:"sale_commission"`
	PostingNumber string          `json:"posting_number"`
	Items         []LineItem      `json:"items,omitempty"`
}

type LineItem struct {
	Name string `json:"name"`
	SKU  int64  `json:"sku,omitempty"`
}
