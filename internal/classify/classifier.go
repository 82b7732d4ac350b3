// Package classify sorts an order's settlement operations into named
// financial buckets in a single pass.
package classify

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sellerdesk/payout-reconciler/internal/domain"
)

// Classification is the bucketed view of one order's operation set.
// Amounts are in the settlement currency.
type Classification struct {
	ProductName  string
	OrderDate    *time.Time
	DeliveryDate *time.Time

	SaleAmount    decimal.Decimal // accruals on the delivery operation
	Commission    decimal.Decimal
	TransferFee   decimal.Decimal
	AgencyFee     decimal.Decimal
	AcquiringFee  decimal.Decimal
	Other         []OtherOperation
	Total         decimal.Decimal // signed sum of every operation amount

	// IsReturn is set when a client-return operation appears anywhere in
	// the set. It is a classification outcome: consumers zero the profit
	// and exclude the order from totals while still recording it.
	IsReturn bool
}

type OtherOperation struct {
	Type   domain.OperationType `json:"type"`
	Label  string               `json:"label"`
	Amount decimal.Decimal      `json:"amount"`
}

var labels = map[domain.OperationType]string{
	domain.OpDeliveredToCustomer: "Delivered to customer",
	domain.OpClientReturn:        "Client return",
	domain.OpCurrencyTransferFee: "Currency transfer fee",
	domain.OpAgencyFee:           "Agency fee",
	domain.OpAcquiringFee:        "Acquiring fee",
}

// Label translates an operation type for display; unknown types fall back
// to the raw type string.
func Label(t domain.OperationType) string {
	if l, ok := labels[t]; ok {
		return l
	}
	return string(t)
}

// Classify scans the operations once. If no delivery operation is present
// the delivery date stays nil and the caller skips payment-period
// computation: the order is pending, not failed.
func Classify(ops []domain.SettlementOperation) Classification {
	var c Classification

	for _, op := range ops {
		c.Total = c.Total.Add(op.Amount)

		switch op.Type {
		case domain.OpDeliveredToCustomer:
			if len(op.Items) > 0 {
				c.ProductName = op.Items[0].Name
			}
			delivered := op.Date
			c.DeliveryDate = &delivered
			c.OrderDate = op.OrderDate
			c.SaleAmount = op.Accruals
			c.Commission = op.Commission

		case domain.OpClientReturn:
			c.IsReturn = true

		case domain.OpCurrencyTransferFee:
			c.TransferFee = c.TransferFee.Add(op.Amount)

		case domain.OpAgencyFee:
			c.AgencyFee = c.AgencyFee.Add(op.Amount)

		case domain.OpAcquiringFee:
			c.AcquiringFee = c.AcquiringFee.Add(op.Amount)

		default:
			c.Other = append(c.Other, OtherOperation{
				Type:   op.Type,
				Label:  Label(op.Type),
				Amount: op.Amount,
			})
		}
	}

	return c
}
