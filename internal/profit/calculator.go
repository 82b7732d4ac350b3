// Package profit combines classified settlement amounts, purchase cost and
// resolved exchange rates into net profit. Pure functions, no I/O.
package profit

import (
	"github.com/shopspring/decimal"
)

// Inputs carries everything the calculator needs. Nil pointers mean
// "not available": the dependent output stays nil rather than defaulting
// to zero.
type Inputs struct {
	// SettlementTotal is the signed operation sum in the settlement
	// currency.
	SettlementTotal decimal.Decimal
	// PurchaseCostLocal is the seller's cost of goods in the local
	// currency, when imported.
	PurchaseCostLocal *decimal.Decimal
	// RateReserve is the settlement→reserve rate fixed at the rate-lookup
	// date (settlement units per reserve unit).
	RateReserve *decimal.Decimal
	// RateLocal is the reserve→local rate at the payout date (local units
	// per reserve unit).
	RateLocal *decimal.Decimal

	IsReturn    bool
	IsCancelled bool
}

// Outcome mirrors the cached profit fields of an order record.
type Outcome struct {
	SettlementAmountReserve *decimal.Decimal
	SettlementAmountLocal   *decimal.Decimal
	PurchaseCostReserve     *decimal.Decimal
	NetProfitReserve        *decimal.Decimal
	NetProfitLocal          *decimal.Decimal

	// Skipped is set when no purchase cost is available: the order is
	// recorded but excluded from totals and from the processed count.
	Skipped bool
}

// Compute applies the conversion chain:
//
//	settlementAmountReserve = settlementTotal / rate(a)
//	purchaseCostReserve     = purchaseCostLocal / rate(a)
//	netProfitReserve        = settlementAmountReserve - purchaseCostReserve
//	settlementAmountLocal   = settlementAmountReserve * rate(b)
//	netProfitLocal          = settlementAmountLocal - purchaseCostLocal
//
// Each line only runs when its inputs exist. Returned or cancelled orders
// get their profit forced to zero, overwriting whatever was cached before.
func Compute(in Inputs) Outcome {
	var out Outcome

	if in.RateReserve != nil && !in.RateReserve.IsZero() {
		amount := in.SettlementTotal.Div(*in.RateReserve)
		out.SettlementAmountReserve = &amount

		if in.RateLocal != nil && !in.RateLocal.IsZero() {
			local := amount.Mul(*in.RateLocal)
			out.SettlementAmountLocal = &local
		}
	}

	if in.IsReturn || in.IsCancelled {
		zero := decimal.Zero
		out.NetProfitReserve = &zero
		out.NetProfitLocal = &zero
		return out
	}

	if in.PurchaseCostLocal == nil {
		out.Skipped = true
		return out
	}

	if in.RateReserve != nil && !in.RateReserve.IsZero() {
		cost := in.PurchaseCostLocal.Div(*in.RateReserve)
		out.PurchaseCostReserve = &cost

		if out.SettlementAmountReserve != nil {
			net := out.SettlementAmountReserve.Sub(cost)
			out.NetProfitReserve = &net
		}
	}

	if out.SettlementAmountLocal != nil {
		net := out.SettlementAmountLocal.Sub(*in.PurchaseCostLocal)
		out.NetProfitLocal = &net
	}

	return out
}
