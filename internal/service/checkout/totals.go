package checkout

import "github.com/shopspring/decimal"

// TaxRate is the fixed PPN applied to every checkout.
var TaxRate = decimal.RequireFromString("0.11")

// Totals are the amounts of one checkout. Nothing else in the repo computes tax.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// ComputeTotals rounds tax once to whole rupiah; Snap rejects fractional amounts.
func ComputeTotals(subtotal decimal.Decimal) Totals {
	tax := subtotal.Mul(TaxRate).Round(0)
	return Totals{Subtotal: subtotal, Tax: tax, Total: subtotal.Add(tax)}
}
