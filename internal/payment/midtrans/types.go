package midtrans

import (
	"github.com/shopspring/decimal"
)

// Transaction is a created Snap transaction.
type Transaction struct {
	Token       string
	RedirectURL string
}

// wholeUnits converts an amount to the integer rupiah Snap accepts.
func wholeUnits(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}
