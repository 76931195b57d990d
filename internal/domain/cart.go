package domain

import "github.com/shopspring/decimal"

// Kind discriminates what a line item refers to.
type Kind string

const (
	KindContent     Kind = "content"
	KindMerchandise Kind = "merchandise"
)

// ParseKind validates a raw kind value.
func ParseKind(raw string) (Kind, error) {
	switch k := Kind(raw); k {
	case KindContent, KindMerchandise:
		return k, nil
	default:
		return "", Invalid("unknown kind %q", raw)
	}
}

// Candidate describes an item the shopper wants to add, before it has a quantity.
type Candidate struct {
	ID              string          `json:"id"`
	Kind            Kind            `json:"kind"`
	Name            string          `json:"name"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	DiscountPercent *int            `json:"discountPercent,omitempty"`
	StockCeiling    *int            `json:"stockCeiling,omitempty"`
	Image           string          `json:"image,omitempty"`
}

// LineItem is one entry of a cart. (ID, Kind) is unique within a cart.
type LineItem struct {
	ID              string          `json:"id"`
	Kind            Kind            `json:"kind"`
	Name            string          `json:"name"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	DiscountPercent *int            `json:"discountPercent,omitempty"`
	Quantity        int             `json:"quantity"`
	StockCeiling    *int            `json:"stockCeiling,omitempty"`
	Image           string          `json:"image,omitempty"`
}

// Matches reports whether the item is identified by id and kind.
func (li LineItem) Matches(id string, kind Kind) bool {
	return li.ID == id && li.Kind == kind
}

// EffectivePrice is the unit price after the discount, if any.
func (li LineItem) EffectivePrice() decimal.Decimal {
	return EffectivePrice(li.UnitPrice, li.DiscountPercent)
}

// Total is the effective price multiplied by quantity.
func (li LineItem) Total() decimal.Decimal {
	return li.EffectivePrice().Mul(decimal.NewFromInt(int64(li.Quantity)))
}

var hundred = decimal.NewFromInt(100)

// EffectivePrice applies discountPercent (0-100) to price, rounded to whole currency units.
// A nil or zero discount leaves price unchanged.
func EffectivePrice(price decimal.Decimal, discountPercent *int) decimal.Decimal {
	if discountPercent == nil || *discountPercent <= 0 {
		return price
	}
	pct := *discountPercent
	if pct > 100 {
		pct = 100
	}
	factor := hundred.Sub(decimal.NewFromInt(int64(pct))).Div(hundred)
	return price.Mul(factor).Round(0)
}
