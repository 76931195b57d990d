package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CatalogItem is a purchasable content offering or merchandise product.
type CatalogItem struct {
	ID              string          `json:"id"`
	Kind            Kind            `json:"kind"`
	Title           string          `json:"title"`
	Description     string          `json:"description,omitempty"`
	Price           decimal.Decimal `json:"price"`
	DiscountPercent *int            `json:"discountPercent,omitempty"`
	Stock           *int            `json:"stock,omitempty"`
	ImageURL        string          `json:"imageUrl,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// Candidate turns the catalog entry into a cart candidate.
func (ci CatalogItem) Candidate() Candidate {
	c := Candidate{
		ID:              ci.ID,
		Kind:            ci.Kind,
		Name:            ci.Title,
		UnitPrice:       ci.Price,
		DiscountPercent: ci.DiscountPercent,
		Image:           ci.ImageURL,
	}
	if ci.Kind == KindMerchandise {
		c.StockCeiling = ci.Stock
	}
	return c
}
