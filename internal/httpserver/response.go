package httpserver

import (
	"time"

	"github.com/shopspring/decimal"

	"podcast-storefront/internal/domain"
)

type customerResponse struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	Role      string          `json:"role"`
	Profile   *domain.Profile `json:"profile"`
	Complete  bool            `json:"profileComplete"`
	CreatedAt time.Time       `json:"createdAt"`
}

func toCustomerResponse(c domain.Customer) customerResponse {
	p := c.Profile()
	return customerResponse{
		ID:        c.ID,
		Email:     c.Email,
		Role:      c.Role,
		Profile:   p,
		Complete:  p.FullName != "" && p.Address != nil,
		CreatedAt: c.CreatedAt,
	}
}

type catalogItemResponse struct {
	ID              string          `json:"id"`
	Kind            domain.Kind     `json:"kind"`
	Title           string          `json:"title"`
	Description     string          `json:"description,omitempty"`
	Price           decimal.Decimal `json:"price"`
	DiscountPercent *int            `json:"discountPercent,omitempty"`
	FinalPrice      decimal.Decimal `json:"finalPrice"`
	Stock           *int            `json:"stock,omitempty"`
	ImageURL        string          `json:"imageUrl,omitempty"`
}

func toCatalogItemResponse(it domain.CatalogItem) catalogItemResponse {
	return catalogItemResponse{
		ID:              it.ID,
		Kind:            it.Kind,
		Title:           it.Title,
		Description:     it.Description,
		Price:           it.Price,
		DiscountPercent: it.DiscountPercent,
		FinalPrice:      domain.EffectivePrice(it.Price, it.DiscountPercent),
		Stock:           it.Stock,
		ImageURL:        it.ImageURL,
	}
}

type lineItemResponse struct {
	ID              string          `json:"id"`
	Kind            domain.Kind     `json:"kind"`
	Name            string          `json:"name"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	DiscountPercent *int            `json:"discountPercent,omitempty"`
	EffectivePrice  decimal.Decimal `json:"effectivePrice"`
	Quantity        int             `json:"quantity"`
	StockCeiling    *int            `json:"stockCeiling,omitempty"`
	Image           string          `json:"image,omitempty"`
	Total           decimal.Decimal `json:"total"`
}

type cartResponse struct {
	Items      []lineItemResponse `json:"items"`
	TotalItems int                `json:"totalItems"`
	TotalPrice decimal.Decimal    `json:"totalPrice"`
}

type cartView interface {
	Items() []domain.LineItem
	TotalItems() int
	TotalPrice() decimal.Decimal
}

func toCartResponse(c cartView) cartResponse {
	items := c.Items()
	out := cartResponse{
		Items:      make([]lineItemResponse, 0, len(items)),
		TotalItems: c.TotalItems(),
		TotalPrice: c.TotalPrice(),
	}
	for _, li := range items {
		out.Items = append(out.Items, lineItemResponse{
			ID:              li.ID,
			Kind:            li.Kind,
			Name:            li.Name,
			UnitPrice:       li.UnitPrice,
			DiscountPercent: li.DiscountPercent,
			EffectivePrice:  li.EffectivePrice(),
			Quantity:        li.Quantity,
			StockCeiling:    li.StockCeiling,
			Image:           li.Image,
			Total:           li.Total(),
		})
	}
	return out
}
