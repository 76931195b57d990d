package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus mirrors the back-office payment lifecycle.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
	PaymentExpired PaymentStatus = "expired"
)

// Valid reports whether s is a known payment status.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentExpired:
		return true
	}
	return false
}

// ShippingStatus mirrors the back-office shipping lifecycle.
type ShippingStatus string

const (
	ShippingPending    ShippingStatus = "pending"
	ShippingProcessing ShippingStatus = "processing"
	ShippingShipped    ShippingStatus = "shipped"
	ShippingDelivered  ShippingStatus = "delivered"
	ShippingReturned   ShippingStatus = "returned"
)

// Valid reports whether s is a known shipping status.
func (s ShippingStatus) Valid() bool {
	switch s {
	case ShippingPending, ShippingProcessing, ShippingShipped, ShippingDelivered, ShippingReturned:
		return true
	}
	return false
}

// OrderItem is the snapshot of a cart line taken at submission time.
type OrderItem struct {
	ID       string          `json:"id"`
	Kind     Kind            `json:"kind"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Discount int             `json:"discount"`
	Quantity int             `json:"quantity"`
	Image    string          `json:"image,omitempty"`
}

// Order is a submitted checkout attempt. Items and TotalAmount never change after creation.
type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	Items           []OrderItem     `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Tax             decimal.Decimal `json:"tax"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus"`
	ShippingStatus  ShippingStatus  `json:"shippingStatus"`
	ShippingAddress Address         `json:"shippingAddress"`
	TrackingNumber  string          `json:"trackingNumber,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// SnapshotItems copies cart lines into order items.
func SnapshotItems(lines []LineItem) []OrderItem {
	items := make([]OrderItem, 0, len(lines))
	for _, li := range lines {
		discount := 0
		if li.DiscountPercent != nil {
			discount = *li.DiscountPercent
		}
		qty := li.Quantity
		if qty <= 0 {
			qty = 1
		}
		items = append(items, OrderItem{
			ID:       li.ID,
			Kind:     li.Kind,
			Name:     li.Name,
			Price:    li.UnitPrice,
			Discount: discount,
			Quantity: qty,
			Image:    li.Image,
		})
	}
	return items
}
