package order

import (
	"context"

	"podcast-storefront/internal/domain"
)

// Repository persists submitted orders. Items and amounts are written once at creation.
type Repository interface {
	Create(ctx context.Context, o domain.Order) (string, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	List(ctx context.Context, limit int) ([]domain.Order, error)
	UpdatePaymentStatus(ctx context.Context, id string, status domain.PaymentStatus) (*domain.Order, error)
	UpdateShippingStatus(ctx context.Context, id string, status domain.ShippingStatus, trackingNumber *string) (*domain.Order, error)
}
