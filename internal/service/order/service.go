// Package order serves order history and back-office status changes.
package order

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"podcast-storefront/internal/domain"
	orderrepo "podcast-storefront/internal/repository/order"
)

type Service struct {
	repo   orderrepo.Repository
	logger *zap.Logger
}

func New(repo orderrepo.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

// ListForUser returns the shopper's orders, newest first.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

// GetForUser returns one order, hiding orders owned by someone else.
func (s *Service) GetForUser(ctx context.Context, userID, id string) (*domain.Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

func (s *Service) List(ctx context.Context, limit int) ([]domain.Order, error) {
	return s.repo.List(ctx, limit)
}

// SetPaymentStatus is the back-office transition of the payment lifecycle.
func (s *Service) SetPaymentStatus(ctx context.Context, id string, status domain.PaymentStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: payment status %q", domain.ErrInvalidStatus, status)
	}
	o, err := s.repo.UpdatePaymentStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.logger.Info("payment status updated", zap.String("order_id", id), zap.String("status", string(status)))
	return o, nil
}

// SetShippingStatus updates shipping and, when trackingNumber is non-nil, the tracking number.
func (s *Service) SetShippingStatus(ctx context.Context, id string, status domain.ShippingStatus, trackingNumber *string) (*domain.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: shipping status %q", domain.ErrInvalidStatus, status)
	}
	if trackingNumber != nil {
		tn := strings.TrimSpace(*trackingNumber)
		trackingNumber = &tn
	}
	o, err := s.repo.UpdateShippingStatus(ctx, id, status, trackingNumber)
	if err != nil {
		return nil, err
	}
	s.logger.Info("shipping status updated", zap.String("order_id", id), zap.String("status", string(status)))
	return o, nil
}
