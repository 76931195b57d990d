package events

import (
	"context"
	"time"

	"go.uber.org/zap"

	"podcast-storefront/internal/domain"
	orderrepo "podcast-storefront/internal/repository/order"
)

// PublishingOrders wraps an order repository and emits an event after every
// successful write. Publish failures are logged and never fail the write.
type PublishingOrders struct {
	orderrepo.Repository
	publisher Publisher
	now       func() time.Time
	logger    *zap.Logger
}

func NewPublishingOrders(repo orderrepo.Repository, publisher Publisher, logger *zap.Logger) *PublishingOrders {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PublishingOrders{Repository: repo, publisher: publisher, now: time.Now, logger: logger}
}

func (p *PublishingOrders) Create(ctx context.Context, o domain.Order) (string, error) {
	id, err := p.Repository.Create(ctx, o)
	if err != nil {
		return "", err
	}
	o.ID = id
	p.publish(ctx, NewOrderEvent(TypeOrderCreated, o, p.now()))
	return id, nil
}

func (p *PublishingOrders) UpdatePaymentStatus(ctx context.Context, id string, status domain.PaymentStatus) (*domain.Order, error) {
	o, err := p.Repository.UpdatePaymentStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	p.publish(ctx, NewOrderEvent(TypePaymentStatusChanged, *o, p.now()))
	return o, nil
}

func (p *PublishingOrders) UpdateShippingStatus(ctx context.Context, id string, status domain.ShippingStatus, trackingNumber *string) (*domain.Order, error) {
	o, err := p.Repository.UpdateShippingStatus(ctx, id, status, trackingNumber)
	if err != nil {
		return nil, err
	}
	p.publish(ctx, NewOrderEvent(TypeShippingStatusChanged, *o, p.now()))
	return o, nil
}

func (p *PublishingOrders) publish(ctx context.Context, ev OrderEvent) {
	if err := p.publisher.Publish(context.WithoutCancel(ctx), ev); err != nil {
		p.logger.Warn("order event not published",
			zap.String("type", ev.Type),
			zap.String("order_id", ev.OrderID),
			zap.Error(err))
	}
}
