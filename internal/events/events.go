// Package events publishes order lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"podcast-storefront/internal/domain"
)

const DefaultTopic = "order-events"

const (
	TypeOrderCreated          = "order.created"
	TypePaymentStatusChanged  = "order.payment_status_changed"
	TypeShippingStatusChanged = "order.shipping_status_changed"
)

// OrderEvent is the payload of every message on the order topic.
type OrderEvent struct {
	Type           string                `json:"type"`
	OrderID        string                `json:"orderId"`
	UserID         string                `json:"userId"`
	TotalAmount    string                `json:"totalAmount"`
	ItemCount      int                   `json:"itemCount"`
	PaymentStatus  domain.PaymentStatus  `json:"paymentStatus"`
	ShippingStatus domain.ShippingStatus `json:"shippingStatus"`
	TrackingNumber string                `json:"trackingNumber,omitempty"`
	OccurredAt     time.Time             `json:"occurredAt"`
}

// NewOrderEvent snapshots o as an event of the given type.
func NewOrderEvent(eventType string, o domain.Order, at time.Time) OrderEvent {
	count := 0
	for _, it := range o.Items {
		count += it.Quantity
	}
	return OrderEvent{
		Type:           eventType,
		OrderID:        o.ID,
		UserID:         o.UserID,
		TotalAmount:    o.TotalAmount.String(),
		ItemCount:      count,
		PaymentStatus:  o.PaymentStatus,
		ShippingStatus: o.ShippingStatus,
		TrackingNumber: o.TrackingNumber,
		OccurredAt:     at.UTC(),
	}
}

// Publisher sends order events somewhere.
type Publisher interface {
	Publish(ctx context.Context, ev OrderEvent) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka writes events keyed by order id so one order's events stay ordered.
type Kafka struct {
	writer  messageWriter
	timeout time.Duration
	logger  *zap.Logger
}

func NewKafka(brokers []string, topic string, logger *zap.Logger) *Kafka {
	if topic == "" {
		topic = DefaultTopic
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return newKafka(w, logger)
}

func newKafka(w messageWriter, logger *zap.Logger) *Kafka {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Kafka{writer: w, timeout: 5 * time.Second, logger: logger}
}

func (k *Kafka) Publish(ctx context.Context, ev OrderEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, k.timeout)
	defer cancel()
	msg := kafka.Message{
		Key:   []byte(ev.OrderID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(ev.Type)},
		},
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return err
	}
	k.logger.Debug("event published", zap.String("type", ev.Type), zap.String("order_id", ev.OrderID))
	return nil
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}

// Nop drops every event. Used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, OrderEvent) error { return nil }
func (Nop) Close() error                              { return nil }
