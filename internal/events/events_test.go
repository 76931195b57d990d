package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podcast-storefront/internal/domain"
	orderrepo "podcast-storefront/internal/repository/order"
)

type captureWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *captureWriter) Close() error {
	w.closed = true
	return nil
}

type stubOrders struct {
	orderrepo.Repository
	createErr error
	stored    domain.Order
}

func (s *stubOrders) Create(_ context.Context, o domain.Order) (string, error) {
	if s.createErr != nil {
		return "", s.createErr
	}
	s.stored = o
	return o.ID, nil
}

func (s *stubOrders) UpdatePaymentStatus(_ context.Context, id string, status domain.PaymentStatus) (*domain.Order, error) {
	o := s.stored
	o.PaymentStatus = status
	return &o, nil
}

type recordingPublisher struct {
	events []OrderEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev OrderEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func sampleOrder() domain.Order {
	return domain.Order{
		ID:          "FB-1-ABCDEF",
		UserID:      "u1",
		TotalAmount: decimal.NewFromInt(255300),
		Items: []domain.OrderItem{
			{ID: "c1", Quantity: 1},
			{ID: "m1", Quantity: 2},
		},
		PaymentStatus:  domain.PaymentPending,
		ShippingStatus: domain.ShippingPending,
	}
}

func TestKafkaPublishKeysByOrderID(t *testing.T) {
	w := &captureWriter{}
	k := newKafka(w, nil)

	ev := NewOrderEvent(TypeOrderCreated, sampleOrder(), time.Unix(1700000000, 0))
	require.NoError(t, k.Publish(context.Background(), ev))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "FB-1-ABCDEF", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, TypeOrderCreated, string(msg.Headers[0].Value))

	var decoded OrderEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "255300", decoded.TotalAmount)
	assert.Equal(t, 3, decoded.ItemCount)

	require.NoError(t, k.Close())
	assert.True(t, w.closed)
}

func TestPublishingOrdersEmitsAfterWrite(t *testing.T) {
	pub := &recordingPublisher{}
	orders := NewPublishingOrders(&stubOrders{}, pub, nil)

	id, err := orders.Create(context.Background(), sampleOrder())
	require.NoError(t, err)
	assert.Equal(t, "FB-1-ABCDEF", id)

	_, err = orders.UpdatePaymentStatus(context.Background(), id, domain.PaymentPaid)
	require.NoError(t, err)

	require.Len(t, pub.events, 2)
	assert.Equal(t, TypeOrderCreated, pub.events[0].Type)
	assert.Equal(t, TypePaymentStatusChanged, pub.events[1].Type)
	assert.Equal(t, domain.PaymentPaid, pub.events[1].PaymentStatus)
}

func TestPublishingOrdersIgnoresPublishFailure(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	orders := NewPublishingOrders(&stubOrders{}, pub, nil)

	id, err := orders.Create(context.Background(), sampleOrder())
	require.NoError(t, err)
	assert.Equal(t, "FB-1-ABCDEF", id)
	assert.Len(t, pub.events, 1)
}

func TestPublishingOrdersSkipsFailedWrites(t *testing.T) {
	pub := &recordingPublisher{}
	orders := NewPublishingOrders(&stubOrders{createErr: errors.New("denied")}, pub, nil)

	_, err := orders.Create(context.Background(), sampleOrder())
	require.Error(t, err)
	assert.Empty(t, pub.events)
}
