// Package checkout turns a session cart into a submitted order and hands payment
// collection to the hosted processor.
package checkout

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"podcast-storefront/internal/domain"
	"podcast-storefront/internal/identity"
	"podcast-storefront/internal/payment"
)

const (
	RedirectSignIn  = "/login"
	RedirectProfile = "/profile"
	RedirectOrders  = "/orders"
)

// Status is the user-facing shape of a checkout result.
type Status string

const (
	StatusRedirect  Status = "redirect"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Step names where a failed checkout stopped.
type Step string

const (
	StepCart    Step = "cart"
	StepOrder   Step = "order"
	StepPayment Step = "payment"
)

var errEmptyCart = errors.New("cart is empty")

// Result is always returned; failures are expressed as notices, never as errors.
type Result struct {
	Status   Status          `json:"status"`
	Redirect string          `json:"redirect,omitempty"`
	Notice   string          `json:"notice"`
	OrderID  string          `json:"orderId,omitempty"`
	Step     Step            `json:"step,omitempty"`
	Outcome  payment.Outcome `json:"outcome,omitempty"`
	Totals   *Totals         `json:"totals,omitempty"`
	Err      error           `json:"-"`
}

// Cart is the part of the cart store checkout reads and settles.
type Cart interface {
	Items() []domain.LineItem
	UpdateQuantity(id string, kind domain.Kind, quantity int)
	Clear()
}

// OrderWriter persists a new order and returns the stored id.
type OrderWriter interface {
	Create(ctx context.Context, order domain.Order) (string, error)
}

// Deps are the collaborators of an Orchestrator. Now and Random default to the wall clock and crypto/rand.
type Deps struct {
	Cart     Cart
	Identity identity.Provider
	Orders   OrderWriter
	Payments payment.Processor
	Now      func() time.Time
	Random   io.Reader
	Logger   *zap.Logger
}

// Orchestrator runs checkout for one session.
type Orchestrator struct {
	cart     Cart
	identity identity.Provider
	orders   OrderWriter
	payments payment.Processor
	now      func() time.Time
	random   io.Reader
	logger   *zap.Logger
}

func New(deps Deps) *Orchestrator {
	o := &Orchestrator{
		cart:     deps.Cart,
		identity: deps.Identity,
		orders:   deps.Orders,
		payments: deps.Payments,
		now:      deps.Now,
		random:   deps.Random,
		logger:   deps.Logger,
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.random == nil {
		o.random = rand.Reader
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}

// Checkout validates the shopper, submits the order, then collects payment.
// The order write always finishes before the processor is invoked. show receives
// the hosted payment prompt. Totals come from the same items snapshot that is ordered,
// and only those lines leave the cart, for settled or pending outcomes.
func (o *Orchestrator) Checkout(ctx context.Context, show func(payment.Prompt)) Result {
	who := o.identity.Current()
	if who == nil || who.UID == "" || who.Profile == nil {
		return Result{Status: StatusRedirect, Redirect: RedirectSignIn, Notice: "Please sign in first"}
	}
	if who.Profile.Address == nil {
		return Result{Status: StatusRedirect, Redirect: RedirectProfile, Notice: "Please complete your shipping address in your profile"}
	}

	items := o.cart.Items()
	if len(items) == 0 {
		return Result{Status: StatusFailed, Step: StepCart, Notice: "Your cart is empty", Err: errEmptyCart}
	}
	subtotal := decimal.Zero
	for _, li := range items {
		subtotal = subtotal.Add(li.Total())
	}
	totals := ComputeTotals(subtotal)

	orderID, err := NewOrderID(o.now(), o.random)
	if err != nil {
		return o.fail(StepOrder, "", &totals, err, "Failed to create order: "+err.Error())
	}
	now := o.now().UTC()
	order := domain.Order{
		ID:              orderID,
		UserID:          who.UID,
		Items:           domain.SnapshotItems(items),
		Subtotal:        totals.Subtotal,
		Tax:             totals.Tax,
		TotalAmount:     totals.Total,
		PaymentStatus:   domain.PaymentPending,
		ShippingStatus:  domain.ShippingPending,
		ShippingAddress: *who.Profile.Address,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	storedID, err := o.orders.Create(ctx, order)
	if err != nil {
		return o.fail(StepOrder, orderID, &totals, err, "Failed to create order: "+err.Error())
	}
	if storedID != "" {
		order.ID = storedID
	}
	o.logger.Info("order submitted",
		zap.String("order_id", order.ID),
		zap.String("uid", who.UID),
		zap.String("total", totals.Total.String()))

	res, err := o.payments.Pay(ctx, buildPaymentRequest(order, *who.Profile, items, totals), show)
	if err != nil {
		return o.fail(StepPayment, order.ID, &totals, err, "Failed to process payment: "+err.Error())
	}

	switch res.Outcome {
	case payment.OutcomeSettled, payment.OutcomePending:
		o.settleCart(items)
		o.logger.Info("checkout completed", zap.String("order_id", order.ID), zap.String("outcome", string(res.Outcome)))
		return Result{
			Status:   StatusCompleted,
			Redirect: RedirectOrders,
			Notice:   "Your order has been placed",
			OrderID:  order.ID,
			Outcome:  res.Outcome,
			Totals:   &totals,
		}
	case payment.OutcomeCancelled:
		out := o.fail(StepPayment, order.ID, &totals, nil, "Payment cancelled")
		out.Outcome = payment.OutcomeCancelled
		return out
	default:
		msg := res.Message
		if msg == "" {
			msg = res.TransactionStatus
		}
		if msg == "" {
			msg = "payment was not completed"
		}
		out := o.fail(StepPayment, order.ID, &totals, errors.New(msg), "Failed to process payment: "+msg)
		out.Outcome = payment.OutcomeError
		return out
	}
}

// settleCart takes the ordered quantities out of the cart. Anything added after the
// snapshot was taken stays.
func (o *Orchestrator) settleCart(ordered []domain.LineItem) {
	current := o.cart.Items()
	if sameLines(current, ordered) {
		o.cart.Clear()
		return
	}
	for _, li := range ordered {
		for _, cur := range current {
			if cur.Matches(li.ID, li.Kind) {
				o.cart.UpdateQuantity(li.ID, li.Kind, cur.Quantity-li.Quantity)
				break
			}
		}
	}
}

func sameLines(a, b []domain.LineItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Matches(b[i].ID, b[i].Kind) || a[i].Quantity != b[i].Quantity {
			return false
		}
	}
	return true
}

func (o *Orchestrator) fail(step Step, orderID string, totals *Totals, err error, notice string) Result {
	o.logger.Warn("checkout failed",
		zap.String("step", string(step)),
		zap.String("order_id", orderID),
		zap.Error(err))
	return Result{
		Status:  StatusFailed,
		Step:    step,
		Notice:  notice,
		OrderID: orderID,
		Totals:  totals,
		Err:     err,
	}
}

func buildPaymentRequest(order domain.Order, profile domain.Profile, items []domain.LineItem, totals Totals) payment.Request {
	req := payment.Request{
		OrderID:     order.ID,
		GrossAmount: totals.Total,
		Customer: payment.Customer{
			FirstName: profile.FullName,
			Email:     profile.Email,
			Phone:     profile.Phone,
			BillingAddress: payment.BillingAddress{
				Address:    strings.TrimSpace(order.ShippingAddress.Street),
				City:       order.ShippingAddress.City,
				PostalCode: order.ShippingAddress.PostalCode,
			},
		},
		Items: make([]payment.Item, 0, len(items)+1),
	}
	for _, li := range items {
		qty := li.Quantity
		if qty <= 0 {
			qty = 1
		}
		req.Items = append(req.Items, payment.Item{
			ID:       li.ID,
			Name:     li.Name,
			Price:    li.EffectivePrice(),
			Quantity: qty,
		})
	}
	if !totals.Tax.IsZero() {
		req.Items = append(req.Items, payment.Item{ID: "tax-ppn", Name: "PPN 11%", Price: totals.Tax, Quantity: 1})
	}
	return req
}
