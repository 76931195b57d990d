// Package payment describes the hosted payment processor contract.
package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// Outcome is the terminal result of one hosted checkout.
type Outcome string

const (
	OutcomeSettled   Outcome = "settled"
	OutcomePending   Outcome = "pending"
	OutcomeError     Outcome = "error"
	OutcomeCancelled Outcome = "cancelled"
)

// Accepted reports whether the order should be treated as placed.
func (o Outcome) Accepted() bool {
	return o == OutcomeSettled || o == OutcomePending
}

// Result is what the processor reports once the shopper leaves the hosted flow.
type Result struct {
	Outcome           Outcome `json:"outcome"`
	TransactionStatus string  `json:"transactionStatus,omitempty"`
	TransactionID     string  `json:"transactionId,omitempty"`
	Message           string  `json:"message,omitempty"`
}

// BillingAddress is the buyer address sent to the processor.
type BillingAddress struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
}

// Customer carries buyer contact details.
type Customer struct {
	FirstName      string         `json:"first_name"`
	Email          string         `json:"email"`
	Phone          string         `json:"phone,omitempty"`
	BillingAddress BillingAddress `json:"billing_address"`
}

// Item is one priced row of the payment request.
type Item struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// Request mirrors the submitted order for the processor.
type Request struct {
	OrderID     string
	GrossAmount decimal.Decimal
	Customer    Customer
	Items       []Item
}

// Prompt is what the shopper needs to open the hosted payment page.
type Prompt struct {
	OrderID     string `json:"orderId"`
	Token       string `json:"token"`
	RedirectURL string `json:"redirectUrl"`
}

// Processor collects a payment. Pay calls show once the hosted page is ready and
// then blocks until the terminal outcome is known or ctx ends. A non-nil error
// means the processor could not be reached and is treated as OutcomeError.
type Processor interface {
	Pay(ctx context.Context, req Request, show func(Prompt)) (Result, error)
}
