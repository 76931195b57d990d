package midtrans

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"podcast-storefront/internal/payment"
)

// ErrBadSignature is returned when a notification was not signed with our server key.
var ErrBadSignature = errors.New("midtrans: invalid notification signature")

// Notification is the HTTP notification body Midtrans posts after a status change.
type Notification struct {
	OrderID           string `json:"order_id"`
	TransactionID     string `json:"transaction_id"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	StatusCode        string `json:"status_code"`
	StatusMessage     string `json:"status_message"`
	GrossAmount       string `json:"gross_amount"`
	PaymentType       string `json:"payment_type"`
	SignatureKey      string `json:"signature_key"`
}

// Verify checks signature_key = sha512(order_id + status_code + gross_amount + server_key).
func (n Notification) Verify(serverKey string) error {
	sum := sha512.Sum512([]byte(n.OrderID + n.StatusCode + n.GrossAmount + serverKey))
	want := hex.EncodeToString(sum[:])
	if subtle.ConstantTimeCompare([]byte(want), []byte(strings.ToLower(n.SignatureKey))) != 1 {
		return ErrBadSignature
	}
	return nil
}

// Result maps the transaction status onto the four-way outcome. ok is false for
// statuses that are not terminal for the shopper (e.g. authorize, challenge).
func (n Notification) Result() (res payment.Result, ok bool) {
	res = payment.Result{
		TransactionStatus: n.TransactionStatus,
		TransactionID:     n.TransactionID,
		Message:           n.StatusMessage,
	}
	switch strings.ToLower(n.TransactionStatus) {
	case "settlement":
		res.Outcome = payment.OutcomeSettled
	case "capture":
		if n.FraudStatus != "" && !strings.EqualFold(n.FraudStatus, "accept") {
			return res, false
		}
		res.Outcome = payment.OutcomeSettled
	case "pending":
		res.Outcome = payment.OutcomePending
	case "deny", "cancel", "expire", "failure":
		res.Outcome = payment.OutcomeError
	default:
		return res, false
	}
	return res, true
}
