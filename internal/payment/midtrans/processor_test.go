package midtrans

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podcast-storefront/internal/payment"
)

type stubCreator struct {
	tx  *Transaction
	err error
	// onCreate runs inside CreateTransaction, before the prompt is shown.
	onCreate func()
}

func (s *stubCreator) CreateTransaction(_ context.Context, _ payment.Request) (*Transaction, error) {
	if s.onCreate != nil {
		s.onCreate()
	}
	return s.tx, s.err
}

func TestProcessorShowsPromptAndWaitsForOutcome(t *testing.T) {
	hub := payment.NewHub()
	p := NewProcessor(&stubCreator{tx: &Transaction{Token: "tok", RedirectURL: "https://r"}}, hub, nil)

	var prompt payment.Prompt
	res, err := p.Pay(context.Background(), sampleRequest(), func(pr payment.Prompt) {
		prompt = pr
		go func() {
			_ = hub.Resolve(pr.OrderID, payment.Result{Outcome: payment.OutcomePending})
		}()
	})
	require.NoError(t, err)
	assert.Equal(t, payment.OutcomePending, res.Outcome)
	assert.Equal(t, "tok", prompt.Token)
	assert.Equal(t, sampleRequest().OrderID, prompt.OrderID)
	assert.False(t, hub.Pending(sampleRequest().OrderID))
}

func TestProcessorEarlyNotificationIsNotLost(t *testing.T) {
	hub := payment.NewHub()
	req := sampleRequest()
	creator := &stubCreator{tx: &Transaction{Token: "tok"}}
	creator.onCreate = func() {
		_ = hub.Resolve(req.OrderID, payment.Result{Outcome: payment.OutcomeSettled})
	}
	p := NewProcessor(creator, hub, nil)

	res, err := p.Pay(context.Background(), req, nil)
	require.NoError(t, err)
	assert.Equal(t, payment.OutcomeSettled, res.Outcome)
}

func TestProcessorTransactionFailure(t *testing.T) {
	hub := payment.NewHub()
	p := NewProcessor(&stubCreator{err: errors.New("dial tcp: refused")}, hub, nil)

	shown := false
	_, err := p.Pay(context.Background(), sampleRequest(), func(payment.Prompt) { shown = true })
	require.Error(t, err)
	assert.False(t, shown)
	assert.False(t, hub.Pending(sampleRequest().OrderID))
}
