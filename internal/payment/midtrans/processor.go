package midtrans

import (
	"context"

	"go.uber.org/zap"

	"podcast-storefront/internal/payment"
)

type transactionCreator interface {
	CreateTransaction(ctx context.Context, req payment.Request) (*Transaction, error)
}

// Processor runs one hosted Snap checkout: it creates the transaction, shows the
// prompt and waits for the outcome reported through the hub.
type Processor struct {
	client transactionCreator
	hub    *payment.Hub
	logger *zap.Logger
}

func NewProcessor(client transactionCreator, hub *payment.Hub, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{client: client, hub: hub, logger: logger}
}

func (p *Processor) Pay(ctx context.Context, req payment.Request, show func(payment.Prompt)) (payment.Result, error) {
	// Registered before the token exists so an early notification is not lost.
	wait, release := p.hub.Register(req.OrderID)
	defer release()

	tx, err := p.client.CreateTransaction(ctx, req)
	if err != nil {
		p.logger.Warn("snap transaction failed", zap.String("order_id", req.OrderID), zap.Error(err))
		return payment.Result{}, err
	}
	p.logger.Info("snap transaction created", zap.String("order_id", req.OrderID))
	if show != nil {
		show(payment.Prompt{OrderID: req.OrderID, Token: tx.Token, RedirectURL: tx.RedirectURL})
	}

	res, err := wait(ctx)
	if err != nil {
		return payment.Result{}, err
	}
	p.logger.Info("snap outcome", zap.String("order_id", req.OrderID), zap.String("outcome", string(res.Outcome)))
	return res, nil
}
