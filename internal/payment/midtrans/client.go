// Package midtrans talks to the Midtrans Snap hosted checkout.
package midtrans

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/sony/gobreaker/v2"

	"podcast-storefront/internal/payment"
)

const maxItemNameLen = 50

// ErrRejected wraps a 4xx answer from Snap. It does not count against the breaker.
var ErrRejected = errors.New("midtrans: request rejected")

// Config selects the environment and credentials.
type Config struct {
	ServerKey  string
	Production bool
	Timeout    time.Duration
}

// snapAPI is the part of snap.Client used here.
type snapAPI interface {
	CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error)
}

// Client creates Snap transactions behind a circuit breaker.
type Client struct {
	api     snapAPI
	breaker *gobreaker.CircuitBreaker[*Transaction]
}

func NewClient(cfg Config) *Client {
	env := midtrans.Sandbox
	if cfg.Production {
		env = midtrans.Production
	}
	api := &snap.Client{}
	api.New(cfg.ServerKey, env)
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if impl, ok := api.HttpClient.(*midtrans.HttpClientImplementation); ok {
		impl.HttpClient = &http.Client{Timeout: timeout}
	}
	return newClient(api)
}

func newClient(api snapAPI) *Client {
	breaker := gobreaker.NewCircuitBreaker[*Transaction](gobreaker.Settings{
		Name:        "midtrans-snap",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrRejected)
		},
	})
	return &Client{api: api, breaker: breaker}
}

// CreateTransaction registers the payment request and returns the hosted page token.
func (c *Client) CreateTransaction(ctx context.Context, req payment.Request) (*Transaction, error) {
	snapReq := toSnapRequest(req)
	return c.breaker.Execute(func() (*Transaction, error) {
		return c.create(ctx, snapReq)
	})
}

type createResult struct {
	resp *snap.Response
	err  *midtrans.Error
}

// create runs the SDK call, which takes no context, and gives up when ctx ends.
func (c *Client) create(ctx context.Context, req *snap.Request) (*Transaction, error) {
	done := make(chan createResult, 1)
	go func() {
		resp, err := c.api.CreateTransaction(req)
		done <- createResult{resp: resp, err: err}
	}()

	var res createResult
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-done:
	}

	if res.err != nil {
		status := res.err.StatusCode
		if status >= 400 && status < 500 {
			return nil, fmt.Errorf("%w: status %d: %s", ErrRejected, status, res.err.Message)
		}
		return nil, fmt.Errorf("midtrans status %d: %s", status, res.err.Message)
	}
	if res.resp == nil || res.resp.Token == "" {
		return nil, errors.New("midtrans response missing token")
	}
	return &Transaction{Token: res.resp.Token, RedirectURL: res.resp.RedirectURL}, nil
}

func toSnapRequest(req payment.Request) *snap.Request {
	items := make([]midtrans.ItemDetails, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, midtrans.ItemDetails{
			ID:    it.ID,
			Name:  truncate(it.Name, maxItemNameLen),
			Price: wholeUnits(it.Price),
			Qty:   int32(it.Quantity),
		})
	}
	return &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.OrderID,
			GrossAmt: wholeUnits(req.GrossAmount),
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: req.Customer.FirstName,
			Email: req.Customer.Email,
			Phone: req.Customer.Phone,
			BillAddr: &midtrans.CustomerAddress{
				FName:    req.Customer.FirstName,
				Phone:    req.Customer.Phone,
				Address:  req.Customer.BillingAddress.Address,
				City:     req.Customer.BillingAddress.City,
				Postcode: req.Customer.BillingAddress.PostalCode,
			},
		},
		Items: &items,
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
