package checkout

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"podcast-storefront/internal/payment"
)

// ErrAttemptInProgress is returned when a session starts a second checkout
// before the first reached a terminal result.
var ErrAttemptInProgress = errors.New("checkout already in progress")

const keptAttempts = 8

// RunFunc is the orchestrator entry point run by a Tracker.
type RunFunc func(ctx context.Context, show func(payment.Prompt)) Result

// AttemptState is a point-in-time view of an attempt.
type AttemptState struct {
	OrderID  string          `json:"orderId,omitempty"`
	Prompt   *payment.Prompt `json:"prompt,omitempty"`
	Result   *Result         `json:"result,omitempty"`
	Finished bool            `json:"finished"`
}

// Attempt is one background checkout.
type Attempt struct {
	mu     sync.Mutex
	prompt *payment.Prompt
	result *Result

	readyOnce sync.Once
	ready     chan struct{}
	done      chan struct{}
}

func newAttempt() *Attempt {
	return &Attempt{ready: make(chan struct{}), done: make(chan struct{})}
}

// Ready is closed once the hosted prompt is available or the attempt finished.
func (a *Attempt) Ready() <-chan struct{} { return a.ready }

// Done is closed once the attempt has a terminal result.
func (a *Attempt) Done() <-chan struct{} { return a.done }

func (a *Attempt) State() AttemptState {
	a.mu.Lock()
	defer a.mu.Unlock()
	st := AttemptState{}
	if a.prompt != nil {
		p := *a.prompt
		st.Prompt = &p
		st.OrderID = p.OrderID
	}
	if a.result != nil {
		r := *a.result
		st.Result = &r
		st.Finished = true
		if r.OrderID != "" {
			st.OrderID = r.OrderID
		}
	}
	return st
}

func (a *Attempt) show(p payment.Prompt) {
	a.mu.Lock()
	a.prompt = &p
	a.mu.Unlock()
	a.readyOnce.Do(func() { close(a.ready) })
}

func (a *Attempt) finish(res Result) {
	a.mu.Lock()
	a.result = &res
	a.mu.Unlock()
	close(a.done)
	a.readyOnce.Do(func() { close(a.ready) })
}

// Tracker runs at most one checkout at a time for a session and remembers the
// most recent attempts by order id.
type Tracker struct {
	ctx    context.Context
	logger *zap.Logger

	mu      sync.Mutex
	running *Attempt
	byOrder map[string]*Attempt
	order   []string
}

// NewTracker binds attempts to ctx, so cancelling it abandons every waiting payment.
func NewTracker(ctx context.Context, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{ctx: ctx, logger: logger, byOrder: make(map[string]*Attempt)}
}

// Start launches run in the background.
func (t *Tracker) Start(run RunFunc) (*Attempt, error) {
	t.mu.Lock()
	if t.running != nil {
		t.mu.Unlock()
		return nil, ErrAttemptInProgress
	}
	a := newAttempt()
	t.running = a
	t.mu.Unlock()

	go func() {
		res := run(t.ctx, func(p payment.Prompt) {
			t.remember(p.OrderID, a)
			a.show(p)
		})
		t.remember(res.OrderID, a)
		t.mu.Lock()
		t.running = nil
		t.mu.Unlock()
		a.finish(res)
		t.logger.Debug("checkout attempt finished",
			zap.String("order_id", res.OrderID),
			zap.String("status", string(res.Status)))
	}()
	return a, nil
}

// Busy reports whether an attempt is still waiting for its outcome.
func (t *Tracker) Busy() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running != nil
}

// Lookup returns the attempt that produced orderID.
func (t *Tracker) Lookup(orderID string) (*Attempt, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	a, ok := t.byOrder[orderID]
	return a, ok
}

func (t *Tracker) remember(orderID string, a *Attempt) {
	if orderID == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.byOrder[orderID]; ok {
		return
	}
	t.byOrder[orderID] = a
	t.order = append(t.order, orderID)
	for len(t.order) > keptAttempts {
		delete(t.byOrder, t.order[0])
		t.order = t.order[1:]
	}
}
