package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"podcast-storefront/internal/payment"
	"podcast-storefront/internal/service/checkout"
)

const closeWait = 5 * time.Second

type checkoutResponse struct {
	Status      string           `json:"status"`
	OrderID     string           `json:"orderId,omitempty"`
	Token       string           `json:"token,omitempty"`
	RedirectURL string           `json:"redirectUrl,omitempty"`
	Redirect    string           `json:"redirect,omitempty"`
	Notice      string           `json:"notice,omitempty"`
	Step        checkout.Step    `json:"step,omitempty"`
	Outcome     payment.Outcome  `json:"outcome,omitempty"`
	Totals      *checkout.Totals `json:"totals,omitempty"`
	Finished    bool             `json:"finished"`
}

// statusAwaitingPayment marks an attempt whose hosted payment page is open.
const statusAwaitingPayment = "awaiting_payment"

func toCheckoutResponse(st checkout.AttemptState) (int, checkoutResponse) {
	out := checkoutResponse{OrderID: st.OrderID, Finished: st.Finished}
	if st.Prompt != nil {
		out.Token = st.Prompt.Token
		out.RedirectURL = st.Prompt.RedirectURL
	}
	if st.Result == nil {
		out.Status = statusAwaitingPayment
		return http.StatusAccepted, out
	}
	res := st.Result
	out.Status = string(res.Status)
	out.Redirect = res.Redirect
	out.Notice = res.Notice
	out.Step = res.Step
	out.Outcome = res.Outcome
	out.Totals = res.Totals
	if res.Status != checkout.StatusFailed {
		return http.StatusOK, out
	}
	switch res.Step {
	case checkout.StepCart:
		return http.StatusBadRequest, out
	case checkout.StepOrder:
		return http.StatusBadGateway, out
	default:
		return http.StatusPaymentRequired, out
	}
}

// startCheckout runs the orchestrator in the background and answers as soon as
// the hosted payment prompt is ready or the attempt ended without one.
func (h *handlers) startCheckout(c *gin.Context) {
	sess := currentSession(c)
	attempt, err := sess.Attempts.Start(sess.Checkout.Checkout)
	if err != nil {
		if errors.Is(err, checkout.ErrAttemptInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		h.internal(c, "start checkout", err)
		return
	}

	timer := time.NewTimer(h.deps.PromptWait)
	defer timer.Stop()
	select {
	case <-attempt.Ready():
	case <-timer.C:
		h.logger.Warn("payment prompt not ready in time", zap.String("session_id", sess.ID))
	case <-c.Request.Context().Done():
		return
	}
	status, body := toCheckoutResponse(attempt.State())
	c.JSON(status, body)
}

func (h *handlers) checkoutStatus(c *gin.Context) {
	attempt, ok := currentSession(c).Attempts.Lookup(c.Param("orderId"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "checkout not found"})
		return
	}
	status, body := toCheckoutResponse(attempt.State())
	if status == http.StatusAccepted {
		status = http.StatusOK
	}
	c.JSON(status, body)
}

// closeCheckout reports that the shopper dismissed the hosted payment page.
func (h *handlers) closeCheckout(c *gin.Context) {
	orderID := c.Param("orderId")
	attempt, ok := currentSession(c).Attempts.Lookup(orderID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "checkout not found"})
		return
	}
	err := h.deps.Payments.Resolve(orderID, payment.Result{
		Outcome: payment.OutcomeCancelled,
		Message: "payment window closed",
	})
	if err != nil && !errors.Is(err, payment.ErrUnknownOrder) {
		h.internal(c, "close checkout", err)
		return
	}

	timer := time.NewTimer(closeWait)
	defer timer.Stop()
	select {
	case <-attempt.Done():
	case <-timer.C:
	case <-c.Request.Context().Done():
		return
	}
	status, body := toCheckoutResponse(attempt.State())
	if status == http.StatusAccepted {
		status = http.StatusOK
	}
	c.JSON(status, body)
}
