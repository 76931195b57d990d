package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"podcast-storefront/internal/payment"
	"podcast-storefront/internal/payment/midtrans"
)

// midtransNotification resolves a waiting checkout from the processor's HTTP
// notification. Order statuses are not touched here; the back office owns them.
func (h *handlers) midtransNotification(c *gin.Context) {
	var n midtrans.Notification
	if err := c.ShouldBindJSON(&n); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification"})
		return
	}
	if err := n.Verify(h.deps.MidtransServerKey); err != nil {
		h.logger.Warn("notification rejected", zap.String("order_id", n.OrderID), zap.Error(err))
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid signature"})
		return
	}
	res, ok := n.Result()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}
	if err := h.deps.Payments.Resolve(n.OrderID, res); err != nil {
		if errors.Is(err, payment.ErrUnknownOrder) {
			h.logger.Info("notification for order nobody waits on",
				zap.String("order_id", n.OrderID),
				zap.String("transaction_status", n.TransactionStatus))
			c.JSON(http.StatusOK, gin.H{"status": "ignored"})
			return
		}
		h.internal(c, "resolve payment", err)
		return
	}
	h.logger.Info("payment outcome delivered",
		zap.String("order_id", n.OrderID),
		zap.String("outcome", string(res.Outcome)))
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
