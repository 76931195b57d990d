package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"podcast-storefront/internal/domain"
)

type paymentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type shippingStatusRequest struct {
	Status         string  `json:"status" binding:"required"`
	TrackingNumber *string `json:"trackingNumber"`
}

func (h *handlers) listOrders(c *gin.Context) {
	orders, err := h.deps.OrderSvc.ListForUser(c.Request.Context(), currentSession(c).UID())
	if err != nil {
		h.internal(c, "list orders", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": orders, "count": len(orders)})
}

func (h *handlers) getOrder(c *gin.Context) {
	o, err := h.deps.OrderSvc.GetForUser(c.Request.Context(), currentSession(c).UID(), c.Param("id"))
	if err != nil {
		h.orderError(c, "get order", err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *handlers) adminListOrders(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	orders, err := h.deps.OrderSvc.List(c.Request.Context(), limit)
	if err != nil {
		h.internal(c, "admin list orders", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": orders, "count": len(orders)})
}

func (h *handlers) adminPaymentStatus(c *gin.Context) {
	var req paymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status required"})
		return
	}
	o, err := h.deps.OrderSvc.SetPaymentStatus(c.Request.Context(), c.Param("id"), domain.PaymentStatus(req.Status))
	if err != nil {
		h.orderError(c, "set payment status", err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *handlers) adminShippingStatus(c *gin.Context) {
	var req shippingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status required"})
		return
	}
	o, err := h.deps.OrderSvc.SetShippingStatus(c.Request.Context(), c.Param("id"), domain.ShippingStatus(req.Status), req.TrackingNumber)
	if err != nil {
		h.orderError(c, "set shipping status", err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *handlers) orderError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
	case errors.Is(err, domain.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.internal(c, op, err)
	}
}
