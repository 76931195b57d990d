package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"podcast-storefront/internal/domain"
)

type addItemRequest struct {
	ID   string `json:"id" binding:"required"`
	Kind string `json:"kind" binding:"required"`
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (h *handlers) getCart(c *gin.Context) {
	c.JSON(http.StatusOK, toCartResponse(currentSession(c).Cart))
}

// addCartItem prices the item from the catalog. A content item is a single
// entitlement and cannot be added twice; merchandise may not exceed its stock.
func (h *handlers) addCartItem(c *gin.Context) {
	if cartLocked(c) {
		return
	}
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id and kind required"})
		return
	}
	kind, err := domain.ParseKind(req.Kind)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	candidate, err := h.deps.CatalogSvc.Candidate(c.Request.Context(), kind, req.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
			return
		}
		h.internal(c, "catalog lookup", err)
		return
	}

	store := currentSession(c).Cart
	if existing, ok := store.Item(candidate.ID, kind); ok {
		if kind == domain.KindContent {
			c.JSON(http.StatusConflict, gin.H{"error": "content already in cart"})
			return
		}
		if exceedsCeiling(existing.StockCeiling, existing.Quantity+1) {
			c.JSON(http.StatusConflict, gin.H{"error": "not enough stock", "stock": *existing.StockCeiling})
			return
		}
	} else if exceedsCeiling(candidate.StockCeiling, 1) {
		c.JSON(http.StatusConflict, gin.H{"error": "out of stock", "stock": *candidate.StockCeiling})
		return
	}
	store.AddItem(candidate)
	c.JSON(http.StatusOK, toCartResponse(store))
}

func (h *handlers) updateCartItem(c *gin.Context) {
	if cartLocked(c) {
		return
	}
	kind, err := domain.ParseKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var req updateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity required"})
		return
	}
	store := currentSession(c).Cart
	id := c.Param("id")
	existing, ok := store.Item(id, kind)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not in cart"})
		return
	}
	if exceedsCeiling(existing.StockCeiling, *req.Quantity) {
		c.JSON(http.StatusConflict, gin.H{"error": "not enough stock", "stock": *existing.StockCeiling})
		return
	}
	store.UpdateQuantity(id, kind, *req.Quantity)
	c.JSON(http.StatusOK, toCartResponse(store))
}

func (h *handlers) removeCartItem(c *gin.Context) {
	if cartLocked(c) {
		return
	}
	kind, err := domain.ParseKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	store := currentSession(c).Cart
	store.RemoveItem(c.Param("id"), kind)
	c.JSON(http.StatusOK, toCartResponse(store))
}

func (h *handlers) clearCart(c *gin.Context) {
	if cartLocked(c) {
		return
	}
	store := currentSession(c).Cart
	store.Clear()
	c.JSON(http.StatusOK, toCartResponse(store))
}

// cartLocked answers 409 while a checkout attempt is running. The attempt orders a
// snapshot of the cart, so changes made meanwhile would not be paid for.
func cartLocked(c *gin.Context) bool {
	if !currentSession(c).Attempts.Busy() {
		return false
	}
	c.JSON(http.StatusConflict, gin.H{"error": "checkout in progress"})
	return true
}

func exceedsCeiling(ceiling *int, quantity int) bool {
	return ceiling != nil && quantity > *ceiling
}
