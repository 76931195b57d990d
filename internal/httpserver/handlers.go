package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"podcast-storefront/internal/domain"
)

type handlers struct {
	deps   Deps
	logger *zap.Logger
}

func (h *handlers) internal(c *gin.Context, op string, err error) {
	h.logger.Error(op+" failed", zap.Error(err))
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func (h *handlers) badRequestOrInternal(c *gin.Context, op string, err error) {
	if domain.IsValidation(err) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.internal(c, op, err)
}
