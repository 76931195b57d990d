package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"podcast-storefront/internal/domain"
)

func (h *handlers) listCatalog(c *gin.Context) {
	items, err := h.deps.CatalogSvc.List(c.Request.Context(), c.Query("kind"))
	if err != nil {
		h.badRequestOrInternal(c, "list catalog", err)
		return
	}
	out := make([]catalogItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toCatalogItemResponse(it))
	}
	c.JSON(http.StatusOK, gin.H{"results": out, "count": len(out)})
}

type upsertCatalogRequest struct {
	Title           string           `json:"title" binding:"required"`
	Description     string           `json:"description"`
	Price           *decimal.Decimal `json:"price" binding:"required"`
	DiscountPercent *int             `json:"discountPercent"`
	Stock           *int             `json:"stock"`
	ImageURL        string           `json:"imageUrl"`
}

// adminUpsertCatalog creates or replaces the catalog entry identified by kind and id.
func (h *handlers) adminUpsertCatalog(c *gin.Context) {
	kind, err := domain.ParseKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var req upsertCatalogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and price required"})
		return
	}
	item, err := h.deps.CatalogSvc.Upsert(c.Request.Context(), domain.CatalogItem{
		ID:              c.Param("id"),
		Kind:            kind,
		Title:           req.Title,
		Description:     req.Description,
		Price:           *req.Price,
		DiscountPercent: req.DiscountPercent,
		Stock:           req.Stock,
		ImageURL:        req.ImageURL,
	})
	if err != nil {
		h.badRequestOrInternal(c, "upsert catalog item", err)
		return
	}
	c.JSON(http.StatusOK, toCatalogItemResponse(*item))
}
