package catalog

import (
	"context"

	"podcast-storefront/internal/domain"
)

type Repository interface {
	List(ctx context.Context, kind *domain.Kind) ([]domain.CatalogItem, error)
	GetByID(ctx context.Context, kind domain.Kind, id string) (*domain.CatalogItem, error)
	Upsert(ctx context.Context, item domain.CatalogItem) (*domain.CatalogItem, error)
}
