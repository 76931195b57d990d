package catalog

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"podcast-storefront/internal/domain"
	catalogrepo "podcast-storefront/internal/repository/catalog"
)

type Service struct {
	repo catalogrepo.Repository
}

func New(repo catalogrepo.Repository) *Service {
	return &Service{repo: repo}
}

// List returns the catalog. An empty rawKind lists content and merchandise together.
func (s *Service) List(ctx context.Context, rawKind string) ([]domain.CatalogItem, error) {
	if rawKind == "" {
		return s.repo.List(ctx, nil)
	}
	kind, err := domain.ParseKind(rawKind)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, &kind)
}

func (s *Service) Get(ctx context.Context, kind domain.Kind, id string) (*domain.CatalogItem, error) {
	return s.repo.GetByID(ctx, kind, id)
}

// Candidate builds a cart candidate from the current catalog entry, so the cart
// never trusts client-supplied prices.
func (s *Service) Candidate(ctx context.Context, kind domain.Kind, id string) (domain.Candidate, error) {
	item, err := s.repo.GetByID(ctx, kind, id)
	if err != nil {
		return domain.Candidate{}, err
	}
	return item.Candidate(), nil
}

// Upsert validates and stores an item.
func (s *Service) Upsert(ctx context.Context, item domain.CatalogItem) (*domain.CatalogItem, error) {
	item.ID = strings.TrimSpace(item.ID)
	item.Title = strings.TrimSpace(item.Title)
	if item.ID == "" {
		return nil, domain.Invalid("id required")
	}
	if item.Title == "" {
		return nil, domain.Invalid("title required")
	}
	if _, err := domain.ParseKind(string(item.Kind)); err != nil {
		return nil, err
	}
	if item.Price.LessThan(decimal.Zero) {
		return nil, domain.Invalid("price must not be negative")
	}
	if d := item.DiscountPercent; d != nil && (*d < 0 || *d > 100) {
		return nil, domain.Invalid("discount must be between 0 and 100")
	}
	if st := item.Stock; st != nil && *st < 0 {
		return nil, domain.Invalid("stock must not be negative")
	}
	if item.Kind == domain.KindContent {
		item.Stock = nil
	}
	return s.repo.Upsert(ctx, item)
}
