package seed

import (
	"context"
	"testing"

	"podcast-storefront/internal/domain"
	customersvc "podcast-storefront/internal/service/customer"
)

type stubCatalog struct {
	items map[string]domain.CatalogItem
}

func (s *stubCatalog) Upsert(_ context.Context, item domain.CatalogItem) (*domain.CatalogItem, error) {
	if s.items == nil {
		s.items = make(map[string]domain.CatalogItem)
	}
	s.items[item.ID] = item
	return &item, nil
}

type stubCustomers struct {
	created  *domain.Customer
	profiles []customersvc.ProfileInput
}

func (s *stubCustomers) Signup(_ context.Context, in customersvc.SignupInput) (*domain.Customer, error) {
	if s.created != nil {
		return nil, domain.ErrAlreadyExists
	}
	s.created = &domain.Customer{ID: "demo-id", Email: in.Email}
	return s.created, nil
}

func (s *stubCustomers) Login(_ context.Context, email, _ string) (*customersvc.Session, error) {
	if s.created == nil || s.created.Email != email {
		return nil, customersvc.ErrInvalidCredentials
	}
	return &customersvc.Session{Customer: s.created}, nil
}

func (s *stubCustomers) UpdateProfile(_ context.Context, id string, in customersvc.ProfileInput) (*domain.Customer, error) {
	s.profiles = append(s.profiles, in)
	return s.created, nil
}

func TestApply_Idempotent(t *testing.T) {
	catalog := &stubCatalog{}
	customers := &stubCustomers{}

	for i := 0; i < 2; i++ {
		if err := Apply(context.Background(), catalog, customers); err != nil {
			t.Fatalf("apply #%d: %v", i+1, err)
		}
	}
	if len(catalog.items) != len(demoCatalog()) {
		t.Fatalf("expected %d catalog items, got %d", len(demoCatalog()), len(catalog.items))
	}
	if len(customers.profiles) != 2 || customers.profiles[1].Address == nil {
		t.Fatalf("demo profile not completed on every run: %+v", customers.profiles)
	}
}
