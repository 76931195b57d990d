package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"podcast-storefront/internal/domain"
	customersvc "podcast-storefront/internal/service/customer"
)

const (
	DemoEmail    = "demo@storefront.local"
	DemoPassword = "Demo1234"
)

type CatalogWriter interface {
	Upsert(ctx context.Context, item domain.CatalogItem) (*domain.CatalogItem, error)
}

type CustomerWriter interface {
	Signup(ctx context.Context, in customersvc.SignupInput) (*domain.Customer, error)
	Login(ctx context.Context, email, password string) (*customersvc.Session, error)
	UpdateProfile(ctx context.Context, id string, in customersvc.ProfileInput) (*domain.Customer, error)
}

func intPtr(v int) *int { return &v }

func demoCatalog() []domain.CatalogItem {
	return []domain.CatalogItem{
		{
			ID:          "ep-premium-001",
			Kind:        domain.KindContent,
			Title:       "Behind the Mic: Season 1",
			Description: "Ad-free premium season with bonus interviews",
			Price:       decimal.NewFromInt(50000),
		},
		{
			ID:              "ep-premium-002",
			Kind:            domain.KindContent,
			Title:           "Live Recording Archive",
			Description:     "Every live show, remastered",
			Price:           decimal.NewFromInt(75000),
			DiscountPercent: intPtr(20),
		},
		{
			ID:          "merch-mug",
			Kind:        domain.KindMerchandise,
			Title:       "Studio Mug",
			Description: "Ceramic mug with the show logo",
			Price:       decimal.NewFromInt(100000),
			Stock:       intPtr(25),
		},
		{
			ID:              "merch-hoodie",
			Kind:            domain.KindMerchandise,
			Title:           "Listener Hoodie",
			Description:     "Heavy cotton hoodie",
			Price:           decimal.NewFromInt(350000),
			DiscountPercent: intPtr(10),
			Stock:           intPtr(5),
		},
	}
}

// Apply inserts demo data for manual testing. Running it twice leaves the same state.
func Apply(ctx context.Context, catalog CatalogWriter, customers CustomerWriter) error {
	for _, item := range demoCatalog() {
		if _, err := catalog.Upsert(ctx, item); err != nil {
			return fmt.Errorf("upsert catalog item %s: %w", item.ID, err)
		}
	}

	id, err := ensureDemoCustomer(ctx, customers)
	if err != nil {
		return fmt.Errorf("ensure demo customer: %w", err)
	}
	_, err = customers.UpdateProfile(ctx, id, customersvc.ProfileInput{
		FullName: "Demo Listener",
		Phone:    "081234567890",
		Address: &customersvc.AddressInput{
			Street:     "Jl. Braga No. 10",
			City:       "Bandung",
			Province:   "Jawa Barat",
			PostalCode: "40111",
		},
	})
	if err != nil {
		return fmt.Errorf("complete demo profile: %w", err)
	}
	return nil
}

func ensureDemoCustomer(ctx context.Context, customers CustomerWriter) (string, error) {
	c, err := customers.Signup(ctx, customersvc.SignupInput{Email: DemoEmail, Password: DemoPassword, FullName: "Demo Listener"})
	if err == nil {
		return c.ID, nil
	}
	if !errors.Is(err, domain.ErrAlreadyExists) {
		return "", err
	}
	sess, err := customers.Login(ctx, DemoEmail, DemoPassword)
	if err != nil {
		return "", err
	}
	return sess.Customer.ID, nil
}
