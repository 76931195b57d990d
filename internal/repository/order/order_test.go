package order

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"podcast-storefront/internal/domain"
	"podcast-storefront/internal/migrate"
)

func TestPostgres_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	now := time.Now().UTC().Truncate(time.Millisecond)
	id, err := repo.Create(ctx, sampleOrder("FB-1700000000000-ABC123", "u1", now))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id != "FB-1700000000000-ABC123" {
		t.Fatalf("unexpected id %q", id)
	}

	got, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.TotalAmount.Equal(decimal.NewFromInt(255300)) || !got.Tax.Equal(decimal.NewFromInt(25300)) {
		t.Fatalf("unexpected amounts %+v", got)
	}
	if len(got.Items) != 2 || got.Items[1].Quantity != 2 || got.Items[1].Discount != 10 {
		t.Fatalf("unexpected items %+v", got.Items)
	}
	if got.PaymentStatus != domain.PaymentPending || got.ShippingAddress.City != "Bandung" {
		t.Fatalf("unexpected order %+v", got)
	}

	if _, err := repo.Create(ctx, sampleOrder(id, "u1", now)); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgres_ListAndUpdateStatus(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	now := time.Now().UTC()
	for i, id := range []string{"FB-1-AAAAAA", "FB-2-BBBBBB"} {
		if _, err := repo.Create(ctx, sampleOrder(id, "u1", now.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("Create %s: %v", id, err)
		}
	}
	if _, err := repo.Create(ctx, sampleOrder("FB-3-CCCCCC", "u2", now)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	mine, err := repo.ListByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(mine) != 2 || mine[0].ID != "FB-2-BBBBBB" {
		t.Fatalf("unexpected history %+v", mine)
	}

	all, err := repo.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(all))
	}

	paid, err := repo.UpdatePaymentStatus(ctx, "FB-1-AAAAAA", domain.PaymentPaid)
	if err != nil {
		t.Fatalf("UpdatePaymentStatus: %v", err)
	}
	if paid.PaymentStatus != domain.PaymentPaid || !paid.TotalAmount.Equal(decimal.NewFromInt(255300)) {
		t.Fatalf("unexpected order %+v", paid)
	}

	tracking := "JNE-0001"
	shipped, err := repo.UpdateShippingStatus(ctx, "FB-1-AAAAAA", domain.ShippingShipped, &tracking)
	if err != nil {
		t.Fatalf("UpdateShippingStatus: %v", err)
	}
	if shipped.ShippingStatus != domain.ShippingShipped || shipped.TrackingNumber != tracking {
		t.Fatalf("unexpected order %+v", shipped)
	}

	delivered, err := repo.UpdateShippingStatus(ctx, "FB-1-AAAAAA", domain.ShippingDelivered, nil)
	if err != nil {
		t.Fatalf("UpdateShippingStatus: %v", err)
	}
	if delivered.TrackingNumber != tracking {
		t.Fatalf("tracking number lost: %+v", delivered)
	}

	if _, err := repo.UpdatePaymentStatus(ctx, "missing", domain.PaymentPaid); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func sampleOrder(id, userID string, at time.Time) domain.Order {
	return domain.Order{
		ID:     id,
		UserID: userID,
		Items: []domain.OrderItem{
			{ID: "c1", Kind: domain.KindContent, Name: "Season pass", Price: decimal.NewFromInt(50000), Quantity: 1},
			{ID: "m1", Kind: domain.KindMerchandise, Name: "Mug", Price: decimal.NewFromInt(100000), Discount: 10, Quantity: 2},
		},
		Subtotal:        decimal.NewFromInt(230000),
		Tax:             decimal.NewFromInt(25300),
		TotalAmount:     decimal.NewFromInt(255300),
		PaymentStatus:   domain.PaymentPending,
		ShippingStatus:  domain.ShippingPending,
		ShippingAddress: domain.Address{Street: "Jl. Merdeka 1", City: "Bandung", PostalCode: "40111"},
		CreatedAt:       at,
		UpdatedAt:       at,
	}
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE orders, cart_snapshots, tokens, catalog_items, customers RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
