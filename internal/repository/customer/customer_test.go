package customer

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"podcast-storefront/internal/domain"
	"podcast-storefront/internal/migrate"
)

func TestPostgres_CreateGetAndUpdateProfile(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	created, err := repo.Create(ctx, domain.Customer{Email: "Rina@Example.com", PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Email != "rina@example.com" || created.Role != domain.RoleCustomer || created.Address != nil {
		t.Fatalf("unexpected customer %+v", created)
	}

	if _, err := repo.Create(ctx, domain.Customer{Email: "rina@example.com", PasswordHash: "x"}); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	byEmail, err := repo.GetByEmail(ctx, "RINA@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if byEmail.ID != created.ID {
		t.Fatalf("GetByEmail returned %s, want %s", byEmail.ID, created.ID)
	}

	updated, err := repo.UpdateProfile(ctx, created.ID, domain.Profile{
		FullName: "Rina",
		Phone:    "0812",
		Address:  &domain.Address{Street: "Jl. Merdeka 1", City: "Bandung", PostalCode: "40111"},
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.FullName != "Rina" || updated.Address == nil || updated.Address.City != "Bandung" {
		t.Fatalf("unexpected profile %+v", updated)
	}

	byID, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if byID.Profile().Address.PostalCode != "40111" {
		t.Fatalf("address not persisted: %+v", byID)
	}

	if _, err := repo.GetByID(ctx, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
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
