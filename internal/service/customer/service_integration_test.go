package customer

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"podcast-storefront/internal/migrate"
	customerrepo "podcast-storefront/internal/repository/customer"
	tokenrepo "podcast-storefront/internal/repository/token"
)

func TestSignupLoginAndProfile_Integration(t *testing.T) {
	ctx := context.Background()
	pool := integrationPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := customerrepo.NewPostgres(pool, zap.NewExample())
	svc := New(repo, tokenrepo.NewPostgres(pool))

	password := "Abcdefg1"
	cust, err := svc.Signup(ctx, SignupInput{Email: "integration@example.com", Password: password, FullName: "Int User"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if cust == nil || cust.ID == "" {
		t.Fatalf("expected created customer, got %+v", cust)
	}

	sess, err := svc.Login(ctx, "integration@example.com", password)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if sess.AccessToken == "" || sess.RefreshToken == "" {
		t.Fatalf("expected tokens, got %+v", sess)
	}

	found, err := svc.LookupByToken(ctx, sess.AccessToken)
	if err != nil || found.ID != cust.ID {
		t.Fatalf("LookupByToken = %+v, %v", found, err)
	}

	updated, err := svc.UpdateProfile(ctx, cust.ID, ProfileInput{
		FullName: "Int User",
		Address:  &AddressInput{Street: "Main 1", City: "Testville", PostalCode: "00000"},
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.Address == nil || updated.Address.City != "Testville" {
		t.Fatalf("address not stored: %+v", updated)
	}
}

func integrationPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Fatalf("ping db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE orders, cart_snapshots, tokens, catalog_items, customers RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
