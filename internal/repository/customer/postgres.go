package customer

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"podcast-storefront/internal/domain"
)

const customerColumns = `id::text, email, password_hash, full_name, phone, address, role, created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Create(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	addrJSON, err := encodeAddress(c.Address)
	if err != nil {
		return nil, err
	}
	role := c.Role
	if role == "" {
		role = domain.RoleCustomer
	}
	q := `
INSERT INTO customers (email, password_hash, full_name, phone, address, role)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + customerColumns
	return r.scanCustomer(r.pool.QueryRow(ctx, q,
		strings.ToLower(c.Email),
		c.PasswordHash,
		c.FullName,
		c.Phone,
		addrJSON,
		role,
	))
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	q := `SELECT ` + customerColumns + `
FROM customers
WHERE lower(email) = lower($1)
LIMIT 1
`
	return r.scanCustomer(r.pool.QueryRow(ctx, q, email))
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	q := `SELECT ` + customerColumns + `
FROM customers
WHERE id::text = $1
LIMIT 1
`
	return r.scanCustomer(r.pool.QueryRow(ctx, q, id))
}

// UpdateProfile overwrites name, phone and address. The email is the login key and is left alone.
func (r *postgresRepo) UpdateProfile(ctx context.Context, id string, p domain.Profile) (*domain.Customer, error) {
	addrJSON, err := encodeAddress(p.Address)
	if err != nil {
		return nil, err
	}
	q := `
UPDATE customers
SET full_name = $2,
    phone = $3,
    address = $4,
    updated_at = now()
WHERE id::text = $1
RETURNING ` + customerColumns
	return r.scanCustomer(r.pool.QueryRow(ctx, q, id, p.FullName, p.Phone, addrJSON))
}

func (r *postgresRepo) scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	var addrJSON []byte
	err := row.Scan(
		&c.ID,
		&c.Email,
		&c.PasswordHash,
		&c.FullName,
		&c.Phone,
		&addrJSON,
		&c.Role,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Error("customer repo: scan", zap.Error(err))
		return nil, err
	}
	if len(addrJSON) > 0 && string(addrJSON) != "null" {
		var addr domain.Address
		if err := json.Unmarshal(addrJSON, &addr); err != nil {
			r.logger.Error("customer repo: decode address", zap.String("id", c.ID), zap.Error(err))
			return nil, err
		}
		c.Address = &addr
	}
	return &c, nil
}

func encodeAddress(addr *domain.Address) ([]byte, error) {
	if addr == nil {
		return nil, nil
	}
	return json.Marshal(addr)
}
