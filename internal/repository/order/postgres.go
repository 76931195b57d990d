package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"podcast-storefront/internal/domain"
)

const maxListLimit = 200

const orderColumns = `id, user_id, items, subtotal::text, tax::text, total_amount::text, payment_status, shipping_status,
       shipping_address, COALESCE(tracking_number, ''), created_at, updated_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgres returns a Repository backed by the orders table.
func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Create(ctx context.Context, o domain.Order) (string, error) {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return "", err
	}
	addrJSON, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return "", err
	}

	const q = `
INSERT INTO orders (
    id, user_id, items, subtotal, tax, total_amount, payment_status, shipping_status,
    shipping_address, tracking_number, created_at, updated_at
) VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6::numeric, $7, $8, $9, NULLIF($10, ''), $11, $12)
RETURNING id
`
	var id string
	err = r.pool.QueryRow(ctx, q,
		o.ID,
		o.UserID,
		itemsJSON,
		o.Subtotal.String(),
		o.Tax.String(),
		o.TotalAmount.String(),
		string(o.PaymentStatus),
		string(o.ShippingStatus),
		addrJSON,
		o.TrackingNumber,
		o.CreatedAt,
		o.UpdatedAt,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return "", domain.ErrAlreadyExists
		}
		r.logger.Error("order repo: create", zap.String("order_id", o.ID), zap.Error(err))
		return "", err
	}
	r.logger.Debug("order repo: created", zap.String("order_id", id), zap.Int("items", len(o.Items)))
	return id, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return r.scanOrder(r.pool.QueryRow(ctx, q, id))
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, q, userID)
}

func (r *postgresRepo) List(ctx context.Context, limit int) ([]domain.Order, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	q := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC LIMIT $1`
	return r.list(ctx, q, limit)
}

func (r *postgresRepo) UpdatePaymentStatus(ctx context.Context, id string, status domain.PaymentStatus) (*domain.Order, error) {
	q := `
UPDATE orders
SET payment_status = $2,
    updated_at = now()
WHERE id = $1
RETURNING ` + orderColumns
	return r.scanOrder(r.pool.QueryRow(ctx, q, id, string(status)))
}

func (r *postgresRepo) UpdateShippingStatus(ctx context.Context, id string, status domain.ShippingStatus, trackingNumber *string) (*domain.Order, error) {
	q := `
UPDATE orders
SET shipping_status = $2,
    tracking_number = COALESCE($3, tracking_number),
    updated_at = now()
WHERE id = $1
RETURNING ` + orderColumns
	return r.scanOrder(r.pool.QueryRow(ctx, q, id, string(status), trackingNumber))
}

func (r *postgresRepo) list(ctx context.Context, q string, args ...any) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Error("order repo: list", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	result := []domain.Order{}
	for rows.Next() {
		o, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o                             domain.Order
		itemsJSON, addrJSON           []byte
		subtotal, tax, total          string
		paymentStatus, shippingStatus string
	)
	err := row.Scan(
		&o.ID,
		&o.UserID,
		&itemsJSON,
		&subtotal,
		&tax,
		&total,
		&paymentStatus,
		&shippingStatus,
		&addrJSON,
		&o.TrackingNumber,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("order repo: scan", zap.Error(err))
		return nil, err
	}
	o.PaymentStatus = domain.PaymentStatus(paymentStatus)
	o.ShippingStatus = domain.ShippingStatus(shippingStatus)
	if o.Subtotal, err = parseAmount(subtotal); err != nil {
		return nil, err
	}
	if o.Tax, err = parseAmount(tax); err != nil {
		return nil, err
	}
	if o.TotalAmount, err = parseAmount(total); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		r.logger.Error("order repo: decode items", zap.String("order_id", o.ID), zap.Error(err))
		return nil, err
	}
	if len(addrJSON) > 0 {
		if err := json.Unmarshal(addrJSON, &o.ShippingAddress); err != nil {
			return nil, fmt.Errorf("decode shipping address for %s: %w", o.ID, err)
		}
	}
	return &o, nil
}
