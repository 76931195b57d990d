package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"podcast-storefront/internal/domain"
)

const itemColumns = `id, kind, title, COALESCE(description, ''), price::text, discount_percent, stock, COALESCE(image_url, ''), created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger}
}

// List returns every item, newest first. A nil kind lists both kinds.
func (r *postgresRepo) List(ctx context.Context, kind *domain.Kind) ([]domain.CatalogItem, error) {
	var kindArg *string
	if kind != nil {
		k := string(*kind)
		kindArg = &k
	}
	q := `SELECT ` + itemColumns + `
FROM catalog_items
WHERE $1::text IS NULL OR kind = $1
ORDER BY created_at DESC, id
`
	rows, err := r.pool.Query(ctx, q, kindArg)
	if err != nil {
		r.logger.Error("catalog repo: list", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	result := []domain.CatalogItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *item)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("catalog repo: list rows", zap.Error(err))
		return nil, err
	}
	r.logger.Debug("catalog repo: list", zap.Int("count", len(result)))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, kind domain.Kind, id string) (*domain.CatalogItem, error) {
	q := `SELECT ` + itemColumns + `
FROM catalog_items
WHERE kind = $1 AND id = $2
`
	item, err := scanItem(r.pool.QueryRow(ctx, q, string(kind), id))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			r.logger.Debug("catalog repo: not found", zap.String("kind", string(kind)), zap.String("id", id))
		}
		return nil, err
	}
	return item, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, item domain.CatalogItem) (*domain.CatalogItem, error) {
	const q = `
INSERT INTO catalog_items (id, kind, title, description, price, discount_percent, stock, image_url)
VALUES ($1, $2, $3, NULLIF($4, ''), $5::numeric, $6, $7, NULLIF($8, ''))
ON CONFLICT (id) DO UPDATE SET
    kind = EXCLUDED.kind,
    title = EXCLUDED.title,
    description = EXCLUDED.description,
    price = EXCLUDED.price,
    discount_percent = EXCLUDED.discount_percent,
    stock = EXCLUDED.stock,
    image_url = EXCLUDED.image_url
RETURNING created_at
`
	res := item
	err := r.pool.QueryRow(ctx, q,
		item.ID,
		string(item.Kind),
		item.Title,
		item.Description,
		item.Price.String(),
		item.DiscountPercent,
		item.Stock,
		item.ImageURL,
	).Scan(&res.CreatedAt)
	if err != nil {
		r.logger.Error("catalog repo: upsert", zap.String("id", item.ID), zap.Error(err))
		return nil, err
	}
	r.logger.Debug("catalog repo: upserted", zap.String("id", res.ID), zap.String("kind", string(res.Kind)))
	return &res, nil
}

func scanItem(row pgx.Row) (*domain.CatalogItem, error) {
	var (
		item  domain.CatalogItem
		kind  string
		price string
	)
	err := row.Scan(&item.ID, &kind, &item.Title, &item.Description, &price, &item.DiscountPercent, &item.Stock, &item.ImageURL, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	item.Kind = domain.Kind(kind)
	if item.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("parse price of %s: %w", item.ID, err)
	}
	return &item, nil
}
