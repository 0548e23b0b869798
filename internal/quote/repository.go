// Package quote persists periodic snapshots of top-asset USD prices so that
// valuations and exports keep working through provider outages.
package quote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when no quote is stored for an asset.
var ErrNotFound = errors.New("quote not found")

// Quote is a stored USD price snapshot for one asset.
type Quote struct {
	AssetID   string          `json:"assetId"`
	Symbol    string          `json:"symbol"`
	PriceUSD  decimal.Decimal `json:"priceUsd"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Repository defines persistent storage for price quotes.
type Repository interface {
	Save(ctx context.Context, q Quote) error
	Get(ctx context.Context, assetID string) (Quote, error)
	All(ctx context.Context) ([]Quote, error)
}

// PgRepository implements Repository with PostgreSQL.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a new PostgreSQL quote repository.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Save(ctx context.Context, q Quote) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO asset_quotes (asset_id, symbol, price_usd, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (asset_id) DO UPDATE SET symbol = $2, price_usd = $3, updated_at = NOW()`,
		q.AssetID, q.Symbol, q.PriceUSD)
	if err != nil {
		return fmt.Errorf("saving quote for %s: %w", q.AssetID, err)
	}
	return nil
}

func (r *PgRepository) Get(ctx context.Context, assetID string) (Quote, error) {
	var q Quote
	err := r.pool.QueryRow(ctx,
		`SELECT asset_id, symbol, price_usd, updated_at FROM asset_quotes WHERE asset_id = $1`,
		assetID).Scan(&q.AssetID, &q.Symbol, &q.PriceUSD, &q.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Quote{}, ErrNotFound
	}
	if err != nil {
		return Quote{}, fmt.Errorf("getting quote for %s: %w", assetID, err)
	}
	return q, nil
}

func (r *PgRepository) All(ctx context.Context) ([]Quote, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT asset_id, symbol, price_usd, updated_at FROM asset_quotes ORDER BY asset_id`)
	if err != nil {
		return nil, fmt.Errorf("getting all quotes: %w", err)
	}
	defer rows.Close()

	var quotes []Quote
	for rows.Next() {
		var q Quote
		if err := rows.Scan(&q.AssetID, &q.Symbol, &q.PriceUSD, &q.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning quote: %w", err)
		}
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}
