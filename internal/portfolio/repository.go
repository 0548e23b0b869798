package portfolio

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrHoldingNotFound is returned when a holding does not exist.
var ErrHoldingNotFound = errors.New("holding not found")

// HoldingRepository defines persistent storage for wallet holdings.
type HoldingRepository interface {
	List(ctx context.Context) ([]Holding, error)
	Upsert(ctx context.Context, h Holding) error
	Delete(ctx context.Context, assetID string) error
}

// PgHoldingRepository implements HoldingRepository with PostgreSQL.
type PgHoldingRepository struct {
	pool *pgxpool.Pool
}

// NewPgHoldingRepository creates a new PostgreSQL holding repository.
func NewPgHoldingRepository(pool *pgxpool.Pool) *PgHoldingRepository {
	return &PgHoldingRepository{pool: pool}
}

func (r *PgHoldingRepository) List(ctx context.Context) ([]Holding, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT asset_id, symbol, name, quantity FROM holdings ORDER BY asset_id`)
	if err != nil {
		return nil, fmt.Errorf("listing holdings: %w", err)
	}
	defer rows.Close()

	var holdings []Holding
	for rows.Next() {
		var h Holding
		if err := rows.Scan(&h.AssetID, &h.Symbol, &h.Name, &h.Quantity); err != nil {
			return nil, fmt.Errorf("scanning holding: %w", err)
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}

func (r *PgHoldingRepository) Upsert(ctx context.Context, h Holding) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO holdings (asset_id, symbol, name, quantity, updated_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 ON CONFLICT (asset_id) DO UPDATE SET
		   symbol = $2, name = $3, quantity = $4, updated_at = NOW()`,
		h.AssetID, h.Symbol, h.Name, h.Quantity)
	if err != nil {
		return fmt.Errorf("saving holding %s: %w", h.AssetID, err)
	}
	return nil
}

func (r *PgHoldingRepository) Delete(ctx context.Context, assetID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM holdings WHERE asset_id = $1`, assetID)
	if err != nil {
		return fmt.Errorf("deleting holding %s: %w", assetID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrHoldingNotFound
	}
	return nil
}
