package portfolio

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// PriceSource resolves unit prices for a set of asset ids. Missing ids are
// simply absent from the returned map; that is not an error.
type PriceSource interface {
	UnitPrices(ctx context.Context, assetIDs []string) (map[string]decimal.Decimal, error)
}

// Service loads the stored holdings and values them at current prices.
type Service struct {
	repo   HoldingRepository
	prices PriceSource
}

// NewService creates a portfolio valuation service.
func NewService(repo HoldingRepository, prices PriceSource) *Service {
	return &Service{repo: repo, prices: prices}
}

// Valuation values all stored holdings. A price source failure does not fail
// the aggregation: every holding is then reported pending, since price data
// arrives independently and the holdings themselves are still known.
func (s *Service) Valuation(ctx context.Context) (Valuation, error) {
	holdings, err := s.repo.List(ctx)
	if err != nil {
		return Valuation{}, fmt.Errorf("loading holdings: %w", err)
	}

	ids := lo.Map(holdings, func(h Holding, _ int) string { return h.AssetID })

	prices, err := s.prices.UnitPrices(ctx, ids)
	if err != nil {
		slog.Warn("portfolio: prices unavailable, valuing all holdings as pending", "error", err)
		prices = map[string]decimal.Decimal{}
	}

	return Value(holdings, func(assetID string) (decimal.Decimal, bool) {
		p, ok := prices[assetID]
		return p, ok
	}), nil
}

// SetHolding stores or replaces the held quantity for an asset.
func (s *Service) SetHolding(ctx context.Context, h Holding) error {
	if h.AssetID == "" {
		return fmt.Errorf("holding asset id must not be empty")
	}
	if h.Quantity.IsNegative() {
		return fmt.Errorf("holding quantity must not be negative")
	}
	return s.repo.Upsert(ctx, h)
}

// RemoveHolding deletes a holding by asset id.
func (s *Service) RemoveHolding(ctx context.Context, assetID string) error {
	return s.repo.Delete(ctx, assetID)
}

// Holdings lists the stored holdings without valuation.
func (s *Service) Holdings(ctx context.Context) ([]Holding, error) {
	return s.repo.List(ctx)
}
