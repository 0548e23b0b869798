package quote

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cryptodash/market/internal/domain"
)

// ListingSource provides the live top-asset listing.
type ListingSource interface {
	TopAssets(ctx context.Context, limit int) ([]domain.AssetSummary, error)
}

// LivePriceSource resolves unit prices from live market data.
type LivePriceSource interface {
	UnitPrices(ctx context.Context, assetIDs []string) (map[string]decimal.Decimal, error)
}

// Service refreshes stored quotes from the live listing and serves prices
// with a stored fallback for assets whose live price is unavailable.
type Service struct {
	listings   ListingSource
	live       LivePriceSource
	repo       Repository
	snapshotN  int
	staleAfter time.Duration
}

// NewService creates a quote service. snapshotLimit is how many top assets
// each refresh stores; quotes older than staleAfter are never served.
func NewService(listings ListingSource, live LivePriceSource, repo Repository, snapshotLimit int, staleAfter time.Duration) *Service {
	return &Service{
		listings:   listings,
		live:       live,
		repo:       repo,
		snapshotN:  snapshotLimit,
		staleAfter: staleAfter,
	}
}

// FetchAndStore fetches the top listing and stores one quote per asset.
func (s *Service) FetchAndStore(ctx context.Context) error {
	assets, err := s.listings.TopAssets(ctx, s.snapshotN)
	if err != nil {
		return fmt.Errorf("fetching listing for quote snapshot: %w", err)
	}

	for _, a := range assets {
		q := Quote{
			AssetID:  a.ID,
			Symbol:   a.Symbol,
			PriceUSD: decimal.NewFromFloat(a.CurrentPrice),
		}
		if err := s.repo.Save(ctx, q); err != nil {
			return fmt.Errorf("storing quote for %s: %w", a.ID, err)
		}
	}
	return nil
}

// UnitPrices implements the portfolio price source. Live prices win; assets
// the live listing does not cover fall back to stored quotes that are still
// within the staleness threshold. Ids priced by neither stay absent.
func (s *Service) UnitPrices(ctx context.Context, assetIDs []string) (map[string]decimal.Decimal, error) {
	prices, err := s.live.UnitPrices(ctx, assetIDs)
	if err != nil {
		slog.Warn("quote: live prices unavailable, serving stored quotes", "error", err)
		prices = make(map[string]decimal.Decimal, len(assetIDs))
	}

	cutoff := time.Now().Add(-s.staleAfter)
	for _, id := range assetIDs {
		if _, ok := prices[id]; ok {
			continue
		}
		q, err := s.repo.Get(ctx, id)
		if err != nil {
			continue
		}
		if q.UpdatedAt.Before(cutoff) {
			continue
		}
		prices[id] = q.PriceUSD
	}
	return prices, nil
}
