// Package marketdata layers the result cache over the market data client and
// derives display-ready values. Every read goes through a key built from the
// operation and its parameters, which both de-duplicates concurrent fetches
// and keeps late responses from landing under any other key.
package marketdata

import (
	"context"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/cryptodash/market/internal/chart"
	"github.com/cryptodash/market/internal/domain"
	"github.com/cryptodash/market/internal/marketcache"
)

// priceUniverseSize is how many top assets back the unit price lookup.
const priceUniverseSize = 250

// Client is the subset of the market data client used by the service.
type Client interface {
	FetchTopAssets(ctx context.Context, limit int) ([]domain.AssetSummary, error)
	FetchAssetDetail(ctx context.Context, id string) (domain.AssetDetail, error)
	FetchPriceSeries(ctx context.Context, id string, lookbackDays int) (domain.PriceSeries, error)
	Search(ctx context.Context, query string) ([]domain.SearchHit, error)
}

// Service serves cached market data.
type Service struct {
	client Client

	listings *marketcache.Cache[[]domain.AssetSummary]
	details  *marketcache.Cache[domain.AssetDetail]
	series   *marketcache.Cache[domain.PriceSeries]
	searches *marketcache.Cache[[]domain.SearchHit]
}

// NewService creates a market data service whose cached results stay fresh
// for the given window.
func NewService(client Client, freshness time.Duration) *Service {
	return &Service{
		client:   client,
		listings: marketcache.New[[]domain.AssetSummary](freshness),
		details:  marketcache.New[domain.AssetDetail](freshness),
		series:   marketcache.New[domain.PriceSeries](freshness),
		searches: marketcache.New[[]domain.SearchHit](freshness),
	}
}

// TopAssets returns the market listing, cached per limit.
func (s *Service) TopAssets(ctx context.Context, limit int) ([]domain.AssetSummary, error) {
	return s.listings.GetOrFetch(ctx, marketcache.Key("topAssets", limit),
		func(ctx context.Context) ([]domain.AssetSummary, error) {
			return s.client.FetchTopAssets(ctx, limit)
		})
}

// AssetDetail returns the detail record for one asset, cached per id.
func (s *Service) AssetDetail(ctx context.Context, id string) (domain.AssetDetail, error) {
	return s.details.GetOrFetch(ctx, marketcache.Key("assetDetail", id),
		func(ctx context.Context) (domain.AssetDetail, error) {
			return s.client.FetchAssetDetail(ctx, id)
		})
}

// PriceSeries returns the raw price history, cached per (id, lookback).
func (s *Service) PriceSeries(ctx context.Context, id string, lookbackDays int) (domain.PriceSeries, error) {
	return s.series.GetOrFetch(ctx, marketcache.Key("priceSeries", id, lookbackDays),
		func(ctx context.Context) (domain.PriceSeries, error) {
			return s.client.FetchPriceSeries(ctx, id, lookbackDays)
		})
}

// Chart fetches the series for the timeframe's lookback window and
// normalizes it. Normalization is pure, so only the fetch is cached.
func (s *Service) Chart(ctx context.Context, id string, timeframe domain.Timeframe) (chart.Chart, error) {
	series, err := s.PriceSeries(ctx, id, timeframe.LookbackDays())
	if err != nil {
		return chart.Chart{}, err
	}
	return chart.Normalize(series, timeframe)
}

// Search returns asset search hits, cached per query.
func (s *Service) Search(ctx context.Context, query string) ([]domain.SearchHit, error) {
	return s.searches.GetOrFetch(ctx, marketcache.Key("search", query),
		func(ctx context.Context) ([]domain.SearchHit, error) {
			return s.client.Search(ctx, query)
		})
}

// UnitPrices resolves USD unit prices for the requested asset ids from the
// cached top listing. Ids outside the listing are absent from the result.
func (s *Service) UnitPrices(ctx context.Context, assetIDs []string) (map[string]decimal.Decimal, error) {
	assets, err := s.TopAssets(ctx, priceUniverseSize)
	if err != nil {
		return nil, err
	}

	wanted := lo.SliceToMap(assetIDs, func(id string) (string, bool) { return id, true })

	prices := make(map[string]decimal.Decimal, len(assetIDs))
	for _, a := range assets {
		if wanted[a.ID] {
			prices[a.ID] = decimal.NewFromFloat(a.CurrentPrice)
		}
	}
	return prices, nil
}

// PurgeExpired sweeps stale entries from all caches and reports how many
// were dropped.
func (s *Service) PurgeExpired() int {
	return s.listings.PurgeExpired() +
		s.details.PurgeExpired() +
		s.series.PurgeExpired() +
		s.searches.PurgeExpired()
}

// InvalidateAsset drops cached detail and series entries for one asset so
// the next read refetches.
func (s *Service) InvalidateAsset(id string) {
	s.details.Invalidate(marketcache.Key("assetDetail", id))
	for _, tf := range domain.Timeframes {
		s.series.Invalidate(marketcache.Key("priceSeries", id, tf.LookbackDays()))
	}
}
