package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cryptodash/market/internal/chart"
	"github.com/cryptodash/market/internal/coingecko"
	"github.com/cryptodash/market/internal/convert"
	"github.com/cryptodash/market/internal/domain"
	"github.com/cryptodash/market/internal/marketdata"
	"github.com/cryptodash/market/internal/portfolio"
)

type fakeMarketClient struct {
	assets []domain.AssetSummary
	detail domain.AssetDetail
	series domain.PriceSeries
	err    error
}

func (f *fakeMarketClient) FetchTopAssets(_ context.Context, limit int) ([]domain.AssetSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.assets) {
		return f.assets[:limit], nil
	}
	return f.assets, nil
}

func (f *fakeMarketClient) FetchAssetDetail(_ context.Context, id string) (domain.AssetDetail, error) {
	if f.err != nil {
		return domain.AssetDetail{}, f.err
	}
	return f.detail, nil
}

func (f *fakeMarketClient) FetchPriceSeries(_ context.Context, id string, days int) (domain.PriceSeries, error) {
	if f.err != nil {
		return domain.PriceSeries{}, f.err
	}
	return f.series, nil
}

func (f *fakeMarketClient) Search(_ context.Context, query string) ([]domain.SearchHit, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []domain.SearchHit{{ID: "dogecoin", Symbol: "doge"}}, nil
}

type memRepo struct {
	holdings []portfolio.Holding
}

func (r *memRepo) List(context.Context) ([]portfolio.Holding, error) { return r.holdings, nil }
func (r *memRepo) Upsert(_ context.Context, h portfolio.Holding) error {
	r.holdings = append(r.holdings, h)
	return nil
}
func (r *memRepo) Delete(_ context.Context, assetID string) error {
	for i := range r.holdings {
		if r.holdings[i].AssetID == assetID {
			r.holdings = append(r.holdings[:i], r.holdings[i+1:]...)
			return nil
		}
	}
	return portfolio.ErrHoldingNotFound
}

type memPrices struct {
	prices map[string]decimal.Decimal
}

func (p *memPrices) UnitPrices(context.Context, []string) (map[string]decimal.Decimal, error) {
	return p.prices, nil
}

func newTestHandler(client *fakeMarketClient, repo *memRepo, prices *memPrices) *Handler {
	if repo == nil {
		repo = &memRepo{}
	}
	if prices == nil {
		prices = &memPrices{prices: map[string]decimal.Decimal{}}
	}
	markets := marketdata.NewService(client, time.Minute)
	holdings := portfolio.NewService(repo, prices)
	return NewHandler(markets, holdings)
}

func TestGetMarkets(t *testing.T) {
	h := newTestHandler(&fakeMarketClient{assets: []domain.AssetSummary{
		{ID: "bitcoin", MarketCap: 2},
		{ID: "ethereum", MarketCap: 1},
	}}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/markets?limit=50", nil)
	rec := httptest.NewRecorder()
	h.GetMarkets(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var assets []domain.AssetSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &assets); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(assets) != 2 || assets[0].ID != "bitcoin" {
		t.Errorf("assets = %+v", assets)
	}
}

func TestGetMarketsBadLimit(t *testing.T) {
	h := newTestHandler(&fakeMarketClient{}, nil, nil)

	for _, limit := range []string{"0", "-1", "abc"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/markets?limit="+limit, nil)
		rec := httptest.NewRecorder()
		h.GetMarkets(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("limit=%s: status = %d, want 400", limit, rec.Code)
		}
	}
}

func TestGetMarketsUpstreamFailure(t *testing.T) {
	h := newTestHandler(&fakeMarketClient{
		err: &coingecko.Error{Kind: coingecko.NetworkFailure, Op: "test"},
	}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/markets", nil)
	rec := httptest.NewRecorder()
	h.GetMarkets(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestGetAssetDetailNotFound(t *testing.T) {
	h := newTestHandler(&fakeMarketClient{
		err: &coingecko.Error{Kind: coingecko.NotFound, Op: "test"},
	}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/assets/no-such-coin", nil)
	req.SetPathValue("id", "no-such-coin")
	rec := httptest.NewRecorder()
	h.GetAssetDetail(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestGetAssetChart(t *testing.T) {
	h := newTestHandler(&fakeMarketClient{series: domain.PriceSeries{
		AssetID: "bitcoin",
		Points: []domain.PricePoint{
			{TimestampMillis: 0, PriceUSD: 100},
			{TimestampMillis: 3600000, PriceUSD: 110},
		},
	}}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/assets/bitcoin/chart?timeframe=24h", nil)
	req.SetPathValue("id", "bitcoin")
	rec := httptest.NewRecorder()
	h.GetAssetChart(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var c chart.Chart
	if err := json.Unmarshal(rec.Body.Bytes(), &c); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(c.Samples) != 2 {
		t.Fatalf("got %d samples, want 2", len(c.Samples))
	}
	if !c.Summary.Percent.Equal(decimal.NewFromInt(10)) {
		t.Errorf("percent = %s, want 10", c.Summary.Percent)
	}
}

func TestGetAssetChartUnknownTimeframe(t *testing.T) {
	h := newTestHandler(&fakeMarketClient{}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/assets/bitcoin/chart?timeframe=2w", nil)
	req.SetPathValue("id", "bitcoin")
	rec := httptest.NewRecorder()
	h.GetAssetChart(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetAssetChartNoData(t *testing.T) {
	h := newTestHandler(&fakeMarketClient{}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/assets/bitcoin/chart", nil)
	req.SetPathValue("id", "bitcoin")
	rec := httptest.NewRecorder()
	h.GetAssetChart(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for empty series", rec.Code)
	}
}

func TestConvertFiatEdit(t *testing.T) {
	detail := domain.AssetDetail{}
	detail.ID = "bitcoin"
	detail.MarketData.CurrentPrice = map[string]float64{"usd": 20000}
	h := newTestHandler(&fakeMarketClient{detail: detail}, nil, nil)

	body := strings.NewReader(`{"assetId":"bitcoin","fiatAmount":"100"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/convert", body)
	rec := httptest.NewRecorder()
	h.Convert(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var pair convert.Pair
	if err := json.Unmarshal(rec.Body.Bytes(), &pair); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if pair.AssetAmount != "0.00500000" {
		t.Errorf("assetAmount = %q, want 0.00500000", pair.AssetAmount)
	}
	if pair.FiatAmount != "100" {
		t.Errorf("fiatAmount = %q, want 100", pair.FiatAmount)
	}
	if pair.State != convert.StateFiatEdited {
		t.Errorf("state = %s, want fiat_edited", pair.State)
	}
}

func TestConvertRejectsBothFields(t *testing.T) {
	h := newTestHandler(&fakeMarketClient{}, nil, nil)

	body := strings.NewReader(`{"assetId":"bitcoin","fiatAmount":"100","assetAmount":"1"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/convert", body)
	rec := httptest.NewRecorder()
	h.Convert(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHoldingsLifecycle(t *testing.T) {
	repo := &memRepo{}
	h := newTestHandler(&fakeMarketClient{}, repo, &memPrices{prices: map[string]decimal.Decimal{
		"bitcoin": decimal.NewFromInt(50000),
	}})

	// Create
	body := strings.NewReader(`{"assetId":"bitcoin","symbol":"btc","name":"Bitcoin","quantity":"0.5"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/holdings", body)
	rec := httptest.NewRecorder()
	h.PutHolding(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("put status = %d: %s", rec.Code, rec.Body.String())
	}

	// Value
	req = httptest.NewRequest(http.MethodGet, "/api/v1/portfolio/valuation", nil)
	rec = httptest.NewRecorder()
	h.GetValuation(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("valuation status = %d", rec.Code)
	}
	var v portfolio.Valuation
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decoding valuation: %v", err)
	}
	if !v.Total.Equal(decimal.NewFromInt(25000)) {
		t.Errorf("total = %s, want 25000", v.Total)
	}

	// Delete
	req = httptest.NewRequest(http.MethodDelete, "/api/v1/holdings/bitcoin", nil)
	req.SetPathValue("id", "bitcoin")
	rec = httptest.NewRecorder()
	h.DeleteHolding(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", rec.Code)
	}

	// Delete again -> 404
	req = httptest.NewRequest(http.MethodDelete, "/api/v1/holdings/bitcoin", nil)
	req.SetPathValue("id", "bitcoin")
	rec = httptest.NewRecorder()
	h.DeleteHolding(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("repeat delete status = %d, want 404", rec.Code)
	}
}

func TestPutHoldingBadQuantity(t *testing.T) {
	h := newTestHandler(&fakeMarketClient{}, nil, nil)

	body := strings.NewReader(`{"assetId":"bitcoin","quantity":"lots"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/holdings", body)
	rec := httptest.NewRecorder()
	h.PutHolding(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSearch(t *testing.T) {
	h := newTestHandler(&fakeMarketClient{}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?query=doge", nil)
	rec := httptest.NewRecorder()
	h.SearchAssets(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/search", nil)
	rec = httptest.NewRecorder()
	h.SearchAssets(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty query status = %d, want 400", rec.Code)
	}
}
