// Package coingecko is the HTTP client for the CoinGecko market data API.
// It fetches listings, per-asset detail and price history, normalizes them
// into domain values and returns explicit Failure values on any error. It
// does no caching; the marketcache layer sits on top of it.
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cryptodash/market/internal/domain"
	"github.com/cryptodash/market/internal/notify"
)

// DefaultBaseURL is the public CoinGecko v3 API root.
const DefaultBaseURL = "https://api.coingecko.com/api/v3"

// All prices are requested in USD; the listing order and any currency-keyed
// maps in responses use this code.
const vsCurrency = "usd"

// Client fetches market data from the CoinGecko API. Failed calls emit
// exactly one notification through the injected Notifier; they are never
// retried automatically.
type Client struct {
	baseURL    string
	httpClient *http.Client
	notifier   notify.Notifier
}

// NewClient creates a CoinGecko API client. A nil notifier falls back to
// slog-backed notifications.
func NewClient(baseURL string, notifier notify.Notifier) *Client {
	if notifier == nil {
		notifier = notify.SlogNotifier{}
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		notifier:   notifier,
	}
}

// FetchTopAssets returns up to limit asset summaries ordered by descending
// market capitalization. The provider's order is passed through unchanged.
func (c *Client) FetchTopAssets(ctx context.Context, limit int) ([]domain.AssetSummary, error) {
	const op = "coingecko.FetchTopAssets"
	if limit < 1 {
		return nil, &Error{Kind: ValidationFailure, Op: op, Err: fmt.Errorf("limit must be >= 1, got %d", limit)}
	}

	path := fmt.Sprintf("/coins/markets?vs_currency=%s&order=market_cap_desc&per_page=%d&page=1&sparkline=false",
		vsCurrency, limit)

	var assets []domain.AssetSummary
	if err := c.getJSON(ctx, op, "market listing", path, &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

// detailResponse mirrors the provider's per-asset detail body. Only the
// fields the dashboard consumes are decoded.
type detailResponse struct {
	domain.AssetSummary
	Description struct {
		En string `json:"en"`
	} `json:"description"`
	Image struct {
		Large string `json:"large"`
	} `json:"image"`
	Links      domain.AssetLinks      `json:"links"`
	MarketData domain.AssetMarketData `json:"market_data"`
}

// FetchAssetDetail returns the full detail record for an asset id. An
// unknown id yields a NotFound failure, distinct from network errors.
func (c *Client) FetchAssetDetail(ctx context.Context, id string) (domain.AssetDetail, error) {
	const op = "coingecko.FetchAssetDetail"
	if id == "" {
		return domain.AssetDetail{}, &Error{Kind: ValidationFailure, Op: op, Err: fmt.Errorf("empty asset id")}
	}

	path := fmt.Sprintf("/coins/%s?localization=false&tickers=false&market_data=true&community_data=false&developer_data=false",
		url.PathEscape(id))

	var resp detailResponse
	if err := c.getJSON(ctx, op, "details for "+id, path, &resp); err != nil {
		return domain.AssetDetail{}, err
	}

	detail := domain.AssetDetail{
		AssetSummary: resp.AssetSummary,
		Description:  resp.Description.En,
		Links:        resp.Links,
		MarketData:   resp.MarketData,
	}
	detail.Image = resp.Image.Large
	if p, ok := resp.MarketData.CurrentPrice[vsCurrency]; ok {
		detail.CurrentPrice = p
	}
	return detail, nil
}

// marketChartResponse mirrors the provider's market_chart body.
type marketChartResponse struct {
	Prices       []domain.PricePoint `json:"prices"`
	MarketCaps   []domain.PricePoint `json:"market_caps"`
	TotalVolumes []domain.PricePoint `json:"total_volumes"`
}

// FetchPriceSeries returns the USD price history for the lookback window.
// The provider may return coarser granularity for large windows; the raw
// series is passed through unchanged, normalization happens downstream.
func (c *Client) FetchPriceSeries(ctx context.Context, id string, lookbackDays int) (domain.PriceSeries, error) {
	const op = "coingecko.FetchPriceSeries"
	if id == "" {
		return domain.PriceSeries{}, &Error{Kind: ValidationFailure, Op: op, Err: fmt.Errorf("empty asset id")}
	}
	if lookbackDays < 1 {
		return domain.PriceSeries{}, &Error{Kind: ValidationFailure, Op: op, Err: fmt.Errorf("lookbackDays must be >= 1, got %d", lookbackDays)}
	}

	path := fmt.Sprintf("/coins/%s/market_chart?vs_currency=%s&days=%d", url.PathEscape(id), vsCurrency, lookbackDays)
	what := "price history for " + id

	var resp marketChartResponse
	if err := c.getJSON(ctx, op, what, path, &resp); err != nil {
		return domain.PriceSeries{}, err
	}

	series := domain.PriceSeries{
		AssetID:      id,
		LookbackDays: lookbackDays,
		Points:       resp.Prices,
	}
	// The series contract is non-decreasing timestamps. A provider body that
	// violates it is as unusable as one that fails to decode.
	if !series.Sorted() {
		return domain.PriceSeries{}, c.fail(what,
			&Error{Kind: ParseFailure, Op: op, Err: fmt.Errorf("series timestamps out of order in %s", path)})
	}
	return series, nil
}

// Search queries the provider's free-text asset search.
func (c *Client) Search(ctx context.Context, query string) ([]domain.SearchHit, error) {
	const op = "coingecko.Search"
	if query == "" {
		return nil, &Error{Kind: ValidationFailure, Op: op, Err: fmt.Errorf("empty query")}
	}

	var resp struct {
		Coins []domain.SearchHit `json:"coins"`
	}
	if err := c.getJSON(ctx, op, "search results for "+query, "/search?query="+url.QueryEscape(query), &resp); err != nil {
		return nil, err
	}
	return resp.Coins, nil
}

// getJSON performs a single GET and decodes the JSON body. Network and parse
// failures notify the user exactly once, with what naming the requested data;
// validation errors never reach here.
func (c *Client) getJSON(ctx context.Context, op, what, path string, dest any) error {
	fullURL := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return c.fail(what, &Error{Kind: NetworkFailure, Op: op, Err: fmt.Errorf("creating request: %w", err)})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.fail(what, &Error{Kind: NetworkFailure, Op: op, Err: fmt.Errorf("executing request: %w", err)})
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return c.fail(what, &Error{Kind: NetworkFailure, Op: op, Err: fmt.Errorf("reading response: %w", err)})
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		// Valid request, unknown id. Not a user-notified failure.
		return &Error{Kind: NotFound, Op: op, Err: fmt.Errorf("HTTP 404 from %s", fullURL)}
	default:
		return c.fail(what, &Error{Kind: NetworkFailure, Op: op, Err: fmt.Errorf("HTTP %d from %s", resp.StatusCode, fullURL)})
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return c.fail(what, &Error{Kind: ParseFailure, Op: op, Err: fmt.Errorf("parsing JSON from %s: %w", path, err)})
	}
	return nil
}

// fail emits the single user-visible notification for a failed call and
// returns the error unchanged.
func (c *Client) fail(what string, e *Error) error {
	c.notifier.NotifyError("Failed to fetch " + what)
	return e
}
