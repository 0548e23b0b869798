package domain

// AssetSummary is one row of the provider's market listing, ordered by
// descending market capitalization. It is an immutable snapshot: a refetch
// replaces the whole value, fields are never patched individually.
type AssetSummary struct {
	ID                       string   `json:"id"`
	Symbol                   string   `json:"symbol"`
	Name                     string   `json:"name"`
	Image                    string   `json:"image"`
	CurrentPrice             float64  `json:"current_price"`
	MarketCap                float64  `json:"market_cap"`
	MarketCapRank            int      `json:"market_cap_rank"`
	TotalVolume              float64  `json:"total_volume"`
	High24h                  float64  `json:"high_24h"`
	Low24h                   float64  `json:"low_24h"`
	PriceChange24h           float64  `json:"price_change_24h"`
	PriceChangePercentage24h float64  `json:"price_change_percentage_24h"`
	CirculatingSupply        float64  `json:"circulating_supply"`
	TotalSupply              *float64 `json:"total_supply"`
	MaxSupply                *float64 `json:"max_supply"`
	ATH                      float64  `json:"ath"`
	ATL                      float64  `json:"atl"`
	LastUpdated              string   `json:"last_updated"`
}

// AssetLinks holds the external link collections of an asset detail record.
type AssetLinks struct {
	Homepage     []string `json:"homepage"`
	SubredditURL string   `json:"subreddit_url"`
}

// AssetMarketData carries currency-keyed price and percent-change maps for
// multiple lookback windows. Keys are lowercase currency codes ("usd").
type AssetMarketData struct {
	CurrentPrice               map[string]float64 `json:"current_price"`
	PriceChangePct1hCurrency   map[string]float64 `json:"price_change_percentage_1h_in_currency"`
	PriceChangePct24hCurrency  map[string]float64 `json:"price_change_percentage_24h_in_currency"`
	PriceChangePct7dCurrency   map[string]float64 `json:"price_change_percentage_7d_in_currency"`
	PriceChangePct30dCurrency  map[string]float64 `json:"price_change_percentage_30d_in_currency"`
}

// AssetDetail is the full detail record for a single asset id.
type AssetDetail struct {
	AssetSummary
	Description string          `json:"-"`
	Links       AssetLinks      `json:"links"`
	MarketData  AssetMarketData `json:"market_data"`
}

// USDPrice returns the current USD unit price from the detail's market data,
// falling back to the summary price when the map entry is absent.
func (d AssetDetail) USDPrice() float64 {
	if p, ok := d.MarketData.CurrentPrice["usd"]; ok {
		return p
	}
	return d.CurrentPrice
}

// SearchHit is one result of the provider's free-text asset search.
type SearchHit struct {
	ID            string `json:"id"`
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	Thumb         string `json:"thumb"`
	MarketCapRank int    `json:"market_cap_rank"`
}
