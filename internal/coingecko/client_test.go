package coingecko

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cryptodash/market/internal/notify"
)

const listingBody = `[
	{"id":"bitcoin","symbol":"btc","name":"Bitcoin","image":"btc.png",
	 "current_price":50000,"market_cap":1000000000,"market_cap_rank":1,
	 "total_volume":35000000,"price_change_percentage_24h":2.5,
	 "circulating_supply":19500000,"total_supply":21000000,"max_supply":21000000,
	 "ath":69000,"atl":67.81},
	{"id":"ethereum","symbol":"eth","name":"Ethereum","image":"eth.png",
	 "current_price":3000,"market_cap":360000000,"market_cap_rank":2,
	 "total_volume":18000000,"price_change_percentage_24h":-1.2,
	 "circulating_supply":120000000,"total_supply":null,"max_supply":null,
	 "ath":4878,"atl":0.43}
]`

func TestFetchTopAssets(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(listingBody))
	}))
	defer server.Close()

	rec := &notify.Recorder{}
	client := NewClient(server.URL, rec)

	assets, err := client.FetchTopAssets(context.Background(), 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(assets) != 2 {
		t.Fatalf("got %d assets, want 2", len(assets))
	}
	if assets[0].ID != "bitcoin" || assets[1].ID != "ethereum" {
		t.Errorf("provider order not preserved: %s, %s", assets[0].ID, assets[1].ID)
	}
	if assets[0].MarketCap < assets[1].MarketCap {
		t.Error("listing not in descending market cap order")
	}
	if assets[1].MaxSupply != nil {
		t.Error("null max_supply should decode as nil")
	}
	if assets[0].MaxSupply == nil || *assets[0].MaxSupply != 21000000 {
		t.Error("max_supply not decoded")
	}
	if want := "vs_currency=usd&order=market_cap_desc&per_page=50&page=1&sparkline=false"; gotQuery != want {
		t.Errorf("query = %q, want %q", gotQuery, want)
	}
	if n := len(rec.Messages()); n != 0 {
		t.Errorf("successful call produced %d notifications", n)
	}
}

func TestFetchTopAssetsInvalidLimit(t *testing.T) {
	rec := &notify.Recorder{}
	client := NewClient("http://unused", rec)

	_, err := client.FetchTopAssets(context.Background(), 0)
	if err == nil {
		t.Fatal("expected error for limit=0")
	}
	if !IsValidation(err) {
		t.Errorf("kind = %s, want validation", KindOf(err))
	}
	if n := len(rec.Messages()); n != 0 {
		t.Errorf("validation failure produced %d notifications, want 0", n)
	}
}

func TestFetchTopAssetsServerErrorNotifiesOnce(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	rec := &notify.Recorder{}
	client := NewClient(server.URL, rec)

	assets, err := client.FetchTopAssets(context.Background(), 50)
	if err == nil {
		t.Fatal("expected error for HTTP 500")
	}
	if assets != nil {
		t.Error("failed fetch must not return partial results")
	}
	if KindOf(err) != NetworkFailure {
		t.Errorf("kind = %s, want network", KindOf(err))
	}
	if n := len(rec.Messages()); n != 1 {
		t.Errorf("got %d notifications, want exactly 1", n)
	}
}

func TestFetchAssetDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/coins/bitcoin" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id":"bitcoin","symbol":"btc","name":"Bitcoin",
			"description":{"en":"The first cryptocurrency."},
			"image":{"large":"btc-large.png"},
			"links":{"homepage":["https://bitcoin.org"]},
			"market_data":{
				"current_price":{"usd":50000,"eur":46000},
				"price_change_percentage_24h_in_currency":{"usd":2.5}
			}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, &notify.Recorder{})
	detail, err := client.FetchAssetDetail(context.Background(), "bitcoin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.Description != "The first cryptocurrency." {
		t.Errorf("Description = %q", detail.Description)
	}
	if detail.USDPrice() != 50000 {
		t.Errorf("USDPrice = %v, want 50000", detail.USDPrice())
	}
	if detail.CurrentPrice != 50000 {
		t.Errorf("CurrentPrice = %v, want 50000", detail.CurrentPrice)
	}
	if len(detail.Links.Homepage) != 1 || detail.Links.Homepage[0] != "https://bitcoin.org" {
		t.Errorf("Links.Homepage = %v", detail.Links.Homepage)
	}
	if detail.Image != "btc-large.png" {
		t.Errorf("Image = %q", detail.Image)
	}
}

func TestFetchAssetDetailNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	rec := &notify.Recorder{}
	client := NewClient(server.URL, rec)

	_, err := client.FetchAssetDetail(context.Background(), "no-such-coin")
	if !IsNotFound(err) {
		t.Fatalf("kind = %s, want not_found", KindOf(err))
	}
	// NotFound is an empty state, not a failure toast.
	if n := len(rec.Messages()); n != 0 {
		t.Errorf("NotFound produced %d notifications, want 0", n)
	}
}

func TestFetchAssetDetailEmptyID(t *testing.T) {
	client := NewClient("http://unused", &notify.Recorder{})
	_, err := client.FetchAssetDetail(context.Background(), "")
	if !IsValidation(err) {
		t.Errorf("kind = %s, want validation", KindOf(err))
	}
}

func TestFetchPriceSeries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/coins/bitcoin/market_chart" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if days := r.URL.Query().Get("days"); days != "7" {
			t.Errorf("days = %q, want 7", days)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"prices":[[0,100],[3600000,110]],
			"market_caps":[[0,1000],[3600000,1100]],
			"total_volumes":[[0,10],[3600000,11]]
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, &notify.Recorder{})
	series, err := client.FetchPriceSeries(context.Background(), "bitcoin", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series.Points) != 2 {
		t.Fatalf("got %d points, want 2", len(series.Points))
	}
	if series.Points[1].TimestampMillis != 3600000 || series.Points[1].PriceUSD != 110 {
		t.Errorf("point[1] = %+v", series.Points[1])
	}
	if !series.Sorted() {
		t.Error("series should be sorted")
	}
	if series.AssetID != "bitcoin" || series.LookbackDays != 7 {
		t.Errorf("series metadata = %q/%d", series.AssetID, series.LookbackDays)
	}
}

func TestFetchPriceSeriesInvalidDays(t *testing.T) {
	client := NewClient("http://unused", &notify.Recorder{})
	_, err := client.FetchPriceSeries(context.Background(), "bitcoin", 0)
	if !IsValidation(err) {
		t.Errorf("kind = %s, want validation", KindOf(err))
	}
}

func TestFetchPriceSeriesRejectsUnorderedTimestamps(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"prices":[[3600000,110],[0,100]]}`))
	}))
	defer server.Close()

	rec := &notify.Recorder{}
	client := NewClient(server.URL, rec)

	series, err := client.FetchPriceSeries(context.Background(), "bitcoin", 7)
	if err == nil {
		t.Fatalf("out-of-order body returned a series: %+v", series.Points)
	}
	if KindOf(err) != ParseFailure {
		t.Errorf("kind = %s, want parse", KindOf(err))
	}
	if n := len(rec.Messages()); n != 1 {
		t.Errorf("got %d notifications, want exactly 1", n)
	}
}

func TestParseFailureNotifiesOnce(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"prices": "not-an-array"`))
	}))
	defer server.Close()

	rec := &notify.Recorder{}
	client := NewClient(server.URL, rec)

	_, err := client.FetchPriceSeries(context.Background(), "bitcoin", 1)
	if KindOf(err) != ParseFailure {
		t.Fatalf("kind = %s, want parse", KindOf(err))
	}
	if n := len(rec.Messages()); n != 1 {
		t.Errorf("got %d notifications, want exactly 1", n)
	}
}

func TestFailureNotificationNamesAsset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	rec := &notify.Recorder{}
	client := NewClient(server.URL, rec)

	if _, err := client.FetchAssetDetail(context.Background(), "bitcoin"); err == nil {
		t.Fatal("expected error")
	}
	msgs := rec.Messages()
	if len(msgs) != 1 {
		t.Fatalf("got %d notifications, want exactly 1", len(msgs))
	}
	if !strings.Contains(msgs[0], "bitcoin") {
		t.Errorf("notification %q does not name the asset", msgs[0])
	}
}

func TestSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if q := r.URL.Query().Get("query"); q != "doge" {
			t.Errorf("query = %q, want doge", q)
		}
		w.Write([]byte(`{"coins":[{"id":"dogecoin","symbol":"doge","name":"Dogecoin","market_cap_rank":9}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, &notify.Recorder{})
	hits, err := client.Search(context.Background(), "doge")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "dogecoin" {
		t.Errorf("hits = %+v", hits)
	}
}
