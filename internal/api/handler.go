package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/cryptodash/market/internal/chart"
	"github.com/cryptodash/market/internal/coingecko"
	"github.com/cryptodash/market/internal/convert"
	"github.com/cryptodash/market/internal/domain"
	"github.com/cryptodash/market/internal/marketdata"
	"github.com/cryptodash/market/internal/portfolio"
)

// Handler provides the HTTP endpoints of the dashboard data API.
type Handler struct {
	markets  *marketdata.Service
	holdings *portfolio.Service
}

// NewHandler creates a new API handler.
func NewHandler(markets *marketdata.Service, holdings *portfolio.Service) *Handler {
	return &Handler{markets: markets, holdings: holdings}
}

// GetMarkets handles GET /api/v1/markets.
func (h *Handler) GetMarkets(w http.ResponseWriter, r *http.Request) {
	const maxLimit = 250
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxLimit)
	}

	assets, err := h.markets.TopAssets(r.Context(), limit)
	if err != nil {
		h.writeFetchError(w, "markets", err)
		return
	}
	writeJSON(w, http.StatusOK, assets)
}

// GetAssetDetail handles GET /api/v1/assets/{id}.
func (h *Handler) GetAssetDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	detail, err := h.markets.AssetDetail(r.Context(), id)
	if err != nil {
		h.writeFetchError(w, "asset detail", err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// GetAssetChart handles GET /api/v1/assets/{id}/chart.
func (h *Handler) GetAssetChart(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	timeframe := domain.Timeframe7d
	if tf := r.URL.Query().Get("timeframe"); tf != "" {
		parsed, err := domain.ParseTimeframe(tf)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unknown timeframe, expected one of 24h, 7d, 30d, 90d, 1y")
			return
		}
		timeframe = parsed
	}

	c, err := h.markets.Chart(r.Context(), id, timeframe)
	if errors.Is(err, chart.ErrNoData) {
		writeError(w, http.StatusNotFound, "no chart data for asset")
		return
	}
	if err != nil {
		h.writeFetchError(w, "chart", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// SearchAssets handles GET /api/v1/search.
func (h *Handler) SearchAssets(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		writeError(w, http.StatusBadRequest, "query must not be empty")
		return
	}

	hits, err := h.markets.Search(r.Context(), query)
	if err != nil {
		h.writeFetchError(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, hits)
}

// GetValuation handles GET /api/v1/portfolio/valuation.
func (h *Handler) GetValuation(w http.ResponseWriter, r *http.Request) {
	v, err := h.holdings.Valuation(r.Context())
	if err != nil {
		slog.Error("failed to value portfolio", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// ListHoldings handles GET /api/v1/holdings.
func (h *Handler) ListHoldings(w http.ResponseWriter, r *http.Request) {
	holdings, err := h.holdings.Holdings(r.Context())
	if err != nil {
		slog.Error("failed to list holdings", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, holdings)
}

type holdingRequest struct {
	AssetID  string `json:"assetId"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
}

// PutHolding handles PUT /api/v1/holdings.
func (h *Handler) PutHolding(w http.ResponseWriter, r *http.Request) {
	var req holdingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		writeError(w, http.StatusBadRequest, "quantity must be a decimal number")
		return
	}

	holding := portfolio.Holding{
		AssetID:  req.AssetID,
		Symbol:   req.Symbol,
		Name:     req.Name,
		Quantity: quantity,
	}
	if err := h.holdings.SetHolding(r.Context(), holding); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, holding)
}

// DeleteHolding handles DELETE /api/v1/holdings/{id}.
func (h *Handler) DeleteHolding(w http.ResponseWriter, r *http.Request) {
	err := h.holdings.RemoveHolding(r.Context(), r.PathValue("id"))
	if errors.Is(err, portfolio.ErrHoldingNotFound) {
		writeError(w, http.StatusNotFound, "holding not found")
		return
	}
	if err != nil {
		slog.Error("failed to delete holding", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type convertRequest struct {
	AssetID     string `json:"assetId"`
	FiatAmount  string `json:"fiatAmount,omitempty"`
	AssetAmount string `json:"assetAmount,omitempty"`
}

// Convert handles POST /api/v1/convert. Exactly one of fiatAmount and
// assetAmount is the edited field; the other is derived at the asset's
// current unit price.
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.AssetID == "" {
		writeError(w, http.StatusBadRequest, "assetId must not be empty")
		return
	}
	if req.FiatAmount != "" && req.AssetAmount != "" {
		writeError(w, http.StatusBadRequest, "provide either fiatAmount or assetAmount, not both")
		return
	}

	detail, err := h.markets.AssetDetail(r.Context(), req.AssetID)
	if err != nil {
		h.writeFetchError(w, "asset detail", err)
		return
	}

	converter := convert.New(decimal.NewFromFloat(detail.USDPrice()))
	if req.FiatAmount != "" {
		converter.SetFiat(req.FiatAmount)
	} else {
		converter.SetAsset(req.AssetAmount)
	}
	writeJSON(w, http.StatusOK, converter.Pair())
}

// writeFetchError maps a market data failure to an HTTP response.
func (h *Handler) writeFetchError(w http.ResponseWriter, what string, err error) {
	switch coingecko.KindOf(err) {
	case coingecko.NotFound:
		writeError(w, http.StatusNotFound, what+" not available")
	case coingecko.ValidationFailure:
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("market data fetch failed", "what", what, "error", err)
		writeError(w, http.StatusBadGateway, "market data unavailable")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Warn("failed to write HTTP response body", "error", err)
		return
	}
	_, _ = w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
