package api

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cryptodash/market/internal/export"
	"github.com/cryptodash/market/internal/marketdata"
	"github.com/cryptodash/market/internal/portfolio"
)

// NewServer creates an HTTP server with all routes configured.
func NewServer(port string, markets *marketdata.Service, holdings *portfolio.Service, exports *export.Service, adminAPIKey string) *http.Server {
	handler := NewHandler(markets, holdings)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/markets", handler.GetMarkets)
	mux.HandleFunc("GET /api/v1/assets/{id}", handler.GetAssetDetail)
	mux.HandleFunc("GET /api/v1/assets/{id}/chart", handler.GetAssetChart)
	mux.HandleFunc("GET /api/v1/search", handler.SearchAssets)
	mux.HandleFunc("GET /api/v1/portfolio/valuation", handler.GetValuation)
	mux.HandleFunc("GET /api/v1/holdings", handler.ListHoldings)
	mux.HandleFunc("PUT /api/v1/holdings", handler.PutHolding)
	mux.HandleFunc("DELETE /api/v1/holdings/{id}", handler.DeleteHolding)
	mux.HandleFunc("POST /api/v1/convert", handler.Convert)

	if exports != nil {
		exportHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := exports.Export(r.Context()); err != nil {
				slog.Error("export failed", "error", err)
				writeError(w, http.StatusInternalServerError, "export failed")
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		if adminAPIKey != "" {
			mux.Handle("POST /api/v1/export", requireAuth(adminAPIKey, exportHandler))
		} else {
			mux.Handle("POST /api/v1/export", exportHandler)
		}
	}

	return &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func requireAuth(apiKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if !strings.HasPrefix(auth, "Bearer ") || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
