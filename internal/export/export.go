// Package export writes the market overview and the portfolio statement to
// spreadsheet destinations: a local XLSX workbook or a Google Sheets
// spreadsheet.
package export

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/cryptodash/market/internal/domain"
	"github.com/cryptodash/market/internal/portfolio"
)

// SheetWriter writes the assembled sheets to a spreadsheet destination.
type SheetWriter interface {
	Write(ctx context.Context, markets []domain.AssetSummary, valuation portfolio.Valuation) error
}

// MarketSource provides the current market listing.
type MarketSource interface {
	TopAssets(ctx context.Context, limit int) ([]domain.AssetSummary, error)
}

// ValuationSource provides the current portfolio valuation.
type ValuationSource interface {
	Valuation(ctx context.Context) (portfolio.Valuation, error)
}

// Service gathers market and portfolio data and delegates writing.
type Service struct {
	markets    MarketSource
	valuations ValuationSource
	writer     SheetWriter
	limit      int
}

// NewService creates an export Service covering the top limit assets.
func NewService(markets MarketSource, valuations ValuationSource, writer SheetWriter, limit int) *Service {
	return &Service{
		markets:    markets,
		valuations: valuations,
		writer:     writer,
		limit:      limit,
	}
}

// Export fetches both datasets and writes them through the SheetWriter.
func (s *Service) Export(ctx context.Context) error {
	assets, err := s.markets.TopAssets(ctx, s.limit)
	if err != nil {
		return fmt.Errorf("fetching markets for export: %w", err)
	}

	valuation, err := s.valuations.Valuation(ctx)
	if err != nil {
		return fmt.Errorf("valuing portfolio for export: %w", err)
	}

	if err := s.writer.Write(ctx, assets, valuation); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	return nil
}

// buildMarketRows builds the MARKETS sheet data.
// Columns: Rank | ID | Symbol | Name | Price USD | 24h % | Market Cap | Volume
func buildMarketRows(assets []domain.AssetSummary) [][]any {
	data := make([][]any, 0, len(assets)+1)
	data = append(data, []any{
		"Rank", "ID", "Symbol", "Name", "Price USD", "24h %", "Market Cap", "Volume",
	})
	for _, a := range assets {
		data = append(data, []any{
			a.MarketCapRank, a.ID, a.Symbol, a.Name,
			a.CurrentPrice, a.PriceChangePercentage24h, a.MarketCap, a.TotalVolume,
		})
	}
	return data
}

// buildStatementRows builds the PORTFOLIO sheet data. Unpriced holdings show
// "pending" in the price and value columns rather than zero.
// Columns: Asset | Symbol | Quantity | Unit Price USD | Value USD | Status
func buildStatementRows(v portfolio.Valuation) [][]any {
	data := make([][]any, 0, len(v.Holdings)+2)
	data = append(data, []any{"Asset", "Symbol", "Quantity", "Unit Price USD", "Value USD", "Status"})

	rows := lo.Map(v.Holdings, func(h portfolio.HoldingValuation, _ int) []any {
		if h.Pending {
			return []any{h.Name, h.Symbol, h.Quantity.String(), "pending", "pending", "pending"}
		}
		return []any{
			h.Name, h.Symbol, h.Quantity.String(),
			h.UnitPrice.String(), domain.FormatFiat(h.Value), "priced",
		}
	})
	data = append(data, rows...)

	data = append(data, []any{"Total", "", "", "", domain.FormatFiat(v.Total), ""})
	return data
}
