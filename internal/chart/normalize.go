// Package chart turns raw price series into chart-ready samples with
// timeframe-appropriate labels and summary statistics. Normalization is a
// pure function: the same series and timeframe always yield the same chart.
package chart

import (
	"errors"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/cryptodash/market/internal/domain"
)

// ErrNoData marks an empty series. Callers render a "no data" state rather
// than a zeroed chart.
var ErrNoData = errors.New("price series has no samples")

// Sample is one labeled chart point.
type Sample struct {
	TimestampMillis int64   `json:"timestamp"`
	PriceUSD        float64 `json:"price"`
	Label           string  `json:"label"`
}

// Summary describes the price movement over the whole series. Percent is
// meaningful only when PercentDefined is true; a series starting at zero has
// no defined percent change.
type Summary struct {
	Start          decimal.Decimal `json:"start"`
	End            decimal.Decimal `json:"end"`
	Delta          decimal.Decimal `json:"delta"`
	Percent        decimal.Decimal `json:"percent"`
	PercentDefined bool            `json:"percentDefined"`
}

// Chart is the normalized output for one series and timeframe.
type Chart struct {
	AssetID   string           `json:"assetId"`
	Timeframe domain.Timeframe `json:"timeframe"`
	Samples   []Sample         `json:"samples"`
	Summary   Summary          `json:"summary"`
}

// Normalize converts a series into labeled samples plus summary statistics.
// An empty series returns ErrNoData.
func Normalize(series domain.PriceSeries, timeframe domain.Timeframe) (Chart, error) {
	if series.IsEmpty() {
		return Chart{}, ErrNoData
	}

	samples := lo.Map(series.Points, func(p domain.PricePoint, _ int) Sample {
		return Sample{
			TimestampMillis: p.TimestampMillis,
			PriceUSD:        p.PriceUSD,
			Label:           Label(p.TimestampMillis, timeframe),
		}
	})

	return Chart{
		AssetID:   series.AssetID,
		Timeframe: timeframe,
		Samples:   samples,
		Summary:   summarize(series.Points),
	}, nil
}

// summarize computes start/end/delta/percent over the ordered points.
func summarize(points []domain.PricePoint) Summary {
	start := decimal.NewFromFloat(points[0].PriceUSD)
	end := decimal.NewFromFloat(points[len(points)-1].PriceUSD)
	delta := end.Sub(start)

	s := Summary{Start: start, End: end, Delta: delta}
	if !start.IsZero() {
		s.Percent = delta.Div(start).Mul(decimal.NewFromInt(100))
		s.PercentDefined = true
	}
	return s
}

// Label formats a timestamp for display under the given timeframe: local
// hour and minute for 24h, month and day otherwise, with the year added for
// the 1y window.
func Label(timestampMillis int64, timeframe domain.Timeframe) string {
	ts := time.UnixMilli(timestampMillis).Local()
	switch timeframe {
	case domain.Timeframe24h:
		return ts.Format("15:04")
	case domain.Timeframe1y:
		return ts.Format("Jan 2, 2006")
	default:
		return ts.Format("Jan 2")
	}
}
