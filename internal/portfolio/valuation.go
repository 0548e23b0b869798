// Package portfolio values held asset quantities at current unit prices.
// Prices arrive asynchronously and independently, so the aggregation
// tolerates partial availability: unpriced holdings are flagged pending and
// contribute zero to the total, never silently shown as worthless.
package portfolio

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Holding is one (asset, quantity) record of the user's wallet.
type Holding struct {
	AssetID  string          `json:"assetId"`
	Symbol   string          `json:"symbol"`
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
}

// HoldingValuation is a holding valued at the current unit price. Pending
// means no price was available; Value and UnitPrice are zero in that case
// and must be rendered as "pending", not as $0.
type HoldingValuation struct {
	Holding
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Value     decimal.Decimal `json:"value"`
	Pending   bool            `json:"pending"`
}

// Valuation is the aggregate over all holdings. Total sums priced holdings
// only.
type Valuation struct {
	Holdings     []HoldingValuation `json:"holdings"`
	Total        decimal.Decimal    `json:"total"`
	PendingCount int                `json:"pendingCount"`
}

// PriceLookup resolves an asset id to its USD unit price. The second return
// is false while that asset's price has not arrived yet.
type PriceLookup func(assetID string) (decimal.Decimal, bool)

// Value computes per-holding valuations and the aggregate total. It is a
// pure function of the holdings list and the lookup.
func Value(holdings []Holding, lookup PriceLookup) Valuation {
	valued := lo.Map(holdings, func(h Holding, _ int) HoldingValuation {
		price, ok := lookup(h.AssetID)
		if !ok {
			return HoldingValuation{Holding: h, Pending: true}
		}
		return HoldingValuation{
			Holding:   h,
			UnitPrice: price,
			Value:     h.Quantity.Mul(price),
		}
	})

	total := lo.Reduce(valued, func(acc decimal.Decimal, v HoldingValuation, _ int) decimal.Decimal {
		if v.Pending {
			return acc
		}
		return acc.Add(v.Value)
	}, decimal.Zero)

	pending := lo.CountBy(valued, func(v HoldingValuation) bool { return v.Pending })

	return Valuation{
		Holdings:     valued,
		Total:        total,
		PendingCount: pending,
	}
}
