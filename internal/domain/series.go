package domain

import (
	"encoding/json"
	"fmt"
)

// PricePoint is a single (timestamp, price) sample. The provider encodes it
// as a two-element JSON array [timestampMillis, priceUSD].
type PricePoint struct {
	TimestampMillis int64
	PriceUSD        float64
}

// UnmarshalJSON decodes the provider's [ts, price] pair encoding.
func (p *PricePoint) UnmarshalJSON(data []byte) error {
	var pair [2]float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("parsing price point: %w", err)
	}
	p.TimestampMillis = int64(pair[0])
	p.PriceUSD = pair[1]
	return nil
}

// MarshalJSON encodes back to the [ts, price] pair form.
func (p PricePoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{float64(p.TimestampMillis), p.PriceUSD})
}

// PriceSeries is an ordered price history with non-decreasing timestamps,
// covering a caller-specified lookback window. It is never mutated after
// construction; a new timeframe produces a new series.
type PriceSeries struct {
	AssetID      string       `json:"assetId"`
	LookbackDays int          `json:"lookbackDays"`
	Points       []PricePoint `json:"points"`
}

// IsEmpty reports whether the series has no samples.
func (s PriceSeries) IsEmpty() bool {
	return len(s.Points) == 0
}

// Sorted reports whether timestamps are non-decreasing.
func (s PriceSeries) Sorted() bool {
	for i := 1; i < len(s.Points); i++ {
		if s.Points[i].TimestampMillis < s.Points[i-1].TimestampMillis {
			return false
		}
	}
	return true
}
