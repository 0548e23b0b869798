package domain

import "github.com/shopspring/decimal"

const (
	// FiatPrecision is the number of fractional digits kept for USD amounts.
	FiatPrecision = 2
	// AssetPrecision is the number of fractional digits kept for asset quantities.
	AssetPrecision = 8
)

// SafeParse parses a string into a decimal, returning zero for invalid or empty input.
func SafeParse(value string) decimal.Decimal {
	if value == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FormatFiat renders a USD amount with exactly two fractional digits.
func FormatFiat(d decimal.Decimal) string {
	return d.Round(FiatPrecision).StringFixed(FiatPrecision)
}

// FormatAsset renders an asset quantity with exactly eight fractional digits.
// Trailing zeros are kept so "0.005" displays as "0.00500000".
func FormatAsset(d decimal.Decimal) string {
	return d.Round(AssetPrecision).StringFixed(AssetPrecision)
}

// RoundFiat rounds to fiat precision.
func RoundFiat(d decimal.Decimal) decimal.Decimal {
	return d.Round(FiatPrecision)
}

// RoundAsset rounds to asset precision.
func RoundAsset(d decimal.Decimal) decimal.Decimal {
	return d.Round(AssetPrecision)
}
