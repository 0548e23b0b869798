// Package convert implements the bidirectional fiat/asset amount converter
// used for trade entry. Exactly one of the two amount fields is authoritative
// at any instant; the other is always re-derived from it and the unit price,
// so the displayed numbers can never drift apart.
package convert

import (
	"github.com/shopspring/decimal"

	"github.com/cryptodash/market/internal/domain"
)

// State names the authoritative field of the converter.
type State string

const (
	// StateEmpty means no valid input has been entered yet.
	StateEmpty State = "empty"
	// StateFiatEdited means the fiat field holds the user's input.
	StateFiatEdited State = "fiat_edited"
	// StateAssetEdited means the asset field holds the user's input.
	StateAssetEdited State = "asset_edited"
)

// Pair is a displayable snapshot of both fields. Empty strings mean "no
// input"; the derived field carries fixed precision (2 fiat, 8 asset).
type Pair struct {
	FiatAmount  string `json:"fiatAmount"`
	AssetAmount string `json:"assetAmount"`
	State       State  `json:"state"`
}

// Converter converts between a fiat amount and an asset quantity at the
// current unit price. Invalid input is not an error: it models incremental
// typing and silently resets both fields to empty.
type Converter struct {
	state     State
	edited    decimal.Decimal // parsed value of the authoritative field
	editedRaw string          // user's input, echoed back verbatim
	unitPrice decimal.Decimal
}

// New creates a converter for the given USD unit price.
func New(unitPrice decimal.Decimal) *Converter {
	return &Converter{state: StateEmpty, unitPrice: unitPrice}
}

// SetFiat records a fiat-field edit. A valid positive number makes the fiat
// field authoritative; anything else empties both fields.
func (c *Converter) SetFiat(input string) {
	c.setEdited(StateFiatEdited, input)
}

// SetAsset records an asset-field edit, the symmetric transition.
func (c *Converter) SetAsset(input string) {
	c.setEdited(StateAssetEdited, input)
}

func (c *Converter) setEdited(state State, input string) {
	value, err := decimal.NewFromString(input)
	if err != nil || !value.IsPositive() {
		c.state = StateEmpty
		c.edited = decimal.Zero
		c.editedRaw = ""
		return
	}
	c.state = state
	c.edited = value
	c.editedRaw = input
}

// SetUnitPrice installs a new unit price, e.g. after the user switches the
// selected asset or a refetch lands. The authoritative field is kept and the
// derived field recomputes on the next read; an empty converter is untouched.
func (c *Converter) SetUnitPrice(unitPrice decimal.Decimal) {
	c.unitPrice = unitPrice
}

// State returns the current authoritative field.
func (c *Converter) State() State {
	return c.state
}

// FiatAmount returns the fiat field: the user's input when fiat is
// authoritative, otherwise the value derived from the asset quantity.
func (c *Converter) FiatAmount() string {
	switch c.state {
	case StateFiatEdited:
		return c.editedRaw
	case StateAssetEdited:
		if !c.unitPrice.IsPositive() {
			return ""
		}
		return domain.FormatFiat(c.edited.Mul(c.unitPrice))
	}
	return ""
}

// AssetAmount returns the asset field: the user's input when the asset
// quantity is authoritative, otherwise the value derived from the fiat amount.
func (c *Converter) AssetAmount() string {
	switch c.state {
	case StateAssetEdited:
		return c.editedRaw
	case StateFiatEdited:
		if !c.unitPrice.IsPositive() {
			return ""
		}
		return domain.FormatAsset(c.edited.Div(c.unitPrice))
	}
	return ""
}

// Pair snapshots both fields and the state for display.
func (c *Converter) Pair() Pair {
	return Pair{
		FiatAmount:  c.FiatAmount(),
		AssetAmount: c.AssetAmount(),
		State:       c.state,
	}
}
