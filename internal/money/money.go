// Package money provides the fixed-point currency representation used
// throughout the backend.
//
// All internal arithmetic is done on integer minor units (cents) to avoid
// floating-point drift across repeated additions. Decimal amounts only exist
// at the system boundary (JSON requests and responses), where they are
// converted with the functions in this package.
package money

import "github.com/shopspring/decimal"

// Cents is a signed currency amount in minor units.
type Cents int64

var hundred = decimal.NewFromInt(100)

// FromDecimal converts a major-unit decimal amount to Cents, rounding
// half-away-from-zero to the nearest minor unit.
func FromDecimal(d decimal.Decimal) Cents {
	return Cents(d.Mul(hundred).Round(0).IntPart())
}

// Decimal converts the amount back to major units for display and JSON.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// Abs returns the magnitude of the amount.
func (c Cents) Abs() Cents {
	if c < 0 {
		return -c
	}
	return c
}

// String formats the amount in major units (e.g. "12.50").
func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}
