package model

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount limits, matching a Dataverse decimal column.
const (
	MaxAmountScale  = 10
	MaxAmountDigits = 38
)

// ErrAmountOutOfRange is returned for amounts with more digits than an
// amount column can hold.
var ErrAmountOutOfRange = errors.New("amount out of range")

// ParseAmount parses a decimal amount. Surrounding whitespace is ignored.
// Amounts with more than MaxAmountScale fractional digits or more than
// MaxAmountDigits digits in total are rejected before they are expanded.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, err
	}
	if d.IsZero() {
		return decimal.Zero, nil
	}

	digits := d.NumDigits()
	exp := int(d.Exponent())

	if digits+exp > MaxAmountDigits-MaxAmountScale {
		return decimal.Decimal{}, ErrAmountOutOfRange
	}
	if -exp > MaxAmountScale {
		// Only trailing zeros of the coefficient may sit past the scale.
		if -exp-MaxAmountScale >= digits || !d.Truncate(MaxAmountScale).Equal(d) {
			return decimal.Decimal{}, ErrAmountOutOfRange
		}
	}
	return d, nil
}

// FormatAmount renders an amount in canonical form: plain notation with a
// '.' separator, no exponent, no grouping and no trailing fractional zeros.
func FormatAmount(d decimal.Decimal) string {
	return d.String()
}
