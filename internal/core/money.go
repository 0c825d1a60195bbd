// Package core provides the cash-flow domain model and its validation rules.
//
// This file contains amount parsing. Amounts are kept as decimals so that
// bounds like gteAmount=10.1 compare exactly.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a decimal amount. Surrounding whitespace is ignored.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParsePositiveAmount parses s and rejects zero and negative values.
func ParsePositiveAmount(s string) (decimal.Decimal, error) {
	d, err := ParseAmount(s)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}
