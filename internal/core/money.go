// Package core holds the domain model shared by storage, reporting and the
// HTTP layer.
//
// This file contains helpers for exact decimal money handling. Amounts are
// decimal values limited to two fractional digits; storage keeps them as
// integer cents so summation never touches binary floating point.
package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrAmountScale is returned for amounts finer than whole cents.
var ErrAmountScale = errors.New("amount has more than two decimal places")

// ParseAmount parses a signed decimal amount string such as "-12.34".
//
// It accepts both dot and comma decimal separators and rejects values with
// more than two fractional digits.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if err := CheckScale(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// CheckScale rejects amounts that cannot be represented as whole cents.
func CheckScale(d decimal.Decimal) error {
	if !d.Equal(d.Truncate(2)) {
		return ErrAmountScale
	}
	return nil
}

// ToCents converts an amount to integer cents. The amount must already have
// passed CheckScale; out-of-scale input reports ErrAmountScale.
func ToCents(d decimal.Decimal) (int64, error) {
	if err := CheckScale(d); err != nil {
		return 0, err
	}
	return d.Shift(2).IntPart(), nil
}

// FromCents converts integer cents back to a decimal amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
