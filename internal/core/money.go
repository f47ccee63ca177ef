// Package core holds the ledger domain types shared by every other package.
//
// This file contains the Money type and the helpers that parse and format
// monetary amounts at the input/output boundary.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MaxAmountCents is the largest single amount accepted at the boundary: one
// hundred billion in major units. It keeps sums of up to about 900,000
// records within int64 cents; Add and Mul do not check for overflow.
const MaxAmountCents int64 = 1e13

// Money is an amount in integer minor units (cents). All ledger arithmetic
// happens on Cents; decimals only appear when parsing or printing.
type Money struct {
	Cents int64
}

// Cents is shorthand for Money{Cents: c}.
func Cents(c int64) Money {
	return Money{Cents: c}
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Sub returns m - o.
func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

// Mul returns m multiplied by an integer factor.
func (m Money) Mul(n int64) Money {
	return Money{Cents: m.Cents * n}
}

// Abs returns the absolute value of m.
func (m Money) Abs() Money {
	if m.Cents < 0 {
		return Money{Cents: -m.Cents}
	}
	return m
}

func (m Money) IsZero() bool     { return m.Cents == 0 }
func (m Money) IsPositive() bool { return m.Cents > 0 }
func (m Money) IsNegative() bool { return m.Cents < 0 }

// Decimal returns the amount in major units as a decimal, e.g. 1234 cents -> 12.34.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats the amount with two fraction digits ("12.34", "-0.50").
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// MarshalJSON encodes the amount as a JSON number in major units (12.34).
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or string in major units. Unlike
// ParseAmount it accepts negative values, which balances may hold.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return ErrInvalidAmount
	}
	m.Cents = d.Round(2).Shift(2).IntPart()
	return nil
}

// Validate reports whether the amount may be stored. Zero is allowed:
// a zero contribution is a legitimate (if unusual) record.
func (m Money) Validate() error {
	if m.Cents < 0 || m.Cents > MaxAmountCents {
		return ErrInvalidAmount
	}
	return nil
}

// ParseAmount converts a decimal string in major units to Money.
//
// Both dot (12.34) and comma (12,34) separators are accepted. Extra fraction
// digits are rounded half-up to the cent. Negative values, signs, exponents
// and anything above MaxAmountCents are rejected.
//
//	ParseAmount("12.34")  -> 1234
//	ParseAmount("12,345") -> 1235
//	ParseAmount("0")      -> 0
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.ContainsAny(s, "+-eE") {
		return Money{}, ErrInvalidAmount
	}
	if strings.Count(s, ".") > 1 {
		return Money{}, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}

	cents := d.Round(2).Shift(2)
	if cents.GreaterThan(decimal.NewFromInt(MaxAmountCents)) {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: cents.IntPart()}, nil
}

// MustParseAmount is ParseAmount for constants in tests and fixtures.
func MustParseAmount(s string) Money {
	m, err := ParseAmount(s)
	if err != nil {
		panic("core: invalid amount " + s)
	}
	return m
}
