package models

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is a fixed-point amount with two decimal places on the wire.
type Money struct {
	decimal.Decimal
}

// NewMoney parses a decimal string such as "2450.00".
func NewMoney(value string) (Money, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	return Money{Decimal: d}, nil
}

// MustMoney is NewMoney for constants.
func MustMoney(value string) Money {
	m, err := NewMoney(value)
	if err != nil {
		panic(err)
	}
	return m
}

// MoneyFromDecimal wraps a decimal value.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

// maxAmount is the largest value a numeric(10,2) column holds.
var maxAmount = decimal.RequireFromString("99999999.99")

// Storable reports whether the amount fits a numeric(10,2) column.
func (m Money) Storable() bool {
	return m.Decimal.LessThanOrEqual(maxAmount)
}

// String renders the amount with exactly two decimals.
func (m Money) String() string {
	return m.Decimal.StringFixed(2)
}

// MarshalJSON encodes the amount as a quoted two-decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts both JSON numbers and quoted decimal strings.
func (m *Money) UnmarshalJSON(data []byte) error {
	return m.Decimal.UnmarshalJSON(data)
}

// Value stores the amount as a numeric string.
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

// Scan reads a numeric column.
func (m *Money) Scan(value interface{}) error {
	return m.Decimal.Scan(value)
}

// Mul returns the line total for a quantity.
func (m Money) Mul(qty decimal.Decimal) Money {
	return Money{Decimal: m.Decimal.Mul(qty)}
}

// Add sums two amounts.
func (m Money) Add(other Money) Money {
	return Money{Decimal: m.Decimal.Add(other.Decimal)}
}
