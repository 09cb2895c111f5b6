package pnl

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money is a USD amount ready for display.
//
// Computations are done on decimal.Decimal; Money only exists at the edge, to
// format results with the currency conventions of go-money.
type Money struct {
	value decimal.Decimal // in dollars
}

// USD returns an amount of US dollars.
func USD[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | string | decimal.Decimal](value T) Money {
	return Money{value: D(value)}
}

// String formats the amount rounded to cents, e.g. "$1,234.50".
func (m Money) String() string {
	// the Money constructor never returns a nil currency
	cur := money.New(0, money.USD).Currency()
	cents := m.value.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(cents.IntPart())
}

// SignedString is like String with an explicit sign. Zero is "-".
func (m Money) SignedString() string {
	if m.value.Round(2).IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}
