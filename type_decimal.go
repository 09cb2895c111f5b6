package pnl

import (
	"github.com/shopspring/decimal"
)

// D is a convenient factory for decimal.Decimal.
//
// Strings are parsed exactly and D panics on a malformed one, so it is meant for
// literals. Floats go through their shortest decimal representation.
func D[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | string | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case string:
		return decimal.RequireFromString(v)
	case float32:
		return decimal.NewFromFloat32(v)
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	case uint:
		return decimal.NewFromUint64(uint64(v))
	case uint32:
		return decimal.NewFromUint64(uint64(v))
	case uint64:
		return decimal.NewFromUint64(v)
	default:
		panic("unsupported type")
	}
}

// safeDiv returns num/den, or zero when den is zero.
func safeDiv(num, den decimal.Decimal) decimal.Decimal {
	if den.IsZero() {
		return decimal.Zero
	}
	return num.Div(den)
}

// weighted accumulates a weighted average.
type weighted struct {
	sum    decimal.Decimal // sum of value*weight
	weight decimal.Decimal
}

func (w *weighted) add(value, weight decimal.Decimal) {
	w.sum = w.sum.Add(value.Mul(weight))
	w.weight = w.weight.Add(weight)
}

// average returns zero when nothing was weighted.
func (w weighted) average() decimal.Decimal { return safeDiv(w.sum, w.weight) }
