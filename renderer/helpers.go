package renderer

import (
	"bytes"
	"io"

	"github.com/etnz/pnl"
	"github.com/shopspring/decimal"
)

// ConditionalBlock let you fully write a block and decide at the end to print it or not.
// If the block function returns true, the content is printed to w, otherwise it is discarded.
func ConditionalBlock(w io.Writer, block func(io.Writer) bool) {
	bw := &bytes.Buffer{}
	if block(bw) {
		io.Copy(w, bw)
	}
}

// amount formats a token or share quantity.
func amount(d decimal.Decimal) string { return d.Round(6).String() }

// signedAmount is like amount with an explicit sign. Zero is "-".
func signedAmount(d decimal.Decimal) string {
	r := d.Round(6)
	switch {
	case r.IsZero():
		return "-"
	case r.IsPositive():
		return "+" + r.String()
	default:
		return r.String()
	}
}

func usd(d decimal.Decimal) string       { return pnl.USD(d).String() }
func signedUSD(d decimal.Decimal) string { return pnl.USD(d).SignedString() }
