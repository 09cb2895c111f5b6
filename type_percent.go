package pnl

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Percent is a ratio displayed as a percentage. Percent{} is 0%.
type Percent struct {
	ratio decimal.Decimal // 0.05 for 5%
}

// ratio returns num/den as a Percent, 0% when den is zero.
func ratio(num, den decimal.Decimal) Percent {
	return Percent{ratio: safeDiv(num, den)}
}

// Ratio returns the underlying ratio (0.05 for 5%).
func (p Percent) Ratio() decimal.Decimal { return p.ratio }

func (p Percent) Equal(q Percent) bool { return p.ratio.Equal(q.ratio) }

func (p Percent) String() string {
	return p.ratio.Shift(2).StringFixed(2) + "%"
}

// SignedString is like String with an explicit sign. Zero is "-".
func (p Percent) SignedString() string {
	pct := p.ratio.Shift(2).Round(2)
	if pct.IsZero() {
		return "-"
	}
	if pct.IsPositive() {
		return fmt.Sprintf("+%s%%", pct.StringFixed(2))
	}
	return pct.StringFixed(2) + "%"
}

func (p Percent) MarshalJSON() ([]byte, error) { return p.ratio.MarshalJSON() }
