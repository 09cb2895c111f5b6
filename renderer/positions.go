package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/pnl/store"
	"github.com/shopspring/decimal"
)

// PositionsMarkdown renders every stored position with a grand total.
// Positions that could not be valued are listed apart with their error.
func PositionsMarkdown(positions []store.Position) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Positions\n\n")
	fmt.Fprintln(&b, "| Wallet | Vault | Shares | Cost Basis | Market Value | Realized | Unrealized | Return |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|---:|---:|---:|")

	var cost, market, realized, unrealized decimal.Decimal
	var failed []store.Position
	for _, p := range positions {
		if p.Err != nil {
			failed = append(failed, p)
			continue
		}
		s := p.Summary
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s |\n",
			p.Key.Wallet, p.Key.Vault,
			amount(s.RemainingShares),
			usd(s.CostBasis.USD),
			usd(s.MarketValue.USD),
			signedUSD(s.Realized.USD),
			signedUSD(s.Unrealized.USD),
			s.Return().SignedString(),
		)
		cost = cost.Add(s.CostBasis.USD)
		market = market.Add(s.MarketValue.USD)
		realized = realized.Add(s.Realized.USD)
		unrealized = unrealized.Add(s.Unrealized.USD)
	}
	fmt.Fprintf(&b, "| **Total** | | | **%s** | **%s** | **%s** | **%s** | |\n",
		usd(cost), usd(market), signedUSD(realized), signedUSD(unrealized))

	if len(failed) > 0 {
		fmt.Fprint(&b, "\n## Errors\n\n")
		for _, p := range failed {
			fmt.Fprintf(&b, "- %s: %v\n", p.Key, p.Err)
		}
	}
	return b.String()
}
