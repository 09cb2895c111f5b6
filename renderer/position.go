package renderer

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/etnz/pnl"
)

// SummaryMarkdown renders a single-asset position.
func SummaryMarkdown(title string, s pnl.Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "Price: %s, exchange rate: %s\n\n", usd(s.Quote.Price), amount(s.Quote.ExchangeRate))

	fmt.Fprintln(&b, "| | Underlying | USD |")
	fmt.Fprintln(&b, "|:---|---:|---:|")
	fmt.Fprintf(&b, "| Cost Basis | %s | %s |\n", amount(s.CostBasis.Shares), usd(s.CostBasis.USD))
	fmt.Fprintf(&b, "| Market Value | %s | %s |\n", amount(s.MarketValue.Shares), usd(s.MarketValue.USD))
	fmt.Fprintf(&b, "| Realized | %s | %s |\n", signedAmount(s.Realized.Shares), signedUSD(s.Realized.USD))
	fmt.Fprintf(&b, "| Unrealized | %s | %s |\n", signedAmount(s.Unrealized.Shares), signedUSD(s.Unrealized.USD))
	total := s.Total()
	fmt.Fprintf(&b, "| **Total** | **%s** | **%s** |\n\n", signedAmount(total.Shares), signedUSD(total.USD))

	if s.RemainingShares.IsZero() {
		fmt.Fprintln(&b, "Position closed.")
		return b.String()
	}
	fmt.Fprintf(&b, "Remaining shares: %s, average entry price %s, average entry exchange rate %s\n\n",
		amount(s.RemainingShares), usd(s.AvgEntryPrice), amount(s.AvgEntryExchangeRate))
	fmt.Fprintf(&b, "Return: %s, yield: %s\n", s.Return().SignedString(), s.YieldReturn().SignedString())
	return b.String()
}

// ClmSummaryMarkdown renders a concentrated-liquidity position.
func ClmSummaryMarkdown(title string, s pnl.ClmSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "Token0: %s, token1: %s\n\n", usd(s.Quote.Token0ToUsd), usd(s.Quote.Token1ToUsd))

	fmt.Fprintln(&b, "| | Underlying | USD |")
	fmt.Fprintln(&b, "|:---|---:|---:|")
	fmt.Fprintf(&b, "| Cost Basis | %s | %s |\n", amount(s.CostBasis.Shares), usd(s.CostBasis.USD))
	fmt.Fprintf(&b, "| Market Value | %s | %s |\n", amount(s.MarketValue.Shares), usd(s.MarketValue.USD))
	fmt.Fprintf(&b, "| Hold Value | | %s |\n", usd(s.HoldUSD))
	fmt.Fprintf(&b, "| Realized | %s | %s |\n", signedAmount(s.Realized.Shares), signedUSD(s.Realized.USD))
	fmt.Fprintf(&b, "| Unrealized | %s | %s |\n", signedAmount(s.Unrealized.Shares), signedUSD(s.Unrealized.USD))
	fmt.Fprintf(&b, "| Claimed | | %s |\n", signedUSD(s.Claimed.TotalUSD))
	fmt.Fprintf(&b, "| **Total** | | **%s** |\n\n", signedUSD(s.Total()))

	if s.Remaining.Shares.IsPositive() {
		fmt.Fprintf(&b, "Remaining shares: %s backed by %s token0 at %s and %s token1 at %s\n\n",
			amount(s.Remaining.Shares),
			amount(s.Remaining.Token0), usd(s.EntryPrice.Token0),
			amount(s.Remaining.Token1), usd(s.EntryPrice.Token1))
		fmt.Fprintf(&b, "Return: %s, versus holding: %s\n", s.Return().SignedString(), signedUSD(s.VsHold()))
	} else {
		fmt.Fprintln(&b, "Position closed.")
	}

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprint(w, "\n## Claimed Rewards\n\n")
		fmt.Fprintln(w, "| Token | Amount | USD |")
		fmt.Fprintln(w, "|:---|---:|---:|")
		for _, address := range slices.Sorted(maps.Keys(s.Claimed.Tokens)) {
			t := s.Claimed.Tokens[address]
			fmt.Fprintf(w, "| %s | %s | %s |\n", address, amount(t.Amount), usd(t.USD))
		}
		return len(s.Claimed.Tokens) > 0
	})
	return b.String()
}

// LotsMarkdown renders the lots of a single-asset position, oldest first.
func LotsMarkdown(lots []pnl.Lot) string {
	var b strings.Builder
	fmt.Fprintln(&b, "| # | Bought | Remaining | Entry Price | Entry Rate |")
	fmt.Fprintln(&b, "|---:|---:|---:|---:|---:|")
	for i, l := range lots {
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s |\n", i+1,
			amount(l.BoughtShares), amount(l.RemainingShares), usd(l.EntryPrice), amount(l.EntryExchangeRate))
	}
	return b.String()
}
