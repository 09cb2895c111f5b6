package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/pnl"
	"github.com/etnz/pnl/renderer"
	"github.com/google/subcommands"
)

type reportCmd struct {
	positionFlags
	quoteFlags
	json bool
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "realized and unrealized PnL of a single-asset vault position" }
func (*reportCmd) Usage() string {
	return `vpnl report [-wallet <address> -vault <vault>] (-price <usd> -rate <rate> | -quote-file <file>) [-json]

  Replays the timeline of a single-asset vault position and reports its cost
  basis, market value, realized and unrealized PnL at the given quote.

Usage Examples:
# Reports the default timeline file.
$ vpnl report -price 2500 -rate 1.042

# Reports a stored position, reading the quote from a saved API response.
$ vpnl report -wallet 0xabc -vault beefy-weth -quote-file prices.json -price-path '$.WETH' -rate-path '$.ppfs["{vault}"]'

`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	c.positionFlags.SetFlags(f)
	c.quoteFlags.SetFlags(f)
	f.BoolVar(&c.json, "json", false, "Print the summary as JSON")
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	q, err := c.quote(c.vault)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading quote: %v\n", err)
		return subcommands.ExitUsageError
	}

	tl, err := c.timeline(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading timeline: %v\n", err)
		return subcommands.ExitFailure
	}
	l, err := tl.Ledger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error replaying timeline: %v\n", err)
		return subcommands.ExitFailure
	}

	s := pnl.NewSummary(l, q)
	if c.json {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding summary: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.SummaryMarkdown(c.title(), s))
	return subcommands.ExitSuccess
}
