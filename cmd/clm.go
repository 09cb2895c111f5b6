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

type clmCmd struct {
	positionFlags
	token0, token1, underlying decimalFlag
	t0ps, t1ps, ups            decimalFlag
	json                       bool
}

func (*clmCmd) Name() string     { return "clm" }
func (*clmCmd) Synopsis() string { return "PnL and claimed rewards of a concentrated-liquidity vault position" }
func (*clmCmd) Usage() string {
	return `vpnl clm [-wallet <address> -vault <vault>] -token0 <usd> -token1 <usd> -t0ps <amount> -t1ps <amount> [-underlying <usd> -ups <amount>] [-json]

  Replays the timeline of a concentrated-liquidity vault position and reports
  its PnL, its value against holding the deposited tokens, and the rewards
  claimed so far.

Usage Examples:
$ vpnl clm -token0 2500 -token1 1 -t0ps 0.0012 -t1ps 3.1

`
}

func (c *clmCmd) SetFlags(f *flag.FlagSet) {
	c.positionFlags.SetFlags(f)
	f.Var(&c.token0, "token0", "Current USD price of token0")
	f.Var(&c.token1, "token1", "Current USD price of token1")
	f.Var(&c.underlying, "underlying", "Current USD price of the underlying LP token")
	f.Var(&c.t0ps, "t0ps", "Token0 currently backing one share")
	f.Var(&c.t1ps, "t1ps", "Token1 currently backing one share")
	f.Var(&c.ups, "ups", "Underlying currently backing one share")
	f.BoolVar(&c.json, "json", false, "Print the summary as JSON")
}

func (c *clmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.token0.set || !c.token1.set || !c.t0ps.set || !c.t1ps.set {
		fmt.Fprintln(os.Stderr, "-token0, -token1, -t0ps and -t1ps are required")
		return subcommands.ExitUsageError
	}
	q := pnl.ClmQuote{
		Token0ToUsd:        c.token0.Decimal,
		Token1ToUsd:        c.token1.Decimal,
		UnderlyingToUsd:    c.underlying.Decimal,
		Token0PerShare:     c.t0ps.Decimal,
		Token1PerShare:     c.t1ps.Decimal,
		UnderlyingPerShare: c.ups.Decimal,
	}

	tl, err := c.timeline(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading timeline: %v\n", err)
		return subcommands.ExitFailure
	}
	l, err := tl.ClmLedger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error replaying timeline: %v\n", err)
		return subcommands.ExitFailure
	}

	s := pnl.NewClmSummary(l, q)
	if c.json {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding summary: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.ClmSummaryMarkdown(c.title(), s))
	return subcommands.ExitSuccess
}
