package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/pnl"
	"github.com/google/subcommands"
	"github.com/olekukonko/tablewriter"
)

type lotsCmd struct {
	positionFlags
	clm bool
	all bool
}

func (*lotsCmd) Name() string     { return "lots" }
func (*lotsCmd) Synopsis() string { return "lists the FIFO lots of a position" }
func (*lotsCmd) Usage() string {
	return `vpnl lots [-wallet <address> -vault <vault>] [-clm] [-all]

  Replays the timeline and prints its lots, oldest first. Lots consumed by
  withdrawals are hidden unless -all is set.

`
}

func (c *lotsCmd) SetFlags(f *flag.FlagSet) {
	c.positionFlags.SetFlags(f)
	f.BoolVar(&c.clm, "clm", false, "Replay the timeline as a concentrated-liquidity position")
	f.BoolVar(&c.all, "all", false, "Also list exhausted lots")
}

func (c *lotsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	tl, err := c.timeline(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading timeline: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := c.print(tl); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *lotsCmd) print(tl *pnl.Timeline) error {
	if c.clm {
		l, err := tl.ClmLedger()
		if err != nil {
			return err
		}
		return printClmLots(os.Stdout, l.Lots(), c.all)
	}
	l, err := tl.Ledger()
	if err != nil {
		return err
	}
	return printLots(os.Stdout, l.Lots(), c.all)
}

func printLots(w io.Writer, lots []pnl.Lot, all bool) error {
	table := tablewriter.NewWriter(w)
	table.Header("#", "Bought", "Remaining", "Entry Price", "Entry Rate")
	for i, l := range lots {
		if !all && !l.RemainingShares.IsPositive() {
			continue
		}
		if err := table.Append(
			fmt.Sprintf("%d", i+1),
			l.BoughtShares.String(),
			l.RemainingShares.String(),
			pnl.USD(l.EntryPrice).String(),
			l.EntryExchangeRate.String(),
		); err != nil {
			return err
		}
	}
	return table.Render()
}

func printClmLots(w io.Writer, lots []pnl.ClmLot, all bool) error {
	table := tablewriter.NewWriter(w)
	table.Header("#", "Bought", "Remaining", "Underlying", "Token0", "Token1", "Entry Value")
	for i, l := range lots {
		if !all && !l.RemainingShares.IsPositive() {
			continue
		}
		if err := table.Append(
			fmt.Sprintf("%d", i+1),
			l.BoughtShares.String(),
			l.RemainingShares.String(),
			l.UnderlyingAmount.Round(8).String(),
			l.Token0Amount.Round(8).String(),
			l.Token1Amount.Round(8).String(),
			pnl.USD(l.EntryUSD()).String(),
		); err != nil {
			return err
		}
	}
	return table.Render()
}
