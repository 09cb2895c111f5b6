package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/pnl"
	"github.com/etnz/pnl/renderer"
	"github.com/etnz/pnl/store"
	"github.com/google/subcommands"
)

type positionsCmd struct {
	quoteFlags
	parallel int
}

func (*positionsCmd) Name() string     { return "positions" }
func (*positionsCmd) Synopsis() string { return "PnL of every stored position" }
func (*positionsCmd) Usage() string {
	return `vpnl positions [-price <usd> -rate <rate> | -quote-file <file>] [-parallel <n>]

  Values every stored position. Quotes are read from the quote file of the
  configuration, unless -price and -rate, or -quote-file, are given.

`
}

func (c *positionsCmd) SetFlags(f *flag.FlagSet) {
	c.quoteFlags.SetFlags(f)
	f.IntVar(&c.parallel, "parallel", 4, "Number of positions replayed concurrently")
}

func (c *positionsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	quote, err := c.source()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading quotes: %v\n", err)
		return subcommands.ExitUsageError
	}

	st, err := openStore(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	defer st.Close()

	positions, err := st.Positions(ctx, quote, c.parallel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing positions: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.PositionsMarkdown(positions))
	return subcommands.ExitSuccess
}

// source picks the quote of every position: the command line flags when
// given, the configured quote document otherwise.
func (c *positionsCmd) source() (store.QuoteFunc, error) {
	if c.file == "" && !c.price.set && !c.rate.set {
		quote, err := quoteSource(cfg.Quotes)
		if err != nil {
			return nil, err
		}
		if quote == nil {
			return nil, fmt.Errorf("no quote file configured, use -price and -rate or -quote-file")
		}
		return quote, nil
	}
	if c.file == "" {
		q, err := c.quote("")
		if err != nil {
			return nil, err
		}
		return func(store.Key) (pnl.Quote, error) { return q, nil }, nil
	}
	return func(k store.Key) (pnl.Quote, error) { return c.quote(k.Vault) }, nil
}
