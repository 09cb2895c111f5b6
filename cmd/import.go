package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"slices"

	"github.com/etnz/pnl/store"
	"github.com/google/subcommands"
)

type importCmd struct {
	wallet string
	vault  string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "imports the timeline file into the store" }
func (*importCmd) Usage() string {
	return `vpnl import -wallet <address> -vault <vault>

  Appends the events of the timeline file to the stored position. Events
  already stored, identified by their id, are skipped, so importing the same
  file twice is harmless.

`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.wallet, "wallet", "", "Wallet address of the position")
	f.StringVar(&c.vault, "vault", "", "Vault of the position")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	key, err := store.NewKey(c.wallet, c.vault)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	tl, err := DecodeTimeline()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading timeline: %v\n", err)
		return subcommands.ExitFailure
	}

	st, err := openStore(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	defer st.Close()

	added, err := st.Append(ctx, key, slices.Collect(tl.Events())...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing timeline: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("%d events imported into %s, %d already stored\n", added, key, tl.Len()-added)
	return subcommands.ExitSuccess
}
