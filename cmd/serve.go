package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/etnz/pnl/server"
	"github.com/google/subcommands"
)

type serveCmd struct {
	listen string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serves the stored positions over HTTP" }
func (*serveCmd) Usage() string {
	return `vpnl serve [-listen <addr>]

  Starts the HTTP API and the HTML reports over the store. Stops gracefully
  on SIGINT or SIGTERM.

`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.listen, "listen", "", "Address to listen on, overrides the configuration")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	quote, err := quoteSource(cfg.Quotes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading quotes: %v\n", err)
		return subcommands.ExitFailure
	}
	st, err := openStore(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	defer st.Close()

	addr := cfg.Server.Listen
	if c.listen != "" {
		addr = c.listen
	}
	srv := server.New(st, server.Options{
		RateLimit: cfg.Server.RateLimit,
		Burst:     cfg.Server.Burst,
		Quote:     quote,
	})
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		fmt.Fprintf(os.Stderr, "Error serving: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
