// Package cmd implements the vpnl command line application.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/pnl"
	"github.com/etnz/pnl/config"
	"github.com/etnz/pnl/logger"
	"github.com/etnz/pnl/store"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&reportCmd{}, "reports")
	c.Register(&clmCmd{}, "reports")
	c.Register(&lotsCmd{}, "reports")
	c.Register(&positionsCmd{}, "reports")

	c.Register(&fmtCmd{}, "timeline")
	c.Register(&importCmd{}, "timeline")

	c.Register(&serveCmd{}, "server")

	c.Register(&topicCmd{}, "documentation")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "vpnl.yaml", "Path to the configuration file")
var timelineFile = flag.String("timeline", "timeline.jsonl", "Path to the timeline file (JSONL format)")
var rawOutput = flag.Bool("raw", false, "Print plain markdown instead of rendering it for the terminal")

var cfg = &config.Config{}

// Setup loads the configuration and initializes logging. It must be called
// after flag.Parse.
func Setup() error {
	c, err := config.Load(*configFile)
	if err != nil {
		return err
	}
	cfg = c
	logger.Initialize(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	return nil
}

// printMarkdown renders md for the terminal, or prints it as is with -raw.
func printMarkdown(md string) {
	if *rawOutput {
		fmt.Print(md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

// openStore opens the configured store.
func openStore(ctx context.Context) (*store.Store, error) {
	return store.Open(ctx, cfg.Store.Driver, cfg.Store.DSN)
}

// DecodeTimeline reads the timeline file.
func DecodeTimeline() (*pnl.Timeline, error) {
	f, err := os.Open(*timelineFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return pnl.DecodeTimeline(f)
}

// positionFlags selects a stored position instead of the timeline file.
type positionFlags struct {
	wallet string
	vault  string
}

func (p *positionFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.wallet, "wallet", "", "Wallet address of a stored position. Reads the timeline file if empty.")
	f.StringVar(&p.vault, "vault", "", "Vault of a stored position")
}

// title names the position being reported.
func (p *positionFlags) title() string {
	if p.wallet == "" && p.vault == "" {
		return *timelineFile
	}
	return p.wallet + "/" + p.vault
}

// timeline loads the selected timeline, from the store or the timeline file.
func (p *positionFlags) timeline(ctx context.Context) (*pnl.Timeline, error) {
	if p.wallet == "" && p.vault == "" {
		tl, err := DecodeTimeline()
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("timeline file %q does not exist, use -timeline or -wallet and -vault", *timelineFile)
		}
		return tl, err
	}

	key, err := store.NewKey(p.wallet, p.vault)
	if err != nil {
		return nil, err
	}
	st, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	tl, err := st.Timeline(ctx, key)
	if err != nil {
		return nil, err
	}
	if tl.Len() == 0 {
		return nil, fmt.Errorf("no events stored for %s", key)
	}
	return tl, nil
}
