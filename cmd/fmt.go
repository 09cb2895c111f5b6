package cmd

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/pnl"
	"github.com/etnz/pnl/logger"
	"github.com/google/subcommands"
)

type fmtCmd struct {
	output string
}

func (*fmtCmd) Name() string     { return "fmt" }
func (*fmtCmd) Synopsis() string { return "rewrites the timeline file in canonical form" }
func (*fmtCmd) Usage() string {
	return `vpnl fmt [-o <file>]

  Validates the timeline file, sorts its events by time, assigns an id to
  events without one, and writes it back with a canonical field order.

`
}

func (c *fmtCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Write to this file instead of rewriting the timeline file")
}

func (c *fmtCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := formatTimeline(*timelineFile, c.output); err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting timeline: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// formatTimeline rewrites the timeline at src canonically into dst, or into
// src itself if dst is empty. Nothing is written if src is invalid.
func formatTimeline(src, dst string) error {
	in, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	tl, err := pnl.DecodeTimeline(bytes.NewReader(in))
	if err != nil {
		return err
	}
	var out bytes.Buffer
	if err := pnl.EncodeTimeline(&out, tl); err != nil {
		return err
	}
	if dst == "" {
		dst = src
	}
	if err := os.WriteFile(dst, out.Bytes(), 0o644); err != nil {
		return err
	}
	log := logger.For("fmt")
	log.Info().Str("file", dst).Int("events", tl.Len()).Msg("timeline formatted")
	return nil
}
