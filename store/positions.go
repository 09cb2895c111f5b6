package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/etnz/pnl"
	"golang.org/x/sync/errgroup"
)

// Position is the summary of one stored single-asset position. Err is set,
// and Summary left empty, when the position could not be valued: an
// inconsistent timeline, a missing quote, or ErrClmPosition.
type Position struct {
	Key     Key
	Summary pnl.Summary
	Err     error
}

// ErrClmPosition reports a concentrated-liquidity position, which a
// single-asset quote cannot value.
var ErrClmPosition = errors.New("concentrated-liquidity position")

// QuoteFunc returns the current quote of a position.
type QuoteFunc func(Key) (pnl.Quote, error)

// Positions rebuilds and values every stored position, at most limit at a
// time (no limit if limit <= 0). Each ledger is built and read by a single
// goroutine. Positions come back in Keys order.
//
// Only database errors abort the scan; per position errors are reported in
// Position.Err.
func (s *Store) Positions(ctx context.Context, quote QuoteFunc, limit int) ([]Position, error) {
	keys, err := s.Keys(ctx)
	if err != nil {
		return nil, err
	}

	positions := make([]Position, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, key := range keys {
		g.Go(func() error {
			tl, err := s.Timeline(gctx, key)
			if err != nil {
				return err
			}
			positions[i] = value(key, tl, quote)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("store.Positions: %w", err)
	}

	failed := 0
	for _, p := range positions {
		if p.Err != nil {
			failed++
			s.log.Warn().Err(p.Err).Stringer("position", p.Key).Msg("position not valued")
		}
	}
	s.log.Debug().Int("positions", len(positions)).Int("failed", failed).Msg("positions valued")
	return positions, nil
}

func value(key Key, tl *pnl.Timeline, quote QuoteFunc) Position {
	if tl.Clm() {
		return Position{Key: key, Err: ErrClmPosition}
	}
	l, err := tl.Ledger()
	if err != nil {
		return Position{Key: key, Err: err}
	}
	q, err := quote(key)
	if err != nil {
		return Position{Key: key, Err: fmt.Errorf("quote: %w", err)}
	}
	return Position{Key: key, Summary: pnl.NewSummary(l, q)}
}
