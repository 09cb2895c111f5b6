package pnl

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CommandType identifies the kind of a timeline event.
type CommandType string

const (
	CmdDeposit  CommandType = "deposit"
	CmdWithdraw CommandType = "withdraw"
	CmdClaim    CommandType = "claim" // reward claim without share movement
)

// Event is one entry in the history of a vault position.
//
// Quantities are magnitudes, the direction comes from Command. Single-asset
// vaults use Price and ExchangeRate; concentrated-liquidity vaults use the
// token fields and Claims. Unused fields are left zero.
type Event struct {
	Command CommandType `json:"command"`
	Time    time.Time   `json:"time"`
	ID      string      `json:"id,omitempty"`
	Memo    string      `json:"memo,omitempty"`

	Shares       decimal.Decimal `json:"shares"`
	Price        decimal.Decimal `json:"price"`
	ExchangeRate decimal.Decimal `json:"exchangeRate"`

	UnderlyingToUsd  decimal.Decimal `json:"underlyingToUsd"`
	Token0ToUsd      decimal.Decimal `json:"token0ToUsd"`
	Token1ToUsd      decimal.Decimal `json:"token1ToUsd"`
	UnderlyingAmount decimal.Decimal `json:"underlyingAmount"`
	Token0Amount     decimal.Decimal `json:"token0Amount"`
	Token1Amount     decimal.Decimal `json:"token1Amount"`
	Claims           []Claim         `json:"claims,omitempty"`
}

// Validate checks the event is well formed.
func (e Event) Validate() error {
	if e.Time.IsZero() {
		return errors.New("time is missing")
	}
	switch e.Command {
	case CmdDeposit, CmdWithdraw:
		if !e.Shares.IsPositive() {
			return fmt.Errorf("%s of %s shares: shares must be positive", e.Command, e.Shares)
		}
	case CmdClaim:
		if !e.Shares.IsZero() {
			return errors.New("claim cannot move shares")
		}
		if len(e.Claims) == 0 {
			return errors.New("claim without claims")
		}
	case "":
		return errors.New("command is missing")
	default:
		return fmt.Errorf("unknown command %q", e.Command)
	}

	for name, d := range map[string]decimal.Decimal{
		"price":            e.Price,
		"exchangeRate":     e.ExchangeRate,
		"underlyingToUsd":  e.UnderlyingToUsd,
		"token0ToUsd":      e.Token0ToUsd,
		"token1ToUsd":      e.Token1ToUsd,
		"underlyingAmount": e.UnderlyingAmount,
		"token0Amount":     e.Token0Amount,
		"token1Amount":     e.Token1Amount,
	} {
		if d.IsNegative() {
			return fmt.Errorf("%s cannot be negative: %s", name, d)
		}
	}
	for _, c := range e.Claims {
		if c.Address == "" {
			return errors.New("claim without reward token address")
		}
		if c.ClaimedAmount.IsNegative() || c.RewardToUsd.IsNegative() {
			return fmt.Errorf("claim of %s cannot be negative", c.Address)
		}
	}
	return nil
}

// shares returns the signed share delta.
func (e Event) shares() decimal.Decimal {
	if e.Command == CmdWithdraw {
		return e.Shares.Neg()
	}
	if e.Command == CmdDeposit {
		return e.Shares
	}
	return decimal.Zero
}

// Transaction returns the single-asset transaction of the event.
func (e Event) Transaction() Transaction {
	return Transaction{Shares: e.shares(), Price: e.Price, ExchangeRate: e.ExchangeRate}
}

// ClmTransaction returns the concentrated-liquidity transaction of the event.
func (e Event) ClmTransaction() ClmTransaction {
	return ClmTransaction{
		Shares:           e.shares(),
		UnderlyingToUsd:  e.UnderlyingToUsd,
		Token0ToUsd:      e.Token0ToUsd,
		Token1ToUsd:      e.Token1ToUsd,
		UnderlyingAmount: e.UnderlyingAmount,
		Token0Amount:     e.Token0Amount,
		Token1Amount:     e.Token1Amount,
		Claims:           e.Claims,
	}
}

// Timeline is the chronological history of one vault position.
type Timeline struct {
	events []Event        // sorted by time, stable
	seen   map[string]int // occurrences of each id-less event content
}

// eventNamespace derives the ids of events appended without one.
var eventNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/etnz/pnl/event"))

// contentID returns an id derived from the content of e, so that the same
// event decoded twice gets the same id. The n-th repetition of an identical
// event in a timeline gets a distinct id.
func (t *Timeline) contentID(e Event) (string, error) {
	e.Time = e.Time.UTC()
	b, err := e.MarshalJSON()
	if err != nil {
		return "", err
	}
	key := string(b)
	if t.seen == nil {
		t.seen = make(map[string]int)
	}
	n := t.seen[key]
	t.seen[key] = n + 1
	return uuid.NewSHA1(eventNamespace, fmt.Appendf(b, "#%d", n)).String(), nil
}

// NewTimeline returns a timeline of the given events.
func NewTimeline(events ...Event) (*Timeline, error) {
	t := &Timeline{}
	if err := t.Append(events...); err != nil {
		return nil, err
	}
	return t, nil
}

// Append validates and adds events, keeping the timeline sorted by time.
// Events at the same time keep their insertion order. Events without an ID
// get one derived from their content. Nothing is added if any event is invalid.
func (t *Timeline) Append(events ...Event) error {
	for i, e := range events {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("invalid event #%d %s: %w", i+1, e.ID, err)
		}
	}
	added := slices.Clone(events)
	for i, e := range added {
		if e.ID != "" {
			continue
		}
		id, err := t.contentID(e)
		if err != nil {
			return fmt.Errorf("event at %s: %w", e.Time, err)
		}
		added[i].ID = id
	}
	t.events = append(t.events, added...)
	slices.SortStableFunc(t.events, func(a, b Event) int { return a.Time.Compare(b.Time) })
	return nil
}

// Clm reports whether the timeline is the history of a concentrated-liquidity
// position: some event carries pool token amounts or reward claims.
func (t *Timeline) Clm() bool {
	for _, e := range t.events {
		if len(e.Claims) > 0 || !e.Token0Amount.IsZero() || !e.Token1Amount.IsZero() ||
			!e.UnderlyingAmount.IsZero() || !e.Token0ToUsd.IsZero() || !e.Token1ToUsd.IsZero() ||
			!e.UnderlyingToUsd.IsZero() {
			return true
		}
	}
	return false
}

// Len returns the number of events.
func (t *Timeline) Len() int { return len(t.events) }

// Events iterates over the events in chronological order.
func (t *Timeline) Events() iter.Seq[Event] { return slices.Values(t.events) }

// Ledger replays the timeline into a single-asset ledger.
func (t *Timeline) Ledger() (*Ledger, error) {
	l := NewLedger()
	for _, e := range t.events {
		if err := l.AddTransaction(e.Transaction()); err != nil {
			return nil, fmt.Errorf("%s %s at %s: %w", e.Command, e.ID, e.Time.Format(time.RFC3339), err)
		}
	}
	return l, nil
}

// ClmLedger replays the timeline into a concentrated-liquidity ledger.
func (t *Timeline) ClmLedger() (*ClmLedger, error) {
	l := NewClmLedger()
	for _, e := range t.events {
		if err := l.AddTransaction(e.ClmTransaction()); err != nil {
			return nil, fmt.Errorf("%s %s at %s: %w", e.Command, e.ID, e.Time.Format(time.RFC3339), err)
		}
	}
	return l, nil
}
