package pnl

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// MarshalJSON writes the event with a canonical field order, omitting zero
// quantities.
func (e Event) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("command", e.Command)
	w.Append("time", e.Time)
	w.Optional("id", e.ID)
	w.Optional("memo", e.Memo)
	w.Decimal("shares", e.Shares)
	w.Decimal("price", e.Price)
	w.Decimal("exchangeRate", e.ExchangeRate)
	w.Decimal("underlyingToUsd", e.UnderlyingToUsd)
	w.Decimal("token0ToUsd", e.Token0ToUsd)
	w.Decimal("token1ToUsd", e.Token1ToUsd)
	w.Decimal("underlyingAmount", e.UnderlyingAmount)
	w.Decimal("token0Amount", e.Token0Amount)
	w.Decimal("token1Amount", e.Token1Amount)
	if len(e.Claims) > 0 {
		w.Append("claims", e.Claims)
	}
	return w.MarshalJSON()
}

// DecodeEvent decodes a single JSON event. Unknown fields are rejected.
func DecodeEvent(data []byte) (Event, error) {
	var e Event
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&e); err != nil {
		return Event{}, err
	}
	return e, e.Validate()
}

// DecodeTimeline reads a JSONL stream, one event per line, and returns the
// sorted timeline. Empty lines are skipped.
func DecodeTimeline(r io.Reader) (*Timeline, error) {
	var events []Event
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		lineBytes := bytes.TrimSpace(scanner.Bytes())
		if len(lineBytes) == 0 {
			continue
		}
		e, err := DecodeEvent(lineBytes)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		events = append(events, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading timeline: %w", err)
	}
	return NewTimeline(events...)
}

// EncodeTimeline writes the timeline as JSONL, one event per line.
func EncodeTimeline(w io.Writer, t *Timeline) error {
	for e := range t.Events() {
		b, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encoding event %s: %w", e.ID, err)
		}
		b = append(b, '\n')
		if _, err := w.Write(b); err != nil {
			return err
		}
	}
	return nil
}
