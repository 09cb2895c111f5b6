package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/etnz/pnl"
	"github.com/etnz/pnl/renderer"
	"github.com/etnz/pnl/store"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

const (
	maxBodyBytes     = 1 << 20
	valueConcurrency = 8 // positions replayed at once
)

func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, statusCode int, message string) {
	s.writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeLedgerError reports a timeline that cannot be replayed.
func (s *Server) writeLedgerError(w http.ResponseWriter, key store.Key, err error) {
	if errors.Is(err, pnl.ErrOverdraft) {
		ledgerErrors.WithLabelValues("overdraft").Inc()
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	ledgerErrors.WithLabelValues("other").Inc()
	s.log.Error().Err(err).Stringer("position", key).Msg("cannot replay timeline")
	s.writeError(w, http.StatusInternalServerError, err.Error())
}

// paramError is a malformed request parameter.
type paramError struct{ name, reason string }

func (e *paramError) Error() string { return fmt.Sprintf("parameter %q: %s", e.name, e.reason) }

// decimalParam reads a non-negative decimal query parameter. A missing
// optional one is zero.
func decimalParam(q url.Values, name string, required bool) (decimal.Decimal, error) {
	v := q.Get(name)
	if v == "" {
		if required {
			return decimal.Zero, &paramError{name, "required"}
		}
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, &paramError{name, "not a number"}
	}
	if d.IsNegative() {
		return decimal.Zero, &paramError{name, "cannot be negative"}
	}
	return d, nil
}

// position reads the key from the route and loads its timeline. It writes the
// error response and returns false when there is nothing to work on.
func (s *Server) position(w http.ResponseWriter, r *http.Request) (store.Key, *pnl.Timeline, bool) {
	vars := mux.Vars(r)
	key, err := store.NewKey(vars["wallet"], vars["vault"])
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return store.Key{}, nil, false
	}
	tl, err := s.store.Timeline(r.Context(), key)
	if err != nil {
		s.log.Error().Err(err).Stringer("position", key).Msg("cannot load timeline")
		s.writeError(w, http.StatusInternalServerError, "cannot load timeline")
		return key, nil, false
	}
	if tl.Len() == 0 {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("no events for %s", key))
		return key, nil, false
	}
	return key, tl, true
}

// singleQuote reads the quote from the query, or from the configured source
// when the query has none.
func (s *Server) singleQuote(r *http.Request, key store.Key) (pnl.Quote, error) {
	q := r.URL.Query()
	if q.Get("price") == "" && q.Get("rate") == "" && s.quote != nil {
		return s.quote(key)
	}
	price, err := decimalParam(q, "price", true)
	if err != nil {
		return pnl.Quote{}, err
	}
	rate, err := decimalParam(q, "rate", true)
	if err != nil {
		return pnl.Quote{}, err
	}
	return pnl.Quote{Price: price, ExchangeRate: rate}, nil
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) (store.Key, *pnl.Ledger, pnl.Summary, bool) {
	key, tl, ok := s.position(w, r)
	if !ok {
		return key, nil, pnl.Summary{}, false
	}
	q, err := s.singleQuote(r, key)
	if err != nil {
		var perr *paramError
		if errors.As(err, &perr) {
			s.writeError(w, http.StatusBadRequest, err.Error())
		} else {
			s.writeError(w, http.StatusBadGateway, fmt.Sprintf("no quote for %s: %v", key, err))
		}
		return key, nil, pnl.Summary{}, false
	}
	l, err := tl.Ledger()
	if err != nil {
		s.writeLedgerError(w, key, err)
		return key, nil, pnl.Summary{}, false
	}
	return key, l, pnl.NewSummary(l, q), true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// positionJSON is a valued position of /api/positions.
type positionJSON struct {
	store.Key
	Summary *pnl.Summary `json:"summary,omitempty"`
	Error   string       `json:"error,omitempty"`
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	if s.quote == nil {
		keys, err := s.store.Keys(r.Context())
		if err != nil {
			s.log.Error().Err(err).Msg("cannot list positions")
			s.writeError(w, http.StatusInternalServerError, "cannot list positions")
			return
		}
		if keys == nil {
			keys = []store.Key{}
		}
		s.writeJSON(w, http.StatusOK, keys)
		return
	}

	positions, err := s.store.Positions(r.Context(), s.quote, valueConcurrency)
	if err != nil {
		s.log.Error().Err(err).Msg("cannot value positions")
		s.writeError(w, http.StatusInternalServerError, "cannot value positions")
		return
	}
	out := make([]positionJSON, 0, len(positions))
	for _, p := range positions {
		pj := positionJSON{Key: p.Key}
		if p.Err != nil {
			pj.Error = p.Err.Error()
		} else {
			pj.Summary = &p.Summary
		}
		out = append(out, pj)
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePnl(w http.ResponseWriter, r *http.Request) {
	if _, _, sum, ok := s.summary(w, r); ok {
		s.writeJSON(w, http.StatusOK, sum)
	}
}

func (s *Server) handleClm(w http.ResponseWriter, r *http.Request) {
	key, tl, ok := s.position(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	var q pnl.ClmQuote
	for _, p := range []struct {
		name     string
		required bool
		dst      *decimal.Decimal
	}{
		{"token0", true, &q.Token0ToUsd},
		{"token1", true, &q.Token1ToUsd},
		{"t0ps", true, &q.Token0PerShare},
		{"t1ps", true, &q.Token1PerShare},
		{"underlying", false, &q.UnderlyingToUsd},
		{"ups", false, &q.UnderlyingPerShare},
	} {
		d, err := decimalParam(query, p.name, p.required)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		*p.dst = d
	}

	l, err := tl.ClmLedger()
	if err != nil {
		s.writeLedgerError(w, key, err)
		return
	}
	s.writeJSON(w, http.StatusOK, pnl.NewClmSummary(l, q))
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	_, tl, ok := s.position(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/x-ndjson")
	if err := pnl.EncodeTimeline(w, tl); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode timeline")
	}
}

func (s *Server) handleAppend(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	key, err := store.NewKey(vars["wallet"], vars["vault"])
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tl, err := pnl.DecodeTimeline(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var events []pnl.Event
	for e := range tl.Events() {
		events = append(events, e)
	}

	added, err := s.store.Append(r.Context(), key, events...)
	if err != nil {
		s.log.Error().Err(err).Stringer("position", key).Msg("cannot append events")
		s.writeError(w, http.StatusInternalServerError, "cannot store events")
		return
	}
	eventsAppended.Add(float64(added))
	s.writeJSON(w, http.StatusOK, map[string]int{"received": len(events), "added": added})
}

func (s *Server) writePage(w http.ResponseWriter, title, md string) {
	page, err := renderer.Page(title, md)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, page)
}

func (s *Server) handlePnlPage(w http.ResponseWriter, r *http.Request) {
	key, l, sum, ok := s.summary(w, r)
	if !ok {
		return
	}
	md := renderer.SummaryMarkdown(key.String(), sum) + "\n## Lots\n\n" + renderer.LotsMarkdown(l.Lots())
	s.writePage(w, key.String(), md)
}

func (s *Server) handlePositionsPage(w http.ResponseWriter, r *http.Request) {
	if s.quote == nil {
		s.writeError(w, http.StatusNotFound, "no quote source configured")
		return
	}
	positions, err := s.store.Positions(r.Context(), s.quote, valueConcurrency)
	if err != nil {
		s.log.Error().Err(err).Msg("cannot value positions")
		s.writeError(w, http.StatusInternalServerError, "cannot value positions")
		return
	}
	s.writePage(w, "Positions", renderer.PositionsMarkdown(positions))
}
