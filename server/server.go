// Package server exposes stored vault positions over HTTP.
//
// Every request rebuilds the ledgers it needs from the stored timeline; no
// ledger outlives a request.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/etnz/pnl/logger"
	"github.com/etnz/pnl/store"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Options configures a Server.
type Options struct {
	RateLimit float64 // requests per second, unlimited if zero
	Burst     int

	// Quote values positions when a request carries no quote. Optional.
	Quote store.QuoteFunc
}

// Server handles the HTTP API.
type Server struct {
	router  *mux.Router
	store   *store.Store
	limiter *rate.Limiter
	quote   store.QuoteFunc
	log     zerolog.Logger
}

// New returns a server reading and writing st.
func New(st *store.Store, opts Options) *Server {
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}

	s := &Server{
		router:  mux.NewRouter(),
		store:   st,
		limiter: rate.NewLimiter(limit, burst),
		quote:   opts.Quote,
		log:     logger.For("server"),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	s.router.HandleFunc("/positions", s.handlePositionsPage).Methods("GET")
	s.router.HandleFunc("/pnl/{wallet}/{vault}", s.handlePnlPage).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/positions", s.handlePositions).Methods("GET")
	api.HandleFunc("/pnl/{wallet}/{vault}", s.handlePnl).Methods("GET")
	api.HandleFunc("/clm/{wallet}/{vault}", s.handleClm).Methods("GET")
	api.HandleFunc("/timeline/{wallet}/{vault}", s.handleTimeline).Methods("GET")
	api.HandleFunc("/events/{wallet}/{vault}", s.handleAppend).Methods("POST")

	s.router.Use(s.instrument)
	s.router.Use(s.throttle)
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("Starting web server")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("Shutting down web server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
