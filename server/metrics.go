package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "vpnl_http_requests_total", Help: "HTTP requests by route and status code"},
		[]string{"route", "code"},
	)
	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "vpnl_http_request_duration_seconds", Help: "HTTP request latency", Buckets: prometheus.DefBuckets},
		[]string{"route"},
	)
	eventsAppended = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "vpnl_events_appended_total", Help: "Timeline events stored through the API"},
	)
	ledgerErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "vpnl_ledger_errors_total", Help: "Timelines that could not be replayed"},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal, requestDuration, eventsAppended, ledgerErrors)
}
