// Package metrics exposes engine counters over prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TicksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ticks_total", Help: "Polling ticks executed"},
		[]string{"instrument"},
	)
	StaleTicksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "stale_ticks_total", Help: "Observations dropped as duplicate or out of order"},
		[]string{"instrument"},
	)
	DataErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "data_errors_total", Help: "Provider fetch failures"},
		[]string{"instrument"},
	)
	CandidatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "candidates_total", Help: "Scored candidates produced"},
		[]string{"instrument", "direction"},
	)
	SignalsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signals_created_total", Help: "Signals that cleared the quality gates"},
		[]string{"instrument", "direction"},
	)
	SignalsRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signals_rejected_total", Help: "Candidates rejected by a quality gate"},
		[]string{"instrument", "reason"},
	)
	SignalsClosedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signals_closed_total", Help: "Signals closed by terminal status"},
		[]string{"instrument", "status"},
	)
	PersistRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "persist_retries_total", Help: "Retried persistence writes"},
	)
	NotifyFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "notify_failures_total", Help: "Failed notification deliveries"},
		[]string{"publisher"},
	)
)

func init() {
	prometheus.MustRegister(
		TicksTotal, StaleTicksTotal, DataErrorsTotal,
		CandidatesTotal, SignalsCreatedTotal, SignalsRejectedTotal, SignalsClosedTotal,
		PersistRetriesTotal, NotifyFailuresTotal,
	)
}

// Serve starts the /metrics endpoint in the background.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
