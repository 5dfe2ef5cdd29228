package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Housekeeping pass metrics

	PassDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "ticketing",
		Name:      "housekeeping_pass_duration_seconds",
		Help:      "Time taken for one housekeeping pass.",
		Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
	})

	PassesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ticketing",
		Name:      "housekeeping_passes_total",
		Help:      "Total housekeeping passes, by outcome.",
	}, []string{"outcome"})

	PassSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ticketing",
		Name:      "housekeeping_passes_skipped_total",
		Help:      "Passes skipped because another pass was still running.",
	})

	LastPassStartTime = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ticketing",
		Name:      "housekeeping_last_pass_start_seconds",
		Help:      "Unix timestamp when the most recent pass started.",
	})

	// Outcome counters

	ReopenedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ticketing",
		Name:      "tickets_reopened_total",
		Help:      "Tickets reopened because their pending hold elapsed.",
	})

	EscalationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ticketing",
		Name:      "sla_escalations_total",
		Help:      "SLA escalations fired, by level.",
	}, []string{"level"})

	TasksFiredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ticketing",
		Name:      "scheduled_tasks_fired_total",
		Help:      "Scheduled task definitions materialized.",
	})

	ItemErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ticketing",
		Name:      "housekeeping_item_errors_total",
		Help:      "Per-item failures during a pass, by step.",
	}, []string{"step"})

	// Ops HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ticketing",
		Name:      "http_request_duration_seconds",
		Help:      "Ops HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ticketing",
		Name:      "http_requests_total",
		Help:      "Total ops HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		PassDuration,
		PassesTotal,
		PassSkippedTotal,
		LastPassStartTime,
		ReopenedTotal,
		EscalationsTotal,
		TasksFiredTotal,
		ItemErrorsTotal,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}

func NewServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{Addr: addr, Handler: mux}
}
