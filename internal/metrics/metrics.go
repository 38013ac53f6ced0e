package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// ReconcileOutcomesTotal counts payment events by source (webhook, verify) and outcome.
	ReconcileOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_reconcile_outcomes_total",
			Help: "Payment events processed, by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	ProviderRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payment_provider_request_duration_seconds",
			Help:    "Latency of calls to the payment provider",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op", "result"},
	)
)

// Register adds all collectors to reg. Passing prometheus.DefaultRegisterer exposes them on /metrics.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(HTTPRequestsTotal)
	reg.MustRegister(HTTPRequestDuration)
	reg.MustRegister(ReconcileOutcomesTotal)
	reg.MustRegister(ProviderRequestDuration)
}

// RegisterRoutes serves the exposition of g on GET /metrics.
func RegisterRoutes(r gin.IRouter, g prometheus.Gatherer) {
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(g, promhttp.HandlerOpts{})))
}
