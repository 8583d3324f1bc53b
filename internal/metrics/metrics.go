// Package metrics exposes Prometheus collectors for the humanize and billing flows.
package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Humanize outcomes.
const (
	OutcomeOK              = "ok"
	OutcomeDegraded        = "degraded"
	OutcomeInvalid         = "rejected_invalid"
	OutcomeUnauthenticated = "rejected_unauthenticated"
	OutcomePerRequestLimit = "rejected_per_request_limit"
	OutcomeMonthlyLimit    = "rejected_monthly_limit"
	OutcomeUpstreamError   = "upstream_error"
	OutcomeInternalError   = "internal_error"
)

var (
	HumanizeRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "humanizer",
		Name:      "humanize_requests_total",
		Help:      "Humanize requests by outcome.",
	}, []string{"outcome"})

	WordsConsumed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "humanizer",
		Name:      "words_consumed_total",
		Help:      "Words charged against usage periods, by plan tier.",
	}, []string{"tier"})

	UpstreamLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "humanizer",
		Name:      "llm_request_duration_seconds",
		Help:      "Latency of text-generation calls.",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
	})

	BillingEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "humanizer",
		Name:      "billing_events_total",
		Help:      "Payment webhook events by type and result.",
	}, []string{"type", "result"})
)

// Handler serves the default registry in Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
