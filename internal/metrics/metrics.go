package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Event outcomes
const (
	OutcomeApplied  = "applied"  // state changed
	OutcomeNoop     = "noop"     // nothing to do (duplicate, missing row, ignored leg)
	OutcomeRejected = "rejected" // refused by the safety gate
	OutcomeAborted  = "aborted"  // store or transport failure, event skipped
	OutcomeFatal    = "fatal"    // ingestion stopped
)

// Publication outcomes
const (
	PublicationSucceeded = "succeeded"
	PublicationFailed    = "failed"
	PublicationSkipped   = "skipped"
)

var (
	// eventsTotal counts handled contract events by type and outcome
	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "teleport_events_total",
		Help: "Total contract events handled by type and outcome",
	}, []string{"type", "outcome"})

	// eventDuration tracks per event handling latency, side effects included
	eventDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "teleport_event_handling_duration_seconds",
		Help:    "Contract event handling duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
	}, []string{"type"})

	// publicationsTotal counts social publications by outcome
	publicationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "teleport_publications_total",
		Help: "Total social publications by outcome",
	}, []string{"outcome"})

	// lastBlock is the block of the last handled log
	lastBlock = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "teleport_last_handled_block",
		Help: "Block number of the last handled contract log",
	})
)

// ObserveEvent records the outcome and duration of a handled event
func ObserveEvent(eventType string, outcome string, duration time.Duration) {
	eventsTotal.WithLabelValues(eventType, outcome).Inc()
	eventDuration.WithLabelValues(eventType).Observe(duration.Seconds())
}

// ObservePublication records a publication outcome
func ObservePublication(outcome string) {
	publicationsTotal.WithLabelValues(outcome).Inc()
}

// SetLastBlock records the block of the last handled log
func SetLastBlock(block uint64) {
	lastBlock.Set(float64(block))
}

// Handler returns the HTTP handler exposing the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
