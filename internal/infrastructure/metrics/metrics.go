package metrics

import (
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "mistralhub"
	subsystem = "relay"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status", "model", "stream"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"method", "endpoint", "status"},
	)

	// Fragments relayed to clients as content frames.
	FragmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "fragments_total",
			Help:      "Content fragments relayed to clients",
		},
		[]string{"model"},
	)

	FirstFragmentDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "first_fragment_seconds",
			Help:      "Time from opening the upstream stream to the first relayed fragment",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"model"},
	)

	UpstreamErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "upstream_errors_total",
			Help:      "Upstream failures by operation and phase",
		},
		[]string{"operation", "phase"},
	)

	StreamOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "stream_outcomes_total",
			Help:      "Relayed streams by how they ended (done, error, client_gone)",
		},
		[]string{"model", "outcome"},
	)

	ActiveStreams = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "active_streams",
			Help:      "Currently active streaming relays",
		},
	)
)

// Stream outcomes.
const (
	OutcomeDone       = "done"
	OutcomeError      = "error"
	OutcomeClientGone = "client_gone"
)

// Upstream failure phases.
const (
	PhasePreStream = "pre_stream"
	PhaseMidStream = "mid_stream"
	PhaseSingle    = "single_shot"
)

// RecordRequest records an HTTP request with all relevant labels
func RecordRequest(method, endpoint, status, model string, stream bool, durationSec float64) {
	if model == "" {
		model = "unknown"
	}
	RequestsTotal.WithLabelValues(method, endpoint, status, model, strconv.FormatBool(stream)).Inc()
	RequestDuration.WithLabelValues(method, endpoint, status).Observe(durationSec)
}

// RecordStream records the summary of one relayed stream.
func RecordStream(model, outcome string, fragments int, firstFragmentSec float64) {
	model = labelOrUnknown(model)
	FragmentsTotal.WithLabelValues(model).Add(float64(fragments))
	if fragments > 0 {
		FirstFragmentDuration.WithLabelValues(model).Observe(firstFragmentSec)
	}
	StreamOutcomesTotal.WithLabelValues(model, outcome).Inc()
}

// RecordUpstreamError counts an upstream failure.
func RecordUpstreamError(operation, phase string) {
	UpstreamErrorsTotal.WithLabelValues(labelOrUnknown(operation), phase).Inc()
}

func labelOrUnknown(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "unknown"
	}
	return v
}
