package restrouter

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Dispatch paths and results used as metric labels.
const (
	pathNegotiated = "negotiated"
	pathCustom     = "custom"

	resultServed   = "served"
	resultReported = "reported"
	resultFault    = "fault"
)

// Metrics records dispatcher activity in Prometheus.
type Metrics struct {
	Negotiations    *prometheus.CounterVec
	Dispatches      *prometheus.CounterVec
	HandlerDuration *prometheus.HistogramVec
}

// NewMetrics creates the dispatcher metrics and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Negotiations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "restrouter_negotiations_total",
				Help: "Content negotiations by outcome and resolved media type",
			},
			[]string{"outcome", "media_type"},
		),
		Dispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "restrouter_dispatch_total",
				Help: "Dispatched requests by path and result",
			},
			[]string{"path", "result"},
		),
		HandlerDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "restrouter_handler_duration_seconds",
				Help:    "Route handler duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Negotiations, m.Dispatches, m.HandlerDuration)
	}
	return m
}

func (m *Metrics) negotiated(mediaType string, err error) {
	if m == nil {
		return
	}
	outcome := "resolved"
	var nerr *NegotiationError
	switch {
	case err == nil:
	case errors.As(err, &nerr):
		outcome = nerr.Kind.String()
	default:
		outcome = "internal"
	}
	m.Negotiations.WithLabelValues(outcome, mediaType).Inc()
}

func (m *Metrics) dispatched(path, result string) {
	if m == nil {
		return
	}
	m.Dispatches.WithLabelValues(path, result).Inc()
}

func (m *Metrics) handled(path string, d time.Duration) {
	if m == nil {
		return
	}
	m.HandlerDuration.WithLabelValues(path).Observe(d.Seconds())
}
