// Package metrics holds the Prometheus collectors for a showup run.
//
// A CLI invocation is short-lived, so nothing is scraped: when a metrics file
// is configured the registry is dumped in text exposition format on exit, for
// a node_exporter textfile collector to pick up.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Validation outcome labels. Callers only ever see valid/invalid; the reason
// is kept here for operators.
const (
	ResultOK        = "ok"
	ResultRejected  = "rejected"
	ResultTransport = "transport"
	ResultMalformed = "malformed"
	ResultPreflight = "preflight"
)

// Recorder owns a private registry and the collectors registered on it.
type Recorder struct {
	registry *prometheus.Registry

	Validations *prometheus.CounterVec
	Requests    *prometheus.CounterVec
	Transitions *prometheus.CounterVec
}

// New creates a Recorder with all collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		Validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "showup",
			Name:      "validation_total",
			Help:      "Credential validation attempts by outcome.",
		}, []string{"result"}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "showup",
			Name:      "api_requests_total",
			Help:      "Backend API requests by method and status code.",
		}, []string{"method", "code"}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "showup",
			Name:      "wizard_transitions_total",
			Help:      "Onboarding wizard step transitions.",
		}, []string{"from", "to"}),
	}
	r.registry.MustRegister(r.Validations, r.Requests, r.Transitions)
	return r
}

// ObserveValidation counts one validation outcome. Safe on a nil Recorder.
func (r *Recorder) ObserveValidation(result string) {
	if r == nil {
		return
	}
	r.Validations.WithLabelValues(result).Inc()
}

// ObserveRequest counts one API response. code is 0 for transport failures.
func (r *Recorder) ObserveRequest(method string, code int) {
	if r == nil {
		return
	}
	label := "error"
	if code > 0 {
		label = fmt.Sprintf("%d", code)
	}
	r.Requests.WithLabelValues(method, label).Inc()
}

// ObserveTransition counts one wizard transition.
func (r *Recorder) ObserveTransition(from, to string) {
	if r == nil {
		return
	}
	r.Transitions.WithLabelValues(from, to).Inc()
}

// Gatherer exposes the registry, mainly for tests.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteFile dumps all metrics to path atomically. An empty path is a no-op.
func (r *Recorder) WriteFile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}
