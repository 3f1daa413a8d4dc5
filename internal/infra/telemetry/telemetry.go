package telemetry

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the domain collectors that sit next to the HTTP request metrics.
type Metrics struct {
	authDecisions *prometheus.CounterVec
	eventFailures *prometheus.CounterVec
}

// NewMetrics registers the casting collectors with reg, reusing collectors that already exist.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	decisions, err := registerCounterVec(reg, prometheus.CounterOpts{
		Namespace: "casting",
		Subsystem: "auth",
		Name:      "decisions_total",
		Help:      "Authorization decisions partitioned by required permission and outcome.",
	}, []string{"permission", "outcome"})
	if err != nil {
		return nil, err
	}

	failures, err := registerCounterVec(reg, prometheus.CounterOpts{
		Namespace: "casting",
		Subsystem: "events",
		Name:      "publish_failures_total",
		Help:      "Change events that could not be handed to the message bus.",
	}, []string{"event_type"})
	if err != nil {
		return nil, err
	}

	return &Metrics{authDecisions: decisions, eventFailures: failures}, nil
}

func registerCounterVec(reg prometheus.Registerer, opts prometheus.CounterOpts, labels []string) (*prometheus.CounterVec, error) {
	vec := prometheus.NewCounterVec(opts, labels)
	if err := reg.Register(vec); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("existing %s collector has unexpected type %T", opts.Name, already.ExistingCollector)
		}
		return nil, fmt.Errorf("register %s collector: %w", opts.Name, err)
	}
	return vec, nil
}

// ObserveAuthorization counts one authorization decision. outcome is "granted" or an error code.
func (m *Metrics) ObserveAuthorization(permission, outcome string) {
	if m == nil {
		return
	}
	m.authDecisions.WithLabelValues(permission, outcome).Inc()
}

// ObservePublishFailure counts one event that failed to publish.
func (m *Metrics) ObservePublishFailure(eventType string) {
	if m == nil {
		return
	}
	m.eventFailures.WithLabelValues(eventType).Inc()
}
