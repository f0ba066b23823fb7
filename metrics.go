package account

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsSink counts activity events in prometheus
type MetricsSink struct {
	events *prometheus.CounterVec
}

var _ ActivitySink = (*MetricsSink)(nil)

// NewMetricsSink registers the event counter with the given registerer.
// A nil registerer uses the default one.
func NewMetricsSink(reg prometheus.Registerer) *MetricsSink {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	events := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "customer_account_events_total",
			Help: "Total number of customer account events",
		},
		[]string{"event"},
	)
	reg.MustRegister(events)

	return &MetricsSink{events: events}
}

// Record implements ActivitySink.
func (m *MetricsSink) Record(_ context.Context, event ActivityEvent) error {
	m.events.WithLabelValues(string(event.EventType)).Inc()
	return nil
}

// Counter exposes the underlying vector
func (m *MetricsSink) Counter() *prometheus.CounterVec {
	return m.events
}
