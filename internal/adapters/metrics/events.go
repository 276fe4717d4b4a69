package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rclctl"

// EventMetrics counts WebSocket channel activity. It satisfies the channel's
// Observer interface.
type EventMetrics struct {
	registry   *prometheus.Registry
	events     *prometheus.CounterVec
	dropped    prometheus.Counter
	reconnects prometheus.Counter
	connected  prometheus.Gauge
}

func NewEventMetrics() *EventMetrics {
	m := &EventMetrics{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ws",
			Name:      "events_total",
			Help:      "WebSocket events received, by type.",
		}, []string{"type"}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ws",
			Name:      "dropped_total",
			Help:      "WebSocket messages dropped because they could not be decoded.",
		}),
		reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ws",
			Name:      "reconnects_total",
			Help:      "Reconnects scheduled after the socket closed or failed to dial.",
		}),
		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ws",
			Name:      "connected",
			Help:      "1 while the socket is open.",
		}),
	}
	m.registry.MustRegister(m.events, m.dropped, m.reconnects, m.connected)
	return m
}

func (m *EventMetrics) Connected() {
	m.connected.Set(1)
}

func (m *EventMetrics) Reconnecting() {
	m.connected.Set(0)
	m.reconnects.Inc()
}

func (m *EventMetrics) Received(eventType string) {
	m.events.WithLabelValues(eventType).Inc()
}

func (m *EventMetrics) Dropped() {
	m.dropped.Inc()
}

func (m *EventMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *EventMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
