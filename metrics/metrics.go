// Package metrics exposes per-device counters for the Fire protocol layer.
//
// All methods are safe to call on a nil *Metrics, so callers that don't
// care about metrics can pass nil everywhere.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fire"

type Metrics struct {
	decoded      *prometheus.CounterVec
	dropped      *prometheus.CounterVec
	framesSent   *prometheus.CounterVec
	renderErrors *prometheus.CounterVec
	connected    prometheus.Gauge
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		decoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_decoded_total",
			Help:      "Input events decoded and queued, per device.",
		}, []string{"device"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      "Input events dropped because the device queue was full.",
		}, []string{"device"}),
		framesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_sent_total",
			Help:      "LED SysEx frames sent, per device.",
		}, []string{"device"}),
		renderErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_errors_total",
			Help:      "LED frames that failed to send, per device.",
		}, []string{"device"}),
		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "devices_connected",
			Help:      "Controllers currently connected.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.decoded, m.dropped, m.framesSent, m.renderErrors, m.connected)
	}
	return m
}

func (m *Metrics) EventDecoded(device string) {
	if m == nil {
		return
	}
	m.decoded.WithLabelValues(device).Inc()
}

func (m *Metrics) EventDropped(device string) {
	if m == nil {
		return
	}
	m.dropped.WithLabelValues(device).Inc()
}

func (m *Metrics) FrameSent(device string) {
	if m == nil {
		return
	}
	m.framesSent.WithLabelValues(device).Inc()
}

func (m *Metrics) RenderError(device string) {
	if m == nil {
		return
	}
	m.renderErrors.WithLabelValues(device).Inc()
}

func (m *Metrics) DeviceConnected() {
	if m == nil {
		return
	}
	m.connected.Inc()
}

func (m *Metrics) DeviceDisconnected() {
	if m == nil {
		return
	}
	m.connected.Dec()
}

// Per-device collectors, for tests and callers that read values back

func (m *Metrics) Decoded(device string) prometheus.Counter {
	return m.decoded.WithLabelValues(device)
}

func (m *Metrics) Dropped(device string) prometheus.Counter {
	return m.dropped.WithLabelValues(device)
}

func (m *Metrics) FramesSent(device string) prometheus.Counter {
	return m.framesSent.WithLabelValues(device)
}

func (m *Metrics) RenderErrors(device string) prometheus.Counter {
	return m.renderErrors.WithLabelValues(device)
}

func (m *Metrics) Connected() prometheus.Gauge {
	return m.connected
}

// Handler serves the registry in the Prometheus text format
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
