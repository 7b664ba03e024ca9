package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the Prometheus instruments used by the relay. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	ActiveSessions prometheus.Gauge
	SessionEvents  *prometheus.CounterVec
	WSMessages     *prometheus.CounterVec
	DroppedFrames  prometheus.Counter
	Synthesis      *prometheus.CounterVec
}

func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ActiveSessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_connections",
			Help:      "Number of open relay websocket connections.",
		}),
		SessionEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_transitions_total",
			Help:      "Session state transitions by target state.",
		}, []string{"state"}),
		WSMessages: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_messages_total",
			Help:      "WebSocket messages by direction and type.",
		}, []string{"direction", "type"}),
		DroppedFrames: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_audio_frames_total",
			Help:      "Audio frames received while no backend session was active.",
		}),
		Synthesis: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "synthesis_total",
			Help:      "Speech synthesis attempts by provider and outcome.",
		}, []string{"provider", "outcome"}),
	}
}

func (m *Metrics) ConnectionOpened() {
	if m != nil {
		m.ActiveSessions.Inc()
	}
}

func (m *Metrics) ConnectionClosed() {
	if m != nil {
		m.ActiveSessions.Dec()
	}
}

func (m *Metrics) ObserveTransition(state string) {
	if m != nil {
		m.SessionEvents.WithLabelValues(state).Inc()
	}
}

func (m *Metrics) ObserveMessage(direction, msgType string) {
	if m != nil {
		m.WSMessages.WithLabelValues(direction, msgType).Inc()
	}
}

func (m *Metrics) ObserveDroppedFrame() {
	if m != nil {
		m.DroppedFrames.Inc()
	}
}

func (m *Metrics) ObserveSynthesis(provider, outcome string) {
	if m != nil {
		m.Synthesis.WithLabelValues(provider, outcome).Inc()
	}
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
