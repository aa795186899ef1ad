package console

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the console's Prometheus metrics. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	SessionsTotal      prometheus.Counter
	EventsTotal        *prometheus.CounterVec
	AudioBytesTotal    *prometheus.CounterVec
	InterruptionsTotal prometheus.Counter
	ToolCallsTotal     *prometheus.CounterVec
}

// NewMetrics creates a Metrics instance with its own registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "vai_console"
	}
	registry := prometheus.NewRegistry()

	sessionsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_total",
		Help:      "Total number of realtime sessions opened",
	})
	eventsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Protocol events by direction and type",
		},
		[]string{"source", "type"},
	)
	audioBytesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_bytes_total",
			Help:      "PCM bytes streamed by direction",
		},
		[]string{"direction"},
	)
	interruptionsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "interruptions_total",
		Help:      "Playback interruptions that produced a cancellation",
	})
	toolCallsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Tool executions by tool and outcome",
		},
		[]string{"tool", "status"},
	)

	registry.MustRegister(sessionsTotal, eventsTotal, audioBytesTotal, interruptionsTotal, toolCallsTotal)

	return &Metrics{
		registry:           registry,
		SessionsTotal:      sessionsTotal,
		EventsTotal:        eventsTotal,
		AudioBytesTotal:    audioBytesTotal,
		InterruptionsTotal: interruptionsTotal,
		ToolCallsTotal:     toolCallsTotal,
	}
}

// Handler serves the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observeSession() {
	if m == nil {
		return
	}
	m.SessionsTotal.Inc()
}

func (m *Metrics) observeEvent(source, eventType string) {
	if m == nil {
		return
	}
	m.EventsTotal.WithLabelValues(source, eventType).Inc()
}

func (m *Metrics) observeAudio(direction string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.AudioBytesTotal.WithLabelValues(direction).Add(float64(n))
}

func (m *Metrics) observeInterruption() {
	if m == nil {
		return
	}
	m.InterruptionsTotal.Inc()
}

func (m *Metrics) observeToolCall(tool string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.ToolCallsTotal.WithLabelValues(tool, status).Inc()
}
