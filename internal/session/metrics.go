package session

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts session mutations and failed write-throughs. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	mutations       *prometheus.CounterVec
	persistFailures *prometheus.CounterVec
	activeSessions  prometheus.Gauge
}

// NewMetrics creates the session collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_session_mutations_total",
				Help: "Total number of session mutations by kind.",
			},
			[]string{"kind"},
		),
		persistFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_session_persist_failures_total",
				Help: "Total number of failed write-throughs by collection.",
			},
			[]string{"collection"},
		),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "storefront_sessions_open",
			Help: "Number of session stores currently held in memory.",
		}),
	}
	reg.MustRegister(m.mutations, m.persistFailures, m.activeSessions)
	return m
}

func (m *Metrics) mutation(kind ChangeKind) {
	if m != nil {
		m.mutations.WithLabelValues(string(kind)).Inc()
	}
}

func (m *Metrics) persistFailure(collection string) {
	if m != nil {
		m.persistFailures.WithLabelValues(collection).Inc()
	}
}

func (m *Metrics) sessionOpened() {
	if m != nil {
		m.activeSessions.Inc()
	}
}

func (m *Metrics) sessionClosed() {
	if m != nil {
		m.activeSessions.Dec()
	}
}
