package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ProducerMetrics counts publish outcomes per topic. A nil *ProducerMetrics
// records nothing.
type ProducerMetrics struct {
	published *prometheus.CounterVec
	failed    *prometheus.CounterVec
}

// NewProducerMetrics creates the producer counters and registers them with reg.
func NewProducerMetrics(reg prometheus.Registerer) *ProducerMetrics {
	m := &ProducerMetrics{
		published: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kafka_producer_messages_published_total",
				Help: "Total number of Kafka messages handed to the writer",
			},
			[]string{"topic"},
		),
		failed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kafka_producer_messages_failed_total",
				Help: "Total number of Kafka messages that failed to publish",
			},
			[]string{"topic"},
		),
	}
	reg.MustRegister(m.published, m.failed)
	return m
}

func (m *ProducerMetrics) ok(topic string, n int) {
	if m != nil {
		m.published.WithLabelValues(topic).Add(float64(n))
	}
}

func (m *ProducerMetrics) fail(topic string, n int) {
	if m != nil {
		m.failed.WithLabelValues(topic).Add(float64(n))
	}
}
