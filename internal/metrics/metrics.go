package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector receives portal activity. Services depend on this interface so
// tests can run with NoOpCollector.
type Collector interface {
	RequestCreated(kind string)
	RequestDecided(kind, status string)
	ChatMessage(topic string)
	SetPending(kind string, count int)
	EmailSent(success bool)
}

// NoOpCollector is the default when metrics are not needed.
type NoOpCollector struct{}

func (NoOpCollector) RequestCreated(kind string)         {}
func (NoOpCollector) RequestDecided(kind, status string) {}
func (NoOpCollector) ChatMessage(topic string)           {}
func (NoOpCollector) SetPending(kind string, count int)  {}
func (NoOpCollector) EmailSent(success bool)             {}

// PrometheusCollector implements Collector for Prometheus.
type PrometheusCollector struct {
	requestsCreated *prometheus.CounterVec
	requestsDecided *prometheus.CounterVec
	chatMessages    *prometheus.CounterVec
	pending         *prometheus.GaugeVec
	emails          *prometheus.CounterVec
}

func NewPrometheusCollector(namespace string) *PrometheusCollector {
	return &PrometheusCollector{
		requestsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_created_total",
				Help:      "Total number of deposit, withdrawal and send requests created",
			},
			[]string{"kind"},
		),
		requestsDecided: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_decided_total",
				Help:      "Total number of approve/reject decisions per kind",
			},
			[]string{"kind", "status"},
		),
		chatMessages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "support_messages_total",
				Help:      "Support chat messages by matched topic",
			},
			[]string{"topic"},
		),
		pending: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "requests_pending",
				Help:      "Current number of pending requests per kind",
			},
			[]string{"kind"},
		),
		emails: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "emails_total",
				Help:      "Status and broadcast emails by outcome",
			},
			[]string{"result"},
		),
	}
}

// Register registers all metrics with the given registerer.
func (pc *PrometheusCollector) Register(registry prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		pc.requestsCreated,
		pc.requestsDecided,
		pc.chatMessages,
		pc.pending,
		pc.emails,
	}
	for _, collector := range collectors {
		if err := registry.Register(collector); err != nil {
			return err
		}
	}
	return nil
}

func (pc *PrometheusCollector) RequestCreated(kind string) {
	pc.requestsCreated.WithLabelValues(kind).Inc()
}

func (pc *PrometheusCollector) RequestDecided(kind, status string) {
	pc.requestsDecided.WithLabelValues(kind, status).Inc()
}

func (pc *PrometheusCollector) ChatMessage(topic string) {
	pc.chatMessages.WithLabelValues(topic).Inc()
}

func (pc *PrometheusCollector) SetPending(kind string, count int) {
	pc.pending.WithLabelValues(kind).Set(float64(count))
}

func (pc *PrometheusCollector) EmailSent(success bool) {
	result := "sent"
	if !success {
		result = "failed"
	}
	pc.emails.WithLabelValues(result).Inc()
}
