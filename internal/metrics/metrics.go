// Package metrics exposes Prometheus counters for deliveries, mailbox writes
// and decryption failures.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "apnode"

// Metrics holds the node's collectors. A nil *Metrics is valid and records
// nothing, so services can be built without a registry.
type Metrics struct {
	reg prometheus.Gatherer

	Deliveries       *prometheus.CounterVec
	MailboxAppends   *prometheus.CounterVec
	DecryptFailures  prometheus.Counter
	ActorsCreated    prometheus.Counter
	InboundRejected  *prometheus.CounterVec
	DeliveryDuration prometheus.Histogram
}

// New registers the node's collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	return NewWithRegistry(reg, reg)
}

// NewWithRegistry registers the collectors on r and serves them from g.
func NewWithRegistry(r prometheus.Registerer, g prometheus.Gatherer) *Metrics {
	m := &Metrics{
		reg: g,
		Deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Sends by outcome of the remote hop.",
		}, []string{"status"}),
		MailboxAppends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mailbox_appends_total",
			Help:      "Mailbox entries written, by direction.",
		}, []string{"direction"}),
		DecryptFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decrypt_failures_total",
			Help:      "Inbox entries that failed to decrypt.",
		}),
		ActorsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actors_created_total",
			Help:      "Actors registered on this node.",
		}),
		InboundRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inbound_rejected_total",
			Help:      "Inbound inbox posts refused, by reason.",
		}, []string{"reason"}),
		DeliveryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "delivery_duration_seconds",
			Help:      "Latency of the remote delivery hop.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	r.MustRegister(m.Deliveries, m.MailboxAppends, m.DecryptFailures, m.ActorsCreated,
		m.InboundRejected, m.DeliveryDuration)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

func (m *Metrics) Delivery(status string, seconds float64) {
	if m == nil {
		return
	}
	m.Deliveries.WithLabelValues(status).Inc()
	if seconds > 0 {
		m.DeliveryDuration.Observe(seconds)
	}
}

func (m *Metrics) Appended(direction string) {
	if m == nil {
		return
	}
	m.MailboxAppends.WithLabelValues(direction).Inc()
}

func (m *Metrics) DecryptFailed() {
	if m == nil {
		return
	}
	m.DecryptFailures.Inc()
}

func (m *Metrics) ActorCreated() {
	if m == nil {
		return
	}
	m.ActorsCreated.Inc()
}

func (m *Metrics) Rejected(reason string) {
	if m == nil {
		return
	}
	m.InboundRejected.WithLabelValues(reason).Inc()
}
