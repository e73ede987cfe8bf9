// Package metrics holds the Prometheus instruments for the chat backend.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	messagesSent     prometheus.Counter
	repliesDelivered prometheus.Counter
	pendingReplies   prometheus.Gauge
	persistFailures  prometheus.Counter
	loadFallbacks    *prometheus.CounterVec
	rejectedSends    prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		messagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chat",
			Name:      "messages_sent_total",
			Help:      "Self-authored messages appended to a conversation.",
		}),
		repliesDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chat",
			Name:      "replies_delivered_total",
			Help:      "Synthetic replies appended to a conversation.",
		}),
		pendingReplies: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "chat",
			Name:      "pending_replies",
			Help:      "Scheduled synthetic replies that have not fired yet.",
		}),
		persistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chat",
			Name:      "persist_failures_total",
			Help:      "Conversation writes swallowed after a backend error.",
		}),
		loadFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chat",
			Name:      "load_fallbacks_total",
			Help:      "Conversation loads that degraded to an empty history.",
		}, []string{"reason"}),
		rejectedSends: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chat",
			Name:      "rejected_sends_total",
			Help:      "Sends dropped because the text was empty after trimming.",
		}),
	}

	reg.MustRegister(
		m.messagesSent,
		m.repliesDelivered,
		m.pendingReplies,
		m.persistFailures,
		m.loadFallbacks,
		m.rejectedSends,
	)
	return m
}

func (m *Metrics) MessageSent() {
	if m != nil {
		m.messagesSent.Inc()
	}
}

func (m *Metrics) ReplyScheduled() {
	if m != nil {
		m.pendingReplies.Inc()
	}
}

func (m *Metrics) ReplyDelivered() {
	if m != nil {
		m.pendingReplies.Dec()
		m.repliesDelivered.Inc()
	}
}

func (m *Metrics) PersistFailed() {
	if m != nil {
		m.persistFailures.Inc()
	}
}

// LoadFallback records a degraded load; reason is "backend", "malformed" or "not_array".
func (m *Metrics) LoadFallback(reason string) {
	if m != nil {
		m.loadFallbacks.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) SendRejected() {
	if m != nil {
		m.rejectedSends.Inc()
	}
}
