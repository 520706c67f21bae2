package a2a

import "github.com/prometheus/client_golang/prometheus"

var (
	messagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "a2a_messages_total",
			Help: "Messages handled by the agent endpoint, labeled by outcome.",
		},
		[]string{"outcome"},
	)
	messageDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "a2a_message_duration_seconds",
			Help:    "End-to-end latency of one message, including model and tool calls.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		},
	)
)

const (
	outcomeOK         = "ok"
	outcomeBadRequest = "bad_request"
	outcomeFailed     = "failed"
)

func init() {
	prometheus.MustRegister(messagesTotal, messageDuration)
}
