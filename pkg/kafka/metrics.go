package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	publishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "kafka",
		Name:      "published_total",
		Help:      "Messages published, by topic and outcome.",
	}, []string{"topic", "outcome"})

	publishDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "storefront",
		Subsystem: "kafka",
		Name:      "publish_duration_seconds",
		Help:      "Time spent writing a message to the broker.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"topic"})

	consumedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "kafka",
		Name:      "consumed_total",
		Help:      "Messages consumed, by topic and outcome (ok, failed, malformed).",
	}, []string{"topic", "outcome"})

	handleDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "storefront",
		Subsystem: "kafka",
		Name:      "handle_duration_seconds",
		Help:      "Handler latency including retries.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"topic"})
)
