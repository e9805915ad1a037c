package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "creatorgenius",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and status class.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "status"})

	QuotaDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "creatorgenius",
		Name:      "quota_decisions_total",
		Help:      "Quota enforcer outcomes by window, feature and decision.",
	}, []string{"window", "feature", "decision"})

	StorageDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "creatorgenius",
		Name:      "storage_limit_decisions_total",
		Help:      "Storage-count enforcer outcomes by collection and decision.",
	}, []string{"collection", "decision"})

	LLMTokens = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "creatorgenius",
		Name:      "llm_tokens_total",
		Help:      "LLM tokens consumed by direction.",
	}, []string{"direction"})
)
