package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every collector exposed at /metrics.
var Registry = prometheus.NewRegistry()

var (
	factory = promauto.With(Registry)

	generationRequestsTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "generation_requests_total",
		Help: "Total question generation requests",
	})
	generationCacheHitsTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "generation_cache_hits_total",
		Help: "Generations served from cache",
	})
	generationFailedTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "generation_failed_total",
		Help: "Generations that failed",
	})
	quotaRejectedTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "quota_rejected_total",
		Help: "Free generations rejected by the daily limit",
	})
	llmAttemptsTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "llm_attempts_total",
		Help: "Model provider calls",
	})
	llmRetriesTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "llm_retries_total",
		Help: "Model provider calls retried",
	})
	cacheEntriesDeleted = factory.NewCounter(prometheus.CounterOpts{
		Name: "cache_entries_deleted_total",
		Help: "Stale cache entries deleted",
	})

	generationDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "generation_duration_ms",
		Help:    "Generation duration in milliseconds",
		Buckets: []float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000, 75000},
	})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// IncGenerationRequests counts a generation request that passed validation.
func IncGenerationRequests() {
	generationRequestsTotal.Inc()
}

// IncGenerationCacheHits counts a generation served from cache.
func IncGenerationCacheHits() {
	generationCacheHitsTotal.Inc()
}

// IncGenerationFailed counts a generation that ended in an error.
func IncGenerationFailed() {
	generationFailedTotal.Inc()
}

// IncQuotaRejected counts a free caller turned away by the daily limit.
func IncQuotaRejected() {
	quotaRejectedTotal.Inc()
}

// IncLLMAttempts counts one call to the model provider.
func IncLLMAttempts() {
	llmAttemptsTotal.Inc()
}

// IncLLMRetries counts a failed model call that will be retried.
func IncLLMRetries() {
	llmRetriesTotal.Inc()
}

// AddCacheEntriesDeleted counts entries removed by cache cleanup.
func AddCacheEntriesDeleted(n int) {
	if n > 0 {
		cacheEntriesDeleted.Add(float64(n))
	}
}

// ObserveGenerationDurationMs records a generation duration in milliseconds.
func ObserveGenerationDurationMs(value float64) {
	generationDuration.Observe(max(value, 0))
}

// Handler exposes Registry in the Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}
