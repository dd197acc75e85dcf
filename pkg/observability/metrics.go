package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Global metrics instance for singleton pattern
	globalCollector *Collector
	collectorMutex  sync.Mutex
)

// Collector holds all Prometheus metrics for the sync engine
type Collector struct {
	// Registry for this collector instance
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Reconciliation metrics
	SaveOutcomes *prometheus.CounterVec
	SaveRetries  prometheus.Counter
	RepairPushes prometheus.Counter

	// Remote store metrics
	RemoteRequests *prometheus.CounterVec
	RemoteDuration *prometheus.HistogramVec

	// Local cache metrics
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
	CacheRollbacks   prometheus.Counter
	CacheEvictions   prometheus.Counter
	CacheCorruptions prometheus.Counter
}

// NewCollector creates a new metrics collector with the given namespace
func NewCollector(namespace string) *Collector {
	// Use singleton pattern to avoid duplicate registration in tests
	collectorMutex.Lock()
	defer collectorMutex.Unlock()

	// Return existing collector if already created
	if globalCollector != nil {
		return globalCollector
	}

	// Create a new registry for this collector
	registry := prometheus.NewRegistry()

	// Create metrics (not auto-registered)
	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	saveOutcomes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "save_outcomes_total",
			Help:      "Terminal save states per entity kind",
		},
		[]string{"kind", "outcome"},
	)

	saveRetries := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "save_retries_total",
			Help:      "Total number of save attempts beyond the first",
		},
	)

	repairPushes := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "repair_pushes_total",
			Help:      "Background local-to-remote repair saves triggered by load divergence",
		},
	)

	remoteRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_requests_total",
			Help:      "Total number of remote store requests",
		},
		[]string{"table", "operation", "status"},
	)

	remoteDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "remote_request_duration_seconds",
			Help:      "Remote store request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"table", "operation"},
	)

	cacheHits := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of local cache hits",
		},
	)

	cacheMisses := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Total number of local cache misses",
		},
	)

	cacheRollbacks := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_rollbacks_total",
			Help:      "Writes rolled back after read-back verification failed",
		},
	)

	cacheEvictions := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_evictions_total",
			Help:      "Records evicted from local collections under quota pressure",
		},
	)

	cacheCorruptions := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_corruptions_total",
			Help:      "Cached values discarded because they failed to parse",
		},
	)

	// Register all metrics with the registry
	registry.MustRegister(
		httpRequests,
		httpDuration,
		saveOutcomes,
		saveRetries,
		repairPushes,
		remoteRequests,
		remoteDuration,
		cacheHits,
		cacheMisses,
		cacheRollbacks,
		cacheEvictions,
		cacheCorruptions,
	)

	// Create and store the collector
	globalCollector = &Collector{
		registry:         registry,
		HTTPRequests:     httpRequests,
		HTTPDuration:     httpDuration,
		SaveOutcomes:     saveOutcomes,
		SaveRetries:      saveRetries,
		RepairPushes:     repairPushes,
		RemoteRequests:   remoteRequests,
		RemoteDuration:   remoteDuration,
		CacheHits:        cacheHits,
		CacheMisses:      cacheMisses,
		CacheRollbacks:   cacheRollbacks,
		CacheEvictions:   cacheEvictions,
		CacheCorruptions: cacheCorruptions,
	}

	return globalCollector
}

// ResetForTesting resets the global collector for testing purposes
func ResetForTesting() {
	collectorMutex.Lock()
	defer collectorMutex.Unlock()
	globalCollector = nil
}

// GetRegistry returns the Prometheus registry for this collector
func (c *Collector) GetRegistry() *prometheus.Registry {
	return c.registry
}
