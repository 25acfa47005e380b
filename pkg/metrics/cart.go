package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics records cart mutations and persistence sync activity.
type CartMetrics struct {
	operations   *prometheus.CounterVec
	syncDuration *prometheus.HistogramVec
	syncFailure  *prometheus.CounterVec
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_operations",
		Help: "Cart mutations by operation.",
	}, []string{"operation"})
	syncDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cart_sync_duration_seconds",
		Help:    "Duration of remote cart sync calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"direction"})
	syncFailure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_sync_failure",
		Help: "Failed remote cart sync calls.",
	}, []string{"direction"})
	reg.MustRegister(operations, syncDuration, syncFailure)
	return &CartMetrics{
		operations:   operations,
		syncDuration: syncDuration,
		syncFailure:  syncFailure,
	}
}

// IncOperation increments the counter for the named cart operation.
func (c *CartMetrics) IncOperation(operation string) {
	if c == nil || c.operations == nil {
		return
	}
	c.operations.WithLabelValues(normalizeLabel(operation)).Inc()
}

// ObserveSync records the duration of a push or pull against the remote store.
func (c *CartMetrics) ObserveSync(direction string, duration time.Duration) {
	if c == nil || c.syncDuration == nil {
		return
	}
	c.syncDuration.WithLabelValues(normalizeLabel(direction)).Observe(duration.Seconds())
}

// IncSyncFailure increments the failure counter for a push or pull direction.
func (c *CartMetrics) IncSyncFailure(direction string) {
	if c == nil || c.syncFailure == nil {
		return
	}
	c.syncFailure.WithLabelValues(normalizeLabel(direction)).Inc()
}

func normalizeLabel(label string) string {
	if label == "" {
		return "unknown"
	}
	return label
}
