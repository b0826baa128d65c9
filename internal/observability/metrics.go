package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BlogViewsTotal counts detail fetches that incremented a view counter.
	BlogViewsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_blog_views_total",
		Help: "Total number of blog detail views",
	})

	// BlogMutationsTotal counts blog mutations by action.
	BlogMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_blog_mutations_total",
		Help: "Total number of blog create/update/delete operations",
	}, []string{"action"})

	// BlogListLatency records blog list query latency.
	BlogListLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "inkwell_blog_list_latency_seconds",
		Help:    "Blog list query latency in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// UploadsTotal counts stored uploads by kind.
	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_uploads_total",
		Help: "Total number of stored uploads",
	}, []string{"kind"})

	// RefreshRotationsTotal counts successful refresh token rotations.
	RefreshRotationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_refresh_rotations_total",
		Help: "Total number of refresh token rotations",
	})

	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})
)

// ObserveListQuery records the latency of a blog list query.
func ObserveListQuery(start time.Time) {
	BlogListLatency.Observe(time.Since(start).Seconds())
}
