package feed

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	feedLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "picfeed_feed_loads_total",
		Help: "Full feed fetches by filter and result.",
	}, []string{"filter", "result"})

	feedLoadDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "picfeed_feed_load_seconds",
		Help:    "Full feed fetch latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"filter"})

	feedStaleDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "picfeed_feed_stale_fetches_total",
		Help: "Fetches that completed after a newer one and were not applied.",
	})

	mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "picfeed_mutations_total",
		Help: "Feed mutations by operation and result.",
	}, []string{"op", "result"})
)

func observeLoad(f Filter, started time.Time, err error) {
	feedLoadDuration.WithLabelValues(f.String()).Observe(time.Since(started).Seconds())
	feedLoads.WithLabelValues(f.String(), result(err)).Inc()
}

func countMutation(op string, err error) {
	mutations.WithLabelValues(op, result(err)).Inc()
}

func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsValidation(err):
		return "invalid"
	}
	return "error"
}
