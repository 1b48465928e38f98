package storage

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var uploadLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "picfeed_storage_upload_seconds",
	Help:    "Image upload latency by storage driver and result.",
	Buckets: prometheus.DefBuckets,
}, []string{"driver", "result"})

func observeUpload(driver string, started time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	uploadLatency.WithLabelValues(driver, result).Observe(time.Since(started).Seconds())
}
