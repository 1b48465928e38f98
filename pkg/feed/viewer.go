package feed

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"picfeed/pkg/logger"
)

// DefaultIdleTimeout is how long a viewer unused by any request is kept.
const DefaultIdleTimeout = 30 * time.Minute

var liveViewers = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "picfeed_feed_viewers",
	Help: "Viewers currently holding a feed view in memory.",
})

// Viewer is the feed state and write path of one signed-in user.
type Viewer struct {
	UserId  string
	Feed    *Aggregator
	Actions *Mutator

	lastSeen time.Time
}

// Viewers hands out one Viewer per user id. A viewer is forgotten when its
// user's last session ends or when no request touched it for IdleTimeout.
// Viewers of different users share the store and the bucket but nothing else.
type Viewers struct {
	store         Store
	bucket        Bucket
	maxImageBytes int64

	IdleTimeout time.Duration
	now         func() time.Time

	mu      sync.Mutex
	viewers map[string]*Viewer
}

func NewViewers(store Store, bucket Bucket, maxImageBytes int64) *Viewers {
	return &Viewers{
		store:         store,
		bucket:        bucket,
		maxImageBytes: maxImageBytes,
		IdleTimeout:   DefaultIdleTimeout,
		now:           time.Now,
		viewers:       make(map[string]*Viewer),
	}
}

func (vs *Viewers) Get(userId string) *Viewer {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	if v, ok := vs.viewers[userId]; ok {
		v.lastSeen = vs.now()
		return v
	}
	agg := NewAggregator(vs.store, userId)
	v := &Viewer{
		UserId:   userId,
		Feed:     agg,
		Actions:  NewMutator(vs.store, vs.bucket, agg, vs.maxImageBytes),
		lastSeen: vs.now(),
	}
	vs.viewers[userId] = v
	liveViewers.Set(float64(len(vs.viewers)))
	return v
}

// Drop forgets the viewer's filter and cached view.
func (vs *Viewers) Drop(userId string) {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	delete(vs.viewers, userId)
	liveViewers.Set(float64(len(vs.viewers)))
}

// EvictIdle drops viewers not used for IdleTimeout and returns how many went.
func (vs *Viewers) EvictIdle() int {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	cutoff := vs.now().Add(-vs.IdleTimeout)
	n := 0
	for id, v := range vs.viewers {
		if v.lastSeen.Before(cutoff) {
			delete(vs.viewers, id)
			n++
		}
	}
	liveViewers.Set(float64(len(vs.viewers)))
	return n
}

// Run evicts idle viewers every interval until ctx is done.
func (vs *Viewers) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := vs.EvictIdle(); n > 0 {
				logger.Log(ctx).Debugf("feed: evicted %d idle viewers", n)
			}
		}
	}
}

func (vs *Viewers) Len() int {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	return len(vs.viewers)
}
