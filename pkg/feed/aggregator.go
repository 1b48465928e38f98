package feed

import (
	"context"
	"sort"
	"sync"
	"time"

	"picfeed/pkg/logger"
	"picfeed/pkg/post"
)

// View is the derived, filtered, ordered list of posts one viewer sees.
type View struct {
	Posts   []*post.Post `json:"posts"`
	Filter  Filter       `json:"filter"`
	Loading bool         `json:"loading"`
	Empty   string       `json:"empty,omitempty"`
}

func newView(posts []*post.Post, f Filter) View {
	v := View{Posts: posts, Filter: f}
	if len(posts) == 0 {
		v.Empty = f.EmptyHint()
	}
	return v
}

// LoadFeed reads every post from the store, orders it newest first and keeps
// what f lets through for currentUserId.
func LoadFeed(ctx context.Context, store Store, currentUserId string, f Filter) ([]*post.Post, error) {
	started := time.Now()
	posts, err := store.GetFeed(ctx)
	observeLoad(f, started, err)
	if err != nil {
		return nil, networkErr("load feed", err)
	}
	sortNewestFirst(posts)
	return Apply(posts, currentUserId, f), nil
}

// Ties on the timestamp are broken by id so repeated loads agree.
func sortNewestFirst(posts []*post.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i], posts[j]
		if !a.Created.Equal(b.Created) {
			return a.Created.After(b.Created)
		}
		return a.Id < b.Id
	})
}

// Aggregator holds one viewer's filter and the last view loaded for it.
//
// Fetches are numbered as they start. A fetch that completes after a newer
// one has been applied, or after the filter moved on, is returned to its
// caller but not kept. The mutex is never held across a store call.
type Aggregator struct {
	store  Store
	userId string

	mu       sync.Mutex
	filter   FilterState
	view     View
	inflight int
	issued   uint64
	applied  uint64
}

func NewAggregator(store Store, userId string) *Aggregator {
	return &Aggregator{
		store:  store,
		userId: userId,
		view:   newView([]*post.Post{}, All),
	}
}

// Load selects f and fetches the feed for it.
func (a *Aggregator) Load(ctx context.Context, f Filter) (View, error) {
	a.mu.Lock()
	a.filter.Set(f)
	a.mu.Unlock()
	return a.Refresh(ctx)
}

func (a *Aggregator) ToggleBookmarks(ctx context.Context) (View, error) {
	a.mu.Lock()
	a.filter.ToggleBookmarks()
	a.mu.Unlock()
	return a.Refresh(ctx)
}

func (a *Aggregator) ToggleLikes(ctx context.Context) (View, error) {
	a.mu.Lock()
	a.filter.ToggleLikes()
	a.mu.Unlock()
	return a.Refresh(ctx)
}

// Refresh re-fetches the feed with the current filter. On error the previous
// view is kept and returned along with the error.
func (a *Aggregator) Refresh(ctx context.Context) (View, error) {
	a.mu.Lock()
	f := a.filter.Filter()
	a.issued++
	seq := a.issued
	a.inflight++
	a.mu.Unlock()

	posts, err := LoadFeed(ctx, a.store, a.userId, f)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.inflight--

	if err != nil {
		logger.Log(ctx).Errorf("feed: error fetching posts for user %s: %v", a.userId, err)
		return a.snapshot(), err
	}

	fresh := newView(posts, f)
	if seq > a.applied && f == a.filter.Filter() {
		a.applied = seq
		a.view = fresh
	} else {
		feedStaleDropped.Inc()
		logger.Log(ctx).Debugf("feed: dropped stale fetch #%d (%s) for user %s", seq, f, a.userId)
	}
	fresh.Loading = a.inflight > 0
	return fresh, nil
}

// View returns the last applied view.
func (a *Aggregator) View() View {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshot()
}

func (a *Aggregator) Filter() FilterState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.filter
}

func (a *Aggregator) Loading() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inflight > 0
}

func (a *Aggregator) snapshot() View {
	v := a.view
	v.Loading = a.inflight > 0
	return v
}
