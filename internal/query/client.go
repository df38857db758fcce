package query

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"myfeed/pkg/querykey"

	"golang.org/x/sync/singleflight"
)

const (
	DefaultRetry          = 3
	DefaultRetryBaseDelay = time.Second
	DefaultRequestTimeout = 30 * time.Second

	lockStripes = 64
)

// Options tune caching behaviour. Nil fields fall back to the client's
// defaults; Enabled is ANDed with the query's own enablement.
type Options struct {
	Enabled   *bool
	StaleTime *time.Duration
	Retry     *int
}

// Client is the process-wide query engine. All observers of the same key
// share one cache entry through it.
type Client struct {
	store Store
	bus   Bus
	log   *slog.Logger
	obs   Observer
	now   func() time.Time

	staleTime      time.Duration
	retry          int
	retryBaseDelay time.Duration
	requestTimeout time.Duration

	sf singleflight.Group
	// striped by key hash; held for the whole of a fetch so pages of one key
	// are requested strictly in order
	locks [lockStripes]sync.Mutex

	watchMu sync.Mutex
	watches map[querykey.RequestKey]*domainWatch
}

// watcher is an observer that wants to hear about invalidations of its key.
type watcher interface {
	Key() querykey.Key
	invalidated(ev Event)
}

// domainWatch is the client's single bus subscription for one domain.
type domainWatch struct {
	watchers map[watcher]struct{}
	cancel   context.CancelFunc
	done     chan struct{}
}

// Observer is told about fetches, cache hits and invalidations.
type Observer interface {
	RecordQueryFetch(operation string, err error, duration time.Duration)
	RecordQueryCacheHit(operation string)
	RecordQueryInvalidation(domain string, keys int)
}

type nopObserver struct{}

func (nopObserver) RecordQueryFetch(string, error, time.Duration) {}
func (nopObserver) RecordQueryCacheHit(string)                    {}
func (nopObserver) RecordQueryInvalidation(string, int)           {}

type ClientOption func(*Client)

func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) { c.log = l }
}

func WithObserver(o Observer) ClientOption {
	return func(c *Client) { c.obs = o }
}

func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) { c.now = now }
}

func WithStaleTime(d time.Duration) ClientOption {
	return func(c *Client) { c.staleTime = d }
}

func WithRetry(n int, baseDelay time.Duration) ClientOption {
	return func(c *Client) {
		c.retry = n
		c.retryBaseDelay = baseDelay
	}
}

func WithRequestTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.requestTimeout = d }
}

// NewClient builds an engine over store. bus may be nil, in which case
// observers never hear about mutations.
func NewClient(store Store, bus Bus, opts ...ClientOption) *Client {
	c := &Client{
		store:          store,
		bus:            bus,
		log:            slog.Default(),
		obs:            nopObserver{},
		now:            time.Now,
		retry:          DefaultRetry,
		retryBaseDelay: DefaultRetryBaseDelay,
		requestTimeout: DefaultRequestTimeout,
		watches:        make(map[querykey.RequestKey]*domainWatch),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Store() Store {
	return c.store
}

// Invalidate marks every cached key accepted by match as stale.
func (c *Client) Invalidate(match func(querykey.Key) bool) []querykey.Key {
	keys := c.store.Invalidate(match)
	if len(keys) > 0 {
		c.log.Debug("query invalidated", "keys", len(keys))
	}
	return keys
}

// watch registers w for the events of its key's domain and returns the
// function that unregisters it. The client subscribes to the bus once per
// domain while it has watchers, so an event invalidates the store once no
// matter how many observers hear about it.
func (c *Client) watch(ctx context.Context, w watcher) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	domain := w.Key().Domain

	c.watchMu.Lock()
	defer c.watchMu.Unlock()

	dw := c.watches[domain]
	if dw == nil {
		wctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		events, err := c.bus.Subscribe(wctx, domain, nil)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("subscribe: %w", err)
		}
		dw = &domainWatch{
			watchers: make(map[watcher]struct{}),
			cancel:   cancel,
			done:     make(chan struct{}),
		}
		c.watches[domain] = dw
		go c.dispatch(domain, dw, events)
	}
	dw.watchers[w] = struct{}{}

	return func() {
		c.watchMu.Lock()
		delete(dw.watchers, w)
		last := len(dw.watchers) == 0 && c.watches[domain] == dw
		if last {
			delete(c.watches, domain)
		}
		c.watchMu.Unlock()

		if last {
			dw.cancel()
			<-dw.done
		}
	}, nil
}

func (c *Client) dispatch(domain querykey.RequestKey, dw *domainWatch, events <-chan Event) {
	defer close(dw.done)

	for ev := range events {
		keys := c.Invalidate(ev.Matches)
		c.obs.RecordQueryInvalidation(string(domain), len(keys))

		// under watchMu so nothing reaches a watcher after it unregistered
		c.watchMu.Lock()
		for w := range dw.watchers {
			if ev.Matches(w.Key()) {
				w.invalidated(ev)
			}
		}
		c.watchMu.Unlock()
	}
}

func (c *Client) lockFor(k querykey.Key) *sync.Mutex {
	return &c.locks[k.Hash()%lockStripes]
}

// run executes fn once per (key, op) no matter how many callers ask
// concurrently. fn runs under the key lock with a context detached from the
// caller, so a caller that gives up does not cancel the fetch others share.
func (c *Client) run(ctx context.Context, key querykey.Key, op string, fn func(ctx context.Context) error) error {
	ch := c.sf.DoChan(key.String()+"#"+op, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.requestTimeout)
		defer cancel()

		mu := c.lockFor(key)
		mu.Lock()
		defer mu.Unlock()

		return nil, fn(fctx)
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		return res.Err
	}
}

func (c *Client) resolve(o Options) (staleTime time.Duration, retry int) {
	staleTime, retry = c.staleTime, c.retry
	if o.StaleTime != nil {
		staleTime = *o.StaleTime
	}
	if o.Retry != nil {
		retry = max(*o.Retry, 0)
	}
	return staleTime, retry
}
