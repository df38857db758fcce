package query

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"myfeed/pkg/logger"
	"myfeed/pkg/pagination"
	"myfeed/pkg/querykey"

	"github.com/cenkalti/backoff/v4"
)

var ErrNoFetcher = errors.New("query has no fetch function")

// PageFetcher performs one round trip for the page starting at pageParam.
// Variables are read back from key.
type PageFetcher[T any] func(ctx context.Context, key querykey.Key, pageParam string) (pagination.Connection[T], error)

type InfiniteOptions[T any] struct {
	Key   querykey.Key
	Fetch PageFetcher[T]
	// InitialPageParam is the cursor of page 1.
	InitialPageParam string
	// NextPageParam derives the next cursor from the last page only. Defaults
	// to pagination.NextPageParam on its PageInfo.
	NextPageParam func(last pagination.Connection[T]) (string, bool)
	// Enabled is the query's own condition; Options.Enabled, when set, must
	// also be true.
	Enabled bool
	Options Options
}

// InfiniteData is what an infinite query keeps in the store.
type InfiniteData[T any] struct {
	Pages      []pagination.Connection[T]
	PageParams []string
}

type InfiniteResult[T any] struct {
	Key         querykey.Key
	Pages       []pagination.Connection[T]
	PageParams  []string
	Status      Status
	Err         error
	IsFetching  bool
	IsStale     bool
	Enabled     bool
	HasNextPage bool
	UpdatedAt   time.Time
}

func (r InfiniteResult[T]) IsLoading() bool { return r.Status == StatusPending }
func (r InfiniteResult[T]) IsError() bool   { return r.Status == StatusError }
func (r InfiniteResult[T]) IsSuccess() bool { return r.Status == StatusSuccess }

// Items concatenates the nodes of every page in order.
func (r InfiniteResult[T]) Items() []T {
	var out []T
	for _, p := range r.Pages {
		out = append(out, p.Nodes()...)
	}
	return out
}

// InfiniteQuery observes one key of a cursor-paginated collection.
type InfiniteQuery[T any] struct {
	client *Client
	opts   InfiniteOptions[T]

	ctx    context.Context
	cancel context.CancelFunc

	refetching atomic.Bool
	wg         sync.WaitGroup
	done       chan struct{}
	closeOnce  sync.Once
}

// NewInfiniteQuery registers an observer. It hears about invalidations of its
// key through the client until Close is called or ctx ends. No fetch happens
// here.
func NewInfiniteQuery[T any](ctx context.Context, c *Client, opts InfiniteOptions[T]) (*InfiniteQuery[T], error) {
	if opts.Fetch == nil {
		return nil, ErrNoFetcher
	}
	if opts.NextPageParam == nil {
		opts.NextPageParam = func(last pagination.Connection[T]) (string, bool) {
			return pagination.NextPageParam(&last.PageInfo)
		}
	}

	qctx, cancel := context.WithCancel(ctx)
	q := &InfiniteQuery[T]{
		client: c,
		opts:   opts,
		ctx:    qctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	if c.bus == nil {
		close(q.done)
		return q, nil
	}

	unwatch, err := c.watch(qctx, q)
	if err != nil {
		cancel()
		return nil, err
	}

	go func() {
		defer close(q.done)
		<-qctx.Done()
		unwatch()
	}()
	return q, nil
}

func (q *InfiniteQuery[T]) Key() querykey.Key {
	return q.opts.Key
}

func (q *InfiniteQuery[T]) Enabled() bool {
	if !q.opts.Enabled {
		return false
	}
	return q.opts.Options.Enabled == nil || *q.opts.Options.Enabled
}

func (q *InfiniteQuery[T]) invalidated(ev Event) {
	logger.FromContext(q.ctx).Debug("query invalidated by mutation", "key", q.opts.Key.String(), "entity", ev.Entity)
	if q.Enabled() {
		q.scheduleRefetch()
	}
}

// scheduleRefetch starts at most one pending background refetch. An event
// that arrives after the pending refetch has started schedules another one.
func (q *InfiniteQuery[T]) scheduleRefetch() {
	if !q.refetching.CompareAndSwap(false, true) {
		return
	}

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.refetching.Store(false)
		if q.ctx.Err() != nil {
			return
		}
		if err := q.refetchInvalidated(q.ctx); err != nil && q.ctx.Err() == nil {
			logger.FromContext(q.ctx).Warn("background refetch failed", "key", q.opts.Key.String(), "error", err)
		}
	}()
}

// Close stops listening for invalidations and waits for background refetches
// to return. Fetches other callers share may still complete into the cache.
func (q *InfiniteQuery[T]) Close() {
	q.closeOnce.Do(func() {
		q.cancel()
		<-q.done
		q.wg.Wait()
	})
}

// Result is a snapshot of the cache entry as seen by this observer.
func (q *InfiniteQuery[T]) Result() InfiniteResult[T] {
	e, _ := q.client.store.Get(q.opts.Key)
	return q.result(e)
}

func (q *InfiniteQuery[T]) result(e Entry) InfiniteResult[T] {
	data, _ := e.Data.(InfiniteData[T])
	r := InfiniteResult[T]{
		Key:        q.opts.Key,
		Pages:      data.Pages,
		PageParams: data.PageParams,
		Status:     e.Status,
		Err:        e.Err,
		IsFetching: e.Fetching,
		IsStale:    q.isStale(e),
		Enabled:    q.Enabled(),
		UpdatedAt:  e.UpdatedAt,
	}
	if n := len(data.Pages); n > 0 {
		_, r.HasNextPage = q.opts.NextPageParam(data.Pages[n-1])
	}
	return r
}

func (q *InfiniteQuery[T]) isStale(e Entry) bool {
	if e.Invalidated || e.UpdatedAt.IsZero() {
		return true
	}
	staleTime, _ := q.client.resolve(q.opts.Options)
	return q.client.now().Sub(e.UpdatedAt) >= staleTime
}

// Fetch makes sure the first page is loaded. Fresh cached data is returned
// without a round trip; stale data is refetched page by page. A disabled
// query returns its current snapshot without fetching.
func (q *InfiniteQuery[T]) Fetch(ctx context.Context) (InfiniteResult[T], error) {
	if !q.Enabled() {
		return q.Result(), nil
	}

	e, ok := q.client.store.Get(q.opts.Key)
	if ok && e.Status == StatusSuccess && !q.isStale(e) {
		logger.FromContext(ctx).Debug("query cache hit", "key", q.opts.Key.String())
		q.client.obs.RecordQueryCacheHit(string(q.opts.Key.Operation))
		return q.result(e), nil
	}
	return q.Refetch(ctx)
}

// Refetch reloads every loaded page in order starting from page 1, or only
// page 1 when nothing is cached. The new pages replace the old ones at once.
func (q *InfiniteQuery[T]) Refetch(ctx context.Context) (InfiniteResult[T], error) {
	if !q.Enabled() {
		return q.Result(), nil
	}
	// A refetch asked for after an invalidation must not join a flight that
	// started before it.
	e, _ := q.client.store.Get(q.opts.Key)
	err := q.client.run(ctx, q.opts.Key, fmt.Sprintf("refetch#%d", e.Generation), q.refetchLocked)
	return q.Result(), err
}

// refetchInvalidated reloads the pages unless another observer of the key has
// already done so since the invalidation.
func (q *InfiniteQuery[T]) refetchInvalidated(ctx context.Context) error {
	e, _ := q.client.store.Get(q.opts.Key)
	return q.client.run(ctx, q.opts.Key, fmt.Sprintf("refetch#%d", e.Generation), func(ctx context.Context) error {
		if cur, ok := q.client.store.Get(q.opts.Key); ok && cur.Status == StatusSuccess && !cur.Invalidated {
			return nil
		}
		return q.refetchLocked(ctx)
	})
}

// FetchNextPage loads the page after the last cached one. Without a first
// page it behaves like Fetch; when the last page reports no next page it
// returns without a round trip.
func (q *InfiniteQuery[T]) FetchNextPage(ctx context.Context) (InfiniteResult[T], error) {
	if !q.Enabled() {
		return q.Result(), nil
	}

	e, _ := q.client.store.Get(q.opts.Key)
	data, _ := e.Data.(InfiniteData[T])
	if len(data.Pages) == 0 {
		return q.Fetch(ctx)
	}
	if _, ok := q.opts.NextPageParam(data.Pages[len(data.Pages)-1]); !ok {
		return q.result(e), nil
	}

	have := len(data.Pages)
	err := q.client.run(ctx, q.opts.Key, fmt.Sprintf("next#%d", have), func(ctx context.Context) error {
		return q.fetchNextLocked(ctx, have)
	})
	return q.Result(), err
}

func (q *InfiniteQuery[T]) refetchLocked(ctx context.Context) error {
	start := q.begin()
	old, _ := start.Data.(InfiniteData[T])

	want := max(len(old.Pages), 1)
	next := InfiniteData[T]{
		Pages:      make([]pagination.Connection[T], 0, want),
		PageParams: make([]string, 0, want),
	}

	param := q.opts.InitialPageParam
	for i := 0; i < want; i++ {
		page, err := q.fetchPage(ctx, param)
		if err != nil {
			q.fail(err)
			return err
		}
		next.Pages = append(next.Pages, page)
		next.PageParams = append(next.PageParams, param)

		var ok bool
		if param, ok = q.opts.NextPageParam(page); !ok {
			break
		}
	}

	q.commit(start.Generation, next)
	return nil
}

func (q *InfiniteQuery[T]) fetchNextLocked(ctx context.Context, have int) error {
	start := q.begin()
	data, _ := start.Data.(InfiniteData[T])

	switch {
	case len(data.Pages) == 0:
		// evicted or reset since the caller looked
		return q.refetchLocked(ctx)
	case len(data.Pages) != have:
		// someone else already moved past this page
		q.settle()
		return nil
	}

	param, ok := q.opts.NextPageParam(data.Pages[len(data.Pages)-1])
	if !ok {
		q.settle()
		return nil
	}

	page, err := q.fetchPage(ctx, param)
	if err != nil {
		q.fail(err)
		return err
	}

	next := InfiniteData[T]{
		Pages:      append(append(make([]pagination.Connection[T], 0, have+1), data.Pages...), page),
		PageParams: append(append(make([]string, 0, have+1), data.PageParams...), param),
	}
	q.commit(start.Generation, next)
	return nil
}

func (q *InfiniteQuery[T]) fetchPage(ctx context.Context, param string) (pagination.Connection[T], error) {
	_, retry := q.client.resolve(q.opts.Options)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = q.client.retryBaseDelay
	b.MaxElapsedTime = 0

	var page pagination.Connection[T]
	op := func() error {
		p, err := q.opts.Fetch(ctx, q.opts.Key, param)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return backoff.Permanent(err)
			}
			logger.FromContext(ctx).Debug("page fetch failed", "key", q.opts.Key.String(), "after", param, "error", err)
			return err
		}
		page = p
		return nil
	}

	start := time.Now()
	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, uint64(retry)), ctx))
	q.client.obs.RecordQueryFetch(string(q.opts.Key.Operation), err, time.Since(start))
	return page, err
}

func (q *InfiniteQuery[T]) begin() Entry {
	return q.client.store.Update(q.opts.Key, func(e Entry, _ bool) Entry {
		e.Fetching = true
		if _, ok := e.Data.(InfiniteData[T]); !ok {
			e.Status = StatusPending
		}
		return e
	})
}

func (q *InfiniteQuery[T]) settle() {
	q.client.store.Update(q.opts.Key, func(e Entry, _ bool) Entry {
		e.Fetching = false
		return e
	})
}

func (q *InfiniteQuery[T]) commit(gen uint64, data InfiniteData[T]) {
	now := q.client.now()
	q.client.store.Update(q.opts.Key, func(e Entry, _ bool) Entry {
		e.Data = data
		e.Status = StatusSuccess
		e.Err = nil
		e.Fetching = false
		e.UpdatedAt = now
		if e.Generation == gen {
			e.Invalidated = false
		}
		return e
	})
}

// fail records err and leaves previously fetched pages in place.
func (q *InfiniteQuery[T]) fail(err error) {
	q.client.store.Update(q.opts.Key, func(e Entry, _ bool) Entry {
		e.Status = StatusError
		e.Err = err
		e.Fetching = false
		return e
	})
	q.client.log.Warn("query fetch failed", "key", q.opts.Key.String(), "error", err)
}
