package query_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"myfeed/internal/adapter/out/pubsub/inmemory"
	"myfeed/internal/query"
	"myfeed/pkg/pagination"
	"myfeed/pkg/querykey"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// source serves items 0..total-1 in pages of size, cursor = index of the
// next item.
type source struct {
	mu     sync.Mutex
	total  int
	size   int
	calls  []string
	failAt map[string]int // cursor -> remaining failures
	gate   chan struct{}  // when set, every fetch waits on it
}

func (s *source) fetch(ctx context.Context, _ querykey.Key, after string) (pagination.Connection[int], error) {
	s.mu.Lock()
	s.calls = append(s.calls, after)
	gate := s.gate
	if n := s.failAt[after]; n > 0 {
		s.failAt[after] = n - 1
		s.mu.Unlock()
		return pagination.Connection[int]{}, errors.New("boom")
	}
	total := s.total
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return pagination.Connection[int]{}, ctx.Err()
		}
	}

	start := 0
	if after != "" {
		start, _ = strconv.Atoi(after)
	}
	end := min(start+s.size, total)

	var conn pagination.Connection[int]
	for i := start; i < end; i++ {
		conn.Edges = append(conn.Edges, pagination.Edge[int]{Node: i})
	}
	conn.PageInfo.HasNextPage = end < total
	if conn.PageInfo.HasNextPage {
		conn.PageInfo.EndCursor = strconv.Itoa(end)
	}
	return conn, nil
}

func (s *source) setTotal(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total = n
}

func (s *source) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func newClient(t *testing.T, bus query.Bus, opts ...query.ClientOption) *query.Client {
	t.Helper()
	store, err := query.NewLRUStore(16)
	require.NoError(t, err)
	opts = append([]query.ClientOption{query.WithRetry(0, time.Millisecond), query.WithStaleTime(time.Minute)}, opts...)
	return query.NewClient(store, bus, opts...)
}

func testKey(entity string) querykey.Key {
	return querykey.MustGenerate(querykey.ContentPreference, "u1", querykey.UserBlocked, map[string]any{
		"entity": entity,
		"first":  2,
	})
}

func newQuery(t *testing.T, c *query.Client, src *source, key querykey.Key) *query.InfiniteQuery[int] {
	t.Helper()
	q, err := query.NewInfiniteQuery(context.Background(), c, query.InfiniteOptions[int]{
		Key:              key,
		Fetch:            src.fetch,
		InitialPageParam: "",
		Enabled:          true,
	})
	require.NoError(t, err)
	t.Cleanup(q.Close)
	return q
}

func boolPtr(b bool) *bool { return &b }

func TestInfiniteQuery_FetchAndPaginate(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := &source{total: 5, size: 2}
	c := newClient(t, nil)
	q := newQuery(t, c, src, testKey("user"))

	res, err := q.Fetch(context.Background())
	require.NoError(t, err)
	require.True(t, res.IsSuccess())
	require.Equal(t, []int{0, 1}, res.Items())
	require.True(t, res.HasNextPage)
	require.Equal(t, []string{""}, src.Calls())

	res, err = q.FetchNextPage(context.Background())
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 2, 3}, res.Items())
	require.Equal(t, []string{"", "2"}, res.PageParams)

	res, err = q.FetchNextPage(context.Background())
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 2, 3, 4}, res.Items())
	require.False(t, res.HasNextPage)

	// last page says there is nothing more: no round trip
	_, err = q.FetchNextPage(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"", "2", "4"}, src.Calls())
}

func TestInfiniteQuery_NextCursorFromEndCursor(t *testing.T) {
	var got []string
	c := newClient(t, nil)
	q, err := query.NewInfiniteQuery(context.Background(), c, query.InfiniteOptions[int]{
		Key:     testKey("user"),
		Enabled: true,
		Fetch: func(_ context.Context, _ querykey.Key, after string) (pagination.Connection[int], error) {
			got = append(got, after)
			if after == "" {
				return pagination.Connection[int]{PageInfo: pagination.PageInfo{HasNextPage: true, EndCursor: "abc"}}, nil
			}
			return pagination.Connection[int]{}, nil
		},
	})
	require.NoError(t, err)
	defer q.Close()

	_, err = q.Fetch(context.Background())
	require.NoError(t, err)
	_, err = q.FetchNextPage(context.Background())
	require.NoError(t, err)

	require.Equal(t, []string{"", "abc"}, got)
}

func TestInfiniteQuery_FirstPageWithoutNext(t *testing.T) {
	src := &source{total: 1, size: 2}
	c := newClient(t, nil)
	q := newQuery(t, c, src, testKey("user"))

	_, err := q.Fetch(context.Background())
	require.NoError(t, err)

	res, err := q.FetchNextPage(context.Background())
	require.NoError(t, err)
	require.False(t, res.HasNextPage)
	require.Equal(t, []string{""}, src.Calls())
}

func TestInfiniteQuery_CacheHitWhileFresh(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var clock atomic.Int64
	clock.Store(now.UnixNano())

	src := &source{total: 3, size: 2}
	c := newClient(t, nil, query.WithClock(func() time.Time { return time.Unix(0, clock.Load()) }))
	q := newQuery(t, c, src, testKey("user"))

	_, err := q.Fetch(context.Background())
	require.NoError(t, err)
	_, err = q.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, src.Calls(), 1)

	clock.Add(int64(2 * time.Minute))
	require.True(t, q.Result().IsStale)

	_, err = q.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, src.Calls(), 2)
}

func TestInfiniteQuery_SharedAcrossObservers(t *testing.T) {
	src := &source{total: 3, size: 2}
	c := newClient(t, nil)
	a := newQuery(t, c, src, testKey("user"))
	b := newQuery(t, c, src, testKey("user"))

	_, err := a.Fetch(context.Background())
	require.NoError(t, err)

	res, err := b.Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, []int{0, 1}, res.Items())
	require.Len(t, src.Calls(), 1)
}

func TestInfiniteQuery_Disabled(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		option  *bool
	}{
		{name: "own condition false", enabled: false},
		{name: "own condition false, override true", enabled: false, option: boolPtr(true)},
		{name: "override false", enabled: true, option: boolPtr(false)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &source{total: 3, size: 2}
			c := newClient(t, nil)
			q, err := query.NewInfiniteQuery(context.Background(), c, query.InfiniteOptions[int]{
				Key:     testKey("user"),
				Fetch:   src.fetch,
				Enabled: tt.enabled,
				Options: query.Options{Enabled: tt.option},
			})
			require.NoError(t, err)
			defer q.Close()

			res, err := q.Fetch(context.Background())
			require.NoError(t, err)
			require.False(t, res.Enabled)
			require.Equal(t, query.StatusIdle, res.Status)

			_, err = q.FetchNextPage(context.Background())
			require.NoError(t, err)
			_, err = q.Refetch(context.Background())
			require.NoError(t, err)

			require.Empty(t, src.Calls())
		})
	}
}

func TestInfiniteQuery_FailureKeepsEarlierPages(t *testing.T) {
	src := &source{total: 5, size: 2, failAt: map[string]int{"2": 1}}
	c := newClient(t, nil)
	q := newQuery(t, c, src, testKey("user"))

	_, err := q.Fetch(context.Background())
	require.NoError(t, err)

	res, err := q.FetchNextPage(context.Background())
	require.Error(t, err)
	require.True(t, res.IsError())
	require.EqualError(t, res.Err, "boom")
	require.Equal(t, []int{0, 1}, res.Items())

	// the failure is not sticky
	res, err = q.FetchNextPage(context.Background())
	require.NoError(t, err)
	require.True(t, res.IsSuccess())
	require.Equal(t, []int{0, 1, 2, 3}, res.Items())
}

func TestInfiniteQuery_FirstPageFailure(t *testing.T) {
	src := &source{total: 5, size: 2, failAt: map[string]int{"": 1}}
	c := newClient(t, nil)
	q := newQuery(t, c, src, testKey("user"))

	res, err := q.Fetch(context.Background())
	require.Error(t, err)
	require.True(t, res.IsError())
	require.Empty(t, res.Pages)
}

func TestInfiniteQuery_BoundedRetry(t *testing.T) {
	src := &source{total: 2, size: 2, failAt: map[string]int{"": 2}}
	c := newClient(t, nil)

	retry := 2
	q, err := query.NewInfiniteQuery(context.Background(), c, query.InfiniteOptions[int]{
		Key:     testKey("user"),
		Fetch:   src.fetch,
		Enabled: true,
		Options: query.Options{Retry: &retry},
	})
	require.NoError(t, err)
	defer q.Close()

	res, err := q.Fetch(context.Background())
	require.NoError(t, err)
	require.True(t, res.IsSuccess())
	require.Equal(t, []string{"", "", ""}, src.Calls())
}

func TestInfiniteQuery_RefetchReloadsAllPages(t *testing.T) {
	src := &source{total: 5, size: 2}
	c := newClient(t, nil)
	q := newQuery(t, c, src, testKey("user"))

	_, err := q.Fetch(context.Background())
	require.NoError(t, err)
	_, err = q.FetchNextPage(context.Background())
	require.NoError(t, err)

	src.setTotal(3)
	res, err := q.Refetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 2}, res.Items())
	require.Equal(t, []string{"", "2", "", "2"}, src.Calls())
}

func TestInfiniteQuery_ConcurrentNextPageInOrder(t *testing.T) {
	src := &source{total: 20, size: 2}
	c := newClient(t, nil)
	q := newQuery(t, c, src, testKey("user"))

	_, err := q.Fetch(context.Background())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = q.FetchNextPage(context.Background())
		}()
	}
	wg.Wait()

	calls := src.Calls()
	require.Equal(t, []string{"", "2"}, calls[:2])
	for i := 1; i < len(calls); i++ {
		prev, _ := strconv.Atoi(calls[i-1])
		cur, _ := strconv.Atoi(calls[i])
		require.Equal(t, prev+2, cur, "pages requested out of order: %v", calls)
	}
}

func TestInfiniteQuery_CallerCancellation(t *testing.T) {
	gate := make(chan struct{})
	src := &source{total: 3, size: 2, gate: gate}
	c := newClient(t, nil)
	q := newQuery(t, c, src, testKey("user"))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := q.Fetch(ctx)
		errCh <- err
	}()

	require.Eventually(t, func() bool { return len(src.Calls()) == 1 }, time.Second, time.Millisecond)
	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)
	require.False(t, q.Result().IsError())

	// the abandoned fetch still lands in the cache
	close(gate)
	require.Eventually(t, func() bool { return q.Result().IsSuccess() }, time.Second, time.Millisecond)
}

func TestInfiniteQuery_InvalidationTriggersRefetch(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := inmemory.New(4)
	src := &source{total: 3, size: 2}
	c := newClient(t, bus)

	q, err := query.NewInfiniteQuery(context.Background(), c, query.InfiniteOptions[int]{
		Key:     testKey("user"),
		Fetch:   src.fetch,
		Enabled: true,
	})
	require.NoError(t, err)
	defer q.Close()

	_, err = q.Fetch(context.Background())
	require.NoError(t, err)
	require.False(t, q.Result().IsStale)

	// another entity's mutation leaves this key alone
	require.NoError(t, bus.Publish(context.Background(), query.Event{Domain: querykey.ContentPreference, Actor: "u1", Entity: "source"}))
	// as does another actor's
	require.NoError(t, bus.Publish(context.Background(), query.Event{Domain: querykey.ContentPreference, Actor: "u2", Entity: "user"}))

	src.setTotal(1)
	require.NoError(t, bus.Publish(context.Background(), query.Event{Domain: querykey.ContentPreference, Actor: "u1", Entity: "user"}))

	require.Eventually(t, func() bool {
		res := q.Result()
		return len(src.Calls()) == 2 && res.IsSuccess() && !res.IsStale && len(res.Items()) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestInfiniteQuery_InvalidationDuringFetchConverges(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := inmemory.New(4)
	gate := make(chan struct{})
	src := &source{total: 3, size: 2, gate: gate}
	c := newClient(t, bus)

	q, err := query.NewInfiniteQuery(context.Background(), c, query.InfiniteOptions[int]{
		Key:     testKey("user"),
		Fetch:   src.fetch,
		Enabled: true,
	})
	require.NoError(t, err)
	defer q.Close()

	// seed the entry so the invalidation has something to mark
	c.Store().Set(testKey("user"), query.Entry{})

	errCh := make(chan error, 1)
	go func() {
		_, err := q.Fetch(context.Background())
		errCh <- err
	}()
	require.Eventually(t, func() bool { return len(src.Calls()) == 1 }, time.Second, time.Millisecond)

	src.setTotal(1)
	require.NoError(t, bus.Publish(context.Background(), query.Event{Domain: querykey.ContentPreference, Actor: "u1"}))
	close(gate)
	require.NoError(t, <-errCh)

	require.Eventually(t, func() bool {
		res := q.Result()
		return len(src.Calls()) >= 2 && res.IsSuccess() && !res.IsStale && !res.IsFetching
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, []int{0}, q.Result().Items())
}

func TestInfiniteQuery_DisabledIgnoresInvalidation(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := inmemory.New(4)
	src := &source{total: 3, size: 2}
	c := newClient(t, bus)

	q, err := query.NewInfiniteQuery(context.Background(), c, query.InfiniteOptions[int]{
		Key:   testKey("user"),
		Fetch: src.fetch,
	})
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(), query.Event{Domain: querykey.ContentPreference, Actor: "u1"}))
	q.Close()

	require.Empty(t, src.Calls())
}

func TestNewInfiniteQuery_RequiresFetcher(t *testing.T) {
	c := newClient(t, nil)
	_, err := query.NewInfiniteQuery[int](context.Background(), c, query.InfiniteOptions[int]{Key: testKey("user")})
	require.ErrorIs(t, err, query.ErrNoFetcher)
}

type countingObserver struct {
	mu            sync.Mutex
	fetches       int
	failures      int
	hits          int
	invalidations int
}

func (o *countingObserver) RecordQueryFetch(_ string, err error, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fetches++
	if err != nil {
		o.failures++
	}
}

func (o *countingObserver) RecordQueryCacheHit(string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.hits++
}

func (o *countingObserver) RecordQueryInvalidation(_ string, keys int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.invalidations += keys
}

func (o *countingObserver) snapshot() (fetches, failures, hits, invalidations int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.fetches, o.failures, o.hits, o.invalidations
}

func TestClient_Observer(t *testing.T) {
	defer goleak.VerifyNone(t)

	obs := &countingObserver{}
	bus := inmemory.New(4)
	src := &source{total: 3, size: 2, failAt: map[string]int{"2": 1}}
	c := newClient(t, bus, query.WithObserver(obs))

	q, err := query.NewInfiniteQuery(context.Background(), c, query.InfiniteOptions[int]{
		Key:     testKey("user"),
		Fetch:   src.fetch,
		Enabled: true,
	})
	require.NoError(t, err)
	defer q.Close()

	ctx := context.Background()
	_, err = q.Fetch(ctx)
	require.NoError(t, err)
	_, err = q.Fetch(ctx)
	require.NoError(t, err)
	_, err = q.FetchNextPage(ctx)
	require.Error(t, err)

	fetches, failures, hits, _ := obs.snapshot()
	require.Equal(t, 2, fetches)
	require.Equal(t, 1, failures)
	require.Equal(t, 1, hits)

	require.NoError(t, bus.Publish(ctx, query.Event{Domain: querykey.ContentPreference, Actor: "u1"}))
	require.Eventually(t, func() bool {
		_, _, _, inv := obs.snapshot()
		return inv == 1
	}, time.Second, 5*time.Millisecond)
}

func TestInfiniteQuery_SharedKeyRefetchesOncePerEvent(t *testing.T) {
	defer goleak.VerifyNone(t)

	obs := &countingObserver{}
	bus := inmemory.New(4)
	src := &source{total: 3, size: 2}
	c := newClient(t, bus, query.WithObserver(obs))

	var observers []*query.InfiniteQuery[int]
	for i := 0; i < 2; i++ {
		q, err := query.NewInfiniteQuery(context.Background(), c, query.InfiniteOptions[int]{
			Key:     testKey("user"),
			Fetch:   src.fetch,
			Enabled: true,
		})
		require.NoError(t, err)
		observers = append(observers, q)
	}
	require.Equal(t, 1, bus.Subscribers(querykey.ContentPreference))

	for _, q := range observers {
		_, err := q.Fetch(context.Background())
		require.NoError(t, err)
	}
	require.Len(t, src.Calls(), 1)

	src.setTotal(1)
	require.NoError(t, bus.Publish(context.Background(), query.Event{Domain: querykey.ContentPreference, Actor: "u1", Entity: "user"}))

	require.Eventually(t, func() bool {
		res := observers[0].Result()
		return res.IsSuccess() && !res.IsStale && len(res.Items()) == 1
	}, time.Second, 5*time.Millisecond)

	for _, q := range observers {
		q.Close()
	}
	require.Len(t, src.Calls(), 2)
	require.Equal(t, 0, bus.Subscribers(querykey.ContentPreference))

	_, _, _, invalidations := obs.snapshot()
	require.Equal(t, 1, invalidations)
}
