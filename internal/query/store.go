package query

import (
	"fmt"
	"sync"
	"time"

	"myfeed/pkg/querykey"

	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultCacheSize = 512

type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// Entry is the cached state of one key. Data is owned by the query type that
// wrote it.
type Entry struct {
	Data        any
	Err         error
	Status      Status
	Fetching    bool
	Invalidated bool
	UpdatedAt   time.Time
	// Generation grows on every invalidation; a fetch that started under an
	// older generation must not clear Invalidated.
	Generation uint64
}

// Store is the shared query cache. Implementations must be safe for
// concurrent use; Update applies fn atomically.
type Store interface {
	Get(key querykey.Key) (Entry, bool)
	Set(key querykey.Key, e Entry)
	Update(key querykey.Key, fn func(e Entry, ok bool) Entry) Entry
	Invalidate(match func(querykey.Key) bool) []querykey.Key
	Remove(key querykey.Key)
	Len() int
}

type LRUStore struct {
	mu    sync.Mutex
	cache *lru.Cache[querykey.Key, Entry]
}

var _ Store = (*LRUStore)(nil)

func NewLRUStore(size int) (*LRUStore, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[querykey.Key, Entry](size)
	if err != nil {
		return nil, fmt.Errorf("lru: %w", err)
	}
	return &LRUStore{cache: c}, nil
}

func (s *LRUStore) Get(key querykey.Key) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Get(key)
}

func (s *LRUStore) Set(key querykey.Key, e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Add(key, e)
}

func (s *LRUStore) Update(key querykey.Key, fn func(e Entry, ok bool) Entry) Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.cache.Get(key)
	next := fn(cur, ok)
	s.cache.Add(key, next)
	return next
}

func (s *LRUStore) Invalidate(match func(querykey.Key) bool) []querykey.Key {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []querykey.Key
	for _, k := range s.cache.Keys() {
		if !match(k) {
			continue
		}
		e, ok := s.cache.Peek(k)
		if !ok {
			continue
		}
		e.Invalidated = true
		e.Generation++
		s.cache.Add(k, e)
		out = append(out, k)
	}
	return out
}

func (s *LRUStore) Remove(key querykey.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Remove(key)
}

func (s *LRUStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Len()
}
