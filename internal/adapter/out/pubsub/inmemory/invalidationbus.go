package inmemory

import (
	"context"
	"sync"

	"myfeed/internal/query"
	"myfeed/pkg/querykey"
)

type subscriber struct {
	// serializes publishers so a slot freed by widen is not taken by another
	mu    sync.Mutex
	ch    chan query.Event
	match func(query.Event) bool
}

type InvalidationBus struct {
	mu sync.RWMutex
	// domain -> set of subscribers
	subs map[querykey.RequestKey]map[*subscriber]struct{}
	buf  int
}

var _ query.Bus = (*InvalidationBus)(nil)

func New(buf int) *InvalidationBus {
	if buf <= 0 {
		buf = 16
	}
	return &InvalidationBus{
		subs: make(map[querykey.RequestKey]map[*subscriber]struct{}),
		buf:  buf,
	}
}

// Subscribe delivers the events of domain accepted by match (nil accepts
// all). The channel is closed once ctx ends.
func (b *InvalidationBus) Subscribe(ctx context.Context, domain querykey.RequestKey, match func(query.Event) bool) (<-chan query.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sub := &subscriber{
		ch:    make(chan query.Event, b.buf),
		match: match,
	}

	b.mu.Lock()
	if b.subs[domain] == nil {
		b.subs[domain] = make(map[*subscriber]struct{})
	}
	b.subs[domain][sub] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		if set := b.subs[domain]; set != nil {
			delete(set, sub)
			if len(set) == 0 {
				delete(b.subs, domain)
			}
		}
		b.mu.Unlock()
		close(sub.ch)
	}()

	return sub.ch, nil
}

// Publish never blocks. When a subscriber's buffer is full the oldest pending
// event is merged with ev into one that matches at least every key either of
// them did, so no invalidation is lost.
func (b *InvalidationBus) Publish(_ context.Context, ev query.Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subs[ev.Domain] {
		if sub.match != nil && !sub.match(ev) {
			continue
		}
		sub.send(ev)
	}
	return nil
}

func (s *subscriber) send(ev query.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case s.ch <- ev:
		return
	default:
	}

	select {
	case old := <-s.ch:
		ev = widen(old, ev)
	default:
	}
	s.ch <- ev
}

// widen returns an event of the same domain matching every key a or b match.
func widen(a, b query.Event) query.Event {
	if a.Actor != b.Actor {
		a.Actor = ""
	}
	if a.Entity != b.Entity {
		a.Entity = ""
	}
	return a
}

func (b *InvalidationBus) Subscribers(domain querykey.RequestKey) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[domain])
}
