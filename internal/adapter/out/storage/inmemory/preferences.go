package inmemory

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"myfeed/internal/adapter/out/storage"
	"myfeed/internal/model"
	"myfeed/pkg/pagination"
)

type preferenceKey struct {
	userID      string
	referenceID string
	typ         model.ContentPreferenceType
	feedID      string
}

func keyOf(p model.ContentPreference) preferenceKey {
	return preferenceKey{
		userID:      p.UserID,
		referenceID: p.ReferenceID,
		typ:         p.Type,
		feedID:      p.FeedID,
	}
}

type PreferenceStorage struct {
	mu sync.RWMutex

	nextID int64
	rows   map[preferenceKey]model.ContentPreference
	now    func() time.Time
}

func NewPreferenceStorage() *PreferenceStorage {
	return &PreferenceStorage{
		rows: make(map[preferenceKey]model.ContentPreference),
		now:  time.Now,
	}
}

// UpsertPreference inserts p or, when a row for the same user, reference,
// type and feed exists, changes its status in place.
func (s *PreferenceStorage) UpsertPreference(_ context.Context, p model.ContentPreference) (model.ContentPreference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := keyOf(p)
	if cur, ok := s.rows[k]; ok {
		cur.Status = p.Status
		s.rows[k] = cur
		return cur, nil
	}

	s.nextID++
	p.ID = s.nextID
	p.CreatedAt = s.now()
	s.rows[k] = p
	return p, nil
}

func (s *PreferenceStorage) DeletePreference(_ context.Context, params storage.DeletePreferenceParams) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for k, p := range s.rows {
		if k.userID != params.UserID || k.referenceID != params.ReferenceID || k.typ != params.Type {
			continue
		}
		if !params.AnyFeed && k.feedID != params.FeedID {
			continue
		}
		if len(params.Statuses) > 0 && !slices.Contains(params.Statuses, p.Status) {
			continue
		}
		delete(s.rows, k)
		n++
	}
	return n, nil
}

func (s *PreferenceStorage) ListPreferences(_ context.Context, params storage.ListPreferencesParams) ([]model.ContentPreference, error) {
	if params.Cursor != nil && params.Direction == storage.DirectionUnspecified {
		return nil, storage.ErrDirectionUnset
	}

	s.mu.RLock()
	matched := make([]model.ContentPreference, 0)
	for k, p := range s.rows {
		if k.userID != params.UserID || k.typ != params.Type || k.feedID != params.FeedID {
			continue
		}
		if len(params.Statuses) > 0 && !slices.Contains(params.Statuses, p.Status) {
			continue
		}
		matched = append(matched, p)
	}
	s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b model.ContentPreference) int {
		return compareKeyset(b, a)
	})

	if params.Cursor == nil {
		return matched[:min(params.Limit, len(matched))], nil
	}

	out := make([]model.ContentPreference, 0, params.Limit)
	switch params.Direction {
	case storage.DirectionAfter:
		for _, p := range matched {
			if len(out) == params.Limit {
				break
			}
			if before(p, *params.Cursor) {
				out = append(out, p)
			}
		}
		return out, nil

	case storage.DirectionBefore:
		for i := len(matched) - 1; i >= 0 && len(out) < params.Limit; i-- {
			if after(matched[i], *params.Cursor) {
				out = append(out, matched[i])
			}
		}
		slices.Reverse(out)
		return out, nil

	default:
		return nil, errors.New("invalid keyset direction")
	}
}

// compareKeyset orders by (created_at, id) ascending.
func compareKeyset(a, b model.ContentPreference) int {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	}
	return 0
}

// before reports (p.created_at, p.id) < cursor.
func before(p model.ContentPreference, c pagination.Cursor) bool {
	return compareKeyset(p, model.ContentPreference{CreatedAt: c.CreatedAt, ID: c.ID}) < 0
}

func after(p model.ContentPreference, c pagination.Cursor) bool {
	return compareKeyset(p, model.ContentPreference{CreatedAt: c.CreatedAt, ID: c.ID}) > 0
}

// NoopTxManager runs fn directly. The in-memory storage has no transactions;
// each call is atomic on its own.
type NoopTxManager struct{}

func (NoopTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
