package contentpreference

import (
	"context"
	"errors"
	"fmt"

	"myfeed/internal/adapter/out/gqlclient"
	"myfeed/internal/auth"
	"myfeed/internal/model"
	"myfeed/internal/query"
	"myfeed/pkg/pagination"
	"myfeed/pkg/querykey"
)

var ErrInvalidLimit = errors.New("limit must not be negative")

type BlockedParams struct {
	Entity model.ContentPreferenceType
	// Limit is the page size; zero means DefaultBlockedLimit.
	Limit  int
	FeedID string
	// Options override the caching behaviour. Options.Enabled is ANDed with
	// the query's own condition (Entity set).
	Options query.Options
}

type FollowingParams struct {
	Entity model.ContentPreferenceType
	// Limit is the page size; zero means DefaultFollowLimit.
	Limit   int
	Options query.Options
}

// listVariables is the variables record the key is built from. FeedID is
// omitted when unset so an absent feed and an empty one share a key.
type listVariables struct {
	Entity model.ContentPreferenceType `json:"entity"`
	First  int                         `json:"first"`
	FeedID string                      `json:"feedId,omitempty"`
}

// Actor is the key segment for session.
func Actor(s auth.Session) string {
	if !s.IsLoggedIn() {
		return querykey.Anonymous
	}
	return s.UserID
}

func BlockedKey(s auth.Session, p BlockedParams) querykey.Key {
	return querykey.MustGenerate(querykey.ContentPreference, Actor(s), querykey.UserBlocked, listVariables{
		Entity: p.Entity,
		First:  limitOr(p.Limit, DefaultBlockedLimit),
		FeedID: p.FeedID,
	})
}

func FollowingKey(s auth.Session, p FollowingParams) querykey.Key {
	return querykey.MustGenerate(querykey.ContentPreference, Actor(s), querykey.UserFollowing, listVariables{
		Entity: p.Entity,
		First:  limitOr(p.Limit, DefaultFollowLimit),
	})
}

// NewBlockedQuery observes the entities of one type the session's user has
// blocked, optionally scoped to one feed. Without an entity the query stays
// disabled and never issues a request. A negative limit is rejected.
func NewBlockedQuery(ctx context.Context, c *query.Client, r Requester, s auth.Session, p BlockedParams) (*query.InfiniteQuery[ContentPreference], error) {
	if err := checkLimit(p.Limit); err != nil {
		return nil, err
	}
	return newListQuery(ctx, c, r, s, BlockedKey(s, p), p.Entity != "", p.Options, UserBlockedQuery, "userBlocked")
}

// NewFollowingQuery is NewBlockedQuery for followed entities.
func NewFollowingQuery(ctx context.Context, c *query.Client, r Requester, s auth.Session, p FollowingParams) (*query.InfiniteQuery[ContentPreference], error) {
	if err := checkLimit(p.Limit); err != nil {
		return nil, err
	}
	return newListQuery(ctx, c, r, s, FollowingKey(s, p), p.Entity != "", p.Options, UserFollowingQuery, "userFollowing")
}

func newListQuery(
	ctx context.Context,
	c *query.Client,
	r Requester,
	s auth.Session,
	key querykey.Key,
	enabled bool,
	opts query.Options,
	doc gqlclient.Document,
	field string,
) (*query.InfiniteQuery[ContentPreference], error) {
	if opts.StaleTime == nil {
		st := StaleTimeDefault
		opts.StaleTime = &st
	}

	return query.NewInfiniteQuery(ctx, c, query.InfiniteOptions[ContentPreference]{
		Key:              key,
		Fetch:            listFetcher(r, s, doc, field),
		InitialPageParam: "",
		Enabled:          enabled,
		Options:          opts,
	})
}

// listFetcher requests one page. Variables come back out of the key so the
// request always matches the cache entry it fills.
func listFetcher(r Requester, s auth.Session, doc gqlclient.Document, field string) query.PageFetcher[ContentPreference] {
	return func(ctx context.Context, key querykey.Key, after string) (pagination.Connection[ContentPreference], error) {
		var v listVariables
		if err := key.DecodeVariables(&v); err != nil {
			return pagination.Connection[ContentPreference]{}, err
		}

		vars := map[string]any{
			"entity": v.Entity,
			"first":  v.First,
			"after":  after,
		}
		if s.IsLoggedIn() {
			vars["id"] = s.UserID
		}
		if v.FeedID != "" {
			vars["feedId"] = v.FeedID
		}

		var out map[string]pagination.Connection[ContentPreference]
		if err := r.Request(ctx, doc, vars, &out); err != nil {
			return pagination.Connection[ContentPreference]{}, fmt.Errorf("%s: %w", doc.OperationName, err)
		}
		return out[field], nil
	}
}

func checkLimit(limit int) error {
	if limit < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	return nil
}

func limitOr(limit, def int) int {
	if limit == 0 {
		return def
	}
	return limit
}
