package contentpreference

import (
	"context"
	"fmt"

	"myfeed/internal/adapter/out/gqlclient"
	"myfeed/internal/auth"
	"myfeed/internal/model"
	"myfeed/internal/query"
	"myfeed/pkg/logger"
	"myfeed/pkg/querykey"
)

// Mutations change the session user's content preferences. Every successful
// call publishes an invalidation so the matching list queries refetch.
type Mutations struct {
	r       Requester
	bus     query.Bus
	session auth.Session
}

func NewMutations(r Requester, bus query.Bus, s auth.Session) *Mutations {
	return &Mutations{r: r, bus: bus, session: s}
}

func (m *Mutations) Follow(ctx context.Context, id string, entity model.ContentPreferenceType, status model.ContentPreferenceStatus) error {
	return m.do(ctx, entity, FollowMutation, map[string]any{
		"id":     id,
		"entity": entity,
		"status": status,
	})
}

func (m *Mutations) Unfollow(ctx context.Context, id string, entity model.ContentPreferenceType) error {
	return m.do(ctx, entity, UnfollowMutation, map[string]any{
		"id":     id,
		"entity": entity,
	})
}

func (m *Mutations) Block(ctx context.Context, id string, entity model.ContentPreferenceType, feedID string) error {
	return m.do(ctx, entity, BlockMutation, withFeed(map[string]any{
		"id":     id,
		"entity": entity,
	}, feedID))
}

func (m *Mutations) Unblock(ctx context.Context, id string, entity model.ContentPreferenceType, feedID string) error {
	return m.do(ctx, entity, UnblockMutation, withFeed(map[string]any{
		"id":     id,
		"entity": entity,
	}, feedID))
}

func (m *Mutations) do(ctx context.Context, entity model.ContentPreferenceType, doc gqlclient.Document, vars map[string]any) error {
	if err := m.r.Request(ctx, doc, vars, nil); err != nil {
		return fmt.Errorf("%s: %w", doc.OperationName, err)
	}

	if m.bus == nil {
		return nil
	}
	ev := query.Event{
		Domain: querykey.ContentPreference,
		Actor:  Actor(m.session),
		Entity: string(entity),
	}
	if err := m.bus.Publish(ctx, ev); err != nil {
		// the mutation itself went through; observers fall back to staleTime
		logger.FromContext(ctx).Warn("publish invalidation", "operation", doc.OperationName, "error", err)
	}
	return nil
}

func withFeed(vars map[string]any, feedID string) map[string]any {
	if feedID != "" {
		vars["feedId"] = feedID
	}
	return vars
}
