package graphql

import (
	"context"
	"fmt"

	"myfeed/internal/auth"
	"myfeed/internal/model"
	"myfeed/internal/service"
	"myfeed/pkg/pagination"
)

//go:generate mockgen -source=resolver.go -destination=./service_mock.go -package=graphql myfeed/internal/adapter/in/graphql ContentPreferenceService
type ContentPreferenceService interface {
	Follow(ctx context.Context, req service.FollowRequest) (model.ContentPreference, error)
	Unfollow(ctx context.Context, req service.UnfollowRequest) error
	Block(ctx context.Context, req service.BlockRequest) (model.ContentPreference, error)
	Unblock(ctx context.Context, req service.UnblockRequest) error
	UserBlocked(ctx context.Context, req service.ListRequest) (pagination.Page[model.ContentPreference], error)
	UserFollowing(ctx context.Context, req service.ListRequest) (pagination.Page[model.ContentPreference], error)
}

type Resolver struct {
	preferences ContentPreferenceService
}

func NewResolver(preferences ContentPreferenceService) *Resolver {
	return &Resolver{
		preferences: preferences,
	}
}

func (r *Resolver) Queries() map[string]FieldResolver {
	return map[string]FieldResolver{
		"userBlocked":   r.userBlocked,
		"userFollowing": r.userFollowing,
	}
}

func (r *Resolver) Mutations() map[string]FieldResolver {
	return map[string]FieldResolver{
		"follow":   r.follow,
		"unfollow": r.unfollow,
		"block":    r.block,
		"unblock":  r.unblock,
	}
}

// userBlocked lists the caller's blocks. Naming another user is forbidden;
// blocks are private.
func (r *Resolver) userBlocked(ctx context.Context, args map[string]any) (any, error) {
	actor := auth.ActorFromContext(ctx)
	if actor == "" {
		return nil, service.ErrUnauthenticated
	}
	if id := argString(args, "userId"); id != "" && id != actor {
		return nil, fmt.Errorf("blocks of another user: %w", service.ErrForbidden)
	}

	page, err := r.preferences.UserBlocked(ctx, service.ListRequest{
		UserID: actor,
		Type:   model.ContentPreferenceType(argString(args, "entity")),
		FeedID: argString(args, "feedId"),
		Page:   toPageRequest(args),
	})
	if err != nil {
		return nil, err
	}
	return toConnection(page), nil
}

// userFollowing lists what userId follows, the caller by default.
func (r *Resolver) userFollowing(ctx context.Context, args map[string]any) (any, error) {
	userID := argString(args, "userId")
	if userID == "" {
		userID = auth.ActorFromContext(ctx)
	}

	page, err := r.preferences.UserFollowing(ctx, service.ListRequest{
		UserID: userID,
		Type:   model.ContentPreferenceType(argString(args, "entity")),
		Page:   toPageRequest(args),
	})
	if err != nil {
		return nil, err
	}
	return toConnection(page), nil
}

func (r *Resolver) follow(ctx context.Context, args map[string]any) (any, error) {
	_, err := r.preferences.Follow(ctx, service.FollowRequest{
		UserID:      auth.ActorFromContext(ctx),
		ReferenceID: argString(args, "id"),
		Type:        model.ContentPreferenceType(argString(args, "entity")),
		Status:      model.ContentPreferenceStatus(argString(args, "status")),
	})
	if err != nil {
		return nil, err
	}
	return emptyResponse(), nil
}

func (r *Resolver) unfollow(ctx context.Context, args map[string]any) (any, error) {
	err := r.preferences.Unfollow(ctx, service.UnfollowRequest{
		UserID:      auth.ActorFromContext(ctx),
		ReferenceID: argString(args, "id"),
		Type:        model.ContentPreferenceType(argString(args, "entity")),
	})
	if err != nil {
		return nil, err
	}
	return emptyResponse(), nil
}

func (r *Resolver) block(ctx context.Context, args map[string]any) (any, error) {
	_, err := r.preferences.Block(ctx, service.BlockRequest{
		UserID:      auth.ActorFromContext(ctx),
		ReferenceID: argString(args, "id"),
		Type:        model.ContentPreferenceType(argString(args, "entity")),
		FeedID:      argString(args, "feedId"),
	})
	if err != nil {
		return nil, err
	}
	return emptyResponse(), nil
}

func (r *Resolver) unblock(ctx context.Context, args map[string]any) (any, error) {
	err := r.preferences.Unblock(ctx, service.UnblockRequest{
		UserID:      auth.ActorFromContext(ctx),
		ReferenceID: argString(args, "id"),
		Type:        model.ContentPreferenceType(argString(args, "entity")),
		FeedID:      argString(args, "feedId"),
	})
	if err != nil {
		return nil, err
	}
	return emptyResponse(), nil
}
