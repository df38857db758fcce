package service

import (
	"fmt"

	"myfeed/internal/adapter/out/storage"
	"myfeed/internal/model"
	"myfeed/pkg/pagination"
)

type FollowRequest struct {
	UserID      string                        `validate:"required"`
	ReferenceID string                        `validate:"required"`
	Type        model.ContentPreferenceType   `validate:"required,preference_type"`
	Status      model.ContentPreferenceStatus `validate:"required,oneof=follow subscribed"`
}

type UnfollowRequest struct {
	UserID      string                      `validate:"required"`
	ReferenceID string                      `validate:"required"`
	Type        model.ContentPreferenceType `validate:"required,preference_type"`
}

type BlockRequest struct {
	UserID      string                      `validate:"required"`
	ReferenceID string                      `validate:"required"`
	Type        model.ContentPreferenceType `validate:"required,preference_type"`
	FeedID      string                      `validate:"omitempty,max=64"`
}

type UnblockRequest = BlockRequest

// ListRequest asks for one page of a user's preferences of one type. FeedID
// only applies to blocks.
type ListRequest struct {
	UserID string                      `validate:"required"`
	Type   model.ContentPreferenceType `validate:"required,preference_type"`
	FeedID string                      `validate:"omitempty,max=64"`
	Page   pagination.PageRequest      `validate:"-"`
}

func validatePagination(in pagination.PageRequest) error {
	beforeCursorProvided := in.BeforeCursor != nil && *in.BeforeCursor != ""
	afterCursorProvided := in.AfterCursor != nil && *in.AfterCursor != ""

	if beforeCursorProvided && afterCursorProvided {
		return fmt.Errorf("both cursors provided: %w", ErrInvalidRequest)
	}
	if in.Limit < 0 {
		return fmt.Errorf("limit must be >= 0: %w", ErrInvalidRequest)
	}
	return nil
}

// toListParams resolves the page request into storage params. limit is the
// number of rows the caller will return; the params ask for one more.
func toListParams(req ListRequest, statuses []model.ContentPreferenceStatus) (storage.ListPreferencesParams, int, error) {
	if err := validatePagination(req.Page); err != nil {
		return storage.ListPreferencesParams{}, 0, err
	}

	limit := req.Page.Limit
	if limit <= 0 {
		limit = DefaultPreferencesLimit
	}
	limit = min(limit, MaxPreferencesLimit)

	before, err := pagination.Decode(req.Page.BeforeCursor)
	if err != nil {
		return storage.ListPreferencesParams{}, 0, fmt.Errorf("error decoding before-cursor: %w: %w", ErrInvalidRequest, err)
	}

	after, err := pagination.Decode(req.Page.AfterCursor)
	if err != nil {
		return storage.ListPreferencesParams{}, 0, fmt.Errorf("error decoding after-cursor: %w: %w", ErrInvalidRequest, err)
	}

	params := storage.ListPreferencesParams{
		UserID:   req.UserID,
		Type:     req.Type,
		Statuses: statuses,
		FeedID:   req.FeedID,
		Limit:    limit + 1,
	}

	switch {
	case before != nil:
		params.Cursor = before
		params.Direction = storage.DirectionBefore
	case after != nil:
		params.Cursor = after
		params.Direction = storage.DirectionAfter
	}
	return params, limit, nil
}
