package service

import (
	"context"
	"fmt"

	"myfeed/internal/adapter/out/storage"
	"myfeed/internal/model"
	"myfeed/pkg/logger"
	"myfeed/pkg/pagination"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultPreferencesLimit = 20
	MaxPreferencesLimit     = 100
)

//go:generate mockgen -source=contentpreference.go -destination=./preference_storage_mock.go -package=service myfeed/internal/service PreferenceStorage,TxManager
type PreferenceStorage interface {
	UpsertPreference(ctx context.Context, p model.ContentPreference) (model.ContentPreference, error)
	DeletePreference(ctx context.Context, params storage.DeletePreferenceParams) (int64, error)
	ListPreferences(ctx context.Context, params storage.ListPreferencesParams) ([]model.ContentPreference, error)
}

// TxManager runs fn in one transaction; storage calls made with the ctx it
// passes join that transaction.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("preference_type", func(fl validator.FieldLevel) bool {
		return model.ContentPreferenceType(fl.Field().String()).Valid()
	})
	return v
}

type ContentPreferenceService struct {
	storage PreferenceStorage
	tx      TxManager
}

func NewContentPreferenceService(s PreferenceStorage, tx TxManager) *ContentPreferenceService {
	return &ContentPreferenceService{
		storage: s,
		tx:      tx,
	}
}

func (s *ContentPreferenceService) Follow(ctx context.Context, req FollowRequest) (model.ContentPreference, error) {
	if err := checkActor(req.UserID, req.ReferenceID, req.Type); err != nil {
		return model.ContentPreference{}, err
	}
	if err := validate.Struct(req); err != nil {
		return model.ContentPreference{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	p, err := s.storage.UpsertPreference(ctx, model.ContentPreference{
		UserID:      req.UserID,
		ReferenceID: req.ReferenceID,
		Type:        req.Type,
		Status:      req.Status,
	})
	if err != nil {
		return model.ContentPreference{}, err
	}

	logger.FromContext(ctx).Info("preference followed", "user_id", req.UserID, "reference_id", req.ReferenceID, "type", req.Type, "status", req.Status)
	return p, nil
}

// Unfollow removes a follow or subscription. Removing one that does not exist
// is not an error.
func (s *ContentPreferenceService) Unfollow(ctx context.Context, req UnfollowRequest) error {
	if req.UserID == "" {
		return ErrUnauthenticated
	}
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	_, err := s.storage.DeletePreference(ctx, storage.DeletePreferenceParams{
		UserID:      req.UserID,
		ReferenceID: req.ReferenceID,
		Type:        req.Type,
		Statuses:    model.FollowStatuses,
	})
	return err
}

// Block replaces any follow of the reference with a block, scoped to FeedID
// when set.
func (s *ContentPreferenceService) Block(ctx context.Context, req BlockRequest) (model.ContentPreference, error) {
	if err := checkActor(req.UserID, req.ReferenceID, req.Type); err != nil {
		return model.ContentPreference{}, err
	}
	if err := validate.Struct(req); err != nil {
		return model.ContentPreference{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	var out model.ContentPreference
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		if _, err := s.storage.DeletePreference(ctx, storage.DeletePreferenceParams{
			UserID:      req.UserID,
			ReferenceID: req.ReferenceID,
			Type:        req.Type,
			AnyFeed:     true,
			Statuses:    model.FollowStatuses,
		}); err != nil {
			return err
		}

		p, err := s.storage.UpsertPreference(ctx, model.ContentPreference{
			UserID:      req.UserID,
			ReferenceID: req.ReferenceID,
			Type:        req.Type,
			Status:      model.ContentPreferenceStatusBlocked,
			FeedID:      req.FeedID,
		})
		if err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return model.ContentPreference{}, fmt.Errorf("block: %w", err)
	}

	logger.FromContext(ctx).Info("preference blocked", "user_id", req.UserID, "reference_id", req.ReferenceID, "type", req.Type, "feed_id", req.FeedID)
	return out, nil
}

func (s *ContentPreferenceService) Unblock(ctx context.Context, req UnblockRequest) error {
	if req.UserID == "" {
		return ErrUnauthenticated
	}
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	_, err := s.storage.DeletePreference(ctx, storage.DeletePreferenceParams{
		UserID:      req.UserID,
		ReferenceID: req.ReferenceID,
		Type:        req.Type,
		FeedID:      req.FeedID,
		Statuses:    []model.ContentPreferenceStatus{model.ContentPreferenceStatusBlocked},
	})
	return err
}

func (s *ContentPreferenceService) UserBlocked(ctx context.Context, req ListRequest) (pagination.Page[model.ContentPreference], error) {
	return s.list(ctx, req, []model.ContentPreferenceStatus{model.ContentPreferenceStatusBlocked})
}

func (s *ContentPreferenceService) UserFollowing(ctx context.Context, req ListRequest) (pagination.Page[model.ContentPreference], error) {
	req.FeedID = ""
	return s.list(ctx, req, model.FollowStatuses)
}

func (s *ContentPreferenceService) list(ctx context.Context, req ListRequest, statuses []model.ContentPreferenceStatus) (pagination.Page[model.ContentPreference], error) {
	var page pagination.Page[model.ContentPreference]

	if req.UserID == "" {
		return page, ErrUnauthenticated
	}
	if err := validate.Struct(req); err != nil {
		return page, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	params, limit, err := toListParams(req, statuses)
	if err != nil {
		return page, err
	}

	items, err := s.storage.ListPreferences(ctx, params)
	if err != nil {
		return page, err
	}

	if len(items) == 0 {
		page.HasPreviousPage = params.Direction == storage.DirectionAfter
		page.HasNextPage = params.Direction == storage.DirectionBefore
		return page, nil
	}

	switch params.Direction {
	case storage.DirectionBefore:
		// items run newest first; the peeked row is the newest one
		page.HasNextPage = true
		if len(items) > limit {
			page.HasPreviousPage = true
			items = items[len(items)-limit:]
		}
	default:
		page.HasPreviousPage = params.Direction == storage.DirectionAfter
		if len(items) > limit {
			page.HasNextPage = true
			items = items[:limit]
		}
	}

	page.Items = items
	page.Count = len(items)

	startCursor := CursorOf(items[0])
	endCursor := CursorOf(items[len(items)-1])

	page.StartCursor, page.EndCursor = startCursor.Encode(), endCursor.Encode()
	return page, nil
}

// CursorOf is the keyset position of p.
func CursorOf(p model.ContentPreference) pagination.Cursor {
	return pagination.Cursor{
		CreatedAt: p.CreatedAt,
		ID:        p.ID,
	}
}

// checkActor rejects anonymous callers and users acting on themselves.
func checkActor(userID, referenceID string, t model.ContentPreferenceType) error {
	if userID == "" {
		return ErrUnauthenticated
	}
	if t == model.ContentPreferenceTypeUser && userID == referenceID {
		return fmt.Errorf("cannot target yourself: %w", ErrForbidden)
	}
	return nil
}
