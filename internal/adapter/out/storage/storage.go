package storage

import (
	"errors"

	"myfeed/internal/model"
	"myfeed/pkg/pagination"
)

type Direction int

const (
	DirectionUnspecified Direction = iota
	DirectionAfter
	DirectionBefore
)

var (
	ErrDirectionUnset = errors.New("direction must be set")
)

// ListPreferencesParams selects one user's preferences of a type. Without a
// cursor the newest Limit rows are returned; with one, Direction picks the
// side of the cursor. Rows always come back newest first.
type ListPreferencesParams struct {
	UserID    string
	Type      model.ContentPreferenceType
	Statuses  []model.ContentPreferenceStatus
	FeedID    string
	Cursor    *pagination.Cursor
	Direction Direction
	Limit     int
}

// DeletePreferenceParams removes the row for (UserID, ReferenceID, Type,
// FeedID) if its status is one of Statuses. An empty Statuses matches any
// status; AnyFeed ignores FeedID.
type DeletePreferenceParams struct {
	UserID      string
	ReferenceID string
	Type        model.ContentPreferenceType
	FeedID      string
	AnyFeed     bool
	Statuses    []model.ContentPreferenceStatus
}
