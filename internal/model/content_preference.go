package model

import "time"

// ContentPreferenceType is the kind of entity a preference points at.
type ContentPreferenceType string

const (
	ContentPreferenceTypeUser    ContentPreferenceType = "user"
	ContentPreferenceTypeSource  ContentPreferenceType = "source"
	ContentPreferenceTypeKeyword ContentPreferenceType = "keyword"
	ContentPreferenceTypeWord    ContentPreferenceType = "word"
)

func (t ContentPreferenceType) Valid() bool {
	switch t {
	case ContentPreferenceTypeUser, ContentPreferenceTypeSource, ContentPreferenceTypeKeyword, ContentPreferenceTypeWord:
		return true
	}
	return false
}

type ContentPreferenceStatus string

const (
	ContentPreferenceStatusFollow     ContentPreferenceStatus = "follow"
	ContentPreferenceStatusSubscribed ContentPreferenceStatus = "subscribed"
	ContentPreferenceStatusBlocked    ContentPreferenceStatus = "blocked"
)

func (s ContentPreferenceStatus) Valid() bool {
	switch s {
	case ContentPreferenceStatusFollow, ContentPreferenceStatusSubscribed, ContentPreferenceStatusBlocked:
		return true
	}
	return false
}

// FollowStatuses are the statuses that count as following.
var FollowStatuses = []ContentPreferenceStatus{
	ContentPreferenceStatusFollow,
	ContentPreferenceStatusSubscribed,
}

// ContentPreference is a user's relation to another entity. FeedID scopes a
// block to one custom feed; empty means every feed.
type ContentPreference struct {
	ID          int64
	UserID      string
	ReferenceID string
	Type        ContentPreferenceType
	Status      ContentPreferenceStatus
	FeedID      string
	CreatedAt   time.Time
}
