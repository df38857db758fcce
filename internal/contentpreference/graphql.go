package contentpreference

import (
	"time"

	"myfeed/internal/adapter/out/gqlclient"
	"myfeed/internal/model"
)

const (
	DefaultBlockedLimit = 20
	DefaultFollowLimit  = 20

	StaleTimeDefault = time.Minute
)

// ContentPreference is a node of the userBlocked / userFollowing connections.
type ContentPreference struct {
	ReferenceID string                        `json:"referenceId"`
	Type        model.ContentPreferenceType   `json:"type"`
	Status      model.ContentPreferenceStatus `json:"status"`
	FeedID      *string                       `json:"feedId"`
	CreatedAt   time.Time                     `json:"createdAt"`
}

const contentPreferenceFragment = `
fragment ContentPreferenceFields on ContentPreference {
  referenceId
  type
  status
  feedId
  createdAt
}`

var UserBlockedQuery = gqlclient.MustParse(`
query UserBlocked($id: ID, $entity: ContentPreferenceType!, $feedId: String, $first: Int, $after: String) {
  userBlocked(userId: $id, entity: $entity, feedId: $feedId, first: $first, after: $after) {
    edges {
      node { ...ContentPreferenceFields }
      cursor
    }
    pageInfo {
      hasNextPage
      endCursor
    }
  }
}` + contentPreferenceFragment)

var UserFollowingQuery = gqlclient.MustParse(`
query UserFollowing($id: ID, $entity: ContentPreferenceType!, $first: Int, $after: String) {
  userFollowing(userId: $id, entity: $entity, first: $first, after: $after) {
    edges {
      node { ...ContentPreferenceFields }
      cursor
    }
    pageInfo {
      hasNextPage
      endCursor
    }
  }
}` + contentPreferenceFragment)

var FollowMutation = gqlclient.MustParse(`
mutation Follow($id: ID!, $entity: ContentPreferenceType!, $status: ContentPreferenceStatus!) {
  follow(id: $id, entity: $entity, status: $status) {
    _
  }
}`)

var UnfollowMutation = gqlclient.MustParse(`
mutation Unfollow($id: ID!, $entity: ContentPreferenceType!) {
  unfollow(id: $id, entity: $entity) {
    _
  }
}`)

var BlockMutation = gqlclient.MustParse(`
mutation Block($id: ID!, $entity: ContentPreferenceType!, $feedId: String) {
  block(id: $id, entity: $entity, feedId: $feedId) {
    _
  }
}`)

var UnblockMutation = gqlclient.MustParse(`
mutation Unblock($id: ID!, $entity: ContentPreferenceType!, $feedId: String) {
  unblock(id: $id, entity: $entity, feedId: $feedId) {
    _
  }
}`)
