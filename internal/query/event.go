package query

import (
	"context"

	"myfeed/pkg/querykey"
)

// Event announces that a mutation changed some collection in Domain. Actor
// and Entity narrow the affected keys; empty values match everything.
type Event struct {
	Domain querykey.RequestKey
	Actor  string
	Entity string
}

func (e Event) Matches(k querykey.Key) bool {
	if k.Domain != e.Domain {
		return false
	}
	if e.Actor != "" && k.Actor != e.Actor {
		return false
	}
	if e.Entity != "" {
		if entity := k.Variable("entity"); entity != "" && entity != e.Entity {
			return false
		}
	}
	return true
}

// Bus carries invalidation events from mutation call sites to query
// observers.
type Bus interface {
	Subscribe(ctx context.Context, domain querykey.RequestKey, match func(Event) bool) (<-chan Event, error)
	Publish(ctx context.Context, ev Event) error
}
