package graphql

import (
	"encoding/json"
	"strconv"
	"time"

	"myfeed/internal/model"
	"myfeed/internal/service"
	"myfeed/pkg/pagination"
)

func toPreferenceNode(p model.ContentPreference) map[string]any {
	var feedID any
	if p.FeedID != "" {
		feedID = p.FeedID
	}
	return map[string]any{
		"referenceId": p.ReferenceID,
		"userId":      p.UserID,
		"type":        string(p.Type),
		"status":      string(p.Status),
		"feedId":      feedID,
		"createdAt":   p.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toConnection(page pagination.Page[model.ContentPreference]) map[string]any {
	conn := pagination.ToConnection(page, cursorString, toPreferenceNode)
	edges := make([]any, 0, len(conn.Edges))
	for _, e := range conn.Edges {
		edges = append(edges, map[string]any{
			"node":   e.Node,
			"cursor": e.Cursor,
		})
	}
	return map[string]any{
		"edges": edges,
		"pageInfo": map[string]any{
			"hasNextPage":     page.HasNextPage,
			"hasPreviousPage": page.HasPreviousPage,
			"startCursor":     optString(page.StartCursor),
			"endCursor":       optString(page.EndCursor),
		},
	}
}

func cursorString(p model.ContentPreference) string {
	return *service.CursorOf(p).Encode()
}

func emptyResponse() map[string]any {
	return map[string]any{"_": true}
}

func toPageRequest(args map[string]any) pagination.PageRequest {
	var after *string
	if s := argString(args, "after"); s != "" {
		after = &s
	}
	first, _ := argInt(args, "first")
	return pagination.PageRequest{
		Limit:       first,
		AfterCursor: after,
	}
}

func optString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func argString(args map[string]any, name string) string {
	s, _ := args[name].(string)
	return s
}

// argInt reads an Int argument given either inline (int64) or as a decoded
// JSON variable.
func argInt(args map[string]any, name string) (int, bool) {
	switch v := args[name].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	}
	return 0, false
}
