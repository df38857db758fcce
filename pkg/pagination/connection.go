package pagination

// PageInfo is the page metadata of a GraphQL connection.
type PageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

type Edge[T any] struct {
	Node   T      `json:"node"`
	Cursor string `json:"cursor,omitempty"`
}

// Connection is one page of a cursor-paginated collection. Edges keep the
// order the server returned them in.
type Connection[T any] struct {
	Edges    []Edge[T] `json:"edges"`
	PageInfo PageInfo  `json:"pageInfo"`
}

func (c Connection[T]) Nodes() []T {
	out := make([]T, 0, len(c.Edges))
	for _, e := range c.Edges {
		out = append(out, e.Node)
	}
	return out
}

// NextPageParam returns the cursor of the page after pi and whether there is
// one. A nil pi means no page was fetched yet.
func NextPageParam(pi *PageInfo) (string, bool) {
	if pi == nil || !pi.HasNextPage {
		return "", false
	}
	return pi.EndCursor, true
}

// ToConnection converts a server page into a connection. Every edge carries
// its own cursor.
func ToConnection[T, N any](p Page[T], cursorOf func(T) string, node func(T) N) Connection[N] {
	conn := Connection[N]{Edges: make([]Edge[N], 0, len(p.Items))}
	for _, it := range p.Items {
		conn.Edges = append(conn.Edges, Edge[N]{Node: node(it), Cursor: cursorOf(it)})
	}
	conn.PageInfo.HasNextPage = p.HasNextPage
	if p.EndCursor != nil {
		conn.PageInfo.EndCursor = *p.EndCursor
	}
	return conn
}
