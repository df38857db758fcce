package contentpreference

import (
	"context"

	"myfeed/internal/adapter/out/gqlclient"
)

//go:generate mockgen -source=requester.go -destination=./requester_mock.go -package=contentpreference myfeed/internal/contentpreference Requester
type Requester interface {
	Request(ctx context.Context, doc gqlclient.Document, vars map[string]any, out any) error
}
