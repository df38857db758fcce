package graphql

import (
	"context"
	"errors"

	"myfeed/internal/service"
	"myfeed/pkg/logger"

	"github.com/vektah/gqlparser/v2/gqlerror"
)

// Values of the "code" error extension.
const (
	CodeOK               = "OK"
	CodeValidationFailed = "GRAPHQL_VALIDATION_FAILED"
	CodeBadUserInput     = "BAD_USER_INPUT"
	CodeUnauthenticated  = "UNAUTHENTICATED"
	CodeForbidden        = "FORBIDDEN"
	CodeNotFound         = "NOT_FOUND"
	CodeInternal         = "INTERNAL_SERVER_ERROR"
)

func errorCode(err error) string {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		return CodeBadUserInput
	case errors.Is(err, service.ErrUnauthenticated):
		return CodeUnauthenticated
	case errors.Is(err, service.ErrForbidden):
		return CodeForbidden
	case errors.Is(err, service.ErrNotFound):
		return CodeNotFound
	default:
		return CodeInternal
	}
}

// resolverError hides the details of unexpected failures from the client.
func resolverError(ctx context.Context, err error) *gqlerror.Error {
	if errorCode(err) == CodeInternal {
		logger.FromContext(ctx).Error("graphql resolver failed", "error", err)
		return gqlerror.Errorf("internal error")
	}
	return gqlerror.Errorf("%s", err.Error())
}
