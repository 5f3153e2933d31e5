package service

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/moves/internal/apperr"
	"github.com/mmynk/moves/internal/auth"
	"github.com/mmynk/moves/internal/middleware"
)

// toConnectError maps domain errors to Connect codes. Anything that is not a
// domain error is reported as internal.
func toConnectError(err error) error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return err
	}
	switch apperr.CodeOf(err) {
	case apperr.CodeValidation:
		return connect.NewError(connect.CodeInvalidArgument, err)
	case apperr.CodePermission:
		return connect.NewError(connect.CodePermissionDenied, err)
	case apperr.CodeNotFound:
		return connect.NewError(connect.CodeNotFound, err)
	case apperr.CodeExpired:
		return connect.NewError(connect.CodeFailedPrecondition, err)
	}
	if errors.Is(err, context.Canceled) {
		return connect.NewError(connect.CodeCanceled, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}

// callerID returns the authenticated user, or an unauthenticated error.
func callerID(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}

// requireField rejects an empty identifier before it reaches the domain layer.
func requireField(name, value string) error {
	if value == "" {
		return connect.NewError(connect.CodeInvalidArgument, apperr.Validation("%s required", name))
	}
	return nil
}
