package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/pointpool/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func codeFor(err error) codes.Code {
	switch {
	case errors.Is(err, common.ErrNameExists):
		return codes.AlreadyExists
	case errors.Is(err, common.ErrTooSoon):
		return codes.ResourceExhausted
	case errors.Is(err, common.ErrPoolClosed), errors.Is(err, common.ErrInsufficientFunds):
		return codes.FailedPrecondition
	case errors.Is(err, common.ErrNotFound):
		return codes.NotFound
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	}

	switch common.KindOf(err) {
	case common.KindValidation:
		return codes.InvalidArgument
	case common.KindAuthentication:
		return codes.Unauthenticated
	case common.KindConsistency:
		return codes.Aborted
	default:
		return codes.Internal
	}
}

// toStatus converts a service error into a status carrying only the public
// message.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	code := codeFor(err)
	switch code {
	case codes.Internal:
		s.logger.Error(ctx, "rpc failed", "error", err)
	case codes.Unauthenticated:
		s.logger.Info(ctx, "rpc unauthenticated", "reason", err)
	}
	return status.Error(code, common.PublicMessage(err))
}
