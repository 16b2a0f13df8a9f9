package api

import (
	"context"
	"errors"

	"github.com/matheus3301/conversa/internal/backend"
	"github.com/matheus3301/conversa/internal/composer"
	"github.com/matheus3301/conversa/internal/content"
	"github.com/matheus3301/conversa/internal/conversation"
	"github.com/matheus3301/conversa/internal/forward"
	convsync "github.com/matheus3301/conversa/internal/sync"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"
)

// toStatus maps domain errors to gRPC status codes.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	code := codes.Internal
	switch {
	case errors.Is(err, backend.ErrNotOwner):
		code = codes.PermissionDenied
	case errors.Is(err, backend.ErrNotFound):
		code = codes.NotFound
	case errors.Is(err, backend.ErrNotConnected):
		code = codes.Unavailable
	case errors.Is(err, composer.ErrFileTooLarge),
		errors.Is(err, content.ErrInvalidColor),
		errors.Is(err, forward.ErrNoRecipients),
		errors.Is(err, conversation.ErrSelf),
		errors.Is(err, conversation.ErrInvalidProfile),
		errors.Is(err, errInvalidArgument):
		code = codes.InvalidArgument
	case errors.Is(err, composer.ErrNothingToSend),
		errors.Is(err, composer.ErrNotRecording),
		errors.Is(err, composer.ErrNoMicrophone),
		errors.Is(err, convsync.ErrSyncInFlight),
		errors.Is(err, conversation.ErrNotOpen):
		code = codes.FailedPrecondition
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	}
	return grpcstatus.Error(code, err.Error())
}

var errInvalidArgument = errors.New("invalid argument")
