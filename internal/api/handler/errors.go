package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/kiranshivaraju/callcoach/internal/aggregate"
	mw "github.com/kiranshivaraju/callcoach/internal/api/middleware"
	"github.com/kiranshivaraju/callcoach/internal/api/response"
	"github.com/kiranshivaraju/callcoach/internal/calls"
	"github.com/kiranshivaraju/callcoach/internal/coach"
	"github.com/kiranshivaraju/callcoach/internal/framework"
	"github.com/kiranshivaraju/callcoach/internal/recording"
	"github.com/kiranshivaraju/callcoach/internal/store"
	"github.com/kiranshivaraju/callcoach/internal/transcript"
)

// writeError maps a service error onto the error envelope.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		response.Error(w, http.StatusGatewayTimeout, "TIMEOUT",
			"The request did not complete in time", nil)
	case errors.Is(err, coach.ErrInvalidInput), errors.Is(err, framework.ErrUnknownFramework):
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	case errors.Is(err, calls.ErrNotFound), errors.Is(err, transcript.ErrNotFound),
		errors.Is(err, recording.ErrNotFound), errors.Is(err, store.ErrNotFound):
		response.Error(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, recording.ErrRateLimited):
		response.Error(w, http.StatusTooManyRequests, "UPSTREAM_RATE_LIMITED",
			"The recording platform is rate limiting requests, try again shortly", nil)
	case errors.Is(err, recording.ErrAuthFailed):
		response.Error(w, http.StatusBadGateway, "UPSTREAM_AUTH_FAILED",
			"The recording platform rejected the configured credentials", nil)
	case errors.Is(err, recording.ErrForbidden):
		response.Error(w, http.StatusBadGateway, "UPSTREAM_FORBIDDEN",
			"The configured credentials may not access this resource", nil)
	case errors.Is(err, aggregate.ErrNoAnalyzableCalls):
		response.Error(w, http.StatusUnprocessableEntity, "NO_ANALYZABLE_CALLS", err.Error(), nil)
	default:
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", mw.GetRequestID(r.Context()),
			"error", err,
		)
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"An unexpected error occurred", nil)
	}
}
