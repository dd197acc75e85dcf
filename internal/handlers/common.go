// Package handlers exposes the sync engine over HTTP. Each entity kind
// gets one handler type holding the reconciler and a logger; route
// registration lives in the di package.
package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"memorybox-backend/pkg/api"
	appErrors "memorybox-backend/pkg/errors"
)

// contextKey is used for context values.
type contextKey struct {
	name string
}

var userIDKey = contextKey{"userID"}

// UserIDHeader names the header the frontend proxy forwards the
// authenticated subject in. Token validation happens upstream.
const UserIDHeader = "X-User-ID"

// Authenticator extracts the caller identity from the forwarded header
// and stores it on the request context. Requests without one are
// rejected before they reach a handler.
func Authenticator(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.Header.Get(UserIDHeader)
			if userID == "" {
				logger.Warn("request without user identity",
					zap.String("path", r.URL.Path),
				)
				api.Error(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// getUserID safely extracts the caller identity from context.
func getUserID(r *http.Request) (string, bool) {
	userIDVal := r.Context().Value(userIDKey)
	if userIDVal == nil {
		return "", false
	}
	userID, ok := userIDVal.(string)
	return userID, ok && userID != ""
}

// handleServiceError converts reconciler errors to HTTP responses. A
// rejected destructive save deliberately never lands here: callers treat
// it as success before reaching this function.
func handleServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case appErrors.IsValidation(err) || appErrors.IsIdentifierInvalid(err):
		logger.Info("request rejected", zap.Error(err))
		api.Error(w, http.StatusBadRequest, err.Error())
	case appErrors.IsNotFound(err):
		api.Error(w, http.StatusNotFound, err.Error())
	case appErrors.IsExhausted(err) || appErrors.IsRemoteUnavailable(err):
		logger.Warn("save could not reach the backend", zap.Error(err))
		api.Error(w, http.StatusServiceUnavailable, "Could not save your changes. Check your connection and retry.")
	default:
		logger.Error("unhandled service error", zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "An internal error occurred")
	}
}
