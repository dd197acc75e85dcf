package middleware

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"memorybox-backend/pkg/api"
)

// Timeout bounds each request with a deadline. The wrapped context is
// what the reconciler's retry loop watches, so a request that spends its
// budget inside a backoff sleep stops there; the 504 below only fires if
// the handler itself has not answered by the deadline.
func Timeout(timeout time.Duration, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			done := make(chan struct{})
			r = r.WithContext(ctx)

			go func() {
				defer close(done)
				// Recovery sits outside this middleware on another
				// goroutine and cannot catch panics raised here.
				defer func() {
					if err := recover(); err != nil {
						logger.Error("handler panicked inside timeout scope",
							zap.Any("panic", err),
							zap.String("request_id", GetRequestID(ctx)),
						)
						if w.Header().Get("Content-Type") == "" {
							api.Error(w, http.StatusInternalServerError, "Internal server error")
						}
					}
				}()
				next.ServeHTTP(w, r)
			}()

			select {
			case <-done:
			case <-ctx.Done():
				logger.Warn("request exceeded deadline",
					zap.String("request_id", GetRequestID(ctx)),
					zap.String("path", r.URL.Path),
					zap.Duration("timeout", timeout),
				)
				if w.Header().Get("Content-Type") == "" {
					api.Error(w, http.StatusGatewayTimeout, "Request timed out")
				}
			}
		})
	}
}
