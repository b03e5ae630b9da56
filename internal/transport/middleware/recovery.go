package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/workhq/workplace-bot/internal"
)

// RecoveryMiddleware provides panic recovery with detailed logging
func RecoveryMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					appErr := internal.NewInternalError("Internal server error", fmt.Errorf("panic: %v", rec))
					logger.Error("panic recovered",
						"error", rec,
						"code", appErr.Code,
						"method", r.Method,
						"url", r.URL.String(),
						"stack", string(debug.Stack()))

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(appErr.StatusCode)
					fmt.Fprintf(w, `{"error": %q, "message": %q}`, appErr.Code, appErr.Message)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
