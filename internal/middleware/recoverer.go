// AngelaMos | 2026
// recoverer.go

package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/getsentry/sentry-go"

	"github.com/carterperez-dev/staff-portal/internal/core"
)

// Recoverer gives every request its own Sentry hub and turns panics into
// a 500 response after reporting them.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub := sentry.CurrentHub().Clone()
		hub.Scope().SetRequest(r)
		hub.Scope().SetTag("request_id", GetRequestID(r.Context()))
		ctx := sentry.SetHubOnContext(r.Context(), hub)

		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			hub.RecoverWithContext(ctx, rec)
			slog.ErrorContext(ctx, "panic recovered",
				"panic", fmt.Sprint(rec),
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)
			core.JSONError(w, nil)
		}()

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
