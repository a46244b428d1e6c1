package middleware

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog/log"
)

// ExceptionLogger records a request-pipeline failure in the audit trail.
// *audit.Recorder satisfies this interface.
type ExceptionLogger interface {
	LogException(ctx context.Context, cause error) error
}

// Recover converts panics into 500 responses and records each one as an
// exception audit entry carrying the panic value and its stack trace.
func Recover(exceptions ExceptionLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				cause := fmt.Errorf("panic: %v\n%s", rec, debug.Stack())
				if logErr := exceptions.LogException(r.Context(), cause); logErr != nil {
					log.Error().Err(logErr).Msg("failed to record exception audit entry")
				}

				log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("request panicked")
				http.Error(w, `{"title":"Internal Server Error","status":500}`, http.StatusInternalServerError)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
