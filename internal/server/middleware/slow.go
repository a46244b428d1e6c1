package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// SlowPerformanceLogger records a slow request in the audit trail.
// *audit.Recorder satisfies this interface.
type SlowPerformanceLogger interface {
	LogSlowPerformance(ctx context.Context, responseTimeMillis int64) error
}

// SlowRequest measures each request and records an audit entry when the
// response time exceeds threshold. The entry is written after the response
// has been sent, so slow requests are not made slower by their own logging.
func SlowRequest(slow SlowPerformanceLogger, threshold time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)

			elapsed := time.Since(start)
			if elapsed < threshold {
				return
			}

			millis := elapsed.Milliseconds()
			if millis < 1 {
				millis = 1
			}

			if err := slow.LogSlowPerformance(r.Context(), millis); err != nil {
				log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to record slow-request audit entry")
			}
		})
	}
}
