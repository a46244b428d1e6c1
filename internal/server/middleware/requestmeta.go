package middleware

import (
	"net"
	"net/http"

	"github.com/keyfort/keyfort/internal/requestctx"
)

// RequestMeta captures the client address and request path into the request
// context so the audit loggers can read them without touching *http.Request.
// It runs after chi's RealIP middleware, which rewrites RemoteAddr from
// forwarding headers.
func RequestMeta() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ctx = requestctx.WithClientAddr(ctx, clientIP(r.RemoteAddr))
			ctx = requestctx.WithRequestPath(ctx, r.URL.Path)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// clientIP strips the port from a host:port remote address and canonicalizes
// the IP. Canonical form keeps even the longest valid IPv6 spellings inside
// the audit trail's address bound. RealIP may have replaced RemoteAddr with a
// forwarded value; anything unparsable yields the empty string, which the
// audit accessors report as the Unknown sentinel.
func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}

	ip := net.ParseIP(host)
	if ip == nil {
		return ""
	}
	return ip.String()
}
