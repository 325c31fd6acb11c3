// Package middleware holds the cross-cutting HTTP middleware chain:
// client metadata capture, request IDs, request logging, rate limiting
// and prometheus accounting.
package middleware

import (
	"net/http"

	"honeyshop/internal/activity"
	"honeyshop/pkg/requestcontext"
)

// SessionHeader carries the guest session ID issued for anonymous carts.
const SessionHeader = "X-Session-Id"

// ClientMetadata extracts the client IP, User-Agent and guest session ID
// from the request and stores them on the context. Applied early in the
// chain so every downstream consumer sees the same values.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx = requestcontext.WithClientMetadata(ctx, activity.ClientIP(r), r.Header.Get("User-Agent"))
		if sid := r.Header.Get(SessionHeader); sid != "" {
			ctx = requestcontext.WithSessionID(ctx, sid)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
