package httptransport

import (
	"context"
	"net/http"
	"strings"

	"honeyshop/internal/activity"
	"honeyshop/internal/user"
	"honeyshop/pkg/httputil"
	"honeyshop/pkg/requestcontext"
)

type authedUserKey struct{}

// authedUser returns the account resolved by the auth middleware, or nil
// for anonymous requests.
func authedUser(ctx context.Context) *user.User {
	u, _ := ctx.Value(authedUserKey{}).(*user.User)
	return u
}

// requireAuth resolves the bearer token to an account. Every failure mode
// gets its own suspicious sub-tag; honeypot visitors probing auth are the
// most interesting kind.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := activity.FromRequest(r)
		sid := requestcontext.SessionID(r.Context())

		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			h.activity.Suspicious("AUTH_NO_TOKEN", activity.Details{
				"ip":  req.IP,
				"url": req.URL,
			}, sid, req)
			httputil.WriteMessage(w, http.StatusUnauthorized, "Not authorized, no token")
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token == "" {
			h.activity.Suspicious("AUTH_MISSING_TOKEN", activity.Details{
				"ip":  req.IP,
				"url": req.URL,
			}, sid, req)
			httputil.WriteMessage(w, http.StatusUnauthorized, "Not authorized, no token provided")
			return
		}

		u, err := h.users.Authenticate(r.Context(), token)
		if err != nil {
			h.activity.Suspicious("AUTH_TOKEN_ERROR", activity.Details{
				"token": tokenPrefix(token),
			}, sid, req)
			httputil.WriteMessage(w, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}

		h.activity.APIAccess(r.URL.Path, r.Method, u.ID, sid, req)

		ctx := requestcontext.WithUserID(r.Context(), u.ID)
		ctx = context.WithValue(ctx, authedUserKey{}, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// optionalAuth resolves the bearer token when present but lets anonymous
// requests through; carts work for guests.
func (h *Handler) optionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			next.ServeHTTP(w, r)
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		u, err := h.users.Authenticate(r.Context(), token)
		if err != nil {
			// A bad token on a public route is still worth flagging, but
			// the request proceeds as anonymous.
			h.activity.Suspicious("AUTH_TOKEN_ERROR", activity.Details{
				"token": tokenPrefix(token),
			}, requestcontext.SessionID(r.Context()), activity.FromRequest(r))
			next.ServeHTTP(w, r)
			return
		}

		ctx := requestcontext.WithUserID(r.Context(), u.ID)
		ctx = context.WithValue(ctx, authedUserKey{}, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin guards admin-only endpoints. Runs after requireAuth.
func (h *Handler) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := authedUser(r.Context())
		if u == nil || !u.IsAdmin() {
			h.activity.Suspicious("ADMIN_ACCESS_DENIED", activity.Details{
				"url":    r.URL.Path,
				"userId": userIDDetail(r.Context()),
			}, requestcontext.SessionID(r.Context()), activity.FromRequest(r))
			httputil.WriteMessage(w, http.StatusForbidden, "Not authorized as admin")
			return
		}
		next(w, r)
	}
}

// tokenPrefix truncates a token for logging so credentials never land in
// the activity log whole.
func tokenPrefix(token string) string {
	if len(token) <= 10 {
		return token + "..."
	}
	return token[:10] + "..."
}

func userIDDetail(ctx context.Context) any {
	if id := requestcontext.UserID(ctx); id != 0 {
		return id
	}
	return nil
}
