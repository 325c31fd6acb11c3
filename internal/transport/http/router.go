// Package httptransport is the thin HTTP layer: routing, request decoding,
// response encoding, and the per-endpoint activity capture. Business rules
// live in the domain services.
package httptransport

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"honeyshop/internal/activity"
	"honeyshop/internal/cart"
	"honeyshop/internal/order"
	"honeyshop/internal/platform/metrics"
	"honeyshop/internal/platform/middleware"
	"honeyshop/internal/product"
	"honeyshop/internal/user"
	"honeyshop/pkg/httputil"
	"honeyshop/pkg/requestcontext"
)

// Handler holds the domain services the routes delegate to.
type Handler struct {
	users    *user.Service
	products *product.Service
	carts    *cart.Service
	orders   *order.Service
	activity *activity.Logger
	logger   *slog.Logger
	database string
	started  time.Time
}

func NewHandler(users *user.Service, products *product.Service, carts *cart.Service, orders *order.Service, act *activity.Logger, logger *slog.Logger, database string) *Handler {
	return &Handler{
		users:    users,
		products: products,
		carts:    carts,
		orders:   orders,
		activity: act,
		logger:   logger,
		database: database,
		started:  time.Now(),
	}
}

// NewRouter wires the API routes behind the shared middleware chain. The
// firehose middleware records every inbound request before routing, so even
// probes of nonexistent paths land in the activity log.
func NewRouter(h *Handler, limiter *middleware.RateLimiter) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Logging(h.logger))
	r.Use(metrics.CountRequests)
	r.Use(limiter.Handler)
	r.Use(h.recordRequest)

	r.Route("/api/users", func(r chi.Router) {
		r.Post("/register", h.handleRegister)
		r.Post("/login", h.handleLogin)
		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)
			r.Get("/profile", h.handleGetProfile)
			r.Put("/profile", h.handleUpdateProfile)
		})
	})

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.handleListProducts)
		r.Get("/{id}", h.handleGetProduct)
		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)
			r.Post("/", h.requireAdmin(h.handleCreateProduct))
			r.Put("/{id}", h.requireAdmin(h.handleUpdateProduct))
			r.Delete("/{id}", h.requireAdmin(h.handleDeleteProduct))
		})
	})

	r.Route("/api/cart", func(r chi.Router) {
		r.Use(h.optionalAuth)
		r.Get("/", h.handleGetCart)
		r.Post("/", h.handleAddToCart)
		r.Put("/{productId}", h.handleUpdateCartItem)
		r.Delete("/{productId}", h.handleRemoveFromCart)
	})

	r.Route("/api/orders", func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Post("/", h.handleCreateOrder)
		r.Get("/", h.requireAdmin(h.handleListOrders))
		r.Get("/myorders", h.handleMyOrders)
		r.Get("/{id}", h.handleGetOrder)
		r.Put("/{id}/pay", h.handlePayOrder)
		r.Put("/{id}/deliver", h.requireAdmin(h.handleDeliverOrder))
	})

	r.Get("/api/health", h.handleHealth)

	r.NotFound(h.handleNotFound)
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return r
}

// recordRequest is the HTTP_REQUEST firehose: one event per inbound request
// regardless of the route outcome.
func (h *Handler) recordRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		details := activity.Details{
			"method": r.Method,
			"url":    r.URL.RequestURI(),
			"query":  r.URL.Query(),
		}
		if sid := requestcontext.SessionID(r.Context()); sid != "" {
			details["session_id"] = sid
		}
		h.activity.Record(activity.TypeHTTPRequest, details, activity.FromRequest(r))
		next.ServeHTTP(w, r)
	})
}

// handleNotFound flags probes of unknown API paths; scanners walking the
// URL space are exactly what the honeypot wants on record.
func (h *Handler) handleNotFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		h.activity.Suspicious("API_NOT_FOUND", activity.Details{
			"path": r.URL.Path,
		}, requestcontext.SessionID(r.Context()), activity.FromRequest(r))
		httputil.WriteMessage(w, http.StatusNotFound, "API route not found")
		return
	}
	httputil.WriteMessage(w, http.StatusNotFound, "Not found")
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.activity.APIAccess("/api/health", http.MethodGet, 0, requestcontext.SessionID(r.Context()), activity.FromRequest(r))
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(h.started).Seconds(),
		"database":  h.database,
	})
}
