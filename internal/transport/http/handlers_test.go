package httptransport

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"honeyshop/internal/activity"
	"honeyshop/internal/cart"
	"honeyshop/internal/order"
	"honeyshop/internal/platform/middleware"
	"honeyshop/internal/product"
	"honeyshop/internal/user"
	"honeyshop/internal/user/lockout"
)

type testEnv struct {
	router    http.Handler
	userStore *user.MemoryStore
	tokens    *user.TokenIssuer
	catalog   *product.MemoryStore
	logsDir   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	logsDir := t.TempDir()
	act, err := activity.New(logsDir, log)
	require.NoError(t, err)
	t.Cleanup(func() { act.Close() })

	userStore := user.NewMemoryStore()
	tokens := user.NewTokenIssuer("test-signing-key", time.Hour)
	users := user.NewService(userStore, tokens, lockout.NewMemoryTracker(), 5, time.Minute, log)

	catalog := product.NewMemoryStore()
	products := product.NewService(catalog, log)

	cartStore := cart.NewMemoryStore()
	carts := cart.NewService(cartStore, cartStore, catalog, log)

	orders := order.NewService(order.NewMemoryStore(), products, carts, log)

	h := NewHandler(users, products, carts, orders, act, log, "memory")
	limiter := middleware.NewRateLimiter(1000, 1000, act)

	return &testEnv{
		router:    NewRouter(h, limiter),
		userStore: userStore,
		tokens:    tokens,
		catalog:   catalog,
		logsDir:   logsDir,
	}
}

func (env *testEnv) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, buf)
	req.RemoteAddr = "203.0.113.7:51234"
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

// createUser inserts an account directly and returns it with a valid token.
func (env *testEnv) createUser(t *testing.T, username, email, role string) (*user.User, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	u := &user.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
	}
	require.NoError(t, env.userStore.Create(context.Background(), u))
	token, err := env.tokens.Issue(u.ID)
	require.NoError(t, err)
	return u, token
}

func (env *testEnv) seedProduct(t *testing.T, name string, price float64, stock int) *product.Product {
	t.Helper()
	p := &product.Product{Name: name, Price: price, Stock: stock}
	require.NoError(t, env.catalog.Create(context.Background(), p))
	return p
}

// splunkEvents parses the JSON-lines sink.
func (env *testEnv) splunkEvents(t *testing.T) []activity.Event {
	t.Helper()
	f, err := os.Open(filepath.Join(env.logsDir, activity.SplunkLogName))
	require.NoError(t, err)
	defer f.Close()

	var events []activity.Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var ev activity.Event
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &ev))
		events = append(events, ev)
	}
	require.NoError(t, scanner.Err())
	return events
}

func (env *testEnv) eventsOfType(t *testing.T, activityType string) []activity.Event {
	t.Helper()
	var matched []activity.Event
	for _, ev := range env.splunkEvents(t) {
		if ev.ActivityType == activityType {
			matched = append(matched, ev)
		}
	}
	return matched
}

func lastEvent(t *testing.T, events []activity.Event) activity.Event {
	t.Helper()
	require.NotEmpty(t, events)
	return events[len(events)-1]
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestAnonymousAddInvalidProduct(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/cart", map[string]any{
		"productId": 42,
		"quantity":  1,
	}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Product not found")

	ev := lastEvent(t, env.eventsOfType(t, activity.TypeSuspicious))
	assert.Equal(t, "ADD_TO_CART_INVALID_PRODUCT", ev.Details["activity"])
	inner, ok := ev.Details["details"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 42, inner["productId"])
	assert.Equal(t, "203.0.113.7", ev.IPAddress)
	assert.Equal(t, activity.Unknown, ev.UserID)
}

func TestLoginRecordsAuthAttempt(t *testing.T) {
	env := newTestEnv(t)
	u, _ := env.createUser(t, "sample_user", "user@example.com", user.RoleUser)

	rec := env.do(t, http.MethodPost, "/api/users/login", map[string]string{
		"email":    "user@example.com",
		"password": "password123",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	res := decodeBody[map[string]any](t, rec)
	assert.NotEmpty(t, res["token"])

	ev := lastEvent(t, env.eventsOfType(t, activity.TypeAuthAttempt))
	assert.Equal(t, "user@example.com", ev.Details["email"])
	assert.Equal(t, true, ev.Details["success"])
	assert.Equal(t, fmt.Sprint(u.ID), ev.UserID)
	assert.NotEqual(t, activity.Unknown, ev.UserID)
}

func TestLoginFailureRecordsAuthAttempt(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "sample_user", "user@example.com", user.RoleUser)

	rec := env.do(t, http.MethodPost, "/api/users/login", map[string]string{
		"email":    "user@example.com",
		"password": "wrong-password",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	ev := lastEvent(t, env.eventsOfType(t, activity.TypeAuthAttempt))
	assert.Equal(t, false, ev.Details["success"])
	assert.Equal(t, activity.Unknown, ev.UserID)
}

func TestRegisterIssuesToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/users/register", map[string]string{
		"username":  "new_user",
		"email":     "new@example.com",
		"password":  "password123",
		"firstName": "New",
		"lastName":  "User",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	res := decodeBody[map[string]any](t, rec)
	assert.NotEmpty(t, res["token"])
	assert.Equal(t, "new_user", res["username"])

	ev := lastEvent(t, env.eventsOfType(t, activity.TypeAuthAttempt))
	assert.Equal(t, true, ev.Details["success"])
}

func TestOrderCreatedEvent(t *testing.T) {
	env := newTestEnv(t)
	u, token := env.createUser(t, "buyer", "buyer@example.com", user.RoleUser)
	p := env.seedProduct(t, "Wireless Headphones", 129.99, 50)

	rec := env.do(t, http.MethodPost, "/api/orders", map[string]any{
		"orderItems": []map[string]any{
			{"productId": p.ID, "name": p.Name, "price": 129.99, "quantity": 1},
		},
		"shippingAddress": map[string]string{
			"street": "456 Main St", "city": "Anytown", "state": "NY",
			"postalCode": "10001", "country": "USA",
		},
		"paymentMethod": "PayPal",
		"itemsPrice":    129.99,
		"totalPrice":    129.99,
	}, bearer(token))
	require.Equal(t, http.StatusCreated, rec.Code)

	res := decodeBody[map[string]any](t, rec)
	assert.EqualValues(t, 129.99, res["totalPrice"])

	ev := lastEvent(t, env.eventsOfType(t, activity.TypeOrderCreated))
	assert.EqualValues(t, 129.99, ev.Details["total_amount"])
	assert.Equal(t, fmt.Sprint(u.ID), ev.UserID)

	// Stock was decremented by the checkout.
	stocked := env.do(t, http.MethodGet, fmt.Sprintf("/api/products/%d", p.ID), nil, nil)
	detail := decodeBody[map[string]any](t, stocked)
	assert.EqualValues(t, 49, detail["stock"])
}

func TestCreateOrderEmptyItems(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "buyer", "buyer@example.com", user.RoleUser)

	rec := env.do(t, http.MethodPost, "/api/orders", map[string]any{
		"orderItems": []map[string]any{},
	}, bearer(token))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "No order items")

	ev := lastEvent(t, env.eventsOfType(t, activity.TypeSuspicious))
	assert.Equal(t, "CREATE_ORDER_EMPTY", ev.Details["activity"])
}

func TestGetOrderOwnership(t *testing.T) {
	env := newTestEnv(t)
	_, ownerToken := env.createUser(t, "buyer", "buyer@example.com", user.RoleUser)
	_, otherToken := env.createUser(t, "other", "other@example.com", user.RoleUser)

	rec := env.do(t, http.MethodPost, "/api/orders", map[string]any{
		"orderItems": []map[string]any{
			{"productId": 1, "name": "X", "price": 10, "quantity": 1},
		},
		"totalPrice": 10,
	}, bearer(ownerToken))
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[map[string]any](t, rec)
	orderPath := fmt.Sprintf("/api/orders/%v", created["id"])

	owned := env.do(t, http.MethodGet, orderPath, nil, bearer(ownerToken))
	assert.Equal(t, http.StatusOK, owned.Code)

	denied := env.do(t, http.MethodGet, orderPath, nil, bearer(otherToken))
	assert.Equal(t, http.StatusUnauthorized, denied.Code)

	ev := lastEvent(t, env.eventsOfType(t, activity.TypeSuspicious))
	assert.Equal(t, "GET_ORDER_UNAUTHORIZED", ev.Details["activity"])
}

func TestGuestCartSessionEcho(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedProduct(t, "Bluetooth Speaker", 89.99, 40)

	rec := env.do(t, http.MethodPost, "/api/cart", map[string]any{
		"productId": p.ID,
		"quantity":  2,
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	sid := rec.Header().Get("X-Session-Id")
	require.NotEmpty(t, sid)

	// The echoed session resolves the same cart.
	view := env.do(t, http.MethodGet, "/api/cart", nil, map[string]string{"X-Session-Id": sid})
	require.Equal(t, http.StatusOK, view.Code)
	body := decodeBody[map[string]any](t, view)
	items, ok := body["cartItems"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)

	ev := lastEvent(t, env.eventsOfType(t, activity.TypeCartOperation))
	assert.Equal(t, "VIEW", ev.Details["operation"])
	assert.Equal(t, sid, ev.SessionID)
}

func TestCartUpdateInvalidQuantity(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "buyer", "buyer@example.com", user.RoleUser)
	p := env.seedProduct(t, "Gaming Console", 499.99, 10)

	added := env.do(t, http.MethodPost, "/api/cart", map[string]any{
		"productId": p.ID, "quantity": 1,
	}, bearer(token))
	require.Equal(t, http.StatusCreated, added.Code)

	rec := env.do(t, http.MethodPut, fmt.Sprintf("/api/cart/%d", p.ID), map[string]any{
		"quantity": 0,
	}, bearer(token))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Quantity must be greater than 0")

	ev := lastEvent(t, env.eventsOfType(t, activity.TypeSuspicious))
	assert.Equal(t, "UPDATE_CART_INVALID_QUANTITY", ev.Details["activity"])
}

func TestProductViewEvent(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedProduct(t, "Smartphone X Pro", 899.99, 25)

	rec := env.do(t, http.MethodGet, fmt.Sprintf("/api/products/%d", p.ID), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	ev := lastEvent(t, env.eventsOfType(t, activity.TypeProductView))
	assert.EqualValues(t, p.ID, ev.Details["product_id"])
}

func TestProductNotFoundFlagged(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/products/9999", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	ev := lastEvent(t, env.eventsOfType(t, activity.TypeSuspicious))
	assert.Equal(t, "GET_PRODUCT_NOT_FOUND", ev.Details["activity"])
}

func TestProtectedRouteWithoutToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/users/profile", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Not authorized, no token")

	ev := lastEvent(t, env.eventsOfType(t, activity.TypeSuspicious))
	assert.Equal(t, "AUTH_NO_TOKEN", ev.Details["activity"])
	// Suspicious events carry parsed user-agent forensics.
	assert.Contains(t, ev.Details["ua_browser"], "Chrome")
}

func TestProtectedRouteBadToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/users/profile", nil, bearer("garbage-token"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	ev := lastEvent(t, env.eventsOfType(t, activity.TypeSuspicious))
	assert.Equal(t, "AUTH_TOKEN_ERROR", ev.Details["activity"])
	// Only a prefix of the presented token is recorded.
	assert.Equal(t, "garbage-to...", ev.Details["token"])
}

func TestAdminOnlyRoutes(t *testing.T) {
	env := newTestEnv(t)
	_, userToken := env.createUser(t, "plain", "plain@example.com", user.RoleUser)
	_, adminToken := env.createUser(t, "admin", "admin@example.com", user.RoleAdmin)

	denied := env.do(t, http.MethodPost, "/api/products", map[string]any{}, bearer(userToken))
	assert.Equal(t, http.StatusForbidden, denied.Code)
	ev := lastEvent(t, env.eventsOfType(t, activity.TypeSuspicious))
	assert.Equal(t, "ADMIN_ACCESS_DENIED", ev.Details["activity"])

	allowed := env.do(t, http.MethodPost, "/api/products", map[string]any{}, bearer(adminToken))
	require.Equal(t, http.StatusCreated, allowed.Code)
	res := decodeBody[map[string]any](t, allowed)
	assert.Equal(t, "Sample Name", res["name"])
}

func TestAPINotFoundFlagged(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/admin/secret-backup", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "API route not found")

	ev := lastEvent(t, env.eventsOfType(t, activity.TypeSuspicious))
	assert.Equal(t, "API_NOT_FOUND", ev.Details["activity"])
	inner, ok := ev.Details["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "/api/admin/secret-backup", inner["path"])
}

func TestEveryRequestHitsFirehose(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodGet, "/api/health", nil, nil)
	env.do(t, http.MethodGet, "/api/products", nil, nil)
	env.do(t, http.MethodGet, "/api/nope", nil, nil)

	events := env.eventsOfType(t, activity.TypeHTTPRequest)
	assert.Len(t, events, 3)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "OK", res["status"])
	assert.Equal(t, "memory", res["database"])
}

func TestProfileRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "buyer", "buyer@example.com", user.RoleUser)

	updated := env.do(t, http.MethodPut, "/api/users/profile", map[string]any{
		"firstName": "Updated",
		"address":   map[string]string{"city": "Anytown"},
	}, bearer(token))
	require.Equal(t, http.StatusOK, updated.Code)

	rec := env.do(t, http.MethodGet, "/api/users/profile", nil, bearer(token))
	require.Equal(t, http.StatusOK, rec.Code)
	res := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "Updated", res["firstName"])
	addr, ok := res["address"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Anytown", addr["city"])
}

func TestInvalidProductIDProbe(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/products/1%20OR%201=1", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	ev := lastEvent(t, env.eventsOfType(t, activity.TypeSuspicious))
	assert.Equal(t, "GET_PRODUCT_NOT_FOUND", ev.Details["activity"])
	inner, ok := ev.Details["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "1 OR 1=1", inner["productId"])
}
