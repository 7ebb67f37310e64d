package main

import (
	"context"
	"encoding/base64"
	"net/http"
	"testing"
	"time"

	"folio/internal/auth"
	"folio/internal/domain/orders"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminToken(t *testing.T, email string) string {
	t.Helper()
	claims := auth.Claims{
		Email: email,
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Audience:  jwt.ClaimStrings{"authenticated"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return "Bearer " + s
}

func seedOrders(t *testing.T, env *testEnv) {
	t.Helper()
	ctx := context.Background()
	now := time.Now()
	_, _, err := env.orders.Upsert(ctx, &orders.PaymentOrder{
		GatewayOrderID: "order_done", Amount: 100000, Currency: "INR", Status: orders.StatusCompleted,
		Gateway: "razorpay", Verified: true, VerifiedAt: &now,
	})
	require.NoError(t, err)
	require.NoError(t, env.orders.CreatePending(ctx, &orders.PaymentOrder{
		GatewayOrderID: "PP-pending", Amount: 2500, Currency: "USD", Gateway: "paypal",
	}))
}

func TestAdminOrders_List(t *testing.T) {
	env := newTestEnv(t)
	seedOrders(t, env)

	rr := env.do(t, http.MethodGet, "/v1/admin/orders?status=completed", nil, "Authorization", adminToken(t, testAdmin))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	data := decode(t, rr)["data"].(map[string]any)
	list := data["orders"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, "order_done", list[0].(map[string]any)["gateway_order_id"])
	assert.Equal(t, "completed", data["status"])
	assert.Equal(t, float64(1), data["pagination"].(map[string]any)["total"])
}

func TestAdminOrders_Get(t *testing.T) {
	env := newTestEnv(t)
	seedOrders(t, env)
	token := adminToken(t, testAdmin)

	rr := env.do(t, http.MethodGet, "/v1/admin/orders/PP-pending", nil, "Authorization", token)
	require.Equal(t, http.StatusOK, rr.Code)
	data := decode(t, rr)["data"].(map[string]any)
	assert.Equal(t, "pending", data["status"])

	rr = env.do(t, http.MethodGet, "/v1/admin/orders/missing", nil, "Authorization", token)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAdminOrders_RequiresAdmin(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/v1/admin/orders", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = env.do(t, http.MethodGet, "/v1/admin/orders", nil, "Authorization", "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = env.do(t, http.MethodGet, "/v1/admin/orders", nil, "Authorization", adminToken(t, "visitor@example.com"))
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func basic(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

func TestBasicAuth_ProtectsOpsEndpoints(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/v1/metrics", "/v1/debug/vars"} {
		rr := env.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
		assert.NotEmpty(t, rr.Header().Get("WWW-Authenticate"))

		rr = env.do(t, http.MethodGet, path, nil, "Authorization", basic("ops", "wrong"))
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)

		rr = env.do(t, http.MethodGet, path, nil, "Authorization", basic("ops", testBasicPass))
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}
}

func TestBasicAuth_UnconfiguredStaysClosed(t *testing.T) {
	env := newTestEnv(t, func(c *config) { c.auth.basic = basicConfig{} })

	rr := env.do(t, http.MethodGet, "/v1/metrics", nil, "Authorization", basic("", ""))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/v1/health", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	body := decode(t, rr)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["env"])
	assert.Equal(t, version, body["version"])
	assert.Equal(t, "memory", body["storage"])
	assert.Equal(t, []any{"paypal", "razorpay"}, body["gateways"])
}

func TestRateLimiter(t *testing.T) {
	env := newTestEnv(t, func(c *config) {
		c.rateLimiter.Enabled = true
		c.rateLimiter.RequestsPerTimeFrame = 2
		c.rateLimiter.TimeFrame = time.Minute
	})

	payload := map[string]any{"amount": 0}
	for i := 0; i < 2; i++ {
		rr := env.do(t, http.MethodPost, "/v1/payments/razorpay/orders", payload)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	}
	rr := env.do(t, http.MethodPost, "/v1/payments/razorpay/orders", payload)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))

	// health is not rate limited
	rr = env.do(t, http.MethodGet, "/v1/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}
