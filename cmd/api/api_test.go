package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"folio/internal/domain/orders"
	"folio/internal/domain/storage"
	"folio/internal/payments/paymentstest"
	"folio/internal/ratelimiter"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	testKeySecret = "rzp_test_secret"
	testJWTSecret = "super-secret-jwt-token-with-at-least-32-characters"
	testAdmin     = "owner@example.com"
	testBasicPass = "metrics-pass"
)

type testEnv struct {
	app      *application
	mux      http.Handler
	razorpay *paymentstest.FakeRazorpay
	paypal   *paymentstest.FakePayPal
	orders   *orders.MemoryStore
}

func newTestEnv(t *testing.T, mutate ...func(*config)) *testEnv {
	t.Helper()

	pp := paymentstest.NewFakePayPal()
	t.Cleanup(pp.Close)

	hash, err := bcrypt.GenerateFromPassword([]byte(testBasicPass), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := config{
		addr:   ":0",
		env:    "test",
		apiURL: "localhost",
		payments: paymentsConfig{
			razorpay: razorpayConfig{keyID: "rzp_test_key", keySecret: testKeySecret},
			paypal: paypalConfig{
				clientID:     "pp-client",
				clientSecret: "pp-secret",
				apiURL:       pp.URL,
			},
			timeout:     2 * time.Second,
			receiptSalt: "test",
		},
		cors: corsConfig{allowedOrigins: []string{"*"}},
		auth: authConfig{
			basic: basicConfig{user: "ops", passHash: string(hash)},
			supabase: supabaseConfig{
				jwtSecret:   testJWTSecret,
				audience:    "authenticated",
				adminEmails: []string{testAdmin},
			},
		},
		rateLimiter: ratelimiter.Config{Enabled: false},
	}
	for _, m := range mutate {
		m(&cfg)
	}

	store := storage.NewMemoryContainer()
	fake := paymentstest.NewFakeRazorpay()

	app, err := newApplication(cfg, zap.NewNop().Sugar(), store, fake)
	require.NoError(t, err)

	return &testEnv{
		app:      app,
		mux:      app.mount(),
		razorpay: fake,
		paypal:   pp,
		orders:   store.Orders.(*orders.MemoryStore),
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rr := httptest.NewRecorder()
	e.mux.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}
