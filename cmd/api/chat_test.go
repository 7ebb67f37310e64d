package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChat(t *testing.T) {
	ai := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"A landing page starts at $500."}}]}`))
	}))
	defer ai.Close()

	env := newTestEnv(t, func(c *config) {
		c.chat.APIKey = "sk-test"
		c.chat.BaseURL = ai.URL
	})

	rr := env.do(t, http.MethodPost, "/v1/chat", map[string]any{
		"message":             "How much is a landing page?",
		"conversationHistory": []map[string]string{{"role": "user", "content": "hi"}},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	body := decode(t, rr)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "assistant", body["role"])
	assert.Equal(t, "A landing page starts at $500.", body["message"])
}

func TestChat_Errors(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/v1/chat", map[string]any{"message": ""})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodPost, "/v1/chat", map[string]any{"message": "hello"})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, false, decode(t, rr)["success"])
}

func TestChat_Turnstile(t *testing.T) {
	var verified int
	cf := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		w.Header().Set("Content-Type", "application/json")
		if r.PostForm.Get("response") == "good-token" && r.PostForm.Get("secret") == "ts-secret" {
			verified++
			_, _ = w.Write([]byte(`{"success":true,"hostname":"example.com"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":false,"error-codes":["invalid-input-response"]}`))
	}))
	defer cf.Close()

	ai := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer ai.Close()

	env := newTestEnv(t, func(c *config) {
		c.chat.APIKey = "sk-test"
		c.chat.BaseURL = ai.URL
		c.turnstile = turnstileConfig{secretKey: "ts-secret", verifyURL: cf.URL}
	})

	rr := env.do(t, http.MethodPost, "/v1/chat", map[string]any{"message": "hello"})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = env.do(t, http.MethodPost, "/v1/chat", map[string]any{"message": "hello"}, turnstileHeader, "bad-token")
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = env.do(t, http.MethodPost, "/v1/chat", map[string]any{"message": "hello"}, turnstileHeader, "good-token")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, verified)
}
