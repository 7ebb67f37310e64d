package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"folio/internal/chat"
	"folio/internal/mailer"
	"folio/internal/payments"
	"folio/internal/ratelimiter"
	"folio/internal/reconcile"
)

func getString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getInt(key string, fallback int) int {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		fmt.Printf("Invalid %s, defaulting to %d\n", key, fallback)
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		fmt.Printf("Invalid %s, defaulting to %t\n", key, fallback)
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		fmt.Printf("Invalid %s, defaulting to %s\n", key, fallback)
		return fallback
	}
	return d
}

// getList splits a comma separated value, dropping empty items.
func getList(key string, fallback []string) []string {
	val := getString(key, "")
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

// LoadRateLimiterConfig retrieves rate limiter settings from environment variables
func LoadRateLimiterConfig() ratelimiter.Config {
	return ratelimiter.Config{
		RequestsPerTimeFrame: getInt("RATELIMITER_REQUESTS_COUNT", 20),
		TimeFrame:            getDuration("RATELIMITER_TIME_FRAME", time.Minute),
		Enabled:              getBool("RATE_LIMITER_ENABLED", true),
	}
}

func loadConfig() config {
	paypalEnv := strings.ToLower(getString("PAYPAL_ENV", "sandbox"))
	frontendURL := getString("FRONTEND_URL", "http://localhost:5173")

	return config{
		addr:   getString("ADDR", ":8080"),
		env:    getString("ENV", "development"),
		apiURL: getString("EXTERNAL_URL", "localhost:8080"),
		db: dbConfig{
			addr:         getString("DB_ADDR", ""),
			maxOpenConns: getInt("DB_MAX_OPEN_CONNS", 10),
			maxIdleTime:  getString("DB_MAX_IDLE_TIME", "15m"),
		},
		payments: paymentsConfig{
			razorpay: razorpayConfig{
				keyID:     getString("RAZORPAY_KEY_ID", ""),
				keySecret: getString("RAZORPAY_KEY_SECRET", ""),
			},
			paypal: paypalConfig{
				clientID:     getString("PAYPAL_CLIENT_ID", ""),
				clientSecret: getString("PAYPAL_CLIENT_SECRET", ""),
				env:          paypalEnv,
				apiURL:       getString("PAYPAL_API_URL", ""),
				brandName:    getString("PAYPAL_BRAND_NAME", ""),
				returnURL:    getString("PAYPAL_RETURN_URL", frontendURL+"/payment/success"),
				cancelURL:    getString("PAYPAL_CANCEL_URL", frontendURL+"/payment/cancel"),
			},
			timeout:     getDuration("GATEWAY_TIMEOUT", payments.DefaultTimeout),
			receiptSalt: getString("RECEIPT_SALT", "folio"),
		},
		cors: corsConfig{
			allowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		auth: authConfig{
			basic: basicConfig{
				user:     getString("AUTH_BASIC_USER", ""),
				passHash: getString("AUTH_BASIC_PASS_HASH", ""),
			},
			supabase: supabaseConfig{
				jwtSecret:   getString("SUPABASE_JWT_SECRET", ""),
				audience:    getString("SUPABASE_JWT_AUDIENCE", "authenticated"),
				adminEmails: getList("ADMIN_EMAILS", nil),
			},
		},
		mail: mailConfig{
			enabled: getString("SMTP_HOST", "") != "",
			smtp: mailer.SMTPConfig{
				Host:      getString("SMTP_HOST", ""),
				Port:      getInt("SMTP_PORT", 587),
				Username:  getString("SMTP_USERNAME", ""),
				Password:  getString("SMTP_PASSWORD", ""),
				FromEmail: getString("SMTP_FROM", ""),
			},
		},
		chat: chat.Config{
			APIKey:       getString("AI_API_KEY", ""),
			BaseURL:      getString("AI_BASE_URL", chat.DefaultBaseURL),
			Model:        getString("AI_MODEL", chat.DefaultModel),
			SystemPrompt: getString("CHAT_SYSTEM_PROMPT", ""),
			Timeout:      getDuration("AI_TIMEOUT", 30*time.Second),
		},
		turnstile: turnstileConfig{
			secretKey:        getString("TURNSTILE_SECRET_KEY", ""),
			expectedHostname: getString("TURNSTILE_EXPECTED_HOSTNAME", ""),
		},
		rateLimiter: LoadRateLimiterConfig(),
		reconcile: reconcile.Config{
			Interval:    getDuration("RECONCILE_INTERVAL", reconcile.DefaultInterval),
			MaxAttempts: getInt("RECONCILE_MAX_ATTEMPTS", reconcile.DefaultMaxAttempts),
			Capacity:    getInt("RECONCILE_CAPACITY", reconcile.DefaultCapacity),
		},
	}
}

func (c paypalConfig) baseURL() string {
	if c.apiURL != "" {
		return c.apiURL
	}
	if c.env == "live" || c.env == "production" {
		return payments.PayPalLiveURL
	}
	return payments.PayPalSandboxURL
}
