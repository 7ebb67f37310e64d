package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"folio/docs" //this is required to generate swagger docs
	"folio/internal/auth"
	"folio/internal/chat"
	"folio/internal/checkout"
	"folio/internal/domain/storage"
	"folio/internal/mailer"
	"folio/internal/metrics"
	"folio/internal/payments"
	"folio/internal/ratelimiter"
	"folio/internal/reconcile"

	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-co-op/gocron/v2"
	"github.com/go-resty/resty/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type application struct {
	config        config
	store         *storage.Container
	gateways      *payments.Manager
	checkout      *checkout.Service
	reconciler    *reconcile.Queue
	scheduler     gocron.Scheduler
	chat          *chat.Client
	turnstile     *resty.Client
	logger        *zap.SugaredLogger
	authenticator auth.Authenticator
	rateLimiter   ratelimiter.Limiter
}

type config struct {
	addr        string
	env         string
	apiURL      string
	db          dbConfig
	payments    paymentsConfig
	cors        corsConfig
	auth        authConfig
	mail        mailConfig
	chat        chat.Config
	turnstile   turnstileConfig
	rateLimiter ratelimiter.Config
	reconcile   reconcile.Config
}

type paymentsConfig struct {
	razorpay    razorpayConfig
	paypal      paypalConfig
	timeout     time.Duration
	receiptSalt string
}

type razorpayConfig struct {
	keyID     string
	keySecret string
}

type paypalConfig struct {
	clientID     string
	clientSecret string
	env          string // sandbox | live
	apiURL       string // overrides env, e.g. a local mock
	brandName    string
	returnURL    string
	cancelURL    string
}

type corsConfig struct {
	allowedOrigins []string
}

type authConfig struct {
	basic    basicConfig
	supabase supabaseConfig
}

type basicConfig struct {
	user     string
	passHash string // bcrypt
}

type supabaseConfig struct {
	jwtSecret   string
	audience    string
	adminEmails []string
}

type mailConfig struct {
	enabled bool
	smtp    mailer.SMTPConfig
}

type turnstileConfig struct {
	secretKey        string
	expectedHostname string
	verifyURL        string
}

type dbConfig struct {
	addr         string
	maxOpenConns int
	maxIdleTime  string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.config.cors.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", turnstileHeader},
		ExposedHeaders:   []string{"Link", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	//Set a timeout value on the request context (ctx), that will signal through ctx.Done() that the request has timed out and further processing should be stopped
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", app.healthCheckHandler)
		docsURL := fmt.Sprintf("%s/v1/swagger/doc.json", app.config.apiURL)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))

		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)
		r.With(app.BasicAuthMiddleware()).Handle("/metrics", promhttp.Handler())

		r.Route("/payments", func(r chi.Router) {
			r.Use(app.RateLimiterMiddleware)

			r.Post("/razorpay/orders", app.createRazorpayOrderHandler)
			r.Post("/razorpay/verify", app.verifyRazorpayPaymentHandler)

			r.Post("/paypal/orders", app.createPayPalOrderHandler)
			r.Post("/paypal/capture", app.capturePayPalOrderHandler)
		})

		r.With(app.RateLimiterMiddleware, app.TurnstileMiddleware).Post("/chat", app.chatHandler)

		r.Route("/admin", func(r chi.Router) {
			r.Use(app.AdminTokenMiddleware)
			r.Get("/orders", app.adminListOrdersHandler)
			r.Get("/orders/{orderID}", app.adminGetOrderHandler)
		})
	})
	return r
}

func (app *application) run(mux http.Handler) error {
	// Docs
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Host = app.config.apiURL
	docs.SwaggerInfo.BasePath = "/v1"

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	// Implementing graceful shutdown
	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.stopBackgroundJobs()

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
