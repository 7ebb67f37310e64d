package main

import (
	"context"
	"expvar"
	"fmt"
	"os"
	"runtime"

	"folio/internal/auth"
	"folio/internal/chat"
	"folio/internal/checkout"
	"folio/internal/db"
	"folio/internal/domain/storage"
	"folio/internal/mailer"
	"folio/internal/payments"
	"folio/internal/ratelimiter"
	"folio/internal/reconcile"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a new zap logger with color.
func NewLogger() (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)

	level := zapcore.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		if err := level.Set(lvl); err != nil {
			return nil, err
		}
	}

	core := zapcore.NewCore(consoleEncoder, zapcore.NewMultiWriteSyncer(zapcore.AddSync(os.Stdout)), level)

	return zap.New(core).Sugar(), nil
}

var version = "1.0.0"

//	@title			Folio API
//	@description	Payments, chat and back-office API for the folio site.

//	@contact.name	API Support
//	@contact.email	hello@example.com

//	@BasePath					/v1
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						Authorization
//	@description

func main() {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Println("Error loading .env file:", err)
	}

	cfg := loadConfig()

	logger, err := NewLogger()
	if err != nil {
		fmt.Println("Error creating logger:", err)
		return
	}
	defer logger.Sync()

	// Database
	var store *storage.Container
	if cfg.db.addr != "" {
		pool, err := db.New(context.Background(), db.Config{
			Addr:        cfg.db.addr,
			MaxConns:    int32(cfg.db.maxOpenConns),
			MaxIdleTime: cfg.db.maxIdleTime,
		})
		if err != nil {
			logger.Fatal(err)
		}
		defer pool.Close()
		logger.Info("database connection pool established")

		store = storage.NewContainer(pool)
		expvar.Publish("database", expvar.Func(func() any {
			s := pool.Stat()
			return map[string]any{
				"total_conns":    s.TotalConns(),
				"idle_conns":     s.IdleConns(),
				"acquired_conns": s.AcquiredConns(),
				"max_conns":      s.MaxConns(),
			}
		}))
	} else {
		logger.Warn("DB_ADDR is not set, orders are kept in memory only")
		store = storage.NewMemoryContainer()
	}

	app, err := newApplication(cfg, logger, store, nil)
	if err != nil {
		logger.Fatal(err)
	}

	if err := app.startBackgroundJobs(); err != nil {
		logger.Fatal(err)
	}

	//Metrics collected http://localhost:8080/v1/debug/vars
	expvar.NewString("version").Set(version)
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))
	expvar.Publish("reconcile_queue", expvar.Func(func() any {
		return app.reconciler.Len()
	}))

	mux := app.mount()

	logger.Fatal(app.run(mux))
}

// newApplication wires gateways, stores and services. A nil razorpayAPI selects the
// official client.
func newApplication(cfg config, logger *zap.SugaredLogger, store *storage.Container, razorpayAPI payments.RazorpayAPI) (*application, error) {
	receipts, err := payments.NewReceiptGenerator(cfg.payments.receiptSalt)
	if err != nil {
		return nil, err
	}

	rzp := payments.NewRazorpayAdapter(payments.RazorpayConfig{
		KeyID:     cfg.payments.razorpay.keyID,
		KeySecret: cfg.payments.razorpay.keySecret,
		Timeout:   cfg.payments.timeout,
	}, razorpayAPI, receipts, logger)

	pp := payments.NewPayPalAdapter(payments.PayPalConfig{
		ClientID:     cfg.payments.paypal.clientID,
		ClientSecret: cfg.payments.paypal.clientSecret,
		BaseURL:      cfg.payments.paypal.baseURL(),
		Timeout:      cfg.payments.timeout,
		BrandName:    cfg.payments.paypal.brandName,
		ReturnURL:    cfg.payments.paypal.returnURL,
		CancelURL:    cfg.payments.paypal.cancelURL,
	}, logger)

	for name, ok := range map[string]bool{
		payments.GatewayRazorpay: cfg.payments.razorpay.keyID != "" && cfg.payments.razorpay.keySecret != "",
		payments.GatewayPayPal:   cfg.payments.paypal.clientID != "" && cfg.payments.paypal.clientSecret != "",
	} {
		if !ok {
			// requests to this gateway answer with a configuration error
			logger.Warnw("payment gateway credentials missing", "gateway", name)
		}
	}

	gateways := payments.NewManager(rzp, pp)

	deps := checkout.Deps{
		Gateways: gateways,
		Store:    store,
		Logger:   logger,
	}
	if cfg.mail.enabled {
		m, err := mailer.NewSMTPMailer(cfg.mail.smtp)
		if err != nil {
			return nil, err
		}
		deps.Mailer = m
	}

	svc := checkout.NewService(deps)
	reconciler := reconcile.NewQueue(svc, cfg.reconcile, logger)
	svc.SetReconciler(reconciler)

	app := &application{
		config:        cfg,
		logger:        logger,
		store:         store,
		gateways:      gateways,
		checkout:      svc,
		reconciler:    reconciler,
		chat:          chat.NewClient(cfg.chat, logger),
		authenticator: auth.NewJWTAuthenticator(cfg.auth.supabase.jwtSecret, cfg.auth.supabase.audience, cfg.auth.supabase.adminEmails),
	}
	if cfg.rateLimiter.Enabled {
		app.rateLimiter = ratelimiter.NewFixedWindowLimiter(cfg.rateLimiter.RequestsPerTimeFrame, cfg.rateLimiter.TimeFrame)
	}
	if cfg.turnstile.secretKey != "" {
		app.turnstile = newTurnstileClient()
	}
	return app, nil
}
