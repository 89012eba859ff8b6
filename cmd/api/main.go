package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"time"

	"celflicks/internal/auth"
	"celflicks/internal/catalog"
	"celflicks/internal/db"
	"celflicks/internal/domain/storage"
	"celflicks/internal/mailer"
	"celflicks/internal/payments"
	"celflicks/internal/purchases"
	"celflicks/internal/ratelimiter"
	"celflicks/internal/snapshot"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoadRateLimiterConfig retrieves rate limiter settings from environment variables
func LoadRateLimiterConfig() ratelimiter.Config {
	defaultRequests := 20
	defaultEnabled := true

	requestsPerTimeFrame := defaultRequests
	if val, exists := os.LookupEnv("RATELIMITER_REQUESTS_COUNT"); exists {
		if parsedVal, err := strconv.Atoi(val); err == nil {
			requestsPerTimeFrame = parsedVal
		} else {
			fmt.Println("Invalid RATELIMITER_REQUESTS_COUNT, defaulting to", defaultRequests)
		}
	}

	enabled := defaultEnabled
	if val, exists := os.LookupEnv("RATE_LIMITER_ENABLED"); exists {
		if parsedVal, err := strconv.ParseBool(val); err == nil {
			enabled = parsedVal
		} else {
			fmt.Println("Invalid RATE_LIMITER_ENABLED, defaulting to", defaultEnabled)
		}
	}

	return ratelimiter.Config{
		RequestsPerTimeFrame: requestsPerTimeFrame,
		TimeFrame:            time.Minute,
		Enabled:              enabled,
	}
}

// NewLogger creates a new zap logger with color.
func NewLogger() (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)
	level := zapcore.InfoLevel

	core := zapcore.NewCore(consoleEncoder, zapcore.NewMultiWriteSyncer(zapcore.AddSync(os.Stdout)), level)
	logger := zap.New(core)

	return logger.Sugar(), nil
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("Invalid value for %s: %v", key, err)
	}
	return n
}

var version = "0.4.0"

//	@title			Celflicks API
//	@description	Video catalog, homepage curation and XCE credit checkout for Celflicks.

//	@contact.name	API Support
//	@contact.email	support@celflicks.app

//	@BasePath					/v1
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer access token issued by the auth service

func main() {
	// .env is optional; deployed environments set real variables
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	cfg := config{
		addr:        envOr("ADDR", ":8080"),
		env:         envOr("ENV", "development"),
		frontendURL: os.Getenv("FRONTEND_URL"),
		apiURL:      envOr("EXTERNAL_URL", "localhost:8080"),
		db: dbConfig{
			addr:        os.Getenv("DB_ADDR"),
			maxConns:    envInt("DB_MAX_CONNS", 10),
			maxIdleTime: envOr("DB_MAX_IDLE_TIME", "15m"),
		},
		auth: authConfig{
			basic: basicConfig{
				user:     os.Getenv("AUTH_BASIC_USER"),
				passHash: os.Getenv("AUTH_BASIC_PASS_HASH"),
			},
			token: tokenConfig{
				secret: os.Getenv("AUTH_TOKEN_SECRET"),
				aud:    os.Getenv("AUTH_TOKEN_AUD"),
				iss:    os.Getenv("AUTH_TOKEN_ISS"),
			},
		},
		payments: paymentsConfig{
			stripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),
			paypal: paypalConfig{
				clientID: os.Getenv("PAYPAL_CLIENT_ID"),
				secret:   os.Getenv("PAYPAL_SECRET"),
				baseURL:  envOr("PAYPAL_BASE_URL", "https://api-m.sandbox.paypal.com"),
			},
			receiptSalt: envOr("RECEIPT_SALT", "celflicks"),
		},
		mail: mailConfig{
			host:      os.Getenv("SMTP_HOST"),
			port:      envInt("SMTP_PORT", 587),
			username:  os.Getenv("SMTP_USER"),
			password:  os.Getenv("SMTP_PASS"),
			fromEmail: os.Getenv("MAIL_FROM"),
		},
		cloudinaryURL: os.Getenv("CLOUDINARY_URL"),
		snapshotPath:  os.Getenv("SNAPSHOT_PATH"),
		rateLimiter:   LoadRateLimiterConfig(),
	}

	logger, err := NewLogger()
	if err != nil {
		fmt.Println("Error creating logger:", err)
		return
	}
	defer logger.Sync()

	// Database
	pool, err := db.New(context.Background(), db.Config{
		Addr:        cfg.db.addr,
		MaxConns:    int32(cfg.db.maxConns),
		MaxIdleTime: cfg.db.maxIdleTime,
	})
	if err != nil {
		logger.Fatal(err)
	}
	defer pool.Close()
	logger.Info("database connection pool established")

	store := storage.NewContainer(pool)

	// cloudinary
	cld, err := cloudinary.NewFromURL(cfg.cloudinaryURL)
	if err != nil {
		logger.Fatal(err)
	}

	// receipts are skipped when SMTP is not configured
	var mail mailer.Client
	smtp, err := mailer.NewSMTPClient(cfg.mail.host, cfg.mail.port, cfg.mail.username, cfg.mail.password, cfg.mail.fromEmail)
	if err != nil {
		logger.Warnw("purchase receipts disabled", "error", err)
	} else {
		mail = smtp
	}

	// Payment gateways
	paymentManager := payments.NewPaymentManager()
	if cfg.payments.stripeSecretKey != "" {
		paymentManager.RegisterGateway(payments.MethodStripe, payments.NewStripeAdapter(cfg.payments.stripeSecretKey, nil))
	}
	if cfg.payments.paypal.clientID != "" {
		paymentManager.RegisterGateway(payments.MethodPayPal, payments.NewPayPalAdapter(
			cfg.payments.paypal.clientID,
			cfg.payments.paypal.secret,
			cfg.payments.paypal.baseURL,
		))
	}
	logger.Infow("payment gateways registered", "methods", paymentManager.Methods())

	purchaseService, err := purchases.NewService(store.Ledger, paymentManager, mail, cfg.payments.receiptSalt, logger)
	if err != nil {
		logger.Fatal(err)
	}

	// Catalog snapshot
	var persister snapshot.Persister = &snapshot.Memory{}
	if cfg.snapshotPath != "" {
		fs := snapshot.NewFileStore(cfg.snapshotPath)
		logger.Infow("catalog snapshot on disk", "path", fs.Path())
		persister = fs
	}

	catalogStore := catalog.New(store.Videos, persister, logger)
	fetchCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := catalogStore.FetchAll(fetchCtx); err != nil {
		logger.Warnw("initial catalog fetch failed, serving snapshot", "error", err)
	}
	cancel()

	// Rate limiter
	rateLimiter := ratelimiter.NewFixedWindowLimiter(
		cfg.rateLimiter.RequestsPerTimeFrame,
		cfg.rateLimiter.TimeFrame,
	)

	// Authenticator
	jwtAuthenticator := auth.NewJWTAuthenticator(
		cfg.auth.token.secret,
		cfg.auth.token.aud,
		cfg.auth.token.iss,
	)

	app := &application{
		config:        cfg,
		logger:        logger,
		store:         store,
		catalog:       catalogStore,
		purchases:     purchaseService,
		cld:           cld,
		authenticator: jwtAuthenticator,
		rateLimiter:   rateLimiter,
	}

	//Metrics collected http://localhost:8080/v1/debug/vars
	expvar.NewString("version").Set(version)
	expvar.Publish("database", expvar.Func(func() any {
		s := pool.Stat()
		return map[string]int64{
			"total_conns":    int64(s.TotalConns()),
			"idle_conns":     int64(s.IdleConns()),
			"acquired_conns": int64(s.AcquiredConns()),
			"max_conns":      int64(s.MaxConns()),
			"acquire_count":  s.AcquireCount(),
		}
	}))
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))
	expvar.Publish("catalog", expvar.Func(func() any {
		return catalogStore.Status()
	}))

	mux := app.mount()

	logger.Fatal(app.run(mux))
}
