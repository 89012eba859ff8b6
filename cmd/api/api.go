package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"celflicks/docs" //this is required to generate swagger docs
	"celflicks/internal/auth"
	"celflicks/internal/catalog"
	"celflicks/internal/domain/storage"
	"celflicks/internal/purchases"
	"celflicks/internal/ratelimiter"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type application struct {
	config        config
	store         *storage.Container
	catalog       *catalog.Store
	purchases     *purchases.Service
	logger        *zap.SugaredLogger
	cld           *cloudinary.Cloudinary
	authenticator auth.Authenticator
	rateLimiter   ratelimiter.Limiter
}

type config struct {
	addr          string
	db            dbConfig
	env           string
	apiURL        string
	frontendURL   string
	auth          authConfig
	payments      paymentsConfig
	mail          mailConfig
	cloudinaryURL string
	snapshotPath  string
	rateLimiter   ratelimiter.Config
}

type authConfig struct {
	basic basicConfig
	token tokenConfig
}

type tokenConfig struct {
	secret string
	aud    string
	iss    string
}

type basicConfig struct {
	user     string
	passHash string // bcrypt
}

type paymentsConfig struct {
	stripeSecretKey string
	paypal          paypalConfig
	receiptSalt     string
}

type paypalConfig struct {
	clientID string
	secret   string
	baseURL  string
}

type mailConfig struct {
	host      string
	port      int
	username  string
	password  string
	fromEmail string
}

type dbConfig struct {
	addr        string
	maxConns    int
	maxIdleTime string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	allowedOrigins := []string{"https://*", "http://*"}
	if app.config.frontendURL != "" {
		allowedOrigins = []string{app.config.frontendURL}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)
		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

		docsURL := fmt.Sprintf("%s/swagger/doc.json", app.config.addr)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))

		// Public catalog reads, served from the in-memory store
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/videos", app.listVideosHandler)
			r.Get("/videos/{videoID}", app.getVideoHandler)
			r.Get("/featured", app.listFeaturedHandler)
			r.Get("/featured/{category}", app.listFeaturedByCategoryHandler)
			r.Get("/resolve", app.resolveVideoURLHandler)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Use(app.RequireAdmin)

			r.Post("/catalog/refresh", app.refreshCatalogHandler)
			r.Get("/catalog/status", app.catalogStatusHandler)

			r.Route("/videos", func(r chi.Router) {
				r.Post("/", app.createVideoHandler)
				r.Route("/{videoID}", func(r chi.Router) {
					r.Put("/", app.updateVideoHandler)
					r.Delete("/", app.deleteVideoHandler)
					r.Post("/thumbnail", app.uploadThumbnailHandler)
				})
			})

			r.Route("/featured/{category}/{videoID}", func(r chi.Router) {
				r.Put("/", app.featureVideoHandler)
				r.Delete("/", app.unfeatureVideoHandler)
				r.Post("/toggle", app.toggleFeaturedHandler)
				r.Post("/move", app.moveFeaturedHandler)
			})
		})

		r.Route("/payments", func(r chi.Router) {
			r.Get("/packages", app.listPackagesHandler)

			r.Group(func(r chi.Router) {
				r.Use(app.AuthTokenMiddleware)

				r.With(app.RateLimiterMiddleware).Post("/stripe/intent", app.createStripeIntentHandler)
				r.Post("/stripe/verify", app.verifyStripePaymentHandler)
				r.With(app.RateLimiterMiddleware).Post("/paypal/order", app.createPayPalOrderHandler)
				r.Post("/paypal/verify", app.verifyPayPalPaymentHandler)
				r.With(app.RateLimiterMiddleware).Post("/checkout", app.checkoutHandler)
			})
		})

		r.With(app.AuthTokenMiddleware).Get("/wallet", app.getWalletHandler)
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

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
