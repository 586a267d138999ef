package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"costos/internal/domain/audit"
	"costos/internal/domain/auth"
	"costos/internal/domain/company"
	"costos/internal/domain/exchange"
	"costos/internal/domain/fleet"
	"costos/internal/domain/jobs"
	"costos/internal/domain/params"
	"costos/internal/domain/professional"
	"costos/internal/domain/reports"
	cryptoutil "costos/internal/platform/crypto"
	"costos/internal/platform/config"
	"costos/internal/platform/db"
	"costos/internal/platform/email"
	platformjobs "costos/internal/platform/jobs"
	"costos/internal/platform/metrics"
	"costos/internal/transport/http/api"
	audithandler "costos/internal/transport/http/handlers/audit"
	authhandler "costos/internal/transport/http/handlers/auth"
	companyhandler "costos/internal/transport/http/handlers/company"
	fleethandler "costos/internal/transport/http/handlers/fleet"
	jobshandler "costos/internal/transport/http/handlers/jobs"
	paramshandler "costos/internal/transport/http/handlers/params"
	professionalhandler "costos/internal/transport/http/handlers/professional"
	"costos/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Router  http.Handler
	Jobs    *platformjobs.Service
	Metrics *metrics.Collector
}

// New connects, migrates and seeds as configured and builds the router.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cryptoSvc, err := cryptoutil.New(cfg.DataEncryptionKey)
	if err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	app := &App{
		Config:  cfg,
		DB:      pool,
		Jobs:    platformjobs.New(pool),
		Metrics: metrics.New(),
	}
	app.Router = app.routes(cryptoSvc)
	return app, nil
}

func (a *App) routes(cryptoSvc *cryptoutil.Service) http.Handler {
	cfg := a.Config
	pool := a.DB

	authStore := auth.NewStore(pool)
	authSvc := auth.NewService(authStore)
	auditSvc := audit.New(pool)
	paramsSvc := params.NewService(params.NewStore(pool))
	companyStore := company.NewStore(pool)
	companySvc := company.NewService(companyStore)
	professionalSvc := professional.NewService(professional.NewStore(pool), authStore, cryptoSvc)
	fleetSvc := fleet.NewService(fleet.NewStore(pool), paramsSvc)
	jobsSvc := jobs.NewService(jobs.NewStore(pool), companySvc, professionalSvc, fleetSvc, paramsSvc)
	reportsSvc := reports.NewService(jobsSvc, companySvc, a.Metrics)

	fetcher := exchange.NewBNAFetcher(cfg.ExchangeRateURL, cfg.ExchangeRateTimeout)
	refresher := &exchange.Refresher{Fetcher: fetcher, Params: paramsSvc, Jobs: a.Jobs, Metrics: a.Metrics}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	if cfg.MetricsEnabled {
		router.Use(middleware.Metrics(a.Metrics))
	}
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret, authSvc))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	authHandler := authhandler.NewHandler(authSvc, cfg.JWTSecret, cryptoSvc, email.New(cfg), cfg.EmailFrom, cfg.PublicBaseURL, cfg.PasswordResetTTL, auditSvc)
	if cfg.AllowSelfSignup {
		authHandler.EnableSignup(professionalSvc)
	}

	router.Route("/api/v1", func(r chi.Router) {
		authHandler.RegisterPublicRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			authHandler.RegisterRoutes(r)

			companyhandler.NewHandler(companySvc, companyStore.Expenses, authSvc, auditSvc).RegisterRoutes(r)
			professionalhandler.NewHandler(professionalSvc, paramsSvc, authSvc, auditSvc).RegisterRoutes(r)
			fleethandler.NewHandler(fleetSvc, authSvc, auditSvc).RegisterRoutes(r)
			jobshandler.NewHandler(jobsSvc, reportsSvc, middleware.NewIdempotencyStore(pool), authSvc, auditSvc).RegisterRoutes(r)
			paramshandler.NewHandler(paramsSvc, refresher, a.Jobs, authSvc, auditSvc).RegisterRoutes(r)
			audithandler.NewHandler(auditSvc, authSvc).RegisterRoutes(r)

			r.With(middleware.RequirePermission(auth.PermMetricsRead, authSvc)).Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
				api.Success(w, a.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
			})
		})
	})

	return router
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("costos server listening", "addr", a.Config.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Main is the process entry point: it loads configuration, runs the server
// and exits non-zero on failure.
func Main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server failed", "err", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	app, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()
	return app.Run(ctx)
}
