// Package gymbooking собирает HTTP API сервиса записи в зал: хранилище,
// кэш, публикатор уведомлений, сервисы, маршруты и gRPC health-сервер.
package gymbooking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/magabrotheeeer/bloom-gym/internal/cache"
	"github.com/magabrotheeeer/bloom-gym/internal/config"
	grpcserver "github.com/magabrotheeeer/bloom-gym/internal/grpc/server"
	"github.com/magabrotheeeer/bloom-gym/internal/http/handlers/health"
	"github.com/magabrotheeeer/bloom-gym/internal/lib/jwt"
	"github.com/magabrotheeeer/bloom-gym/internal/lib/sl"
	"github.com/magabrotheeeer/bloom-gym/internal/metrics"
	"github.com/magabrotheeeer/bloom-gym/internal/migrations"
	"github.com/magabrotheeeer/bloom-gym/internal/rabbitmq"
	authservice "github.com/magabrotheeeer/bloom-gym/internal/services/auth"
	bookingservice "github.com/magabrotheeeer/bloom-gym/internal/services/booking"
	profileservice "github.com/magabrotheeeer/bloom-gym/internal/services/profile"
	"github.com/magabrotheeeer/bloom-gym/internal/storage/repository"
)

const (
	shutdownTimeout     = 15 * time.Second
	healthCheckInterval = 10 * time.Second
)

type publisher interface {
	bookingservice.Publisher
	Close() error
}

// App представляет приложение HTTP API.
type App struct {
	server    *http.Server
	grpc      *grpcserver.HealthServer
	grpcAddr  string
	logger    *slog.Logger
	db        *repository.Storage
	cache     *cache.Cache
	publisher publisher
	auth      *authservice.Service
	bookings  *bookingservice.Service
}

type nopCloser struct {
	rabbitmq.NopPublisher
}

func (nopCloser) Close() error { return nil }

// New подключает зависимости, применяет миграции и собирает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection, cfg.CacheTTL)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	var pub publisher = nopCloser{rabbitmq.NopPublisher{Log: logger}}
	if cfg.RabbitMQURL != "" {
		pub = rabbitmq.NewLazyPublisher(logger, rabbitmq.DialURL(cfg.RabbitMQURL))
	} else {
		logger.Warn("rabbitmq url is empty, notifications are disabled")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	authService := authservice.NewService(db, jwtMaker, pub, logger)
	profileService := profileservice.NewService(db, logger)
	bookingService := bookingservice.NewService(db, cacheRedis, pub, m, logger, !cfg.RelaxedAdmission)

	router := chi.NewRouter()
	RegisterRoutes(router, Deps{
		Logger:   logger,
		Config:   cfg.HTTPServer,
		Auth:     authService,
		Profile:  profileService,
		Bookings: bookingService,
		Metrics:  m,
		Registry: reg,
		Checks:   map[string]health.Pinger{"database": db, "cache": cacheRedis},
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:    srv,
		grpc:      grpcserver.NewHealthServer(logger, map[string]grpcserver.Pinger{"database": db, "cache": cacheRedis}),
		grpcAddr:  cfg.AddressGRPC,
		logger:    logger,
		db:        db,
		cache:     cacheRedis,
		publisher: pub,
		auth:      authService,
		bookings:  bookingService,
	}, nil
}

// Run запускает HTTP и gRPC серверы и блокируется до отмены ctx или ошибки сервера.
func (a *App) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", a.grpcAddr)
	if err != nil {
		a.closeResources()
		return fmt.Errorf("failed to listen gRPC: %w", err)
	}

	errCh := make(chan error, 2)
	go func() {
		if err := a.grpc.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()
	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	go a.grpc.Watch(watchCtx, healthCheckInterval)

	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err = <-errCh:
		a.logger.Error("server failed", sl.Err(err))
	case <-ctx.Done():
	}

	a.logger.Info("shutting down HTTP server gracefully")
	timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if shutdownErr := a.server.Shutdown(timeoutCtx); shutdownErr != nil {
		a.logger.Error("failed to shutdown HTTP server", sl.Err(shutdownErr))
	}
	a.grpc.Stop()

	a.auth.Wait()
	a.bookings.Wait()
	a.closeResources()
	return err
}

func (a *App) closeResources() {
	if err := a.publisher.Close(); err != nil {
		a.logger.Error("failed to close publisher", sl.Err(err))
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close cache", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}
