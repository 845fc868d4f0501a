package gymbooking

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/bloom-gym/internal/config"
	"github.com/magabrotheeeer/bloom-gym/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/bloom-gym/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/bloom-gym/internal/http/handlers/booking/create"
	"github.com/magabrotheeeer/bloom-gym/internal/http/handlers/booking/list"
	"github.com/magabrotheeeer/bloom-gym/internal/http/handlers/booking/listall"
	bookingread "github.com/magabrotheeeer/bloom-gym/internal/http/handlers/booking/read"
	"github.com/magabrotheeeer/bloom-gym/internal/http/handlers/booking/remove"
	bookingupdate "github.com/magabrotheeeer/bloom-gym/internal/http/handlers/booking/update"
	"github.com/magabrotheeeer/bloom-gym/internal/http/handlers/health"
	profileread "github.com/magabrotheeeer/bloom-gym/internal/http/handlers/profile/read"
	profileupdate "github.com/magabrotheeeer/bloom-gym/internal/http/handlers/profile/update"
	"github.com/magabrotheeeer/bloom-gym/internal/http/middlewarectx"
	"github.com/magabrotheeeer/bloom-gym/internal/metrics"
	"github.com/magabrotheeeer/bloom-gym/internal/models"
	authservice "github.com/magabrotheeeer/bloom-gym/internal/services/auth"
	bookingservice "github.com/magabrotheeeer/bloom-gym/internal/services/booking"
	profileservice "github.com/magabrotheeeer/bloom-gym/internal/services/profile"
)

// AuthService объединяет операции аутентификации, нужные маршрутам.
type AuthService interface {
	register.Service
	login.Service
	middlewarectx.Authenticator
}

// ProfileService объединяет операции над профилем.
type ProfileService interface {
	profileread.Service
	profileupdate.Service
}

// BookingService объединяет операции над записями.
type BookingService interface {
	create.Service
	list.Service
	listall.Service
	bookingread.Service
	bookingupdate.Service
	remove.Service
}

var (
	_ AuthService    = (*authservice.Service)(nil)
	_ ProfileService = (*profileservice.Service)(nil)
	_ BookingService = (*bookingservice.Service)(nil)
)

// Deps зависимости маршрутов.
type Deps struct {
	Logger   *slog.Logger
	Config   config.HTTPServer
	Auth     AuthService
	Profile  ProfileService
	Bookings BookingService
	Metrics  *metrics.Metrics
	Registry prometheus.Gatherer
	Checks   map[string]health.Pinger
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, d Deps) {
	logger := d.Logger

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		cors.New(cors.Options{
			AllowedOrigins:   d.Config.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
			AllowCredentials: true,
		}).Handler,
		d.Metrics.Middleware,
		// По IP: идентичность ещё не известна.
		middlewarectx.RateLimitMiddleware(logger, middlewarectx.NewClientLimiter(d.Config.RateLimit, d.Config.RateBurst)),
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, d.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, d.Auth).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(
				middlewarectx.JWTMiddleware(d.Auth, logger),
				middlewarectx.RateLimitMiddleware(logger, middlewarectx.NewClientLimiter(d.Config.RateLimit, d.Config.RateBurst)),
			)

			r.Get("/users/profile", profileread.New(logger, d.Profile).ServeHTTP)
			r.Put("/users/profile", profileupdate.New(logger, d.Profile).ServeHTTP)

			r.Post("/bookings", create.New(logger, d.Bookings).ServeHTTP)
			r.Get("/bookings", list.New(logger, d.Bookings).ServeHTTP)
			r.With(middlewarectx.RequireRole(logger, models.RoleAdmin, models.RoleModerator)).
				Get("/bookings/admin/all", listall.New(logger, d.Bookings).ServeHTTP)
			r.Get("/bookings/{id}", bookingread.New(logger, d.Bookings).ServeHTTP)
			r.Put("/bookings/{id}", bookingupdate.New(logger, d.Bookings).ServeHTTP)
			r.With(middlewarectx.RequireRole(logger, models.RoleAdmin)).
				Delete("/bookings/{id}", remove.New(logger, d.Bookings).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger, d.Checks).ServeHTTP)
	r.Handle("/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
