// Package metrics содержит метрики Prometheus для HTTP-слоя и операций с записями.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bloom_gym"

// Metrics набор счётчиков сервиса.
type Metrics struct {
	requests        *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	bookings        *prometheus.CounterVec
	admissionDenied prometheus.Counter
	publishFailures *prometheus.CounterVec
}

// New регистрирует метрики в reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		bookings: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_total",
			Help:      "Booking state changes by event.",
		}, []string{"event"}),
		admissionDenied: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_admission_denied_total",
			Help:      "Booking creations rejected by the active booking limit.",
		}),
		publishFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_publish_failures_total",
			Help:      "Notifications that could not be handed to the broker.",
		}, []string{"routing_key"}),
	}
}

// BookingCreated учитывает созданную запись.
func (m *Metrics) BookingCreated() { m.bookings.WithLabelValues("created").Inc() }

// BookingCancelled учитывает отмену записи.
func (m *Metrics) BookingCancelled() { m.bookings.WithLabelValues("cancelled").Inc() }

// BookingDeleted учитывает удаление записи администратором.
func (m *Metrics) BookingDeleted() { m.bookings.WithLabelValues("deleted").Inc() }

// AdmissionDenied учитывает отказ по лимиту.
func (m *Metrics) AdmissionDenied() { m.admissionDenied.Inc() }

// PublishFailed учитывает неудачную публикацию уведомления.
func (m *Metrics) PublishFailed(routingKey string) {
	m.publishFailures.WithLabelValues(routingKey).Inc()
}

// Middleware считает запросы и их длительность по шаблону маршрута chi.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
