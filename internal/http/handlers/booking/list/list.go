// Package list реализует HTTP-обработчик списка записей текущего пользователя.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/bloom-gym/internal/http/middlewarectx"
	"github.com/magabrotheeeer/bloom-gym/internal/http/response"
	"github.com/magabrotheeeer/bloom-gym/internal/lib/sl"
	"github.com/magabrotheeeer/bloom-gym/internal/models"
)

// Service описывает получение своих записей.
type Service interface {
	ListMine(ctx context.Context, who models.Identity) ([]models.Booking, error)
}

// Handler обрабатывает запросы GET /bookings.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Мои записи
// @Description Записи текущего пользователя, новые первыми
// @Tags Bookings
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /bookings [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.booking.list"

	log := h.log.With(
		sl.Op(op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	who, ok := middlewarectx.IdentityFromContext(r.Context())
	if !ok {
		log.Error("user identification missing")
		response.RenderError(w, r, models.ErrUnauthenticated)
		return
	}

	bookings, err := h.service.ListMine(r.Context(), who)
	if err != nil {
		log.Error("failed to list bookings", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}

	log.Info("bookings listed", slog.Int("count", len(bookings)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"bookings": bookings,
	}))
}
