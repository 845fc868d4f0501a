// Package listall реализует HTTP-обработчик общего списка записей
// для администраторов и модераторов.
package listall

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

// Service описывает получение всех записей.
type Service interface {
	ListAll(ctx context.Context, who models.Identity) ([]models.BookingWithOwner, error)
}

// Handler обрабатывает запросы GET /bookings/admin/all.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Все записи
// @Description Все записи с данными владельцев, новые первыми. Только admin и moderator.
// @Tags Bookings
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 403 {object} response.ErrorResponse
// @Router /bookings/admin/all [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.booking.listall"

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

	bookings, err := h.service.ListAll(r.Context(), who)
	if err != nil {
		log.Error("failed to list all bookings", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	if bookings == nil {
		bookings = []models.BookingWithOwner{}
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"bookings": bookings,
	}))
}
