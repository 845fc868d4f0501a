// Package update реализует HTTP-обработчик частичного изменения записи,
// в том числе отмены через status=cancelled.
package update

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/bloom-gym/internal/http/middlewarectx"
	"github.com/magabrotheeeer/bloom-gym/internal/http/response"
	"github.com/magabrotheeeer/bloom-gym/internal/lib/sl"
	"github.com/magabrotheeeer/bloom-gym/internal/lib/validation"
	"github.com/magabrotheeeer/bloom-gym/internal/models"
)

// Service описывает изменение записи.
type Service interface {
	Update(ctx context.Context, who models.Identity, id string, patch models.BookingPatch) (*models.Booking, error)
}

// Handler обрабатывает запросы PUT /bookings/{id}.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validation.New(),
	}
}

// ServeHTTP godoc
// @Summary Изменение записи
// @Description Меняет переданные поля. Отменённую запись изменить нельзя.
// @Tags Bookings
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID записи"
// @Param request body models.DummyBookingPatch true "Изменяемые поля"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse "Запись отменена"
// @Failure 422 {object} response.ErrorResponse
// @Router /bookings/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.booking.update"

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
	id := chi.URLParam(r, "id")

	var req models.DummyBookingPatch
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Warn("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	patch, err := req.ToPatch()
	if err != nil {
		log.Warn("invalid patch", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	booking, err := h.service.Update(r.Context(), who, id, patch)
	if err != nil {
		log.Warn("failed to update booking", slog.String("booking_id", id), sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("booking updated", slog.String("booking_id", id), slog.String("status", string(booking.Status)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"booking": booking,
	}))
}
