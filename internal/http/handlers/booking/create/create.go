// Package create реализует HTTP-обработчик создания записи на занятие.
//
// Лимит активных записей для ролей user и moderator проверяет сервис,
// превышение возвращается как 403.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/bloom-gym/internal/http/middlewarectx"
	"github.com/magabrotheeeer/bloom-gym/internal/http/response"
	"github.com/magabrotheeeer/bloom-gym/internal/lib/sl"
	"github.com/magabrotheeeer/bloom-gym/internal/lib/validation"
	"github.com/magabrotheeeer/bloom-gym/internal/models"
)

// Service описывает создание записи.
type Service interface {
	Create(ctx context.Context, who models.Identity, in models.Booking) (*models.Booking, error)
}

// Handler обрабатывает запросы POST /bookings.
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
// @Summary Создание записи на занятие
// @Tags Bookings
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.DummyBooking true "Данные записи"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 403 {object} response.ErrorResponse "Достигнут лимит активных записей"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации данных"
// @Router /bookings [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.booking.create"

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

	var req models.DummyBooking
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

	in, err := req.ToBooking()
	if err != nil {
		log.Warn("invalid booking", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	booking, err := h.service.Create(r.Context(), who, in)
	if err != nil {
		log.Error("failed to create booking", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("booking created", slog.String("booking_id", booking.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"booking": booking,
	}))
}
