package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/bloom-gym/internal/lib/validation"
	"github.com/magabrotheeeer/bloom-gym/internal/models"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{models.ErrUnauthenticated, http.StatusUnauthorized},
		{models.ErrInvalidCredentials, http.StatusUnauthorized},
		{models.ErrForbidden, http.StatusForbidden},
		{models.ErrAdmissionDenied, http.StatusForbidden},
		{models.ErrNotFound, http.StatusNotFound},
		{models.ErrInvalidArgument, http.StatusBadRequest},
		{models.ErrAlreadyExists, http.StatusConflict},
		{models.ErrInvalidTransition, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
		{fmt.Errorf("booking.Get: storage.GetBooking: %w", models.ErrNotFound), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestMessageFor_HidesInternalDetails(t *testing.T) {
	assert.Equal(t, "internal error", MessageFor(errors.New("pq: connection refused")))
	assert.Equal(t, models.ErrNotFound.Error(),
		MessageFor(fmt.Errorf("storage.GetBooking: %w", models.ErrNotFound)))
}

func TestRenderError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	RenderError(w, req, fmt.Errorf("booking.Create: %w", models.ErrAdmissionDenied))

	assert.Equal(t, http.StatusForbidden, w.Code)
	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, StatusError, body.Status)
	assert.Equal(t, models.ErrAdmissionDenied.Error(), body.Error)
}

func TestValidationError(t *testing.T) {
	type request struct {
		Email    string `validate:"required,email"`
		Category string `validate:"oneof=strength cardio"`
		Date     string `validate:"datetime=2006-01-02"`
	}
	err := validation.New().Struct(request{Email: "nope", Category: "boxing", Date: "02-11-2026"})
	require.Error(t, err)

	resp := ValidationError(err.(validator.ValidationErrors))

	assert.Equal(t, StatusError, resp.Status)
	assert.Contains(t, resp.Error, "field Email must be a valid email")
	assert.Contains(t, resp.Error, "field Category must be one of: strength cardio")
	assert.Contains(t, resp.Error, "field Date can contain only date in format 2006-01-02")
}

func TestStatusOKWithData(t *testing.T) {
	resp := StatusOKWithData(map[string]any{"id": "1"})
	assert.Equal(t, StatusOK, resp.Status)
	assert.Empty(t, resp.Error)
}
