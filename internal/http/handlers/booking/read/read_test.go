package read

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/bloom-gym/internal/http/middlewarectx"
	"github.com/magabrotheeeer/bloom-gym/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Get(ctx context.Context, who models.Identity, id string) (*models.Booking, error) {
	args := m.Called(ctx, who, id)
	if res := args.Get(0); res != nil {
		return res.(*models.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestReadHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	alice := models.Identity{UserID: "u-1", Role: models.RoleUser}

	tests := []struct {
		name           string
		url            string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "owner reads booking",
			url:  "/bookings/b-1",
			setupMock: func(m *MockService) {
				m.On("Get", mock.Anything, alice, "b-1").
					Return(&models.Booking{ID: "b-1", OwnerID: "u-1", ProgramTitle: "Spin"}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"program_title":"Spin"`,
		},
		{
			name: "malformed id",
			url:  "/bookings/abc",
			setupMock: func(m *MockService) {
				m.On("Get", mock.Anything, alice, "abc").
					Return(nil, fmt.Errorf("storage.GetBooking: %w", models.ErrInvalidArgument)).Once()
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid argument"}`,
		},
		{
			name: "someone else's booking",
			url:  "/bookings/b-2",
			setupMock: func(m *MockService) {
				m.On("Get", mock.Anything, alice, "b-2").
					Return(nil, fmt.Errorf("booking.Get: %w", models.ErrForbidden)).Once()
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name: "missing booking",
			url:  "/bookings/b-3",
			setupMock: func(m *MockService) {
				m.On("Get", mock.Anything, alice, "b-3").
					Return(nil, fmt.Errorf("booking.Get: %w", models.ErrNotFound)).Once()
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"not found"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", strings.TrimPrefix(tt.url, "/bookings/"))
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			req = req.WithContext(middlewarectx.WithIdentity(ctx, alice))

			w := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
