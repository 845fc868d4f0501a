package list

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/bloom-gym/internal/http/middlewarectx"
	"github.com/magabrotheeeer/bloom-gym/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) ListMine(ctx context.Context, who models.Identity) ([]models.Booking, error) {
	args := m.Called(ctx, who)
	if res := args.Get(0); res != nil {
		return res.([]models.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestListHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	alice := models.Identity{UserID: "u-1", Role: models.RoleUser}

	tests := []struct {
		name           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "two bookings",
			setupMock: func(m *MockService) {
				m.On("ListMine", mock.Anything, alice).Return([]models.Booking{
					{ID: "b-2", OwnerID: "u-1"}, {ID: "b-1", OwnerID: "u-1"},
				}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"id":"b-2"`,
		},
		{
			name: "empty list renders as array",
			setupMock: func(m *MockService) {
				m.On("ListMine", mock.Anything, alice).Return(nil, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"bookings":[]`,
		},
		{
			name: "storage error",
			setupMock: func(m *MockService) {
				m.On("ListMine", mock.Anything, alice).Return(nil, errors.New("db down")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"internal error"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
			req = req.WithContext(middlewarectx.WithIdentity(req.Context(), alice))
			w := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
