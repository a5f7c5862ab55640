package verify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/flood-alert/internal/models"
	"github.com/magabrotheeeer/flood-alert/internal/storage/repository"
)

// Мок сервиса с методом Verify
type VerifyServiceMock struct {
	mock.Mock
}

func (m *VerifyServiceMock) Verify(ctx context.Context, token string) (*models.Subscriber, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscriber), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestVerifyHandler_ServeHTTP(t *testing.T) {
	serviceMock := new(VerifyServiceMock)
	handler := New(newNoopLogger(), serviceMock)

	verified := &models.Subscriber{
		ID:           "id-1",
		Email:        "user@example.com",
		IsVerified:   true,
		IsSubscribed: true,
	}

	tests := []struct {
		name           string
		target         string
		mockToken      string
		mockSub        *models.Subscriber
		mockErr        error
		wantStatusCode int
		wantError      string
		wantStatus     string
		wantEmail      string
	}{
		{
			name:           "valid token",
			target:         "/verify?token=tok-123",
			mockToken:      "tok-123",
			mockSub:        verified,
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
			wantEmail:      "user@example.com",
		},
		{
			name:           "missing token",
			target:         "/verify",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid or already used verification token",
			wantStatus:     "Error",
		},
		{
			name:           "unknown or used token",
			target:         "/verify?token=used",
			mockToken:      "used",
			mockErr:        repository.ErrVerificationTokenNotFound,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid or already used verification token",
			wantStatus:     "Error",
		},
		{
			name:           "service error",
			target:         "/verify?token=tok-123",
			mockToken:      "tok-123",
			mockErr:        errors.New("db down"),
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "could not verify email",
			wantStatus:     "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock.ExpectedCalls = nil
			serviceMock.Calls = nil

			if tt.mockToken != "" {
				serviceMock.On("Verify", mock.Anything, tt.mockToken).Return(tt.mockSub, tt.mockErr).Once()
			}

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))

			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err := json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)

			assert.Equal(t, tt.wantStatus, got["status"])

			if tt.wantError != "" {
				errStr, ok := got["error"].(string)
				assert.True(t, ok)
				assert.Equal(t, tt.wantError, errStr)
			}

			if tt.wantEmail != "" {
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, tt.wantEmail, data["email"])
			}

			serviceMock.AssertExpectations(t)
		})
	}
}
