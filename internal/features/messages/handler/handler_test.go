package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/internal/core/apperror"
	"storefront/internal/core/auth"
	"storefront/internal/features/messages/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

// MockMessageService is a mock implementation of ports.MessageService
type MockMessageService struct {
	mock.Mock
}

func (m *MockMessageService) SendMessage(ctx context.Context, name, email, subject, body string) (*domain.Message, error) {
	args := m.Called(ctx, name, email, subject, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *MockMessageService) ListMessages(ctx context.Context, read *bool) ([]domain.Message, error) {
	args := m.Called(ctx, read)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Message), args.Error(1)
}

func (m *MockMessageService) SetRead(ctx context.Context, id string, read bool) (*domain.Message, error) {
	args := m.Called(ctx, id, read)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func setupApp(service *MockMessageService) *fiber.App {
	app := fiber.New()
	handler := NewMessageHandler(service)
	app.Post("/messages", handler.SendMessage)
	app.Get("/admin/messages", auth.Admin(testSecret), handler.ListMessages)
	app.Patch("/admin/messages/:id/read", auth.Admin(testSecret), handler.SetRead)
	return app
}

func asAdmin(t *testing.T, req *http.Request) *http.Request {
	token, err := auth.IssueToken(testSecret, "admin-1", auth.RoleAdmin, time.Hour)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestMessageHandler_SendMessage(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := new(MockMessageService)
		app := setupApp(mockService)

		reqBody := SendMessageRequest{Name: "Ana", Email: "ana@example.com", Subject: "Trocas", Body: "Oi"}
		body, _ := json.Marshal(reqBody)

		mockService.On("SendMessage", mock.Anything, "Ana", "ana@example.com", "Trocas", "Oi").
			Return(&domain.Message{ID: "m1", Name: "Ana"}, nil).Once()

		req := httptest.NewRequest("POST", "/messages", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockService.AssertExpectations(t)
	})

	t.Run("ValidationError", func(t *testing.T) {
		mockService := new(MockMessageService)
		app := setupApp(mockService)

		mockService.On("SendMessage", mock.Anything, "Ana", "bad", "Trocas", "Oi").
			Return(nil, apperror.Validation("email %q is not valid", "bad")).Once()

		req := httptest.NewRequest("POST", "/messages", strings.NewReader(`{"name":"Ana","email":"bad","subject":"Trocas","body":"Oi"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("InvalidBody", func(t *testing.T) {
		mockService := new(MockMessageService)
		app := setupApp(mockService)

		req := httptest.NewRequest("POST", "/messages", strings.NewReader(`{"name":`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		mockService.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestMessageHandler_ListMessages(t *testing.T) {
	t.Run("All", func(t *testing.T) {
		mockService := new(MockMessageService)
		app := setupApp(mockService)

		mockService.On("ListMessages", mock.Anything, (*bool)(nil)).
			Return([]domain.Message{{ID: "m2"}, {ID: "m1"}}, nil).Once()

		resp, err := app.Test(asAdmin(t, httptest.NewRequest("GET", "/admin/messages", nil)))
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var messages []domain.Message
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&messages))
		assert.Len(t, messages, 2)
	})

	t.Run("UnreadOnly", func(t *testing.T) {
		mockService := new(MockMessageService)
		app := setupApp(mockService)

		mockService.On("ListMessages", mock.Anything, mock.MatchedBy(func(read *bool) bool {
			return read != nil && !*read
		})).Return([]domain.Message{}, nil).Once()

		resp, err := app.Test(asAdmin(t, httptest.NewRequest("GET", "/admin/messages?read=false", nil)))
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockService.AssertExpectations(t)
	})

	t.Run("BadFilter", func(t *testing.T) {
		mockService := new(MockMessageService)
		app := setupApp(mockService)

		resp, err := app.Test(asAdmin(t, httptest.NewRequest("GET", "/admin/messages?read=maybe", nil)))
		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("NotAdmin", func(t *testing.T) {
		mockService := new(MockMessageService)
		app := setupApp(mockService)

		resp, err := app.Test(httptest.NewRequest("GET", "/admin/messages", nil))
		assert.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestMessageHandler_SetRead(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := new(MockMessageService)
		app := setupApp(mockService)

		mockService.On("SetRead", mock.Anything, "m1", true).Return(&domain.Message{ID: "m1", Read: true}, nil).Once()

		req := httptest.NewRequest("PATCH", "/admin/messages/m1/read", strings.NewReader(`{"read":true}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(asAdmin(t, req))

		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockService.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockMessageService)
		app := setupApp(mockService)

		mockService.On("SetRead", mock.Anything, "missing", true).Return(nil, domain.ErrMessageNotFound).Once()

		req := httptest.NewRequest("PATCH", "/admin/messages/missing/read", strings.NewReader(`{"read":true}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(asAdmin(t, req))

		assert.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
