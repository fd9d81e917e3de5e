package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/internal/core/apperror"
	"storefront/internal/core/auth"
	"storefront/internal/features/orders/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

// MockOrderLedger is a mock implementation of ports.OrderLedger
type MockOrderLedger struct {
	mock.Mock
}

func (m *MockOrderLedger) NextOrderNumber(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderLedger) CreateOrder(ctx context.Context, order domain.NewOrder) (*domain.Order, error) {
	args := m.Called(ctx, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderLedger) HasPayment(ctx context.Context, paymentID string) (bool, error) {
	args := m.Called(ctx, paymentID)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderLedger) UpdateStatus(ctx context.Context, orderID, status string) (*domain.Order, error) {
	args := m.Called(ctx, orderID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderLedger) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderLedger) ListOrders(ctx context.Context) ([]domain.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderLedger) ListUserOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderLedger) SubscribeOrders(ctx context.Context, fn func([]domain.Order)) (func(), error) {
	args := m.Called(ctx, fn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func()), args.Error(1)
}

func setupApp(ledger *MockOrderLedger) (*fiber.App, *OrderHandler) {
	app := fiber.New()
	h := NewOrderHandler(ledger)
	app.Get("/orders", auth.Required(testSecret), h.ListMine)
	app.Get("/orders/:id", auth.Required(testSecret), h.GetMine)
	app.Get("/admin/orders", auth.Admin(testSecret), h.ListAll)
	app.Get("/admin/orders/stream", auth.Admin(testSecret), h.Stream)
	app.Patch("/admin/orders/:id/status", auth.Admin(testSecret), h.UpdateStatus)
	return app, h
}

func withToken(t *testing.T, req *http.Request, userID, role string) *http.Request {
	token, err := auth.IssueToken(testSecret, userID, role, time.Hour)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func sampleOrder(id, userID string, number int64) domain.Order {
	return domain.Order{
		ID:          id,
		OrderNumber: number,
		UserID:      userID,
		Total:       decimal.RequireFromString("204.80"),
		Status:      domain.OrderStatusPending,
	}
}

func TestOrderHandler_ListMine(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		ledger := new(MockOrderLedger)
		app, _ := setupApp(ledger)

		ledger.On("ListUserOrders", mock.Anything, "u1").
			Return([]domain.Order{sampleOrder("o2", "u1", 101), sampleOrder("o1", "u1", 100)}, nil).Once()

		resp, err := app.Test(withToken(t, httptest.NewRequest("GET", "/orders", nil), "u1", ""))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var orders []domain.Order
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&orders))
		require.Len(t, orders, 2)
		assert.Equal(t, int64(101), orders[0].OrderNumber)
		assert.True(t, orders[0].Total.Equal(decimal.RequireFromString("204.80")))
		ledger.AssertExpectations(t)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		ledger := new(MockOrderLedger)
		app, _ := setupApp(ledger)

		resp, err := app.Test(httptest.NewRequest("GET", "/orders", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		ledger.AssertNotCalled(t, "ListUserOrders", mock.Anything, mock.Anything)
	})

	t.Run("StoreDown", func(t *testing.T) {
		ledger := new(MockOrderLedger)
		app, _ := setupApp(ledger)

		ledger.On("ListUserOrders", mock.Anything, "u1").Return(nil, apperror.ErrStore).Once()

		resp, err := app.Test(withToken(t, httptest.NewRequest("GET", "/orders", nil), "u1", ""))
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}

func TestOrderHandler_GetMine(t *testing.T) {
	ledger := new(MockOrderLedger)
	app, _ := setupApp(ledger)

	order := sampleOrder("o1", "u1", 100)
	ledger.On("GetOrder", mock.Anything, "o1").Return(&order, nil)

	resp, err := app.Test(withToken(t, httptest.NewRequest("GET", "/orders/o1", nil), "u1", ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(withToken(t, httptest.NewRequest("GET", "/orders/o1", nil), "someone-else", ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestOrderHandler_ListAll(t *testing.T) {
	t.Run("Admin", func(t *testing.T) {
		ledger := new(MockOrderLedger)
		app, _ := setupApp(ledger)

		ledger.On("ListOrders", mock.Anything).Return([]domain.Order{sampleOrder("o1", "u1", 100)}, nil).Once()

		resp, err := app.Test(withToken(t, httptest.NewRequest("GET", "/admin/orders", nil), "admin-1", auth.RoleAdmin))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		ledger.AssertExpectations(t)
	})

	t.Run("Customer", func(t *testing.T) {
		ledger := new(MockOrderLedger)
		app, _ := setupApp(ledger)

		resp, err := app.Test(withToken(t, httptest.NewRequest("GET", "/admin/orders", nil), "u1", ""))
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		ledger.AssertNotCalled(t, "ListOrders", mock.Anything)
	})
}

func TestOrderHandler_UpdateStatus(t *testing.T) {
	patch := func(t *testing.T, app *fiber.App, body string) *http.Response {
		req := httptest.NewRequest("PATCH", "/admin/orders/o1/status", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(withToken(t, req, "admin-1", auth.RoleAdmin))
		require.NoError(t, err)
		return resp
	}

	t.Run("Success", func(t *testing.T) {
		ledger := new(MockOrderLedger)
		app, _ := setupApp(ledger)

		updated := sampleOrder("o1", "u1", 100)
		updated.Status = domain.OrderStatusShipped
		ledger.On("UpdateStatus", mock.Anything, "o1", "shipped").Return(&updated, nil).Once()

		resp := patch(t, app, `{"status":"shipped"}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var got domain.Order
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, domain.OrderStatusShipped, got.Status)
	})

	t.Run("InvalidStatus", func(t *testing.T) {
		ledger := new(MockOrderLedger)
		app, _ := setupApp(ledger)

		ledger.On("UpdateStatus", mock.Anything, "o1", "lost").
			Return(nil, apperror.Validation("invalid order status %q", "lost")).Once()

		resp := patch(t, app, `{"status":"lost"}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("NotFound", func(t *testing.T) {
		ledger := new(MockOrderLedger)
		app, _ := setupApp(ledger)

		ledger.On("UpdateStatus", mock.Anything, "o1", "shipped").Return(nil, domain.ErrOrderNotFound).Once()

		resp := patch(t, app, `{"status":"shipped"}`)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("MalformedBody", func(t *testing.T) {
		ledger := new(MockOrderLedger)
		app, _ := setupApp(ledger)

		resp := patch(t, app, `{"status":`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestOrderHandler_Stream(t *testing.T) {
	t.Run("SendsSnapshot", func(t *testing.T) {
		ledger := new(MockOrderLedger)
		app, h := setupApp(ledger)
		h.streamTimeout = 200 * time.Millisecond

		unsubscribed := make(chan struct{})
		ledger.On("SubscribeOrders", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				fn := args.Get(1).(func([]domain.Order))
				fn([]domain.Order{sampleOrder("o1", "u1", 100)})
			}).
			Return(func() { close(unsubscribed) }, nil).Once()

		req := withToken(t, httptest.NewRequest("GET", "/admin/orders/stream", nil), "admin-1", auth.RoleAdmin)
		resp, err := app.Test(req, 5000)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "event: orders\n")
		assert.Contains(t, string(body), `"orderNumber":100`)

		select {
		case <-unsubscribed:
		case <-time.After(time.Second):
			t.Fatal("subscription was not released")
		}
	})

	t.Run("SubscribeFails", func(t *testing.T) {
		ledger := new(MockOrderLedger)
		app, _ := setupApp(ledger)

		ledger.On("SubscribeOrders", mock.Anything, mock.Anything).Return(nil, apperror.ErrStore).Once()

		req := withToken(t, httptest.NewRequest("GET", "/admin/orders/stream", nil), "admin-1", auth.RoleAdmin)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}
