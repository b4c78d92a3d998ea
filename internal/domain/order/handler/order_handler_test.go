package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"shop_backend/internal/domain/order/model"
	"shop_backend/internal/domain/order/service"
	"shop_backend/internal/pkg/middleware"
	"shop_backend/pkg/apperr"
	baseModel "shop_backend/pkg/model"
	"shop_backend/pkg/response"
	"shop_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Checkout(ctx context.Context, input service.CheckoutInput) (*model.Order, error) {
	args := m.Called(input)
	if o := args.Get(0); o != nil {
		return o.(*model.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderService) SetStatus(ctx context.Context, input service.SetStatusInput) (*service.StatusResult, error) {
	args := m.Called(input)
	if r := args.Get(0); r != nil {
		return r.(*service.StatusResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderService) Cancel(ctx context.Context, orderID, userID string) (*model.Order, error) {
	args := m.Called(orderID, userID)
	if o := args.Get(0); o != nil {
		return o.(*model.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, orderID, userID string, isAdmin bool) (*model.Order, error) {
	args := m.Called(orderID, userID, isAdmin)
	if o := args.Get(0); o != nil {
		return o.(*model.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderService) ListOrders(ctx context.Context, userID string, p utils.Pagination) (utils.PageResult, error) {
	args := m.Called(userID, p)
	return args.Get(0).(utils.PageResult), args.Error(1)
}

func (m *MockOrderService) ListAllOrders(ctx context.Context, status model.OrderStatus, p utils.Pagination) (utils.PageResult, error) {
	args := m.Called(status, p)
	return args.Get(0).(utils.PageResult), args.Error(1)
}

const (
	orderID   = "7d3f0c2e-5b9a-4c1d-8e6f-1a2b3c4d5e6f"
	addressID = "2c9e4b1a-0f3d-4a6b-9c8e-5d7f1e2a3b4c"
)

// newRouter 跳过 JWT，直接注入身份
func newRouter(svc service.OrderService, userID string, role int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextRole, role)
		c.Next()
	}, middleware.UUIDParamsMiddleware())
	h := NewOrderHandler(svc)
	r.POST("/orders/checkout", h.Checkout)
	r.GET("/orders/:id", h.GetOrder)
	r.POST("/orders/:id/cancel", h.Cancel)
	r.GET("/admin/orders", h.ListAllOrders)
	r.PUT("/admin/orders/:id/status", h.SetStatus)
	return r
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Code int             `json:"code"`
	Data json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestCheckoutHandler(t *testing.T) {
	svc := new(MockOrderService)
	svc.On("Checkout", service.CheckoutInput{
		UserID: "u1", AddressID: addressID, DiscountCode: "SAVE10", ShippingMethod: model.ShippingStandard,
	}).Return(&model.Order{
		BaseModel:      baseModel.BaseModel{ID: orderID},
		OrderNo:        "20260301100000ABCDEF12",
		Subtotal:       decimal.RequireFromString("200.00"),
		DiscountAmount: decimal.RequireFromString("20.00"),
		ShippingFee:    decimal.RequireFromString("29.90"),
		TotalAmount:    decimal.RequireFromString("209.90"),
	}, nil)

	w := doJSON(newRouter(svc, "u1", utils.RoleUser), http.MethodPost, "/orders/checkout",
		map[string]string{"addressId": addressID, "discountCode": "SAVE10"})
	require.Equal(t, http.StatusOK, w.Code)

	env := decode(t, w)
	assert.Equal(t, response.CodeSuccess, env.Code)
	var result CheckoutResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, orderID, result.OrderID)
	assert.True(t, result.TotalAmount.Equal(decimal.RequireFromString("209.90")))
	assert.True(t, result.ShippingFee.Equal(decimal.RequireFromString("29.90")))
	svc.AssertExpectations(t)
}

func TestCheckoutHandler_Errors(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		httpCode int
		errCode  int
	}{
		{"empty cart", apperr.ErrEmptyCart, http.StatusUnprocessableEntity, response.ErrEmptyCart},
		{"insufficient stock", fmt.Errorf("p7: %w", apperr.ErrInsufficientStock), http.StatusConflict, response.ErrInsufficientStock},
		{"code used", apperr.ErrCodeAlreadyUsed, http.StatusConflict, response.ErrCodeAlreadyUsed},
		{"unexpected", fmt.Errorf("connection reset"), http.StatusInternalServerError, response.ErrServerInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(MockOrderService)
			svc.On("Checkout", mock.Anything).Return(nil, tc.err)

			w := doJSON(newRouter(svc, "u1", utils.RoleUser), http.MethodPost, "/orders/checkout",
				map[string]string{"addressId": addressID})
			assert.Equal(t, tc.httpCode, w.Code)
			assert.Equal(t, tc.errCode, decode(t, w).Code)
		})
	}
}

func TestCheckoutHandler_MissingAddress(t *testing.T) {
	svc := new(MockOrderService)
	w := doJSON(newRouter(svc, "u1", utils.RoleUser), http.MethodPost, "/orders/checkout", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Checkout", mock.Anything)
}

func TestCancelHandler(t *testing.T) {
	svc := new(MockOrderService)
	svc.On("Cancel", orderID, "u1").Return(nil, apperr.ErrAlreadyCancelled)

	w := doJSON(newRouter(svc, "u1", utils.RoleUser), http.MethodPost, "/orders/"+orderID+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, response.ErrAlreadyCancelled, decode(t, w).Code)
}

func TestGetOrderHandler_PassesAdminFlag(t *testing.T) {
	svc := new(MockOrderService)
	svc.On("GetOrder", orderID, "admin-1", true).Return(&model.Order{
		BaseModel: baseModel.BaseModel{ID: orderID}, Status: model.OrderStatusPlaced,
	}, nil)

	w := doJSON(newRouter(svc, "admin-1", utils.RoleAdmin), http.MethodGet, "/orders/"+orderID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"Placed"`)
}

func TestOrderHandler_MalformedID(t *testing.T) {
	svc := new(MockOrderService)
	r := newRouter(svc, "admin-1", utils.RoleAdmin)

	for _, path := range []string{"/orders/abc", "/orders/" + orderID[:35]} {
		w := doJSON(r, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Equal(t, response.ErrNotFound, decode(t, w).Code, path)
	}
	w := doJSON(r, http.MethodPut, "/admin/orders/abc/status", map[string]string{"status": "Shipped"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	svc.AssertNotCalled(t, "GetOrder", mock.Anything, mock.Anything, mock.Anything)
	svc.AssertNotCalled(t, "SetStatus", mock.Anything)
}

func TestCheckoutHandler_MalformedIDs(t *testing.T) {
	svc := new(MockOrderService)
	r := newRouter(svc, "u1", utils.RoleUser)

	w := doJSON(r, http.MethodPost, "/orders/checkout", map[string]string{"addressId": "addr-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.ErrInvalidParam, decode(t, w).Code)

	w = doJSON(r, http.MethodPost, "/orders/checkout", map[string]interface{}{
		"addressId": addressID, "cartItemIds": []string{"c1"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Checkout", mock.Anything)
}

func TestSetStatusHandler(t *testing.T) {
	tracking := "TRK-1"
	svc := new(MockOrderService)
	svc.On("SetStatus", service.SetStatusInput{
		OrderID: orderID, Status: model.OrderStatusShipped, ActorID: "admin-1", TrackingNumber: tracking,
	}).Return(&service.StatusResult{ID: orderID, Status: model.OrderStatusShipped, TrackingNumber: &tracking}, nil)

	r := newRouter(svc, "admin-1", utils.RoleAdmin)
	w := doJSON(r, http.MethodPut, "/admin/orders/"+orderID+"/status",
		map[string]string{"status": "Shipped", "trackingNumber": tracking})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"`+orderID+`","status":"Shipped","trackingNumber":"TRK-1"}`, string(decode(t, w).Data))

	w = doJSON(r, http.MethodPut, "/admin/orders/"+orderID+"/status", map[string]string{"status": "Teleported"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.ErrInvalidParam, decode(t, w).Code)
}

func TestListAllOrdersHandler_StatusFilter(t *testing.T) {
	svc := new(MockOrderService)
	svc.On("ListAllOrders", model.OrderStatusShipped, utils.Pagination{Page: 2, Limit: 5}).
		Return(utils.PageResult{Total: 0, Page: 2, Limit: 5}, nil)

	r := newRouter(svc, "admin-1", utils.RoleAdmin)
	w := doJSON(r, http.MethodGet, "/admin/orders?status=Shipped&page=2&limit=5", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)

	w = doJSON(r, http.MethodGet, "/admin/orders?status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
