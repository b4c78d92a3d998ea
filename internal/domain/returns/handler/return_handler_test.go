package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	orderModel "shop_backend/internal/domain/order/model"
	"shop_backend/internal/domain/returns/model"
	"shop_backend/internal/domain/returns/service"
	"shop_backend/internal/pkg/middleware"
	"shop_backend/pkg/apperr"
	"shop_backend/pkg/response"
	"shop_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockReturnService struct {
	mock.Mock
}

func (m *MockReturnService) result(args mock.Arguments) (*model.ReturnRequest, error) {
	if rr := args.Get(0); rr != nil {
		return rr.(*model.ReturnRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReturnService) RequestReturn(ctx context.Context, input service.RequestInput) (*model.ReturnRequest, error) {
	return m.result(m.Called(input))
}

func (m *MockReturnService) Review(ctx context.Context, id string, approve bool, note string) (*model.ReturnRequest, error) {
	return m.result(m.Called(id, approve, note))
}

func (m *MockReturnService) MarkShipped(ctx context.Context, id, tracking string) (*model.ReturnRequest, error) {
	return m.result(m.Called(id, tracking))
}

func (m *MockReturnService) MarkReceived(ctx context.Context, id string) (*model.ReturnRequest, error) {
	return m.result(m.Called(id))
}

func (m *MockReturnService) MarkInspected(ctx context.Context, id string) (*model.ReturnRequest, error) {
	return m.result(m.Called(id))
}

func (m *MockReturnService) StartRefund(ctx context.Context, id string) (*model.ReturnRequest, error) {
	return m.result(m.Called(id))
}

func (m *MockReturnService) CompleteRefund(ctx context.Context, input service.RefundInput) (*model.ReturnRequest, error) {
	return m.result(m.Called(input))
}

func (m *MockReturnService) CancelReturn(ctx context.Context, id, actorID string, isAdmin bool) (*model.ReturnRequest, error) {
	return m.result(m.Called(id, actorID, isAdmin))
}

func (m *MockReturnService) GetReturn(ctx context.Context, id, userID string, isAdmin bool) (*model.ReturnRequest, error) {
	return m.result(m.Called(id, userID, isAdmin))
}

func (m *MockReturnService) ListByUser(ctx context.Context, userID string, p utils.Pagination) (utils.PageResult, error) {
	args := m.Called(userID, p)
	return args.Get(0).(utils.PageResult), args.Error(1)
}

func (m *MockReturnService) ListAll(ctx context.Context, statuses []orderModel.ReturnStatus, p utils.Pagination) (utils.PageResult, error) {
	args := m.Called(statuses, p)
	return args.Get(0).(utils.PageResult), args.Error(1)
}

func newRouter(svc service.ReturnService, userID string, role int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextRole, role)
		c.Next()
	})
	h := NewReturnHandler(svc)
	r.POST("/returns", h.RequestReturn)
	r.POST("/returns/:id/cancel", h.CancelReturn)
	r.GET("/admin/returns", h.ListAllReturns)
	r.POST("/admin/returns/:id/review", h.Review)
	r.POST("/admin/returns/:id/ship", h.MarkShipped)
	r.POST("/admin/returns/:id/refund", h.CompleteRefund)
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

func decode(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

const orderID = "5e1a7c3b-9d2f-4b8e-a6c4-3f0e2d1b9a87"

func TestRequestReturn(t *testing.T) {
	t.Run("passes current user", func(t *testing.T) {
		svc := new(MockReturnService)
		svc.On("RequestReturn", service.RequestInput{OrderID: orderID, UserID: "u1", Reason: "damaged"}).
			Return(&model.ReturnRequest{ReturnCode: "RT20260301ABCDEF12", Status: orderModel.ReturnStatusRequested}, nil)

		w := doJSON(newRouter(svc, "u1", utils.RoleUser), http.MethodPost, "/returns",
			map[string]string{"orderId": orderID, "reason": "damaged"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"Requested"`)
		svc.AssertExpectations(t)
	})

	t.Run("already open", func(t *testing.T) {
		svc := new(MockReturnService)
		svc.On("RequestReturn", mock.Anything).Return(nil, apperr.ErrReturnAlreadyOpen)

		w := doJSON(newRouter(svc, "u1", utils.RoleUser), http.MethodPost, "/returns",
			map[string]string{"orderId": orderID, "reason": "damaged"})

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, response.ErrReturnAlreadyOpen, decode(t, w).Code)
	})

	t.Run("malformed order id", func(t *testing.T) {
		svc := new(MockReturnService)
		w := doJSON(newRouter(svc, "u1", utils.RoleUser), http.MethodPost, "/returns",
			map[string]string{"orderId": "o1", "reason": "damaged"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "RequestReturn", mock.Anything)
	})

	t.Run("reason required", func(t *testing.T) {
		svc := new(MockReturnService)
		w := doJSON(newRouter(svc, "u1", utils.RoleUser), http.MethodPost, "/returns",
			map[string]string{"orderId": orderID})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "RequestReturn", mock.Anything)
	})
}

func TestReviewRequiresDecision(t *testing.T) {
	svc := new(MockReturnService)
	r := newRouter(svc, "a1", utils.RoleAdmin)

	w := doJSON(r, http.MethodPost, "/admin/returns/r1/review", map[string]string{"adminNote": "ok"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.On("Review", "r1", false, "no receipt").
		Return(&model.ReturnRequest{Status: orderModel.ReturnStatusRejected}, nil)
	w = doJSON(r, http.MethodPost, "/admin/returns/r1/review", map[string]interface{}{"approve": false, "adminNote": "no receipt"})
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestMarkShippedOutOfOrder(t *testing.T) {
	svc := new(MockReturnService)
	svc.On("MarkShipped", "r1", "TRK-9").Return(nil, apperr.ErrInvalidTransition)

	w := doJSON(newRouter(svc, "a1", utils.RoleAdmin), http.MethodPost, "/admin/returns/r1/ship",
		map[string]string{"trackingNumber": "TRK-9"})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, response.ErrInvalidTransition, decode(t, w).Code)
}

func TestCompleteRefund(t *testing.T) {
	svc := new(MockReturnService)
	svc.On("CompleteRefund", mock.MatchedBy(func(in service.RefundInput) bool {
		return in.ReturnID == "r1" && in.Amount.Equal(decimal.RequireFromString("99.90")) && in.Method == "card"
	})).Return(nil, apperr.ErrInvalidAmount)

	w := doJSON(newRouter(svc, "a1", utils.RoleAdmin), http.MethodPost, "/admin/returns/r1/refund",
		map[string]string{"amount": "99.90", "method": "card"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.ErrInvalidAmount, decode(t, w).Code)
	svc.AssertExpectations(t)
}

func TestCancelReturnPassesRole(t *testing.T) {
	svc := new(MockReturnService)
	svc.On("CancelReturn", "r1", "u2", false).Return(nil, apperr.ErrUnauthorized)

	w := doJSON(newRouter(svc, "u2", utils.RoleUser), http.MethodPost, "/returns/r1/cancel", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	svc.AssertExpectations(t)
}

func TestListAllReturnsStatusFilter(t *testing.T) {
	svc := new(MockReturnService)
	svc.On("ListAll", []orderModel.ReturnStatus{orderModel.ReturnStatusInTransit}, utils.Pagination{Page: 1, Limit: 20}).
		Return(utils.PageResult{Page: 1, Limit: 20}, nil)
	r := newRouter(svc, "a1", utils.RoleAdmin)

	w := doJSON(r, http.MethodGet, "/admin/returns?status=InTransit&page=1&limit=20", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/admin/returns?status=Lost", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertExpectations(t)
}
