package response

import (
	"errors"
	"net/http"

	"shop_backend/pkg/apperr"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`    // 业务码
	Message string      `json:"message"` // 提示信息
	Data    interface{} `json:"data"`    // 数据
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, httpCode int, errCode int, msg string) {
	c.JSON(httpCode, Response{
		Code:    errCode,
		Message: msg,
		Data:    nil,
	})
}

// Fail 业务失败响应 (HTTP 200, 业务码非 0)
func Fail(c *gin.Context, errCode int, msg string) {
	c.JSON(http.StatusOK, Response{
		Code:    errCode,
		Message: msg,
		Data:    nil,
	})
}

type errorMapping struct {
	target   error
	httpCode int
	errCode  int
}

// 按顺序匹配，第一个命中的生效
var errorMappings = []errorMapping{
	{apperr.ErrNotFound, http.StatusNotFound, ErrNotFound},
	{apperr.ErrUnauthorized, http.StatusForbidden, ErrNoPermission},
	{apperr.ErrAuthFailed, http.StatusUnauthorized, ErrAuthFailed},
	{apperr.ErrInvalidInput, http.StatusBadRequest, ErrInvalidParam},
	{apperr.ErrInvalidTransition, http.StatusConflict, ErrInvalidTransition},
	{apperr.ErrInsufficientStock, http.StatusConflict, ErrInsufficientStock},
	{apperr.ErrInvalidQuantity, http.StatusBadRequest, ErrInvalidQuantity},
	{apperr.ErrConcurrencyConflict, http.StatusConflict, ErrConcurrencyConflict},
	{apperr.ErrCodeNotFound, http.StatusNotFound, ErrCodeNotFound},
	{apperr.ErrCodeAlreadyUsed, http.StatusConflict, ErrCodeAlreadyUsed},
	{apperr.ErrCodeNotOwned, http.StatusForbidden, ErrCodeNotOwned},
	{apperr.ErrBelowMinimumOrder, http.StatusUnprocessableEntity, ErrBelowMinimumOrder},
	{apperr.ErrEmptyCart, http.StatusUnprocessableEntity, ErrEmptyCart},
	{apperr.ErrAlreadyCancelled, http.StatusConflict, ErrAlreadyCancelled},
	{apperr.ErrTooLateToCancel, http.StatusConflict, ErrTooLateToCancel},
	{apperr.ErrReturnAlreadyOpen, http.StatusConflict, ErrReturnAlreadyOpen},
	{apperr.ErrInvalidAmount, http.StatusBadRequest, ErrInvalidAmount},
	{apperr.ErrProductInUse, http.StatusConflict, ErrProductInUse},
}

// FromError 将业务错误映射为 HTTP 状态码和业务码
func FromError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			Error(c, m.httpCode, m.errCode, err.Error())
			return
		}
	}
	c.Error(err)
	Error(c, http.StatusInternalServerError, ErrServerInternal, "internal server error")
}
