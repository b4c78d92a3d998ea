// Package apperr 定义业务层通用错误。
// 服务层用 fmt.Errorf("...: %w", err) 包装，handler 层用 errors.Is 判断。
package apperr

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("not allowed to access this resource")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrInvalidQuantity     = errors.New("quantity must be positive")
	ErrConcurrencyConflict = errors.New("concurrent update conflict, please retry")
	ErrAuthFailed          = errors.New("invalid username or password")

	// 优惠码
	ErrCodeNotFound      = errors.New("discount code not found")
	ErrCodeAlreadyUsed   = errors.New("discount code already used")
	ErrCodeNotOwned      = errors.New("discount code belongs to another user")
	ErrBelowMinimumOrder = errors.New("order amount below discount minimum")

	// 订单
	ErrEmptyCart        = errors.New("cart is empty")
	ErrAlreadyCancelled = errors.New("order already cancelled")
	ErrTooLateToCancel  = errors.New("order can no longer be cancelled")

	// 退货
	ErrReturnAlreadyOpen = errors.New("an active return already exists for this order")
	ErrInvalidAmount     = errors.New("invalid refund amount")

	// 商品
	ErrProductInUse = errors.New("product is referenced by existing orders")
)
