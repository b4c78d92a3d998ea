package response

// 业务状态码
const (
	CodeSuccess = 0
	CodeError   = 1

	// 用户模块错误 100xx
	ErrUserNotFound = 10002
	ErrAuthFailed   = 10003
	ErrTokenInvalid = 10004
	ErrNoPermission = 10005

	// 优惠码错误 200xx
	ErrCodeNotFound      = 20001
	ErrCodeAlreadyUsed   = 20002
	ErrCodeNotOwned      = 20003
	ErrBelowMinimumOrder = 20004

	// 订单/库存错误 300xx
	ErrNotFound          = 30001
	ErrInvalidTransition = 30002
	ErrInsufficientStock = 30003
	ErrInvalidQuantity   = 30004
	ErrEmptyCart         = 30005
	ErrAlreadyCancelled  = 30006
	ErrTooLateToCancel   = 30007
	ErrProductInUse      = 30008

	// 退货错误 400xx
	ErrReturnAlreadyOpen = 40001
	ErrInvalidAmount     = 40002

	// 系统错误 500xx
	ErrServerInternal      = 50001
	ErrInvalidParam        = 50002
	ErrTooManyRequests     = 50003
	ErrConcurrencyConflict = 50004
)
