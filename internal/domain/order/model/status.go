package model

import (
	"database/sql/driver"
	"fmt"

	"shop_backend/pkg/apperr"
)

// OrderStatus 订单履约状态。零值非法，不会写入数据库
type OrderStatus uint8

const (
	OrderStatusUnknown OrderStatus = iota
	OrderStatusPlaced
	OrderStatusPreparing
	OrderStatusShipped
	OrderStatusDelivered
	OrderStatusCancelled
	OrderStatusReturnRequested
	OrderStatusReturnApproved
	OrderStatusReturnRejected
	OrderStatusReturnCompleted
)

// 存储与接口使用的字符串编码 (v1)，只能追加不能修改
var orderStatusNames = [...]string{
	OrderStatusUnknown:         "",
	OrderStatusPlaced:          "Placed",
	OrderStatusPreparing:       "Preparing",
	OrderStatusShipped:         "Shipped",
	OrderStatusDelivered:       "Delivered",
	OrderStatusCancelled:       "Cancelled",
	OrderStatusReturnRequested: "ReturnRequested",
	OrderStatusReturnApproved:  "ReturnApproved",
	OrderStatusReturnRejected:  "ReturnRejected",
	OrderStatusReturnCompleted: "ReturnCompleted",
}

func (s OrderStatus) String() string {
	if int(s) < len(orderStatusNames) {
		return orderStatusNames[s]
	}
	return fmt.Sprintf("OrderStatus(%d)", uint8(s))
}

func (s OrderStatus) Valid() bool {
	return s > OrderStatusUnknown && int(s) < len(orderStatusNames)
}

// ParseOrderStatus 大小写敏感
func ParseOrderStatus(v string) (OrderStatus, error) {
	for i, name := range orderStatusNames {
		if i > 0 && name == v {
			return OrderStatus(i), nil
		}
	}
	return OrderStatusUnknown, fmt.Errorf("unknown order status %q: %w", v, apperr.ErrInvalidInput)
}

func (s OrderStatus) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid order status %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *OrderStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseOrderStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s OrderStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid order status %d", uint8(s))
	}
	return s.String(), nil
}

func (s *OrderStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		return s.UnmarshalText([]byte(v))
	case []byte:
		return s.UnmarshalText(v)
	default:
		return fmt.Errorf("cannot scan %T into OrderStatus", src)
	}
}

// nextOrderStatus 正向履约只能前进一步
var nextOrderStatus = map[OrderStatus]OrderStatus{
	OrderStatusPlaced:    OrderStatusPreparing,
	OrderStatusPreparing: OrderStatusShipped,
	OrderStatusShipped:   OrderStatusDelivered,
}

// CanCancel 仅 Placed / Preparing 可取消
func (s OrderStatus) CanCancel() bool {
	return s == OrderStatusPlaced || s == OrderStatusPreparing
}

// CanAdminTransition 管理员改状态：正向一步，或在可取消状态下取消
func (s OrderStatus) CanAdminTransition(to OrderStatus) bool {
	if to == OrderStatusCancelled {
		return s.CanCancel()
	}
	next, ok := nextOrderStatus[s]
	return ok && next == to
}

// ReturnStatus 退货流程状态，零值为 None
type ReturnStatus uint8

const (
	ReturnStatusNone ReturnStatus = iota
	ReturnStatusRequested
	ReturnStatusApproved
	ReturnStatusRejected
	ReturnStatusInTransit
	ReturnStatusReceived
	ReturnStatusInspecting
	ReturnStatusRefundProcessing
	ReturnStatusRefundCompleted
	ReturnStatusCancelled
)

var returnStatusNames = [...]string{
	ReturnStatusNone:             "None",
	ReturnStatusRequested:        "Requested",
	ReturnStatusApproved:         "Approved",
	ReturnStatusRejected:         "Rejected",
	ReturnStatusInTransit:        "InTransit",
	ReturnStatusReceived:         "Received",
	ReturnStatusInspecting:       "Inspecting",
	ReturnStatusRefundProcessing: "RefundProcessing",
	ReturnStatusRefundCompleted:  "RefundCompleted",
	ReturnStatusCancelled:        "Cancelled",
}

func (s ReturnStatus) String() string {
	if int(s) < len(returnStatusNames) {
		return returnStatusNames[s]
	}
	return fmt.Sprintf("ReturnStatus(%d)", uint8(s))
}

func (s ReturnStatus) Valid() bool {
	return int(s) < len(returnStatusNames)
}

func ParseReturnStatus(v string) (ReturnStatus, error) {
	for i, name := range returnStatusNames {
		if name == v {
			return ReturnStatus(i), nil
		}
	}
	return ReturnStatusNone, fmt.Errorf("unknown return status %q: %w", v, apperr.ErrInvalidInput)
}

func (s ReturnStatus) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid return status %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *ReturnStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseReturnStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s ReturnStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid return status %d", uint8(s))
	}
	return s.String(), nil
}

func (s *ReturnStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		return s.UnmarshalText([]byte(v))
	case []byte:
		return s.UnmarshalText(v)
	default:
		return fmt.Errorf("cannot scan %T into ReturnStatus", src)
	}
}

var returnTransitions = map[ReturnStatus][]ReturnStatus{
	ReturnStatusRequested:        {ReturnStatusApproved, ReturnStatusRejected, ReturnStatusCancelled},
	ReturnStatusApproved:         {ReturnStatusInTransit, ReturnStatusCancelled},
	ReturnStatusInTransit:        {ReturnStatusReceived, ReturnStatusCancelled},
	ReturnStatusReceived:         {ReturnStatusInspecting, ReturnStatusCancelled},
	ReturnStatusInspecting:       {ReturnStatusRefundProcessing, ReturnStatusRefundCompleted, ReturnStatusCancelled},
	ReturnStatusRefundProcessing: {ReturnStatusRefundCompleted, ReturnStatusCancelled},
}

// CanTransitionTo 退货状态机
func (s ReturnStatus) CanTransitionTo(to ReturnStatus) bool {
	for _, next := range returnTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Active 流程进行中 (非 None 且非终态)
func (s ReturnStatus) Active() bool {
	_, ok := returnTransitions[s]
	return ok
}

// ActiveReturnStatuses 进行中的退货状态，用于部分唯一索引和查询
func ActiveReturnStatuses() []ReturnStatus {
	return []ReturnStatus{
		ReturnStatusRequested,
		ReturnStatusApproved,
		ReturnStatusInTransit,
		ReturnStatusReceived,
		ReturnStatusInspecting,
		ReturnStatusRefundProcessing,
	}
}

// OrderStatusForReturn 退货状态在订单履约状态上的映射
func OrderStatusForReturn(rs ReturnStatus) OrderStatus {
	switch rs {
	case ReturnStatusRequested:
		return OrderStatusReturnRequested
	case ReturnStatusApproved, ReturnStatusInTransit, ReturnStatusReceived,
		ReturnStatusInspecting, ReturnStatusRefundProcessing:
		return OrderStatusReturnApproved
	case ReturnStatusRejected:
		return OrderStatusReturnRejected
	case ReturnStatusRefundCompleted:
		return OrderStatusReturnCompleted
	default:
		// None / Cancelled 回到已签收
		return OrderStatusDelivered
	}
}
