package model

import (
	"strings"
	"time"

	orderModel "shop_backend/internal/domain/order/model"
	baseModel "shop_backend/pkg/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReturnRequest 退货单，一次退货流程的权威记录，订单上的退货字段由它派生
type ReturnRequest struct {
	baseModel.BaseModel
	OrderID     string                  `gorm:"type:uuid;index;not null" json:"orderId"`
	UserID      string                  `gorm:"type:uuid;index;not null" json:"userId"`
	ReturnCode  string                  `gorm:"type:varchar(32);uniqueIndex;not null" json:"returnCode"`
	Reason      string                  `gorm:"type:text;not null" json:"reason"`
	Description *string                 `gorm:"type:text" json:"description,omitempty"`
	RequestDate time.Time               `gorm:"not null" json:"requestDate"`
	Status      orderModel.ReturnStatus `gorm:"type:varchar(32);index;not null" json:"status"`

	AdminNote    *string    `gorm:"type:text" json:"adminNote,omitempty"`
	ReviewedDate *time.Time `json:"reviewedDate,omitempty"`
	ApprovedDate *time.Time `json:"approvedDate,omitempty"`

	TrackingNumber *string    `gorm:"type:varchar(100)" json:"trackingNumber,omitempty"`
	ShippedDate    *time.Time `json:"shippedDate,omitempty"`
	ReceivedDate   *time.Time `json:"receivedDate,omitempty"`
	InspectedDate  *time.Time `json:"inspectedDate,omitempty"`

	RefundAmount        *decimal.Decimal `gorm:"type:numeric(12,2)" json:"refundAmount,omitempty"`
	RefundMethod        *string          `gorm:"type:varchar(50)" json:"refundMethod,omitempty"`
	RefundTransactionID *string          `gorm:"type:varchar(100)" json:"refundTransactionId,omitempty"`
	RefundProcessedDate *time.Time       `json:"refundProcessedDate,omitempty"`

	CancelledDate *time.Time `json:"cancelledDate,omitempty"`
}

// NewReturnCode 退货单号：RT + 日期 + 随机串
func NewReturnCode(now time.Time) string {
	return "RT" + now.UTC().Format("20060102") + strings.ToUpper(uuid.New().String()[:8])
}

// OrderMirror 订单上需要同步的列。每次流转整体覆盖，新一轮退货会清掉上一轮的残留
func (r *ReturnRequest) OrderMirror() map[string]interface{} {
	return map[string]interface{}{
		"status":                 orderModel.OrderStatusForReturn(r.Status),
		"return_status":          r.Status,
		"return_code":            r.ReturnCode,
		"return_reason":          r.Reason,
		"return_request_date":    r.RequestDate,
		"return_approved_date":   r.ApprovedDate,
		"return_shipped_date":    r.ShippedDate,
		"return_tracking_number": r.TrackingNumber,
		"return_received_date":   r.ReceivedDate,
		"return_inspected_date":  r.InspectedDate,
		"refund_processed_date":  r.RefundProcessedDate,
		"refund_amount":          r.RefundAmount,
		"refund_method":          r.RefundMethod,
		"refund_transaction_id":  r.RefundTransactionID,
	}
}
