package model

import (
	"fmt"
	"strings"
	"time"

	baseModel "shop_backend/pkg/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// 配送方式
const (
	ShippingStandard = "standard"
	ShippingExpress  = "express"
)

// Order 订单。退货相关字段是 ReturnRequest 的镜像，由退货流程在同一事务中维护
type Order struct {
	baseModel.BaseModel
	OrderNo   string      `gorm:"type:varchar(32);uniqueIndex;not null" json:"orderNo"`
	UserID    string      `gorm:"type:uuid;index;not null" json:"userId"`
	OrderDate time.Time   `gorm:"not null" json:"orderDate"`
	Status    OrderStatus `gorm:"type:varchar(32);index;not null" json:"status"`
	Items     []OrderItem `gorm:"foreignKey:OrderID" json:"items"`

	Subtotal       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	ShippingFee    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"shippingFee"`
	ShippingMethod string          `gorm:"type:varchar(20);not null" json:"shippingMethod"`
	TotalAmount    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"totalAmount"`

	// 下单时的地址快照
	ShippingFullName     string `gorm:"type:varchar(100)" json:"shippingFullName"`
	ShippingPhone        string `gorm:"type:varchar(30)" json:"shippingPhone"`
	ShippingCity         string `gorm:"type:varchar(100)" json:"shippingCity"`
	ShippingDistrict     string `gorm:"type:varchar(100)" json:"shippingDistrict"`
	ShippingNeighborhood string `gorm:"type:varchar(100)" json:"shippingNeighborhood"`
	ShippingAddressLine  string `gorm:"type:varchar(255)" json:"shippingAddressLine"`
	ShippingPostalCode   string `gorm:"type:varchar(20)" json:"shippingPostalCode"`

	DiscountCode       *string         `gorm:"type:varchar(50)" json:"discountCode,omitempty"`
	DiscountPercentage decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"discountPercentage"`
	DiscountAmount     decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"discountAmount"`

	TrackingNumber *string    `gorm:"type:varchar(100)" json:"trackingNumber,omitempty"`
	ShippedDate    *time.Time `json:"shippedDate,omitempty"`
	DeliveredDate  *time.Time `json:"deliveredDate,omitempty"`
	CancelledDate  *time.Time `json:"cancelledDate,omitempty"`

	// 退货镜像
	ReturnStatus         ReturnStatus     `gorm:"type:varchar(32);not null" json:"returnStatus"`
	ReturnCode           *string          `gorm:"type:varchar(32)" json:"returnCode,omitempty"`
	ReturnReason         *string          `gorm:"type:text" json:"returnReason,omitempty"`
	ReturnRequestDate    *time.Time       `json:"returnRequestDate,omitempty"`
	ReturnApprovedDate   *time.Time       `json:"returnApprovedDate,omitempty"`
	ReturnShippedDate    *time.Time       `json:"returnShippedDate,omitempty"`
	ReturnTrackingNumber *string          `gorm:"type:varchar(100)" json:"returnTrackingNumber,omitempty"`
	ReturnReceivedDate   *time.Time       `json:"returnReceivedDate,omitempty"`
	ReturnInspectedDate  *time.Time       `json:"returnInspectedDate,omitempty"`
	RefundProcessedDate  *time.Time       `json:"refundProcessedDate,omitempty"`
	RefundAmount         *decimal.Decimal `gorm:"type:numeric(12,2)" json:"refundAmount,omitempty"`
	RefundMethod         *string          `gorm:"type:varchar(50)" json:"refundMethod,omitempty"`
	RefundTransactionID  *string          `gorm:"type:varchar(100)" json:"refundTransactionId,omitempty"`
}

// OrderItem 订单明细，单价为下单时快照
type OrderItem struct {
	baseModel.BaseModel
	OrderID     string          `gorm:"type:uuid;index;not null" json:"orderId"`
	ProductID   string          `gorm:"type:uuid;index;not null" json:"productId"`
	VariantID   *string         `gorm:"type:uuid" json:"variantId,omitempty"`
	ProductName string          `gorm:"type:varchar(200);not null" json:"productName"`
	VariantName string          `gorm:"type:varchar(100)" json:"variantName,omitempty"`
	SKU         string          `gorm:"column:sku;type:varchar(64)" json:"sku,omitempty"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unitPrice"`
	Quantity    int             `gorm:"not null" json:"quantity"`
}

func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// NewOrderNo 订单号：日期时间 + 随机串
func NewOrderNo(now time.Time) string {
	return now.UTC().Format("20060102150405") + strings.ToUpper(uuid.New().String()[:8])
}

// ValidShippingMethod 校验配送方式
func ValidShippingMethod(method string) error {
	switch method {
	case ShippingStandard, ShippingExpress:
		return nil
	default:
		return fmt.Errorf("unknown shipping method %q", method)
	}
}
