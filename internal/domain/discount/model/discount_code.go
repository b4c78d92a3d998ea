package model

import (
	"strings"
	"time"

	baseModel "shop_backend/pkg/model"

	"github.com/shopspring/decimal"
)

// DiscountCode 一次性优惠码。UserID 为空表示任何用户可用
type DiscountCode struct {
	baseModel.BaseModel
	Code               string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	DiscountPercentage decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"discountPercentage"`
	MinimumOrderAmount decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"minimumOrderAmount"`
	UserID             *string         `gorm:"type:uuid;index" json:"userId,omitempty"`
	IsUsed             bool            `gorm:"not null;default:false" json:"isUsed"`
	UsedAt             *time.Time      `json:"usedAt,omitempty"`
	UsedByOrderID      *string         `gorm:"type:uuid" json:"usedByOrderId,omitempty"`
}

// NormalizeCode 优惠码不区分大小写
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
