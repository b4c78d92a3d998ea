package model

import (
	baseModel "shop_backend/pkg/model"
)

// CartItem 购物车条目，(user, product, variant) 唯一。
// 删除一律为物理删除，否则软删除的行仍会占用唯一索引
type CartItem struct {
	baseModel.BaseModel
	UserID    string  `gorm:"type:uuid;index;not null" json:"userId"`
	ProductID string  `gorm:"type:uuid;not null" json:"productId"`
	VariantID *string `gorm:"type:uuid" json:"variantId,omitempty"`
	Quantity  int     `gorm:"not null" json:"quantity"`
}
