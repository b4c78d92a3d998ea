package model

import (
	baseModel "shop_backend/pkg/model"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Product 商品。没有规格时使用 Product.Stock
type Product struct {
	baseModel.BaseModel
	Name        string           `gorm:"type:varchar(200);not null" json:"name"`
	Description string           `gorm:"type:text" json:"description"`
	Price       decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"price"`
	Stock       int              `gorm:"not null;default:0" json:"stock"`
	IsActive    bool             `gorm:"not null" json:"isActive"`
	Variants    []ProductVariant `gorm:"foreignKey:ProductID" json:"variants,omitempty"`
}

// ProductVariant 商品规格 (如色号)，拥有独立的 SKU、价格和库存
type ProductVariant struct {
	baseModel.BaseModel
	ProductID       string          `gorm:"type:uuid;index;not null" json:"productId"`
	Name            string          `gorm:"type:varchar(100);not null" json:"name"`
	SKU             string          `gorm:"column:sku;type:varchar(64);not null" json:"sku"`
	Price           decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	DiscountPercent decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"discountPercent"`
	Stock           int             `gorm:"not null;default:0" json:"stock"`
	IsDefault       bool            `gorm:"not null;default:false" json:"isDefault"`
}

// EffectivePrice 规格折后价，四舍五入到分
func (v *ProductVariant) EffectivePrice() decimal.Decimal {
	if v.DiscountPercent.IsZero() {
		return v.Price
	}
	return v.Price.Mul(hundred.Sub(v.DiscountPercent)).Div(hundred).Round(2)
}

// UnitPrice 下单单价：有规格取规格折后价，否则取商品价
func UnitPrice(p *Product, v *ProductVariant) decimal.Decimal {
	if v != nil {
		return v.EffectivePrice()
	}
	return p.Price
}

// AvailableStock 可售库存：有规格取规格库存
func AvailableStock(p *Product, v *ProductVariant) int {
	if v != nil {
		return v.Stock
	}
	return p.Stock
}
