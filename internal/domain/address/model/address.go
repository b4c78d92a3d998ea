package model

import (
	baseModel "shop_backend/pkg/model"
)

// Address 收货地址
type Address struct {
	baseModel.BaseModel
	UserID       string `gorm:"type:uuid;index;not null" json:"userId"`
	FullName     string `gorm:"type:varchar(100);not null" json:"fullName"`
	Phone        string `gorm:"type:varchar(30);not null" json:"phone"`
	City         string `gorm:"type:varchar(100);not null" json:"city"`
	District     string `gorm:"type:varchar(100);not null" json:"district"`
	Neighborhood string `gorm:"type:varchar(100)" json:"neighborhood"`
	AddressLine  string `gorm:"type:varchar(255);not null" json:"addressLine"`
	PostalCode   string `gorm:"type:varchar(20)" json:"postalCode"`
}
