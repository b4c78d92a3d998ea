package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel 基础模型，替代 gorm.Model，使用 UUID 作为主键
type BaseModel struct {
	ID        string         `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate 钩子：生成 UUID
func (b *BaseModel) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == "" {
		b.ID = NewID()
	}
	return
}

// NewID 生成新的主键
func NewID() string {
	return uuid.New().String()
}

// StringPtr 返回 s 的指针，空串返回 nil (用于可选外键)
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref 解引用可选字符串
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
