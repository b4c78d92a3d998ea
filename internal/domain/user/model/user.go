package model

import (
	baseModel "shop_backend/pkg/model"
	"shop_backend/pkg/utils"
)

// 角色，与 JWT 中的 role 一致
const (
	RoleUser  = utils.RoleUser
	RoleAdmin = utils.RoleAdmin
)

// User 用户模型
type User struct {
	baseModel.BaseModel
	Username     string `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Email        string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"` // 密码不返回给前端
	Role         int    `gorm:"not null;default:1" json:"role"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
