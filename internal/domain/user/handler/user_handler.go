package handler

import (
	"net/http"

	"shop_backend/internal/domain/user/service"
	"shop_backend/internal/pkg/middleware"
	"shop_backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// UserHandler 用户处理器
type UserHandler struct {
	service service.UserService
}

// NewUserHandler 创建处理器
func NewUserHandler(service service.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// RegisterInput 注册输入
type RegisterInput struct {
	Username string `json:"username" binding:"required,max=50"`
	Password string `json:"password" binding:"required,min=6"`
	Email    string `json:"email" binding:"required,email"`
}

// LoginInput 登录输入
type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register 处理注册请求
func (h *UserHandler) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	user, err := h.service.Register(c.Request.Context(), input.Username, input.Password, input.Email)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, user)
}

// Login 处理登录请求
func (h *UserHandler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	result, err := h.service.Login(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, result)
}

// Me 当前登录用户
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.service.GetProfile(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, user)
}
