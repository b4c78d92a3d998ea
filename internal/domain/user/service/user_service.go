package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shop_backend/internal/domain/user/model"
	"shop_backend/internal/domain/user/repository"
	"shop_backend/pkg/apperr"
	"shop_backend/pkg/cache"
	"shop_backend/pkg/database"
	"shop_backend/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// 缓存键常量
const (
	UserCacheKeyPrefix = "user:"
	UserCacheTTL       = time.Hour * 2
)

// LoginResult 登录结果
type LoginResult struct {
	Token    string      `json:"token"`
	ExpireAt *time.Time  `json:"expireAt"`
	User     *model.User `json:"user"`
}

// TokenIssuer 签发 JWT，默认为 utils.GenerateToken
type TokenIssuer func(userID string, role int) (string, *time.Time, error)

// UserService 用户服务接口
type UserService interface {
	Register(ctx context.Context, username, password, email string) (*model.User, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	GetProfile(ctx context.Context, id string) (*model.User, error)
}

// userService 实现
type userService struct {
	repo   repository.UserRepository
	cache  cache.CacheService
	issuer TokenIssuer
}

// NewUserService cache 为 nil 时不缓存用户资料
func NewUserService(repo repository.UserRepository, c cache.CacheService, issuer TokenIssuer) UserService {
	return &userService{repo: repo, cache: c, issuer: issuer}
}

// HashPassword bcrypt 加密
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Register 注册普通用户
func (s *userService) Register(ctx context.Context, username, password, email string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(password) < 6 {
		return nil, fmt.Errorf("username required and password at least 6 characters: %w", apperr.ErrInvalidInput)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Username:     username,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		Role:         model.RoleUser,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if database.IsUniqueViolation(err, "") {
			return nil, fmt.Errorf("username or email already taken: %w", apperr.ErrInvalidInput)
		}
		return nil, err
	}
	logger.Log.Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

// Login 用户名 + 密码登录
func (s *userService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	// 1. 查询用户
	user, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrAuthFailed
		}
		return nil, err
	}

	// 2. 校验密码
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.ErrAuthFailed
	}

	// 3. 生成 Token
	token, expireAt, err := s.issuer(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpireAt: expireAt, User: user}, nil
}

// GetProfile 先读缓存，未命中读库并回填
func (s *userService) GetProfile(ctx context.Context, id string) (*model.User, error) {
	key := UserCacheKeyPrefix + id
	if s.cache != nil {
		var cached model.User
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, user, UserCacheTTL); err != nil {
			logger.Log.Warn("user cache write failed", zap.String("user_id", id), zap.Error(err))
		}
	}
	return user, nil
}
