package utils

import (
	"errors"
	"fmt"
	"time"

	"shop_backend/internal/pkg/config"

	"github.com/golang-jwt/jwt/v5"
)

// 角色
const (
	RoleUser  = 1
	RoleAdmin = 2
)

const tokenIssuer = "shop-backend"

var errUnknownRole = errors.New("unknown role in token")

// Claims 自定义JWT Claims
type Claims struct {
	UserID string `json:"user_id"`
	Role   int    `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager HS256 签发与校验
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager ttl <= 0 时按 24 小时处理
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// DefaultTokenManager 读取全局 JWT 配置
func DefaultTokenManager() *TokenManager {
	cfg := config.GlobalConfig.JWT
	return NewTokenManager(cfg.Secret, time.Duration(cfg.Expire)*time.Hour)
}

// Generate 返回 token 和过期时间
func (m *TokenManager) Generate(userID string, role int) (string, *time.Time, error) {
	if role != RoleUser && role != RoleAdmin {
		return "", nil, fmt.Errorf("role %d: %w", role, errUnknownRole)
	}
	now := m.now()
	expireAt := now.Add(m.ttl)

	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expireAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   userID,
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, err
	}
	return token, &expireAt, nil
}

// Parse 校验签名、签发方与过期时间
func (m *TokenManager) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.Role != RoleUser && claims.Role != RoleAdmin {
		return nil, fmt.Errorf("role %d: %w", claims.Role, errUnknownRole)
	}
	return claims, nil
}

// GenerateToken 使用全局配置签发
func GenerateToken(userID string, role int) (string, *time.Time, error) {
	return DefaultTokenManager().Generate(userID, role)
}

// ParseToken 使用全局配置校验
func ParseToken(tokenString string) (*Claims, error) {
	return DefaultTokenManager().Parse(tokenString)
}
