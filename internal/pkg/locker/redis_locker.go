package locker

import (
	"context"
	"fmt"
	"time"

	"shop_backend/pkg/apperr"
	"shop_backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Locker 分布式短锁，用于防止同一用户重复提交
type Locker interface {
	// Acquire 获取锁，已被占用时返回 ErrConcurrencyConflict
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// 只删除自己持有的锁
var releaseScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	end
	return 0
`)

type redisLocker struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisLocker(rdb *redis.Client) Locker {
	return &redisLocker{rdb: rdb, prefix: "lock:"}
}

func (l *redisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	fullKey := l.prefix + key
	token := uuid.New().String()

	ok, err := l.rdb.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%s is locked: %w", key, apperr.ErrConcurrencyConflict)
	}

	release := func() {
		// 请求可能已取消，释放锁使用独立的 context
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.rdb, []string{fullKey}, token).Err(); err != nil {
			logger.Log.Warn("release lock failed", zap.String("key", fullKey), zap.Error(err))
		}
	}
	return release, nil
}

// NopLocker 不加锁，用于测试或单实例开发环境
type NopLocker struct{}

func (NopLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	return func() {}, nil
}
