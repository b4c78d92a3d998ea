package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shop_backend/pkg/apperr"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Postgres 错误码
const (
	pgUniqueViolation      = "23505"
	pgCheckViolation       = "23514"
	pgInvalidTextRepr      = "22P02"
	pgLockNotAvailable     = "55P03"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// TxManager 事务管理器。fn 中通过 repo.WithTx(tx) 获取绑定事务的仓库
type TxManager interface {
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gormTxManager struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// NewTxManager lockTimeout 为 0 时不限制行锁等待时间
func NewTxManager(db *gorm.DB, lockTimeout time.Duration) TxManager {
	return &gormTxManager{db: db, lockTimeout: lockTimeout}
}

func (m *gormTxManager) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if m.lockTimeout > 0 {
			// SET 不支持占位符，毫秒数为整数，直接拼接
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = %d", m.lockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return fn(tx)
	})
	return TranslateError(err)
}

// TranslateError 把锁超时、串行化失败、死锁转换为 ErrConcurrencyConflict。
// uuid 列上的非法 id 查不到任何行，按 ErrNotFound 处理
func TranslateError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgLockNotAvailable, pgSerializationFailure, pgDeadlockDetected:
			return fmt.Errorf("%w: %s", apperr.ErrConcurrencyConflict, pgErr.Message)
		case pgCheckViolation:
			// stock >= 0 的 CHECK 约束兜底
			return fmt.Errorf("%w: %s", apperr.ErrInsufficientStock, pgErr.ConstraintName)
		case pgInvalidTextRepr:
			return fmt.Errorf("%w: %s", apperr.ErrNotFound, pgErr.Message)
		}
	}
	return err
}

// IsUniqueViolation constraint 为空时匹配任意唯一约束
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
