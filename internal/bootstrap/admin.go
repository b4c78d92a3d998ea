package bootstrap

import (
	"context"

	"shop_backend/internal/domain/user/model"
	"shop_backend/internal/domain/user/repository"
	"shop_backend/internal/domain/user/service"
	"shop_backend/internal/pkg/config"
	"shop_backend/pkg/database"
	"shop_backend/pkg/logger"

	"go.uber.org/zap"
)

// EnsureDefaultAdmin 启动时创建默认管理员，已有管理员时不做任何事。
// 未配置密码时跳过，不会使用内置默认密码
func EnsureDefaultAdmin(ctx context.Context, repo repository.UserRepository, cfg config.AdminConfig) error {
	exists, err := repo.ExistsByRole(ctx, model.RoleAdmin)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if cfg.Password == "" {
		logger.Log.Warn("no admin account and admin.password not set, skip bootstrap")
		return nil
	}

	hash, err := service.HashPassword(cfg.Password)
	if err != nil {
		return err
	}
	admin := &model.User{
		Username:     cfg.Username,
		Email:        cfg.Email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
	}
	if err := repo.Create(ctx, admin); err != nil {
		// 多实例同时启动，另一个实例已创建
		if database.IsUniqueViolation(err, "") {
			return nil
		}
		return err
	}
	logger.Log.Info("default admin created", zap.String("username", admin.Username))
	return nil
}
