package repository

import (
	"context"

	"z-novel-agent-api/internal/domain/entity"
)

// UserRepository 用户仓储接口
type UserRepository interface {
	// Create 创建用户
	Create(ctx context.Context, user *entity.User) error

	// GetByID 根据 ID 获取用户
	GetByID(ctx context.Context, id string) (*entity.User, error)

	// GetByUsername 根据用户名获取用户，不存在时返回 (nil, nil)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
}
