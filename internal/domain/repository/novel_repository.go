package repository

import (
	"context"

	"z-novel-agent-api/internal/domain/entity"
)

// NovelRepository 小说仓储接口
type NovelRepository interface {
	// Create 创建小说
	Create(ctx context.Context, novel *entity.Novel) error

	// GetByID 根据 novel_id 获取小说，不存在时返回 (nil, nil)
	GetByID(ctx context.Context, novelID string) (*entity.Novel, error)

	// ListByUser 获取用户的小说列表
	ListByUser(ctx context.Context, userID string) ([]*entity.Novel, error)
}
