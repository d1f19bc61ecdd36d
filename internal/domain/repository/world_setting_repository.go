package repository

import (
	"context"

	"z-novel-agent-api/internal/domain/entity"
)

// WorldSettingRepository 世界观设定仓储接口
type WorldSettingRepository interface {
	// Create 创建世界观设定
	Create(ctx context.Context, setting *entity.WorldSetting) error

	// GetByNovel 获取小说的世界观设定，不存在时返回 (nil, nil)
	GetByNovel(ctx context.Context, novelID string) (*entity.WorldSetting, error)

	// ExistsByNovel 检查小说是否已有世界观设定
	ExistsByNovel(ctx context.Context, novelID string) (bool, error)
}
