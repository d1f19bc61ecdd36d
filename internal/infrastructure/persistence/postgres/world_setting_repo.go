package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"z-novel-agent-api/internal/domain/entity"
)

// WorldSettingRepository 世界观设定仓储实现
type WorldSettingRepository struct {
	client *Client
}

// NewWorldSettingRepository 创建世界观设定仓储
func NewWorldSettingRepository(client *Client) *WorldSettingRepository {
	return &WorldSettingRepository{client: client}
}

// Create 创建世界观设定
func (r *WorldSettingRepository) Create(ctx context.Context, setting *entity.WorldSetting) error {
	ctx, span := tracer.Start(ctx, "postgres.WorldSettingRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(setting).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create world setting: %w", err)
	}
	return nil
}

// GetByNovel 获取小说的世界观设定
func (r *WorldSettingRepository) GetByNovel(ctx context.Context, novelID string) (*entity.WorldSetting, error) {
	ctx, span := tracer.Start(ctx, "postgres.WorldSettingRepository.GetByNovel")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var setting entity.WorldSetting
	if err := db.First(&setting, "novel_id = ?", novelID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get world setting: %w", err)
	}
	return &setting, nil
}

// ExistsByNovel 检查小说是否已有世界观设定
func (r *WorldSettingRepository) ExistsByNovel(ctx context.Context, novelID string) (bool, error) {
	ctx, span := tracer.Start(ctx, "postgres.WorldSettingRepository.ExistsByNovel")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var count int64
	if err := db.Model(&entity.WorldSetting{}).
		Where("novel_id = ?", novelID).
		Count(&count).Error; err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("failed to check world setting: %w", err)
	}
	return count > 0, nil
}
