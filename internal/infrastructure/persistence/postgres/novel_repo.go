package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"z-novel-agent-api/internal/domain/entity"
)

// NovelRepository 小说仓储实现
type NovelRepository struct {
	client *Client
}

// NewNovelRepository 创建小说仓储
func NewNovelRepository(client *Client) *NovelRepository {
	return &NovelRepository{client: client}
}

// Create 创建小说
func (r *NovelRepository) Create(ctx context.Context, novel *entity.Novel) error {
	ctx, span := tracer.Start(ctx, "postgres.NovelRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(novel).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create novel: %w", err)
	}
	return nil
}

// GetByID 根据 novel_id 获取小说
func (r *NovelRepository) GetByID(ctx context.Context, novelID string) (*entity.Novel, error) {
	ctx, span := tracer.Start(ctx, "postgres.NovelRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var novel entity.Novel
	if err := db.First(&novel, "novel_id = ?", novelID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get novel: %w", err)
	}
	return &novel, nil
}

// ListByUser 获取用户的小说列表
func (r *NovelRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Novel, error) {
	ctx, span := tracer.Start(ctx, "postgres.NovelRepository.ListByUser")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var novels []*entity.Novel
	if err := db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&novels).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list novels: %w", err)
	}
	return novels, nil
}
