package repository

import (
	"context"

	"z-novel-agent-api/internal/domain/entity"
)

// ChapterRepository 章节仓储接口
type ChapterRepository interface {
	// Create 创建章节
	Create(ctx context.Context, chapter *entity.Chapter) error

	// GetLast 获取小说最新一章，不存在时返回 (nil, nil)
	GetLast(ctx context.Context, novelID string) (*entity.Chapter, error)

	// ListByNovel 获取小说全部章节（按章节号升序）
	ListByNovel(ctx context.Context, novelID string) ([]*entity.Chapter, error)
}
