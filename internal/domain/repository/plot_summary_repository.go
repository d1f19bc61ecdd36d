package repository

import (
	"context"

	"z-novel-agent-api/internal/domain/entity"
)

// PlotSummaryRepository 剧情摘要仓储接口
type PlotSummaryRepository interface {
	// Create 创建剧情摘要
	Create(ctx context.Context, summary *entity.PlotSummary) error

	// GetLatestByNovel 获取小说最新的剧情摘要，不存在时返回 (nil, nil)
	GetLatestByNovel(ctx context.Context, novelID string) (*entity.PlotSummary, error)
}
