package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"z-novel-agent-api/internal/domain/entity"
)

// PlotSummaryRepository 剧情摘要仓储实现
type PlotSummaryRepository struct {
	client *Client
}

// NewPlotSummaryRepository 创建剧情摘要仓储
func NewPlotSummaryRepository(client *Client) *PlotSummaryRepository {
	return &PlotSummaryRepository{client: client}
}

// Create 创建剧情摘要
func (r *PlotSummaryRepository) Create(ctx context.Context, summary *entity.PlotSummary) error {
	ctx, span := tracer.Start(ctx, "postgres.PlotSummaryRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(summary).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create plot summary: %w", err)
	}
	return nil
}

// GetLatestByNovel 获取小说最新的剧情摘要
func (r *PlotSummaryRepository) GetLatestByNovel(ctx context.Context, novelID string) (*entity.PlotSummary, error) {
	ctx, span := tracer.Start(ctx, "postgres.PlotSummaryRepository.GetLatestByNovel")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var summary entity.PlotSummary
	if err := db.Where("novel_id = ?", novelID).
		Order("created_at DESC").
		First(&summary).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get latest plot summary: %w", err)
	}
	return &summary, nil
}
