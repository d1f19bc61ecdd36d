package postgres

import (
	"context"
	"fmt"

	"z-novel-agent-api/internal/domain/entity"
)

// ChapterReviewRepository 章节评审仓储实现
type ChapterReviewRepository struct {
	client *Client
}

// NewChapterReviewRepository 创建章节评审仓储
func NewChapterReviewRepository(client *Client) *ChapterReviewRepository {
	return &ChapterReviewRepository{client: client}
}

// Create 创建评审记录
func (r *ChapterReviewRepository) Create(ctx context.Context, review *entity.ChapterReview) error {
	ctx, span := tracer.Start(ctx, "postgres.ChapterReviewRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(review).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create chapter review: %w", err)
	}
	return nil
}

// ListByChapter 获取章节评审记录
func (r *ChapterReviewRepository) ListByChapter(ctx context.Context, chapterID string) ([]*entity.ChapterReview, error) {
	ctx, span := tracer.Start(ctx, "postgres.ChapterReviewRepository.ListByChapter")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var reviews []*entity.ChapterReview
	if err := db.Where("chapter_id = ?", chapterID).
		Order("created_at ASC").
		Find(&reviews).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list chapter reviews: %w", err)
	}
	return reviews, nil
}

// AgentLogRepository 智能体日志仓储实现
type AgentLogRepository struct {
	client *Client
}

// NewAgentLogRepository 创建智能体日志仓储
func NewAgentLogRepository(client *Client) *AgentLogRepository {
	return &AgentLogRepository{client: client}
}

// Create 创建日志记录
func (r *AgentLogRepository) Create(ctx context.Context, log *entity.AgentLog) error {
	ctx, span := tracer.Start(ctx, "postgres.AgentLogRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(log).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create agent log: %w", err)
	}
	return nil
}
