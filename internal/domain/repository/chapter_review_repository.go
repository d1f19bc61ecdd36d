package repository

import (
	"context"

	"z-novel-agent-api/internal/domain/entity"
)

// ChapterReviewRepository 章节评审仓储接口
type ChapterReviewRepository interface {
	// Create 创建评审记录
	Create(ctx context.Context, review *entity.ChapterReview) error

	// ListByChapter 获取章节评审记录
	ListByChapter(ctx context.Context, chapterID string) ([]*entity.ChapterReview, error)
}

// AgentLogRepository 智能体日志仓储接口
type AgentLogRepository interface {
	// Create 创建日志记录
	Create(ctx context.Context, log *entity.AgentLog) error
}
