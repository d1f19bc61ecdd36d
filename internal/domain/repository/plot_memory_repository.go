package repository

import (
	"context"
)

// PlotMemoryRecord 剧情记忆向量记录
type PlotMemoryRecord struct {
	ID            string
	NovelID       string
	ChapterNumber int
	Content       string
	Embedding     []float32
	Score         float32
}

// PlotMemoryRepository 剧情记忆向量仓储接口
type PlotMemoryRepository interface {
	// Insert 写入一条剧情记忆
	Insert(ctx context.Context, record *PlotMemoryRecord) error

	// Search 在指定小说范围内做近邻检索
	Search(ctx context.Context, novelID string, vector []float32, topK int) ([]*PlotMemoryRecord, error)
}
