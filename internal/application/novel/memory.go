package novel

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"z-novel-agent-api/internal/domain/repository"
	"z-novel-agent-api/pkg/logger"
)

// savePlotMemory 把本章剧情摘要向量化后写入长期记忆。
// 记忆写入是增强能力，失败只记日志，不影响章节落库。
func (s *Service) savePlotMemory(ctx context.Context, novelID string, chapterNumber int, keyEvents, consequences []string) {
	if s.plotMemory == nil || s.embedder == nil {
		return
	}
	content := plotMemoryContent(keyEvents, consequences)
	if content == "" {
		return
	}

	ctx, span := tracer.Start(ctx, "novel.savePlotMemory")
	span.SetAttributes(
		attribute.String("novel_id", novelID),
		attribute.Int("chapter_number", chapterNumber),
	)
	defer span.End()

	log := logger.FromContext(ctx)
	vector, err := s.embedder.EmbedOne(ctx, content)
	if err != nil {
		span.RecordError(err)
		log.Warn("failed to embed plot memory", "novel_id", novelID, "error", err)
		return
	}

	record := &repository.PlotMemoryRecord{
		ID:            uuid.NewString(),
		NovelID:       novelID,
		ChapterNumber: chapterNumber,
		Content:       content,
		Embedding:     vector,
	}
	if err := s.plotMemory.Insert(ctx, record); err != nil {
		span.RecordError(err)
		log.Warn("failed to insert plot memory", "novel_id", novelID, "error", err)
	}
}

// recallPlotMemory 用查询文本在小说范围内检索历史剧情记忆。
// 检索失败时返回空结果，续写流程退化为仅依赖最近一章摘要。
func (s *Service) recallPlotMemory(ctx context.Context, novelID, query string) []string {
	if s.plotMemory == nil || s.embedder == nil || strings.TrimSpace(query) == "" {
		return nil
	}

	ctx, span := tracer.Start(ctx, "novel.recallPlotMemory")
	span.SetAttributes(attribute.String("novel_id", novelID))
	defer span.End()

	log := logger.FromContext(ctx)
	vector, err := s.embedder.EmbedOne(ctx, query)
	if err != nil {
		span.RecordError(err)
		log.Warn("failed to embed recall query", "novel_id", novelID, "error", err)
		return nil
	}

	records, err := s.plotMemory.Search(ctx, novelID, vector, s.memoryTopK)
	if err != nil {
		span.RecordError(err)
		log.Warn("failed to search plot memory", "novel_id", novelID, "error", err)
		return nil
	}

	contents := make([]string, 0, len(records))
	for _, rec := range records {
		if rec != nil && rec.Content != "" {
			contents = append(contents, rec.Content)
		}
	}
	span.SetAttributes(attribute.Int("recalled", len(contents)))
	return contents
}

func plotMemoryContent(keyEvents, consequences []string) string {
	var parts []string
	if len(keyEvents) > 0 {
		parts = append(parts, "关键事件："+strings.Join(keyEvents, "；"))
	}
	if len(consequences) > 0 {
		parts = append(parts, "后续影响："+strings.Join(consequences, "；"))
	}
	return strings.Join(parts, "\n")
}
