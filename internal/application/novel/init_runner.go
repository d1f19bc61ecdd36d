package novel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"z-novel-agent-api/internal/domain/entity"
	"z-novel-agent-api/internal/infrastructure/messaging"
	"z-novel-agent-api/internal/workflow/model"
	"z-novel-agent-api/internal/workflow/pipeline"
	apperrors "z-novel-agent-api/pkg/errors"
	"z-novel-agent-api/pkg/logger"
	"z-novel-agent-api/pkg/metrics"
)

// ensureNovelForInit 确保小说记录存在且归当前用户所有。
// 记录不存在时创建；存在但归属他人时拒绝。
func (s *Service) ensureNovelForInit(ctx context.Context, userID, novelID, topic string) (*entity.Novel, error) {
	novel, err := s.novelRepo.GetByID(ctx, novelID)
	if err != nil {
		return nil, fmt.Errorf("load novel: %w", err)
	}
	if novel == nil {
		novel = entity.NewNovel(novelID, topic, userID)
		if err := s.novelRepo.Create(ctx, novel); err != nil {
			return nil, fmt.Errorf("create novel: %w", err)
		}
		return novel, nil
	}
	if !novel.OwnedBy(userID) {
		return nil, apperrors.ErrNoPermission
	}
	return novel, nil
}

// InitNovel 初始化小说：建档、跑完整九阶段流水线并落库。
// 已初始化时幂等返回 already=true，不重复生成。
func (s *Service) InitNovel(ctx context.Context, userID, novelID, topic string) (result *InitResult, already bool, err error) {
	ctx, span := tracer.Start(ctx, "novel.InitNovel")
	span.SetAttributes(attribute.String("novel_id", novelID))
	defer span.End()

	if _, err := s.ensureNovelForInit(ctx, userID, novelID, topic); err != nil {
		return nil, false, err
	}

	exists, err := s.worldRepo.ExistsByNovel(ctx, novelID)
	if err != nil {
		return nil, false, fmt.Errorf("check world settings: %w", err)
	}
	if exists {
		return &InitResult{NovelID: novelID}, true, nil
	}

	metrics.ActiveGenerations.Inc()
	defer metrics.ActiveGenerations.Dec()
	defer s.cleanupGeneratedKnowledge(ctx)

	vars := map[string]any{
		"novel_id": novelID,
		"topic":    topic,
	}
	outputs, err := s.engine.Kickoff(ctx, pipeline.InitSequence(), vars)
	if err != nil {
		span.RecordError(err)
		return nil, false, apperrors.ErrGenerationFailed.WithError(err)
	}

	// 章节写入失败不吞掉已生成的内容，调用方仍能拿到完整结果
	if chapter, err := s.persistInitOutputs(ctx, novelID, outputs); err != nil {
		span.RecordError(err)
		logger.FromContext(ctx).Warn("failed to persist init outputs", "novel_id", novelID, "error", err)
	} else {
		s.finishChapter(ctx, novelID, userID, entity.GenerationModeInit, chapter.ChapterNumber, outputs)
	}

	initResult, err := s.buildInitResult(novelID, outputs)
	if err != nil {
		return nil, false, err
	}
	return initResult, false, nil
}

// finishChapter 章节落库后的收尾：写长期记忆、失效相关缓存并发布生成事件。
// 各步骤均为尽力而为，失败不影响已生成的章节。
func (s *Service) finishChapter(ctx context.Context, novelID, userID, mode string, chapterNumber int, outputs pipeline.Outputs) {
	if analysis, ok := pipeline.StructuredAs[model.PlotAnalysisOutput](outputs, pipeline.TaskPlotAnalysis); ok {
		s.savePlotMemory(ctx, novelID, chapterNumber, analysis.KeyEvents, analysis.Consequences)
	}
	if s.cache != nil {
		if err := s.cache.InvalidateNovel(ctx, novelID, userID); err != nil {
			logger.FromContext(ctx).Warn("failed to invalidate novel cache", "novel_id", novelID, "error", err)
		}
	}
	s.publishChapterGenerated(ctx, novelID, userID, mode, chapterNumber, outputs)
}

// publishChapterGenerated 发布章节生成完成事件到事件流。
func (s *Service) publishChapterGenerated(ctx context.Context, novelID, userID, mode string, chapterNumber int, outputs pipeline.Outputs) {
	if s.producer == nil {
		return
	}
	ext, err := pipeline.ExtractWriting(outputs)
	if err != nil {
		return
	}
	event := &messaging.ChapterGeneratedMessage{
		NovelID:       novelID,
		UserID:        userID,
		ChapterNumber: chapterNumber,
		Title:         ext.FinalTitle,
		WordCount:     len([]rune(ext.FinalContent)),
		Mode:          mode,
	}
	if ext.RewriteInfo != nil {
		event.RewriteApplied = ext.RewriteInfo.Applied
	}
	if _, err := s.producer.PublishChapterGenerated(ctx, event); err != nil {
		logger.FromContext(ctx).Warn("failed to publish chapter generated event", "novel_id", novelID, "error", err)
	}
}

func (s *Service) buildInitResult(novelID string, outputs pipeline.Outputs) (*InitResult, error) {
	ext, err := pipeline.ExtractWriting(outputs)
	if err != nil {
		return nil, apperrors.ErrWritingOutputMissing.WithError(err)
	}

	result := &InitResult{
		NovelID:       novelID,
		ChapterNumber: 1,
		Title:         ext.FinalTitle,
		Content:       ext.FinalContent,
		Review:        pipeline.SelectReview(outputs),
		Rewrite:       ext.RewriteInfo,
	}
	if world, ok := pipeline.StructuredAs[model.WorldBuildingOutput](outputs, pipeline.TaskWorldBuilding); ok {
		result.WorldRules = world.WorldRules
	}
	return result, nil
}
