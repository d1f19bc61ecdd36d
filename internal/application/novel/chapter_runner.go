package novel

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"z-novel-agent-api/internal/domain/entity"
	"z-novel-agent-api/internal/workflow/pipeline"
	apperrors "z-novel-agent-api/pkg/errors"
	"z-novel-agent-api/pkg/metrics"
)

// authorizeNovel 加载小说并校验归属。
func (s *Service) authorizeNovel(ctx context.Context, userID, novelID string) (*entity.Novel, error) {
	novel, err := s.novelRepo.GetByID(ctx, novelID)
	if err != nil {
		return nil, fmt.Errorf("load novel: %w", err)
	}
	if novel == nil {
		return nil, apperrors.ErrNovelNotFound
	}
	if !novel.OwnedBy(userID) {
		return nil, apperrors.ErrNoPermission
	}
	return novel, nil
}

// continuationPlan 续写一章所需的全部输入。
type continuationPlan struct {
	chapterNumber int
	vars          map[string]any
}

// prepareContinuation 推算章节号并装配续写上下文：
// 世界观（必须已初始化）、最近一章剧情摘要，以及向量检索召回的历史记忆。
func (s *Service) prepareContinuation(ctx context.Context, novel *entity.Novel) (*continuationPlan, error) {
	last, err := s.chapterRepo.GetLast(ctx, novel.NovelID)
	if err != nil {
		return nil, fmt.Errorf("load last chapter: %w", err)
	}
	chapterNumber := 1
	if last != nil {
		chapterNumber = last.ChapterNumber + 1
	}

	world, err := s.worldRepo.GetByNovel(ctx, novel.NovelID)
	if err != nil {
		return nil, fmt.Errorf("load world settings: %w", err)
	}
	if world == nil {
		return nil, apperrors.ErrWorldNotInitialized
	}
	worldJSON, err := json.Marshal(world)
	if err != nil {
		return nil, fmt.Errorf("marshal world settings: %w", err)
	}

	var keyEvents []string
	if summary, err := s.plotRepo.GetLatestByNovel(ctx, novel.NovelID); err != nil {
		return nil, fmt.Errorf("load plot summary: %w", err)
	} else if summary != nil {
		keyEvents = summary.KeyEvents
	}

	query := strings.Join(keyEvents, "；")
	if query == "" {
		query = novel.Topic
	}
	recalled := s.recallPlotMemory(ctx, novel.NovelID, query)

	lastPlot := strings.Join(keyEvents, "\n")
	if len(recalled) > 0 {
		lastPlot = strings.TrimSpace(lastPlot + "\n\n【长期记忆召回】\n" + strings.Join(recalled, "\n"))
	}

	return &continuationPlan{
		chapterNumber: chapterNumber,
		vars: map[string]any{
			"novel_id":       novel.NovelID,
			"chapter_number": chapterNumber,
			"world":          string(worldJSON),
			"last_plot":      lastPlot,
		},
	}, nil
}

// NextChapter 生成下一章（非流式）：写作、评审、按需重写并落库。
func (s *Service) NextChapter(ctx context.Context, userID, novelID string) (*ChapterResult, error) {
	ctx, span := tracer.Start(ctx, "novel.NextChapter")
	span.SetAttributes(attribute.String("novel_id", novelID))
	defer span.End()

	novel, err := s.authorizeNovel(ctx, userID, novelID)
	if err != nil {
		return nil, err
	}
	plan, err := s.prepareContinuation(ctx, novel)
	if err != nil {
		return nil, err
	}

	metrics.ActiveGenerations.Inc()
	defer metrics.ActiveGenerations.Dec()
	defer s.cleanupGeneratedKnowledge(ctx)

	outputs, err := s.engine.Kickoff(ctx, pipeline.ContinuationSequence(), plan.vars)
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.ErrGenerationFailed.WithError(err)
	}

	chapter, err := s.persistChapterOutputs(ctx, novelID, plan.chapterNumber, outputs)
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeMemoryWriteFailed, "failed to persist chapter outputs")
	}

	s.finishChapter(ctx, novelID, userID, entity.GenerationModeContinuation, chapter.ChapterNumber, outputs)

	return s.buildChapterResult(novelID, plan.chapterNumber, outputs)
}

func (s *Service) buildChapterResult(novelID string, chapterNumber int, outputs pipeline.Outputs) (*ChapterResult, error) {
	ext, err := pipeline.ExtractWriting(outputs)
	if err != nil {
		return nil, apperrors.ErrWritingOutputMissing.WithError(err)
	}
	return &ChapterResult{
		NovelID:       novelID,
		ChapterNumber: chapterNumber,
		Title:         ext.FinalTitle,
		Content:       ext.FinalContent,
		Review:        pipeline.SelectReview(outputs),
		Rewrite:       ext.RewriteInfo,
	}, nil
}
