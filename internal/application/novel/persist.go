package novel

import (
	"context"
	"fmt"

	"z-novel-agent-api/internal/domain/entity"
	"z-novel-agent-api/internal/workflow/model"
	"z-novel-agent-api/internal/workflow/node"
	"z-novel-agent-api/internal/workflow/pipeline"
	"z-novel-agent-api/pkg/logger"
	"z-novel-agent-api/pkg/metrics"
)

// persistInitOutputs 将初始化流水线的全部输出落库。
// 各步骤彼此隔离：单步失败记日志后继续，只有章节写入失败会终止后续步骤。
func (s *Service) persistInitOutputs(ctx context.Context, novelID string, outputs pipeline.Outputs) (*entity.Chapter, error) {
	ctx, span := tracer.Start(ctx, "novel.persistInitOutputs")
	defer span.End()

	log := logger.FromContext(ctx)

	// 1. 世界观
	if world, ok := pipeline.StructuredAs[model.WorldBuildingOutput](outputs, pipeline.TaskWorldBuilding); ok {
		setting := &entity.WorldSetting{
			NovelID:         novelID,
			WorldRules:      world.WorldRules,
			Tone:            world.Tone,
			TechnologyLevel: world.TechnologyLevel,
		}
		if err := s.worldRepo.Create(ctx, setting); err != nil {
			log.Warn("failed to persist world settings", "novel_id", novelID, "error", err)
		}
	} else {
		log.Warn("world building output missing", "novel_id", novelID)
	}

	// 2. 人物
	if design, ok := pipeline.StructuredAs[model.CharacterDesignOutput](outputs, pipeline.TaskCharacterDesign); ok {
		characters := make([]*entity.Character, 0, len(design.Characters))
		for _, c := range design.Characters {
			if c.Name == "" {
				continue
			}
			characters = append(characters, &entity.Character{
				NovelID:     novelID,
				Name:        c.Name,
				Role:        c.Role,
				Personality: c.Personality,
				Motivation:  c.Motivation,
				Flaws:       c.Flaws,
				GrowthArc:   c.GrowthArc,
			})
		}
		if err := s.charRepo.CreateBatch(ctx, characters); err != nil {
			log.Warn("failed to persist characters", "novel_id", novelID, "error", err)
		}
	}

	// 3. 章节：写入失败则终止后续步骤
	chapter, err := s.persistChapterRecord(ctx, novelID, 1, outputs, entity.GenerationModeInit)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	// 4. 章节评审
	s.persistReviews(ctx, novelID, chapter.ID, outputs)

	// 5. 剧情分析
	s.persistPlotSummary(ctx, novelID, chapter.ID, outputs)

	// 6. 人物状态
	s.persistCharacterStates(ctx, novelID, chapter.ID, outputs)

	// 7. Agent 日志（只存截断后的 raw）
	for taskName, output := range outputs {
		if output == nil {
			continue
		}
		logEntry := &entity.AgentLog{
			NovelID:       novelID,
			AgentName:     taskName,
			InputSummary:  "auto",
			OutputSummary: node.TruncateByRunes(output.Raw, s.agentLogLimit),
		}
		if err := s.agentLogRepo.Create(ctx, logEntry); err != nil {
			log.Warn("failed to persist agent log", "novel_id", novelID, "task", taskName, "error", err)
		}
	}

	return chapter, nil
}

// persistChapterOutputs 将续写流水线的输出落库（章节、剧情、人物状态、评审）。
func (s *Service) persistChapterOutputs(ctx context.Context, novelID string, chapterNumber int, outputs pipeline.Outputs) (*entity.Chapter, error) {
	ctx, span := tracer.Start(ctx, "novel.persistChapterOutputs")
	defer span.End()

	chapter, err := s.persistChapterRecord(ctx, novelID, chapterNumber, outputs, entity.GenerationModeContinuation)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.persistPlotSummary(ctx, novelID, chapter.ID, outputs)
	s.persistCharacterStates(ctx, novelID, chapter.ID, outputs)
	s.persistReviews(ctx, novelID, chapter.ID, outputs)

	return chapter, nil
}

// persistChapterRecord 写入章节记录；存在重写时一并记录初稿与重写原因。
func (s *Service) persistChapterRecord(ctx context.Context, novelID string, chapterNumber int, outputs pipeline.Outputs, mode string) (*entity.Chapter, error) {
	ext, err := pipeline.ExtractWriting(outputs)
	if err != nil {
		return nil, fmt.Errorf("extract writing outputs: %w", err)
	}

	chapter := entity.NewChapter(novelID, chapterNumber, ext.FinalTitle, ext.FinalContent)
	if ext.Rewrite != nil {
		chapter.RewriteMeta = &entity.RewriteMeta{
			OriginalTitle:   ext.Writing.ChapterTitle,
			OriginalContent: ext.Writing.Content,
			Reasons:         ext.Rewrite.FailReasons,
			Applied:         true,
		}
		if review, ok := pipeline.StructuredAs[model.ChapterReviewOutput](outputs, pipeline.TaskChapterReview); ok {
			for _, reason := range pipeline.RewriteReasons(review) {
				metrics.PipelineRewriteTotal.WithLabelValues(reason).Inc()
			}
		}
	}

	if err := s.chapterRepo.Create(ctx, chapter); err != nil {
		return nil, fmt.Errorf("persist chapter: %w", err)
	}
	metrics.ChapterWordCount.WithLabelValues(mode).Observe(float64(chapter.WordCount))
	return chapter, nil
}

func (s *Service) persistReviews(ctx context.Context, novelID, chapterID string, outputs pipeline.Outputs) {
	log := logger.FromContext(ctx)
	for _, review := range pipeline.Reviews(outputs) {
		record := &entity.ChapterReview{
			NovelID:               novelID,
			ChapterID:             chapterID,
			OverallScore:          review.OverallScore,
			WorldConsistencyScore: review.WorldConsistencyScore,
			OffTopic:              review.OffTopic,
			Issues:                review.Issues,
			Summary:               review.Summary,
		}
		if err := s.reviewRepo.Create(ctx, record); err != nil {
			log.Warn("failed to persist chapter review", "novel_id", novelID, "error", err)
		}
	}
}

func (s *Service) persistPlotSummary(ctx context.Context, novelID, chapterID string, outputs pipeline.Outputs) {
	analysis, ok := pipeline.StructuredAs[model.PlotAnalysisOutput](outputs, pipeline.TaskPlotAnalysis)
	if !ok {
		return
	}
	summary := &entity.PlotSummary{
		NovelID:      novelID,
		ChapterID:    chapterID,
		KeyEvents:    analysis.KeyEvents,
		Consequences: analysis.Consequences,
	}
	if err := s.plotRepo.Create(ctx, summary); err != nil {
		logger.FromContext(ctx).Warn("failed to persist plot summary", "novel_id", novelID, "error", err)
	}
}

// persistCharacterStates 写入角色状态快照；角色不存在时跳过该条。
func (s *Service) persistCharacterStates(ctx context.Context, novelID, chapterID string, outputs pipeline.Outputs) {
	memory, ok := pipeline.StructuredAs[model.MemoryUpdateOutput](outputs, pipeline.TaskMemoryUpdate)
	if !ok {
		return
	}
	log := logger.FromContext(ctx)
	for _, state := range memory.States {
		if state.CharacterName == "" {
			continue
		}
		character, err := s.charRepo.GetByNovelAndName(ctx, novelID, state.CharacterName)
		if err != nil {
			log.Warn("failed to look up character", "novel_id", novelID, "character", state.CharacterName, "error", err)
			continue
		}
		if character == nil {
			log.Debug("skip state for unknown character", "novel_id", novelID, "character", state.CharacterName)
			continue
		}
		record := &entity.CharacterState{
			CharacterID:   character.ID,
			CharacterName: state.CharacterName,
			ChapterID:     chapterID,
			Location:      state.Location,
			Emotion:       state.Emotion,
			Goal:          state.Goal,
			Relationships: state.Relationships,
		}
		if err := s.stateRepo.Create(ctx, record); err != nil {
			log.Warn("failed to persist character state", "novel_id", novelID, "character", state.CharacterName, "error", err)
		}
	}
}
