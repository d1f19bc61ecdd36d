package novel

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"z-novel-agent-api/internal/domain/entity"
	"z-novel-agent-api/internal/workflow/engine"
	"z-novel-agent-api/internal/workflow/pipeline"
	"z-novel-agent-api/internal/workflow/stream"
	"z-novel-agent-api/pkg/logger"
	"z-novel-agent-api/pkg/metrics"
)

// NDJSON 事件类型。
const (
	EventProgress     = "progress"
	EventDraftStart   = "draft_start"
	EventRewriteStart = "rewrite_start"
	EventTitle        = "title"
	EventContentDelta = "content_delta"
	EventFinal        = "final"
	EventError        = "error"
)

// Event 流式响应中的一行 NDJSON。
type Event struct {
	Type    string `json:"type"`
	Task    string `json:"task,omitempty"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// EmitFunc 把事件写给客户端。返回错误会终止整个生成流程。
type EmitFunc func(Event) error

// fallbackChunkRunes 无增量输出时补发完整正文的分片大小（按字符数）。
const fallbackChunkRunes = 200

// streamRun 单次流式生成的状态机：
// 普通写作与重写各用一个解析器；进度事件每个任务只发一次；
// 一旦在文本中发现重写信号，后续增量全部按重写内容处理。
type streamRun struct {
	emit EmitFunc

	parser        *stream.Parser
	rewriteParser *stream.Parser

	seenTasks      map[string]bool
	draftStarted   bool
	rewriteStarted bool
	rewriteMode    bool
	sentDelta      bool
}

func newStreamRun(emit EmitFunc) *streamRun {
	return &streamRun{
		emit:          emit,
		parser:        stream.NewParser(),
		rewriteParser: stream.NewParser(),
		seenTasks:     make(map[string]bool),
	}
}

func (r *streamRun) send(ev Event) error {
	metrics.StreamEventsTotal.WithLabelValues(ev.Type).Inc()
	return r.emit(ev)
}

// handleChunk 消费一块模型增量，翻译成 progress/title/content_delta 事件。
func (r *streamRun) handleChunk(chunk *engine.Chunk) error {
	taskName := chunk.TaskName
	agentRole := chunk.AgentRole

	// 进度：每个任务只发一次
	if taskName != "" && !r.seenTasks[taskName] {
		r.seenTasks[taskName] = true
		if err := r.send(Event{Type: EventProgress, Task: taskName}); err != nil {
			return err
		}
	}

	text := stream.ChunkText(chunk)
	if text == "" {
		return nil
	}

	// 发现重写任务或 fail_reasons 字段即进入重写模式
	if taskName == pipeline.TaskChapterRewrite || strings.Contains(text, `"fail_reasons"`) {
		r.rewriteMode = true
	}

	if !r.rewriteMode {
		isWriting := taskName == pipeline.TaskWriting ||
			agentRole == pipeline.RoleNarrativeWriter ||
			!r.draftStarted
		if isWriting {
			title, hasTitle, delta := r.parser.Feed(text)
			if err := r.emitParsed(title, hasTitle, delta, false); err != nil {
				return err
			}
		}
		return nil
	}

	title, hasTitle, delta := r.rewriteParser.Feed(text)
	return r.emitParsed(title, hasTitle, delta, true)
}

func (r *streamRun) emitParsed(title string, hasTitle bool, delta string, rewrite bool) error {
	gotTitle := hasTitle && title != ""
	if gotTitle || delta != "" {
		if rewrite && !r.rewriteStarted {
			r.rewriteStarted = true
			if err := r.send(Event{Type: EventRewriteStart}); err != nil {
				return err
			}
		}
		if !rewrite && !r.draftStarted {
			r.draftStarted = true
			if err := r.send(Event{Type: EventDraftStart}); err != nil {
				return err
			}
		}
	}
	if gotTitle {
		if err := r.send(Event{Type: EventTitle, Data: title}); err != nil {
			return err
		}
	}
	if delta != "" {
		r.sentDelta = true
		if err := r.send(Event{Type: EventContentDelta, Data: delta}); err != nil {
			return err
		}
	}
	return nil
}

// synthesize 流式过程中没有任何正文增量时，用最终产物补发完整内容。
func (r *streamRun) synthesize(ext *pipeline.WritingExtraction) error {
	if !r.draftStarted {
		r.draftStarted = true
		if err := r.send(Event{Type: EventDraftStart}); err != nil {
			return err
		}
	}
	if ext.Writing.ChapterTitle != "" {
		if err := r.send(Event{Type: EventTitle, Data: ext.Writing.ChapterTitle}); err != nil {
			return err
		}
	}
	for _, piece := range splitContentChunks(ext.Writing.Content, fallbackChunkRunes) {
		if err := r.send(Event{Type: EventContentDelta, Data: piece}); err != nil {
			return err
		}
	}
	if ext.Rewrite != nil {
		if err := r.send(Event{Type: EventRewriteStart}); err != nil {
			return err
		}
		if ext.Rewrite.ChapterTitle != "" {
			if err := r.send(Event{Type: EventTitle, Data: ext.Rewrite.ChapterTitle}); err != nil {
				return err
			}
		}
		for _, piece := range splitContentChunks(ext.Rewrite.Content, fallbackChunkRunes) {
			if err := r.send(Event{Type: EventContentDelta, Data: piece}); err != nil {
				return err
			}
		}
	}
	return nil
}

// splitContentChunks 把完整正文按字符数切成小块。
func splitContentChunks(content string, size int) []string {
	if content == "" || size <= 0 {
		return nil
	}
	runes := []rune(content)
	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for i := 0; i < len(runes); i += size {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
	}
	return chunks
}

// InitNovelStream 初始化小说（流式）：边生成边输出标题与正文增量。
// 前置校验失败返回错误（尚未开始流式响应）；流式开始后的错误一律转为 error 事件。
func (s *Service) InitNovelStream(ctx context.Context, userID, novelID, topic string, emit EmitFunc) error {
	ctx, span := tracer.Start(ctx, "novel.InitNovelStream")
	span.SetAttributes(attribute.String("novel_id", novelID))
	defer span.End()

	if _, err := s.ensureNovelForInit(ctx, userID, novelID, topic); err != nil {
		return err
	}

	exists, err := s.worldRepo.ExistsByNovel(ctx, novelID)
	if err != nil {
		return err
	}
	run := newStreamRun(emit)
	if exists {
		// 已初始化则直接返回 final
		return run.send(Event{Type: EventFinal, Data: map[string]string{"novel_id": novelID}})
	}

	metrics.ActiveGenerations.Inc()
	defer metrics.ActiveGenerations.Dec()
	defer s.cleanupGeneratedKnowledge(ctx)

	log := logger.FromContext(ctx)
	vars := map[string]any{
		"novel_id": novelID,
		"topic":    topic,
	}

	outputs, err := s.engine.KickoffStream(ctx, pipeline.InitSequence(), vars, run.handleChunk)
	if err != nil {
		span.RecordError(err)
		return run.send(Event{Type: EventError, Message: err.Error()})
	}

	// 章节写入失败不中断流式输出，客户端仍能拿到完整内容
	chapterNumber := 1
	if chapter, err := s.persistInitOutputs(ctx, novelID, outputs); err != nil {
		span.RecordError(err)
		log.Warn("failed to persist init outputs", "novel_id", novelID, "error", err)
	} else {
		chapterNumber = chapter.ChapterNumber
		s.finishChapter(ctx, novelID, userID, entity.GenerationModeInit, chapterNumber, outputs)
	}

	ext, err := pipeline.ExtractWriting(outputs)
	if err != nil {
		span.RecordError(err)
		return run.send(Event{Type: EventError, Message: err.Error()})
	}

	if !run.sentDelta {
		if err := run.synthesize(ext); err != nil {
			return err
		}
	}

	result, err := s.buildInitResult(novelID, outputs)
	if err != nil {
		return run.send(Event{Type: EventError, Message: err.Error()})
	}
	return run.send(Event{Type: EventFinal, Data: result})
}

// NextChapterStream 生成下一章（流式）。
func (s *Service) NextChapterStream(ctx context.Context, userID, novelID string, emit EmitFunc) error {
	ctx, span := tracer.Start(ctx, "novel.NextChapterStream")
	span.SetAttributes(attribute.String("novel_id", novelID))
	defer span.End()

	novel, err := s.authorizeNovel(ctx, userID, novelID)
	if err != nil {
		return err
	}
	plan, err := s.prepareContinuation(ctx, novel)
	if err != nil {
		return err
	}

	metrics.ActiveGenerations.Inc()
	defer metrics.ActiveGenerations.Dec()
	defer s.cleanupGeneratedKnowledge(ctx)

	run := newStreamRun(emit)

	outputs, err := s.engine.KickoffStream(ctx, pipeline.ContinuationSequence(), plan.vars, run.handleChunk)
	if err != nil {
		span.RecordError(err)
		return run.send(Event{Type: EventError, Message: err.Error()})
	}

	chapter, err := s.persistChapterOutputs(ctx, novelID, plan.chapterNumber, outputs)
	if err != nil {
		span.RecordError(err)
		return run.send(Event{Type: EventError, Message: err.Error()})
	}
	s.finishChapter(ctx, novelID, userID, entity.GenerationModeContinuation, chapter.ChapterNumber, outputs)

	ext, err := pipeline.ExtractWriting(outputs)
	if err != nil {
		span.RecordError(err)
		return run.send(Event{Type: EventError, Message: err.Error()})
	}

	if !run.sentDelta {
		if err := run.synthesize(ext); err != nil {
			return err
		}
	}

	result, err := s.buildChapterResult(novelID, plan.chapterNumber, outputs)
	if err != nil {
		return run.send(Event{Type: EventError, Message: err.Error()})
	}
	return run.send(Event{Type: EventFinal, Data: result})
}
