package novel

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"z-novel-agent-api/internal/workflow/engine"
	"z-novel-agent-api/internal/workflow/model"
	"z-novel-agent-api/internal/workflow/pipeline"
)

// recorder 记录 emit 的全部事件
type recorder struct {
	events []Event
}

func (r *recorder) emit(ev Event) error {
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) types() []string {
	types := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		types = append(types, ev.Type)
	}
	return types
}

func (r *recorder) content() string {
	var sb strings.Builder
	for _, ev := range r.events {
		if ev.Type == EventContentDelta {
			sb.WriteString(ev.Data.(string))
		}
	}
	return sb.String()
}

func feedChunks(t *testing.T, run *streamRun, chunks []*engine.Chunk) {
	t.Helper()
	for _, c := range chunks {
		require.NoError(t, run.handleChunk(c))
	}
}

func TestStreamRunProgressOncePerTask(t *testing.T) {
	rec := &recorder{}
	run := newStreamRun(rec.emit)

	feedChunks(t, run, []*engine.Chunk{
		{TaskName: pipeline.TaskStoryPlanning},
		{TaskName: pipeline.TaskStoryPlanning, Text: "..."},
		{TaskName: pipeline.TaskWorldBuilding},
	})

	var progress []string
	for _, ev := range rec.events {
		if ev.Type == EventProgress {
			progress = append(progress, ev.Task)
		}
	}
	assert.Equal(t, []string{pipeline.TaskStoryPlanning, pipeline.TaskWorldBuilding}, progress)
}

func TestStreamRunWritingTask(t *testing.T) {
	rec := &recorder{}
	run := newStreamRun(rec.emit)

	feedChunks(t, run, []*engine.Chunk{
		{TaskName: pipeline.TaskWriting, AgentRole: pipeline.RoleNarrativeWriter, Text: `{"chapter_title":"第一`},
		{TaskName: pipeline.TaskWriting, AgentRole: pipeline.RoleNarrativeWriter, Text: `章","content":"夜色`},
		{TaskName: pipeline.TaskWriting, AgentRole: pipeline.RoleNarrativeWriter, Text: `深了。"}`},
	})

	assert.Equal(t, []string{EventProgress, EventDraftStart, EventTitle, EventContentDelta, EventContentDelta}, rec.types())
	assert.Equal(t, "第一章", rec.events[2].Data)
	assert.Equal(t, "夜色深了。", rec.content())
	assert.True(t, run.sentDelta)
}

func TestStreamRunDraftStartGating(t *testing.T) {
	rec := &recorder{}
	run := newStreamRun(rec.emit)

	// 只有键名，没有任何标题或正文产出时不应出现 draft_start
	feedChunks(t, run, []*engine.Chunk{
		{TaskName: pipeline.TaskWriting, Text: `{"chapter_title":`},
	})
	assert.Equal(t, []string{EventProgress}, rec.types())

	// 首个正文字符出现时才宣告草稿开始
	feedChunks(t, run, []*engine.Chunk{
		{TaskName: pipeline.TaskWriting, Text: `"标题","content":"开"`},
	})
	assert.Equal(t, []string{EventProgress, EventDraftStart, EventTitle, EventContentDelta}, rec.types())
}

func TestStreamRunRewriteModeByTaskName(t *testing.T) {
	rec := &recorder{}
	run := newStreamRun(rec.emit)

	feedChunks(t, run, []*engine.Chunk{
		{TaskName: pipeline.TaskWriting, AgentRole: pipeline.RoleNarrativeWriter, Text: `{"chapter_title":"初稿","content":"初稿正文"}`},
		{TaskName: pipeline.TaskChapterRewrite, Text: `{"chapter_title":"重写稿","content":"重写正文"}`},
	})

	assert.Equal(t, []string{
		EventProgress, EventDraftStart, EventTitle, EventContentDelta,
		EventProgress, EventRewriteStart, EventTitle, EventContentDelta,
	}, rec.types())
	assert.Equal(t, "重写稿", rec.events[6].Data)
}

func TestStreamRunRewriteModeByFailReasons(t *testing.T) {
	rec := &recorder{}
	run := newStreamRun(rec.emit)

	// 任务名缺失时依赖 fail_reasons 字段识别重写块
	feedChunks(t, run, []*engine.Chunk{
		{Text: `{"fail_reasons":["跑题"],"chapter_title":"重写稿","content":"重写正文"}`},
	})

	assert.Equal(t, []string{EventRewriteStart, EventTitle, EventContentDelta}, rec.types())
}

func TestStreamRunIgnoresNonWritingText(t *testing.T) {
	rec := &recorder{}
	run := newStreamRun(rec.emit)

	// 草稿已开始后，评审任务的 content 字段不再进入正文流
	feedChunks(t, run, []*engine.Chunk{
		{TaskName: pipeline.TaskWriting, AgentRole: pipeline.RoleNarrativeWriter, Text: `{"content":"正文"}`},
		{TaskName: pipeline.TaskChapterReview, Text: `{"overall_score":8,"summary":"尚可"}`},
	})

	assert.Equal(t, "正文", rec.content())
}

func TestStreamRunEmptyTitleSuppressed(t *testing.T) {
	rec := &recorder{}
	run := newStreamRun(rec.emit)

	feedChunks(t, run, []*engine.Chunk{
		{TaskName: pipeline.TaskWriting, Text: `{"chapter_title":"","content":"正文"}`},
	})

	assert.Equal(t, []string{EventProgress, EventDraftStart, EventContentDelta}, rec.types())
}

func TestSynthesize(t *testing.T) {
	t.Run("writing only", func(t *testing.T) {
		rec := &recorder{}
		run := newStreamRun(rec.emit)

		content := strings.Repeat("甲", 450)
		ext := &pipeline.WritingExtraction{
			Writing: &model.WritingOutput{ChapterTitle: "补发标题", Content: content},
		}
		require.NoError(t, run.synthesize(ext))

		assert.Equal(t, []string{
			EventDraftStart, EventTitle,
			EventContentDelta, EventContentDelta, EventContentDelta,
		}, rec.types())
		assert.Equal(t, content, rec.content())
	})

	t.Run("with rewrite block", func(t *testing.T) {
		rec := &recorder{}
		run := newStreamRun(rec.emit)

		ext := &pipeline.WritingExtraction{
			Writing: &model.WritingOutput{ChapterTitle: "初稿", Content: "初稿正文"},
			Rewrite: &model.ChapterRewriteOutput{ChapterTitle: "重写稿", Content: "重写正文"},
		}
		require.NoError(t, run.synthesize(ext))

		assert.Equal(t, []string{
			EventDraftStart, EventTitle, EventContentDelta,
			EventRewriteStart, EventTitle, EventContentDelta,
		}, rec.types())
	})

	t.Run("draft already started", func(t *testing.T) {
		rec := &recorder{}
		run := newStreamRun(rec.emit)
		run.draftStarted = true

		ext := &pipeline.WritingExtraction{
			Writing: &model.WritingOutput{Content: "正文"},
		}
		require.NoError(t, run.synthesize(ext))

		assert.Equal(t, []string{EventContentDelta}, rec.types())
	})
}

func TestSplitContentChunks(t *testing.T) {
	assert.Nil(t, splitContentChunks("", 10))
	assert.Nil(t, splitContentChunks("abc", 0))

	chunks := splitContentChunks("abcdef", 4)
	assert.Equal(t, []string{"abcd", "ef"}, chunks)

	// 按字符数切分，多字节字符不被切坏
	chunks = splitContentChunks(strings.Repeat("你", 5), 2)
	assert.Equal(t, []string{"你你", "你你", "你"}, chunks)
}
