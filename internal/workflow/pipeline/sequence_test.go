package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"z-novel-agent-api/internal/workflow/model"
)

func stageTasks(stages []Stage) []string {
	tasks := make([]string, 0, len(stages))
	for _, st := range stages {
		tasks = append(tasks, st.Task)
	}
	return tasks
}

func TestInitSequence(t *testing.T) {
	stages := InitSequence()

	assert.Equal(t, []string{
		TaskStoryPlanning,
		TaskWorldBuilding,
		TaskCharacterDesign,
		TaskWriting,
		TaskChapterReview,
		TaskChapterRewrite,
		TaskChapterRewriteReview,
		TaskPlotAnalysis,
		TaskMemoryUpdate,
	}, stageTasks(stages))

	for _, st := range stages {
		assert.NotEmpty(t, st.AgentRole, st.Task)
		assert.NotEmpty(t, st.Prompt, st.Task)
		require.NotNil(t, st.Decode, st.Task)
	}
}

func TestContinuationSequence(t *testing.T) {
	stages := ContinuationSequence()

	assert.Equal(t, []string{
		TaskWriting,
		TaskChapterReview,
		TaskChapterRewrite,
		TaskChapterRewriteReview,
		TaskPlotAnalysis,
		TaskMemoryUpdate,
	}, stageTasks(stages))
}

func TestSequenceGuards(t *testing.T) {
	var rewriteStage, rewriteReviewStage Stage
	for _, st := range ContinuationSequence() {
		switch st.Task {
		case TaskChapterRewrite:
			rewriteStage = st
		case TaskChapterRewriteReview:
			rewriteReviewStage = st
		}
	}
	require.NotNil(t, rewriteStage.Guard)
	require.NotNil(t, rewriteReviewStage.Guard)

	t.Run("rewrite skipped without review", func(t *testing.T) {
		assert.False(t, rewriteStage.Guard(Outputs{}))
	})

	t.Run("rewrite skipped on passing review", func(t *testing.T) {
		outputs := Outputs{
			TaskChapterReview: &TaskOutput{
				Name:       TaskChapterReview,
				Structured: &model.ChapterReviewOutput{OverallScore: 9, WorldConsistencyScore: 9},
			},
		}
		assert.False(t, rewriteStage.Guard(outputs))
	})

	t.Run("rewrite triggered on failing review", func(t *testing.T) {
		outputs := Outputs{
			TaskChapterReview: &TaskOutput{
				Name:       TaskChapterReview,
				Structured: &model.ChapterReviewOutput{OverallScore: 5, WorldConsistencyScore: 9},
			},
		}
		assert.True(t, rewriteStage.Guard(outputs))
	})

	t.Run("rewrite review follows rewrite output", func(t *testing.T) {
		assert.False(t, rewriteReviewStage.Guard(Outputs{}))

		outputs := Outputs{
			TaskChapterRewrite: &TaskOutput{
				Name:       TaskChapterRewrite,
				Raw:        `{"chapter_title":"x","content":"y"}`,
				Structured: &model.ChapterRewriteOutput{ChapterTitle: "x", Content: "y"},
			},
		}
		assert.True(t, rewriteReviewStage.Guard(outputs))
	})
}

func TestStageDecode(t *testing.T) {
	var writing Stage
	for _, st := range ContinuationSequence() {
		if st.Task == TaskWriting {
			writing = st
		}
	}

	t.Run("valid payload", func(t *testing.T) {
		v, ok := writing.Decode(`前置噪声 {"chapter_title":"标题","content":"正文"} 后置噪声`)
		require.True(t, ok)
		out, isWriting := v.(*model.WritingOutput)
		require.True(t, isWriting)
		assert.Equal(t, "标题", out.ChapterTitle)
		assert.Equal(t, "正文", out.Content)
	})

	t.Run("unparsable payload", func(t *testing.T) {
		v, ok := writing.Decode("这不是 JSON")
		assert.False(t, ok)
		assert.Nil(t, v)
	})
}

func TestOutputsStructuredAs(t *testing.T) {
	outputs := Outputs{
		TaskWriting: &TaskOutput{
			Name:       TaskWriting,
			Structured: &model.WritingOutput{ChapterTitle: "t"},
		},
		TaskPlotAnalysis: &TaskOutput{Name: TaskPlotAnalysis},
	}

	v, ok := StructuredAs[model.WritingOutput](outputs, TaskWriting)
	require.True(t, ok)
	assert.Equal(t, "t", v.ChapterTitle)

	_, ok = StructuredAs[model.WritingOutput](outputs, TaskPlotAnalysis)
	assert.False(t, ok)

	_, ok = StructuredAs[model.ChapterReviewOutput](outputs, TaskWriting)
	assert.False(t, ok)

	_, ok = StructuredAs[model.WritingOutput](outputs, "missing_task")
	assert.False(t, ok)
}
