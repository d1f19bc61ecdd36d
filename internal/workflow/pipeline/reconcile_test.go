package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"z-novel-agent-api/internal/workflow/model"
)

func writingOutputs() Outputs {
	return Outputs{
		TaskWriting: &TaskOutput{
			Name: TaskWriting,
			Raw:  `{"chapter_title":"初稿标题","content":"初稿正文"}`,
			Structured: &model.WritingOutput{
				ChapterTitle: "初稿标题",
				Content:      "初稿正文",
			},
		},
	}
}

func TestExtractWritingMissing(t *testing.T) {
	_, err := ExtractWriting(Outputs{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "writing output")

	// 结构化缺失等同于任务缺失
	_, err = ExtractWriting(Outputs{
		TaskWriting: &TaskOutput{Name: TaskWriting, Raw: "not json"},
	})
	assert.Error(t, err)
}

func TestExtractWritingWithoutRewrite(t *testing.T) {
	ext, err := ExtractWriting(writingOutputs())
	require.NoError(t, err)

	assert.Equal(t, "初稿标题", ext.FinalTitle)
	assert.Equal(t, "初稿正文", ext.FinalContent)
	assert.Nil(t, ext.Rewrite)
	assert.Nil(t, ext.RewriteInfo)
}

func TestExtractWritingRewriteWins(t *testing.T) {
	outputs := writingOutputs()
	outputs[TaskChapterRewrite] = &TaskOutput{
		Name: TaskChapterRewrite,
		Raw:  `{"fail_reasons":["节奏拖沓"],"chapter_title":"重写标题","content":"重写正文"}`,
		Structured: &model.ChapterRewriteOutput{
			FailReasons:  []string{"节奏拖沓"},
			ChapterTitle: "重写标题",
			Content:      "重写正文",
		},
	}

	ext, err := ExtractWriting(outputs)
	require.NoError(t, err)

	assert.Equal(t, "重写标题", ext.FinalTitle)
	assert.Equal(t, "重写正文", ext.FinalContent)
	assert.Equal(t, "初稿标题", ext.Writing.ChapterTitle)
	require.NotNil(t, ext.RewriteInfo)
	assert.True(t, ext.RewriteInfo.Applied)
	assert.Equal(t, []string{"节奏拖沓"}, ext.RewriteInfo.Reasons)
}

func TestSelectReview(t *testing.T) {
	initial := &model.ChapterReviewOutput{OverallScore: 6, Summary: "初评"}
	rewrite := &model.ChapterReviewOutput{OverallScore: 9, Summary: "重写评审"}

	t.Run("none", func(t *testing.T) {
		assert.Nil(t, SelectReview(Outputs{}))
	})

	t.Run("initial only", func(t *testing.T) {
		outputs := Outputs{
			TaskChapterReview: &TaskOutput{Name: TaskChapterReview, Structured: initial},
		}
		assert.Equal(t, initial, SelectReview(outputs))
	})

	t.Run("rewrite review preferred", func(t *testing.T) {
		outputs := Outputs{
			TaskChapterReview:        &TaskOutput{Name: TaskChapterReview, Structured: initial},
			TaskChapterRewriteReview: &TaskOutput{Name: TaskChapterRewriteReview, Structured: rewrite},
		}
		assert.Equal(t, rewrite, SelectReview(outputs))
	})
}

func TestReviewsOrder(t *testing.T) {
	initial := &model.ChapterReviewOutput{Summary: "初评"}
	rewrite := &model.ChapterReviewOutput{Summary: "重写评审"}
	outputs := Outputs{
		TaskChapterRewriteReview: &TaskOutput{Name: TaskChapterRewriteReview, Structured: rewrite},
		TaskChapterReview:        &TaskOutput{Name: TaskChapterReview, Structured: initial},
	}

	reviews := Reviews(outputs)
	require.Len(t, reviews, 2)
	assert.Equal(t, "初评", reviews[0].Summary)
	assert.Equal(t, "重写评审", reviews[1].Summary)
}
