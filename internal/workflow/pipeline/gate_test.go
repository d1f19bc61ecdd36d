package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"z-novel-agent-api/internal/workflow/model"
)

func TestNeedsRewrite(t *testing.T) {
	tests := []struct {
		name   string
		review *model.ChapterReviewOutput
		known  bool
		value  bool
	}{
		{
			name:   "missing review is indeterminate",
			review: nil,
		},
		{
			name:   "passing scores",
			review: &model.ChapterReviewOutput{OverallScore: 8, WorldConsistencyScore: 9},
			known:  true,
		},
		{
			name:   "threshold scores pass",
			review: &model.ChapterReviewOutput{OverallScore: 7, WorldConsistencyScore: 7},
			known:  true,
		},
		{
			name:   "low overall score",
			review: &model.ChapterReviewOutput{OverallScore: 6.9, WorldConsistencyScore: 9},
			known:  true,
			value:  true,
		},
		{
			name:   "low world consistency",
			review: &model.ChapterReviewOutput{OverallScore: 9, WorldConsistencyScore: 5},
			known:  true,
			value:  true,
		},
		{
			name:   "off topic despite high scores",
			review: &model.ChapterReviewOutput{OverallScore: 10, WorldConsistencyScore: 10, OffTopic: true},
			known:  true,
			value:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NeedsRewrite(tt.review)
			assert.Equal(t, tt.known, d.Known)
			assert.Equal(t, tt.value, d.Value)
		})
	}
}

func TestDecisionOrFalse(t *testing.T) {
	assert.True(t, Decided(true).OrFalse())
	assert.False(t, Decided(false).OrFalse())
	assert.False(t, Indeterminate().OrFalse())
}

func TestRewriteReasons(t *testing.T) {
	assert.Nil(t, RewriteReasons(nil))

	assert.Empty(t, RewriteReasons(&model.ChapterReviewOutput{
		OverallScore: 8, WorldConsistencyScore: 8,
	}))

	reasons := RewriteReasons(&model.ChapterReviewOutput{
		OverallScore:          5,
		WorldConsistencyScore: 6,
		OffTopic:              true,
	})
	assert.Equal(t, []string{"overall_score", "world_consistency", "off_topic"}, reasons)

	assert.Equal(t, []string{"off_topic"}, RewriteReasons(&model.ChapterReviewOutput{
		OverallScore: 9, WorldConsistencyScore: 9, OffTopic: true,
	}))
}

func TestHasRewriteOutput(t *testing.T) {
	assert.False(t, HasRewriteOutput(nil))
	assert.False(t, HasRewriteOutput(&TaskOutput{Raw: "", Structured: &model.ChapterRewriteOutput{}}))
	assert.False(t, HasRewriteOutput(&TaskOutput{Raw: "{}", Structured: nil}))
	assert.True(t, HasRewriteOutput(&TaskOutput{Raw: "{}", Structured: &model.ChapterRewriteOutput{}}))
}
