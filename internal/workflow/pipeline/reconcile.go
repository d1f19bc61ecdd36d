package pipeline

import (
	"fmt"

	"z-novel-agent-api/internal/workflow/model"
)

// RewriteInfo 重写发生时的说明信息，随最终响应返回。
type RewriteInfo struct {
	Reasons []string `json:"reasons"`
	Applied bool     `json:"applied"`
}

// WritingExtraction 写作相关输出的归并结果。
// 存在重写产物时，最终标题与正文取重写版本。
type WritingExtraction struct {
	Writing      *model.WritingOutput
	Rewrite      *model.ChapterRewriteOutput
	FinalTitle   string
	FinalContent string
	RewriteInfo  *RewriteInfo
}

// ExtractWriting 从任务输出中归并最终标题/正文与重写信息。
// 写作任务的结构化输出必须存在，否则流水线产物不可用。
func ExtractWriting(outputs Outputs) (*WritingExtraction, error) {
	writing, ok := StructuredAs[model.WritingOutput](outputs, TaskWriting)
	if !ok {
		return nil, fmt.Errorf("writing output missing or unparsable")
	}

	rewrite, _ := StructuredAs[model.ChapterRewriteOutput](outputs, TaskChapterRewrite)

	ext := &WritingExtraction{
		Writing:      writing,
		Rewrite:      rewrite,
		FinalTitle:   writing.ChapterTitle,
		FinalContent: writing.Content,
	}
	if rewrite != nil {
		ext.FinalTitle = rewrite.ChapterTitle
		ext.FinalContent = rewrite.Content
		ext.RewriteInfo = &RewriteInfo{Reasons: rewrite.FailReasons, Applied: true}
	}
	return ext, nil
}

// SelectReview 返回优先级最高的评审结果：重写评审优先于初评。
func SelectReview(outputs Outputs) *model.ChapterReviewOutput {
	if review, ok := StructuredAs[model.ChapterReviewOutput](outputs, TaskChapterRewriteReview); ok {
		return review
	}
	if review, ok := StructuredAs[model.ChapterReviewOutput](outputs, TaskChapterReview); ok {
		return review
	}
	return nil
}

// Reviews 按固定顺序返回所有可用的评审结果（初评在前）。
func Reviews(outputs Outputs) []*model.ChapterReviewOutput {
	var reviews []*model.ChapterReviewOutput
	for _, name := range []string{TaskChapterReview, TaskChapterRewriteReview} {
		if review, ok := StructuredAs[model.ChapterReviewOutput](outputs, name); ok {
			reviews = append(reviews, review)
		}
	}
	return reviews
}
