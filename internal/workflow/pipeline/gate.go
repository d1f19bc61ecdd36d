package pipeline

import "z-novel-agent-api/internal/workflow/model"

// 评审门控阈值：任一评分低于该值即触发重写。
const rewriteScoreThreshold = 7

// Decision 门控判定的三态结果：评审缺失或无法解析时为不可判定，
// 此时下游按“不重写”处理，而不是报错中断流水线。
type Decision struct {
	Known bool
	Value bool
}

// Decided 返回一个已判定的结果
func Decided(v bool) Decision {
	return Decision{Known: true, Value: v}
}

// Indeterminate 返回不可判定结果
func Indeterminate() Decision {
	return Decision{}
}

// OrFalse 不可判定时落回 false
func (d Decision) OrFalse() bool {
	return d.Known && d.Value
}

// NeedsRewrite 判断评审结果是否要求重写：
// 总评分或世界观一致性评分低于阈值，或判定跑题。
func NeedsRewrite(review *model.ChapterReviewOutput) Decision {
	if review == nil {
		return Indeterminate()
	}
	return Decided(
		review.OverallScore < rewriteScoreThreshold ||
			review.WorldConsistencyScore < rewriteScoreThreshold ||
			review.OffTopic,
	)
}

// RewriteReasons 列出触发重写的具体原因，用于指标与日志。
func RewriteReasons(review *model.ChapterReviewOutput) []string {
	if review == nil {
		return nil
	}
	var reasons []string
	if review.OverallScore < rewriteScoreThreshold {
		reasons = append(reasons, "overall_score")
	}
	if review.WorldConsistencyScore < rewriteScoreThreshold {
		reasons = append(reasons, "world_consistency")
	}
	if review.OffTopic {
		reasons = append(reasons, "off_topic")
	}
	return reasons
}

// HasRewriteOutput 判断重写阶段是否产出了可用结果：
// 原始输出与结构化载荷必须同时存在。
func HasRewriteOutput(out *TaskOutput) bool {
	return out != nil && out.Raw != "" && out.Structured != nil
}
