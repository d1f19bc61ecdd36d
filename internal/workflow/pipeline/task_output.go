// Package pipeline 定义章节生成流水线的阶段编排与输出归并逻辑。
package pipeline

// 流水线任务名，贯穿进度事件、持久化与日志。
const (
	TaskStoryPlanning        = "story_planning_task"
	TaskWorldBuilding        = "world_building_task"
	TaskCharacterDesign      = "character_design_task"
	TaskWriting              = "writing_task"
	TaskChapterReview        = "chapter_review_task"
	TaskChapterRewrite       = "chapter_rewrite_task"
	TaskChapterRewriteReview = "chapter_rewrite_review_task"
	TaskPlotAnalysis         = "plot_analysis_task"
	TaskMemoryUpdate         = "memory_update_task"
)

// TaskOutput 单个阶段完成后的产物。
// Raw 是模型原始输出；Structured 是解析成功时的结构化载荷，可能为 nil。
type TaskOutput struct {
	Name       string
	AgentRole  string
	Raw        string
	Structured any
}

// Outputs 按任务名索引的输出集合。
type Outputs map[string]*TaskOutput

// Get 取指定任务输出，不存在时返回 (nil, false)。
func (o Outputs) Get(name string) (*TaskOutput, bool) {
	out, ok := o[name]
	if !ok || out == nil {
		return nil, false
	}
	return out, true
}

// StructuredAs 取指定任务的结构化输出并断言类型。
// 任务缺失、结构化缺失或类型不符都返回 (nil, false)。
func StructuredAs[T any](o Outputs, name string) (*T, bool) {
	out, ok := o.Get(name)
	if !ok || out.Structured == nil {
		return nil, false
	}
	v, ok := out.Structured.(*T)
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}
