package pipeline

import (
	"z-novel-agent-api/internal/workflow/model"
	"z-novel-agent-api/internal/workflow/node"
	workflowprompt "z-novel-agent-api/internal/workflow/prompt"
)

// Agent 角色名。RoleNarrativeWriter 同时是流式输出判定写作块的依据。
const (
	RoleStoryPlanner       = "资深小说故事策划师"
	RoleWorldBuilder       = "资深世界观构建师"
	RoleCharacterArchitect = "资深人物架构师"
	RoleNarrativeWriter    = "专业小说写手"
	RolePlotAnalyst        = "资深剧情分析师"
	RoleMemoryKeeper       = "长期剧情记忆与一致性管理员"
	RoleChapterReviewer    = "章节评审官"
)

// Stage 流水线中的一个阶段。
// Guard 为 nil 表示无条件执行；返回 false 时整个阶段被跳过。
// Decode 把模型原始输出解析为结构化载荷，解析失败返回 (nil, false)。
type Stage struct {
	Task      string
	AgentRole string
	Prompt    workflowprompt.PromptID
	Guard     func(Outputs) bool
	Decode    func(raw string) (any, bool)
}

func decodeAs[T any](raw string) (any, bool) {
	v, ok := node.Decode[T](raw)
	if !ok {
		return nil, false
	}
	return v, true
}

// guardNeedsRewrite 初评要求重写时才执行重写阶段。
// 评审缺失或不可解析按不重写处理。
func guardNeedsRewrite(outputs Outputs) bool {
	review, _ := StructuredAs[model.ChapterReviewOutput](outputs, TaskChapterReview)
	return NeedsRewrite(review).OrFalse()
}

// guardHasRewrite 仅当重写阶段产出可用结果时才执行重写评审。
func guardHasRewrite(outputs Outputs) bool {
	out, _ := outputs.Get(TaskChapterRewrite)
	return HasRewriteOutput(out)
}

// InitSequence 初始化流水线：从故事策划到记忆更新的完整九阶段。
func InitSequence() []Stage {
	return append([]Stage{
		{
			Task:      TaskStoryPlanning,
			AgentRole: RoleStoryPlanner,
			Prompt:    workflowprompt.PromptStoryPlanningV1,
			Decode:    decodeAs[model.StoryPlanningOutput],
		},
		{
			Task:      TaskWorldBuilding,
			AgentRole: RoleWorldBuilder,
			Prompt:    workflowprompt.PromptWorldBuildingV1,
			Decode:    decodeAs[model.WorldBuildingOutput],
		},
		{
			Task:      TaskCharacterDesign,
			AgentRole: RoleCharacterArchitect,
			Prompt:    workflowprompt.PromptCharacterDesignV1,
			Decode:    decodeAs[model.CharacterDesignOutput],
		},
	}, writingStages()...)
}

// ContinuationSequence 续写流水线：跳过策划/世界观/人物设定，直接进入写作。
func ContinuationSequence() []Stage {
	return writingStages()
}

// writingStages 两条流水线共享的写作-评审-重写-分析-记忆阶段。
func writingStages() []Stage {
	return []Stage{
		{
			Task:      TaskWriting,
			AgentRole: RoleNarrativeWriter,
			Prompt:    workflowprompt.PromptWritingV1,
			Decode:    decodeAs[model.WritingOutput],
		},
		{
			Task:      TaskChapterReview,
			AgentRole: RoleChapterReviewer,
			Prompt:    workflowprompt.PromptChapterReviewV1,
			Decode:    decodeAs[model.ChapterReviewOutput],
		},
		{
			Task:      TaskChapterRewrite,
			AgentRole: RoleChapterReviewer,
			Prompt:    workflowprompt.PromptChapterRewriteV1,
			Guard:     guardNeedsRewrite,
			Decode:    decodeAs[model.ChapterRewriteOutput],
		},
		{
			Task:      TaskChapterRewriteReview,
			AgentRole: RoleChapterReviewer,
			Prompt:    workflowprompt.PromptChapterRewriteReviewV1,
			Guard:     guardHasRewrite,
			Decode:    decodeAs[model.ChapterReviewOutput],
		},
		{
			Task:      TaskPlotAnalysis,
			AgentRole: RolePlotAnalyst,
			Prompt:    workflowprompt.PromptPlotAnalysisV1,
			Decode:    decodeAs[model.PlotAnalysisOutput],
		},
		{
			Task:      TaskMemoryUpdate,
			AgentRole: RoleMemoryKeeper,
			Prompt:    workflowprompt.PromptMemoryUpdateV1,
			Decode:    decodeAs[model.MemoryUpdateOutput],
		},
	}
}
