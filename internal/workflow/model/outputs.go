// Package model 定义各生成阶段的结构化输出载荷。
package model

// StoryPlanningOutput 故事规划：总体走向与冲突目标。
type StoryPlanningOutput struct {
	StoryOverview   string   `json:"story_overview"`
	CoreConflicts   []string `json:"core_conflicts"`
	NextChapterGoal string   `json:"next_chapter_goal"`
}

// WorldBuildingOutput 世界观：规则、基调与科技水平。
type WorldBuildingOutput struct {
	WorldRules      []string `json:"world_rules"`
	Tone            string   `json:"tone"`
	TechnologyLevel string   `json:"technology_level"`
}

// CharacterDesignItem 单个角色的设定条目。
type CharacterDesignItem struct {
	Name        string `json:"name"`
	Role        string `json:"role,omitempty"`
	Personality string `json:"personality,omitempty"`
	Motivation  string `json:"motivation,omitempty"`
	Flaws       string `json:"flaws,omitempty"`
	GrowthArc   string `json:"growth_arc,omitempty"`
}

// CharacterDesignOutput 角色设定集合。
type CharacterDesignOutput struct {
	Characters []CharacterDesignItem `json:"characters"`
}

// PlotAnalysisOutput 剧情分析：关键事件与后果。
type PlotAnalysisOutput struct {
	KeyEvents    []string `json:"key_events"`
	Consequences []string `json:"consequences"`
}

// MemoryUpdateItem 章节完成后的角色状态快照。
type MemoryUpdateItem struct {
	CharacterName string            `json:"character_name"`
	Location      string            `json:"location"`
	Emotion       string            `json:"emotion"`
	Goal          string            `json:"goal"`
	Relationships map[string]string `json:"relationships"`
}

// MemoryUpdateOutput 角色状态更新集合。
type MemoryUpdateOutput struct {
	States []MemoryUpdateItem `json:"states"`
}

// WritingOutput 写作输出：标题与正文内容。
type WritingOutput struct {
	ChapterTitle string `json:"chapter_title"`
	Content      string `json:"content"`
}

// ChapterRewriteOutput 章节重写输出（原稿未达标时）。
type ChapterRewriteOutput struct {
	FailReasons  []string `json:"fail_reasons"`
	ChapterTitle string   `json:"chapter_title"`
	Content      string   `json:"content"`
}

// ChapterReviewOutput 章节评审结果。
type ChapterReviewOutput struct {
	OverallScore          float64  `json:"overall_score"`
	WorldConsistencyScore float64  `json:"world_consistency_score"`
	OffTopic              bool     `json:"off_topic"`
	Issues                []string `json:"issues"`
	Summary               string   `json:"summary"`
}
