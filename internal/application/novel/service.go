// Package novel 实现小说生成的应用服务：初始化、续写、流式输出与查询。
package novel

import (
	"go.opentelemetry.io/otel"

	"z-novel-agent-api/internal/config"
	"z-novel-agent-api/internal/domain/repository"
	"z-novel-agent-api/internal/infrastructure/embedding"
	"z-novel-agent-api/internal/infrastructure/messaging"
	redisinfra "z-novel-agent-api/internal/infrastructure/persistence/redis"
	"z-novel-agent-api/internal/workflow/engine"
	"z-novel-agent-api/internal/workflow/model"
	"z-novel-agent-api/internal/workflow/pipeline"
)

var tracer = otel.Tracer("application.novel")

// Service 小说生成应用服务。
// 生成逻辑交给 workflow engine，自身负责前置校验、上下文装配与落库。
type Service struct {
	novelRepo    repository.NovelRepository
	chapterRepo  repository.ChapterRepository
	worldRepo    repository.WorldSettingRepository
	charRepo     repository.CharacterRepository
	stateRepo    repository.CharacterStateRepository
	plotRepo     repository.PlotSummaryRepository
	reviewRepo   repository.ChapterReviewRepository
	agentLogRepo repository.AgentLogRepository

	plotMemory repository.PlotMemoryRepository
	embedder   *embedding.Embedder

	engine   *engine.Engine
	cache    *redisinfra.Cache
	producer *messaging.Producer

	knowledgeDir  string
	memoryTopK    int
	agentLogLimit int
}

// Deps 构造 Service 所需的依赖集合。
type Deps struct {
	NovelRepo    repository.NovelRepository
	ChapterRepo  repository.ChapterRepository
	WorldRepo    repository.WorldSettingRepository
	CharRepo     repository.CharacterRepository
	StateRepo    repository.CharacterStateRepository
	PlotRepo     repository.PlotSummaryRepository
	ReviewRepo   repository.ChapterReviewRepository
	AgentLogRepo repository.AgentLogRepository

	PlotMemory repository.PlotMemoryRepository
	Embedder   *embedding.Embedder

	Engine   *engine.Engine
	Cache    *redisinfra.Cache
	Producer *messaging.Producer
}

// NewService 创建小说应用服务
func NewService(deps Deps, cfg *config.PipelineConfig) *Service {
	s := &Service{
		novelRepo:     deps.NovelRepo,
		chapterRepo:   deps.ChapterRepo,
		worldRepo:     deps.WorldRepo,
		charRepo:      deps.CharRepo,
		stateRepo:     deps.StateRepo,
		plotRepo:      deps.PlotRepo,
		reviewRepo:    deps.ReviewRepo,
		agentLogRepo:  deps.AgentLogRepo,
		plotMemory:    deps.PlotMemory,
		embedder:      deps.Embedder,
		engine:        deps.Engine,
		cache:         deps.Cache,
		producer:      deps.Producer,
		knowledgeDir:  "knowledge",
		memoryTopK:    3,
		agentLogLimit: 2000,
	}
	if cfg != nil {
		if cfg.KnowledgeDir != "" {
			s.knowledgeDir = cfg.KnowledgeDir
		}
		if cfg.MemoryTopK > 0 {
			s.memoryTopK = cfg.MemoryTopK
		}
		if cfg.AgentLogMaxLen > 0 {
			s.agentLogLimit = cfg.AgentLogMaxLen
		}
	}
	return s
}

// InitResult 初始化完成后的响应数据。
type InitResult struct {
	NovelID       string                     `json:"novel_id"`
	ChapterNumber int                        `json:"chapter_number"`
	Title         string                     `json:"title,omitempty"`
	Content       string                     `json:"content,omitempty"`
	WorldRules    []string                   `json:"world_rules,omitempty"`
	Review        *model.ChapterReviewOutput `json:"review,omitempty"`
	Rewrite       *pipeline.RewriteInfo      `json:"rewrite,omitempty"`
}

// ChapterResult 续写完成后的响应数据。
type ChapterResult struct {
	NovelID       string                     `json:"novel_id"`
	ChapterNumber int                        `json:"chapter_number"`
	Title         string                     `json:"title"`
	Content       string                     `json:"content"`
	Review        *model.ChapterReviewOutput `json:"review,omitempty"`
	Rewrite       *pipeline.RewriteInfo      `json:"rewrite,omitempty"`
}

// NovelSummary 小说列表条目。
type NovelSummary struct {
	NovelID string `json:"novel_id"`
	Topic   string `json:"topic"`
}

// StatusResult 小说进度。
type StatusResult struct {
	NovelID        string `json:"novel_id"`
	CurrentChapter int    `json:"current_chapter"`
}
