// Package wire 手工装配应用依赖
package wire

import (
	"context"
	"time"

	"z-novel-agent-api/internal/application/auth"
	"z-novel-agent-api/internal/application/novel"
	"z-novel-agent-api/internal/config"
	"z-novel-agent-api/internal/infrastructure/embedding"
	"z-novel-agent-api/internal/infrastructure/llm"
	"z-novel-agent-api/internal/infrastructure/messaging"
	"z-novel-agent-api/internal/infrastructure/persistence/milvus"
	"z-novel-agent-api/internal/infrastructure/persistence/postgres"
	"z-novel-agent-api/internal/infrastructure/persistence/redis"
	"z-novel-agent-api/internal/interfaces/http/handler"
	"z-novel-agent-api/internal/interfaces/http/router"
	einoobs "z-novel-agent-api/internal/observability/eino"
	"z-novel-agent-api/internal/workflow/engine"
	workflowprompt "z-novel-agent-api/internal/workflow/prompt"
	"z-novel-agent-api/pkg/logger"
	"z-novel-agent-api/pkg/utils"
)

const defaultTokenTTL = 24 * time.Hour

// InitializeApp 初始化 API 网关：数据层、生成引擎、应用服务与路由器。
// Milvus 与 Embedding 为可选依赖，不可达时禁用长期记忆召回但不阻塞启动。
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	// PostgreSQL
	pgClient, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanups = append(cleanups, func() { _ = pgClient.Close() })

	// Redis
	redisClient, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	cleanups = append(cleanups, func() { _ = redisClient.Close() })

	// Milvus（可选）
	milvusClient, err := milvus.NewClient(ctx, &cfg.Vector.Milvus)
	if err != nil {
		logger.Warn(ctx, "milvus not available, plot memory recall disabled", "error", err.Error())
		milvusClient = nil
	} else {
		cleanups = append(cleanups, func() { _ = milvusClient.Close() })
	}

	// Embedding（可选，与 Milvus 配套）
	var embedder *embedding.Embedder
	if milvusClient != nil {
		embedder, err = embedding.NewEmbedder(ctx, &cfg.Embedding)
		if err != nil {
			logger.Warn(ctx, "embedding not available, plot memory recall disabled", "error", err.Error())
			embedder = nil
		}
	}

	// 仓储
	userRepo := postgres.NewUserRepository(pgClient)
	novelRepo := postgres.NewNovelRepository(pgClient)
	chapterRepo := postgres.NewChapterRepository(pgClient)
	worldRepo := postgres.NewWorldSettingRepository(pgClient)
	charRepo := postgres.NewCharacterRepository(pgClient)
	stateRepo := postgres.NewCharacterStateRepository(pgClient)
	plotRepo := postgres.NewPlotSummaryRepository(pgClient)
	reviewRepo := postgres.NewChapterReviewRepository(pgClient)
	agentLogRepo := postgres.NewAgentLogRepository(pgClient)
	txManager := postgres.NewTxManager(pgClient)

	cache := redis.NewCache(redisClient)
	tokenStore := redis.NewTokenStore(redisClient)
	rateLimiter := redis.NewRateLimiter(redisClient)

	maxLen := cfg.Messaging.RedisStream.MaxLen
	producer := messaging.NewProducer(redisClient.Redis(), int64(maxLen))

	var plotMemory *milvus.PlotMemoryRepository
	if milvusClient != nil {
		plotMemory = milvus.NewPlotMemoryRepository(milvusClient, cfg.Embedding.Dimension)
	}

	// 生成引擎
	einoobs.Init()
	factory := llm.NewEinoFactory(cfg)
	registry := workflowprompt.NewRegistry()
	eng := engine.New(factory, registry, cfg.LLM.DefaultProvider)

	// 应用服务
	tokenTTL := cfg.Security.JWT.Expiration
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	jwtManager := utils.NewJWTManager(cfg.Security.JWT.Secret, cfg.Security.JWT.Issuer)
	authService := auth.NewService(userRepo, tokenStore, txManager, jwtManager, tokenTTL)

	novelDeps := novel.Deps{
		NovelRepo:    novelRepo,
		ChapterRepo:  chapterRepo,
		WorldRepo:    worldRepo,
		CharRepo:     charRepo,
		StateRepo:    stateRepo,
		PlotRepo:     plotRepo,
		ReviewRepo:   reviewRepo,
		AgentLogRepo: agentLogRepo,
		Embedder:     embedder,
		Engine:       eng,
		Cache:        cache,
		Producer:     producer,
	}
	if plotMemory != nil && embedder != nil {
		novelDeps.PlotMemory = plotMemory
	}
	novelService := novel.NewService(novelDeps, &cfg.Pipeline)

	// HTTP 层
	handlers := router.Handlers{
		Health: handler.NewHealthHandler(pgClient, redisClient, milvusClient),
		Auth:   handler.NewAuthHandler(authService),
		Novel:  handler.NewNovelHandler(novelService),
	}
	r := router.New(cfg, handlers, tokenStore, rateLimiter)

	return r, cleanup, nil
}

// InitializeEventWorker 初始化生成事件消费者（job-worker 进程）。
func InitializeEventWorker(ctx context.Context, cfg *config.Config, consumerName string) (*messaging.Consumer, func(), error) {
	redisClient, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}

	consumer := messaging.NewConsumer(redisClient.Redis(), messaging.ConsumerConfig{
		Stream:       messaging.StreamNovelEvents,
		Group:        messaging.ConsumerGroupEventWorker,
		ConsumerName: consumerName,
	})

	cleanup := func() {
		consumer.Stop()
		_ = redisClient.Close()
	}
	return consumer, cleanup, nil
}
