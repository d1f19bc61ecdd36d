// Package main 生成事件消费者入口（job-worker）
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"z-novel-agent-api/internal/config"
	"z-novel-agent-api/internal/infrastructure/messaging"
	"z-novel-agent-api/internal/wire"
	"z-novel-agent-api/pkg/logger"
	"z-novel-agent-api/pkg/tracer"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	ctx := context.Background()
	log := logger.FromContext(ctx)

	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: "job-worker",
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to init tracer", err)
	}
	defer func() { _ = shutdown(ctx) }()

	consumerName := fmt.Sprintf("event-worker-%s", uuid.NewString()[:8])
	consumer, cleanup, err := wire.InitializeEventWorker(ctx, cfg, consumerName)
	if err != nil {
		logger.Fatal(ctx, "failed to initialize event worker", err)
	}
	defer cleanup()

	consumer.RegisterHandler(messaging.TypeChapterGenerated, handleChapterGenerated)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := consumer.Start(runCtx); err != nil {
		logger.Fatal(ctx, "failed to start consumer", err)
	}
	go consumer.MonitorDLQ(runCtx, 100)

	log.Info("event worker started", "consumer", consumerName)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down event worker...")
	cancel()
	consumer.Stop()
	log.Info("event worker exited")
}

// handleChapterGenerated 归档章节生成事件到结构化日志
func handleChapterGenerated(ctx context.Context, msg *messaging.Message) error {
	var event messaging.ChapterGeneratedMessage
	if err := msg.UnmarshalPayload(&event); err != nil {
		return fmt.Errorf("unmarshal chapter generated event: %w", err)
	}

	logger.FromContext(ctx).Info("chapter generated",
		"novel_id", event.NovelID,
		"chapter_number", event.ChapterNumber,
		"title", event.Title,
		"word_count", event.WordCount,
		"mode", event.Mode,
		"rewrite_applied", event.RewriteApplied,
	)
	return nil
}
