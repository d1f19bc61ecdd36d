// Package main 初始化数据库表结构与向量集合（bootstrap）
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"z-novel-agent-api/internal/config"
	"z-novel-agent-api/internal/domain/entity"
	"z-novel-agent-api/internal/infrastructure/persistence/milvus"
	"z-novel-agent-api/internal/infrastructure/persistence/postgres"
)

func main() {
	_ = godotenv.Load()

	fmt.Println("Starting system bootstrap...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	// 1. PostgreSQL 表结构
	pgClient, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		log.Fatalf("failed to connect postgres: %v", err)
	}
	defer func() { _ = pgClient.Close() }()

	fmt.Println("Migrating database schema...")
	err = pgClient.DB().WithContext(ctx).AutoMigrate(
		&entity.User{},
		&entity.Novel{},
		&entity.Chapter{},
		&entity.WorldSetting{},
		&entity.Character{},
		&entity.CharacterState{},
		&entity.PlotSummary{},
		&entity.ChapterReview{},
		&entity.AgentLog{},
	)
	if err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}
	fmt.Println("Database schema migrated.")

	// 2. Milvus 向量集合（可选，失败只降级长期记忆召回）
	milvusClient, err := milvus.NewClient(ctx, &cfg.Vector.Milvus)
	if err != nil {
		fmt.Printf("Milvus not available, skipping vector collection setup: %v\n", err)
	} else {
		defer func() { _ = milvusClient.Close() }()
		plotMemory := milvus.NewPlotMemoryRepository(milvusClient, cfg.Embedding.Dimension)
		if err := plotMemory.EnsureCollection(ctx); err != nil {
			log.Fatalf("failed to ensure plot memory collection: %v", err)
		}
		fmt.Println("Plot memory collection ready.")
	}

	fmt.Println("Bootstrap completed successfully.")
}
