package milvus

import (
	"context"
	"fmt"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"z-novel-agent-api/internal/domain/repository"
	"z-novel-agent-api/pkg/metrics"
)

// PlotMemoryRepository 剧情记忆向量仓储实现
type PlotMemoryRepository struct {
	client *Client
	dim    int
}

// NewPlotMemoryRepository 创建剧情记忆仓储
func NewPlotMemoryRepository(client *Client, dim int) *PlotMemoryRepository {
	return &PlotMemoryRepository{client: client, dim: dim}
}

// EnsureCollection 确保集合与索引可用（不存在则创建）。
// 约束：不会做 drop/rebuild 等破坏性操作。
func (r *PlotMemoryRepository) EnsureCollection(ctx context.Context) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}

	exists, err := r.client.HasCollection(ctx, CollectionPlotMemory)
	if err != nil {
		return err
	}
	if !exists {
		schema := PlotMemorySchema(r.dim)
		schema.CollectionName = r.client.CollectionName(CollectionPlotMemory)
		if err := r.client.milvus.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
		if err := r.createIndex(ctx); err != nil {
			return err
		}
	}

	return r.client.LoadCollection(ctx, CollectionPlotMemory)
}

// createIndex 创建 HNSW 索引
func (r *PlotMemoryRepository) createIndex(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "milvus.PlotMemoryRepository.createIndex")
	defer span.End()

	idx, err := entity.NewIndexHNSW(
		metricType(r.client.config.MetricType),
		r.client.config.HNSWM,
		r.client.config.HNSWEfConstruction,
	)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to build index: %w", err)
	}

	collName := r.client.CollectionName(CollectionPlotMemory)
	if err := r.client.milvus.CreateIndex(ctx, collName, "vector", idx, false); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create index: %w", err)
	}
	return nil
}

// Insert 写入一条剧情记忆
func (r *PlotMemoryRepository) Insert(ctx context.Context, record *repository.PlotMemoryRecord) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.PlotMemoryRepository.Insert",
		trace.WithAttributes(
			attribute.String("novel_id", record.NovelID),
			attribute.Int("chapter_number", record.ChapterNumber),
		))
	defer span.End()

	collName := r.client.CollectionName(CollectionPlotMemory)

	idCol := entity.NewColumnVarChar("id", []string{record.ID})
	vectorCol := entity.NewColumnFloatVector("vector", r.dim, [][]float32{record.Embedding})
	novelCol := entity.NewColumnVarChar("novel_id", []string{record.NovelID})
	numberCol := entity.NewColumnInt64("chapter_number", []int64{int64(record.ChapterNumber)})
	contentCol := entity.NewColumnVarChar("content", []string{record.Content})
	createdCol := entity.NewColumnInt64("created_at", []int64{time.Now().Unix()})

	if _, err := r.client.milvus.Insert(ctx, collName, "",
		idCol, vectorCol, novelCol, numberCol, contentCol, createdCol); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to insert plot memory: %w", err)
	}
	return nil
}

// Search 在指定小说范围内做近邻检索
func (r *PlotMemoryRepository) Search(ctx context.Context, novelID string, vector []float32, topK int) ([]*repository.PlotMemoryRecord, error) {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return nil, fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.PlotMemoryRepository.Search",
		trace.WithAttributes(
			attribute.String("novel_id", novelID),
			attribute.Int("top_k", topK),
		))
	defer span.End()

	collName := r.client.CollectionName(CollectionPlotMemory)
	filter := fmt.Sprintf(`novel_id == "%s"`, novelID)

	sp, err := entity.NewIndexHNSWSearchParam(128)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create search param: %w", err)
	}

	start := time.Now()
	results, err := r.client.milvus.Search(ctx,
		collName,
		nil,
		filter,
		[]string{"id", "novel_id", "chapter_number", "content"},
		[]entity.Vector{entity.FloatVector(vector)},
		"vector",
		metricType(r.client.config.MetricType),
		topK,
		sp,
	)
	metrics.MilvusSearchDuration.WithLabelValues(CollectionPlotMemory).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.MilvusSearchTotal.WithLabelValues(CollectionPlotMemory, "error").Inc()
		span.RecordError(err)
		return nil, fmt.Errorf("failed to search plot memory: %w", err)
	}
	metrics.MilvusSearchTotal.WithLabelValues(CollectionPlotMemory, "ok").Inc()

	var records []*repository.PlotMemoryRecord
	for _, result := range results {
		for i := 0; i < result.ResultCount; i++ {
			rec := &repository.PlotMemoryRecord{
				Score: result.Scores[i],
			}
			if idCol, ok := result.Fields.GetColumn("id").(*entity.ColumnVarChar); ok {
				rec.ID = idCol.Data()[i]
			}
			if novelCol, ok := result.Fields.GetColumn("novel_id").(*entity.ColumnVarChar); ok {
				rec.NovelID = novelCol.Data()[i]
			}
			if numberCol, ok := result.Fields.GetColumn("chapter_number").(*entity.ColumnInt64); ok {
				rec.ChapterNumber = int(numberCol.Data()[i])
			}
			if contentCol, ok := result.Fields.GetColumn("content").(*entity.ColumnVarChar); ok {
				rec.Content = contentCol.Data()[i]
			}
			records = append(records, rec)
		}
	}

	span.SetAttributes(attribute.Int("result_count", len(records)))
	return records, nil
}
