// Package embedding 提供文本向量化客户端
package embedding

import (
	"context"
	"fmt"

	"z-novel-agent-api/internal/config"

	"github.com/cloudwego/eino-ext/components/embedding/openai"
	"github.com/cloudwego/eino/components/embedding"
)

// Embedder 文本向量化客户端，封装 Eino Embedder 并输出 float32 向量
type Embedder struct {
	inner     embedding.Embedder
	batchSize int
}

// NewEmbedder 创建基于 Eino 的 Embedder
func NewEmbedder(ctx context.Context, cfg *config.EmbeddingConfig) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("embedding api key is required")
	}

	// 使用 Eino 的 OpenAI 适配器
	inner, err := openai.NewEmbedder(ctx, &openai.EmbeddingConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create eino embedder: %w", err)
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 16
	}

	return &Embedder{inner: inner, batchSize: batchSize}, nil
}

// Embed 批量向量化
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	var all [][]float32
	for i := 0; i < len(texts); i += e.batchSize {
		end := i + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		vectors, err := e.inner.EmbedStrings(ctx, texts[i:end])
		if err != nil {
			return nil, fmt.Errorf("embedding failed: %w", err)
		}
		for _, v := range vectors {
			all = append(all, toFloat32(v))
		}
	}
	return all, nil
}

// EmbedOne 向量化单条文本
func (e *Embedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embedding returned no vectors")
	}
	return vectors[0], nil
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}
