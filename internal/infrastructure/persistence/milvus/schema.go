// Package milvus 提供 Milvus 向量数据库访问层实现
package milvus

import (
	"fmt"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

const (
	// CollectionPlotMemory 剧情记忆集合
	CollectionPlotMemory = "plot_memory"
)

// PlotMemorySchema 剧情记忆 Collection Schema
func PlotMemorySchema(dim int) *entity.Schema {
	return &entity.Schema{
		CollectionName: CollectionPlotMemory,
		Description:    "Per-novel plot memory for continuation recall",
		Fields: []*entity.Field{
			{
				Name:       "id",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "vector",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": fmt.Sprintf("%d", dim),
				},
			},
			{
				Name:     "novel_id",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "128",
				},
			},
			{
				Name:     "chapter_number",
				DataType: entity.FieldTypeInt64,
			},
			{
				Name:     "content",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "65535",
				},
			},
			{
				Name:     "created_at",
				DataType: entity.FieldTypeInt64,
			},
		},
	}
}

// metricType 将配置中的度量名转换为 SDK 类型
func metricType(name string) entity.MetricType {
	switch name {
	case "COSINE":
		return entity.COSINE
	case "L2":
		return entity.L2
	default:
		return entity.IP
	}
}
