package repository

import (
	"context"

	"z-novel-agent-api/internal/domain/entity"
)

// CharacterRepository 角色仓储接口
type CharacterRepository interface {
	// CreateBatch 批量创建角色
	CreateBatch(ctx context.Context, characters []*entity.Character) error

	// GetByNovelAndName 根据小说与角色名获取角色，不存在时返回 (nil, nil)
	GetByNovelAndName(ctx context.Context, novelID, name string) (*entity.Character, error)

	// ListByNovel 获取小说全部角色
	ListByNovel(ctx context.Context, novelID string) ([]*entity.Character, error)
}

// CharacterStateRepository 角色状态仓储接口
type CharacterStateRepository interface {
	// Create 创建角色状态快照
	Create(ctx context.Context, state *entity.CharacterState) error
}
