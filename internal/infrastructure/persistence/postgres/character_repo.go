package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"z-novel-agent-api/internal/domain/entity"
)

// CharacterRepository 角色仓储实现
type CharacterRepository struct {
	client *Client
}

// NewCharacterRepository 创建角色仓储
func NewCharacterRepository(client *Client) *CharacterRepository {
	return &CharacterRepository{client: client}
}

// CreateBatch 批量创建角色
func (r *CharacterRepository) CreateBatch(ctx context.Context, characters []*entity.Character) error {
	ctx, span := tracer.Start(ctx, "postgres.CharacterRepository.CreateBatch")
	defer span.End()

	if len(characters) == 0 {
		return nil
	}

	db := getDB(ctx, r.client.db)
	if err := db.Create(&characters).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create characters: %w", err)
	}
	return nil
}

// GetByNovelAndName 根据小说与角色名获取角色
func (r *CharacterRepository) GetByNovelAndName(ctx context.Context, novelID, name string) (*entity.Character, error) {
	ctx, span := tracer.Start(ctx, "postgres.CharacterRepository.GetByNovelAndName")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var character entity.Character
	if err := db.First(&character, "novel_id = ? AND name = ?", novelID, name).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get character: %w", err)
	}
	return &character, nil
}

// ListByNovel 获取小说全部角色
func (r *CharacterRepository) ListByNovel(ctx context.Context, novelID string) ([]*entity.Character, error) {
	ctx, span := tracer.Start(ctx, "postgres.CharacterRepository.ListByNovel")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var characters []*entity.Character
	if err := db.Where("novel_id = ?", novelID).
		Order("created_at ASC").
		Find(&characters).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}
	return characters, nil
}

// CharacterStateRepository 角色状态仓储实现
type CharacterStateRepository struct {
	client *Client
}

// NewCharacterStateRepository 创建角色状态仓储
func NewCharacterStateRepository(client *Client) *CharacterStateRepository {
	return &CharacterStateRepository{client: client}
}

// Create 创建角色状态快照
func (r *CharacterStateRepository) Create(ctx context.Context, state *entity.CharacterState) error {
	ctx, span := tracer.Start(ctx, "postgres.CharacterStateRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(state).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create character state: %w", err)
	}
	return nil
}
