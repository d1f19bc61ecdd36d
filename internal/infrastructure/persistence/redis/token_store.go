// Package redis 提供已签发令牌的存储实现
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TokenStore 基于 Redis 的令牌存储，键为令牌、值为用户 ID
type TokenStore struct {
	client *Client
}

// NewTokenStore 创建令牌存储
func NewTokenStore(client *Client) *TokenStore {
	return &TokenStore{client: client}
}

func tokenKey(token string) string {
	return fmt.Sprintf("auth:token:%s", token)
}

// Save 保存令牌到用户的映射
func (s *TokenStore) Save(ctx context.Context, token, userID string, ttl time.Duration) error {
	ctx, span := tracer.Start(ctx, "tokenstore.Save",
		trace.WithAttributes(attribute.String("user_id", userID)))
	defer span.End()

	if err := s.client.rdb.Set(ctx, tokenKey(token), userID, ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Get 根据令牌取回用户 ID，令牌不存在时返回 ("", nil)
func (s *TokenStore) Get(ctx context.Context, token string) (string, error) {
	ctx, span := tracer.Start(ctx, "tokenstore.Get")
	defer span.End()

	userID, err := s.client.rdb.Get(ctx, tokenKey(token)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		span.RecordError(err)
		return "", fmt.Errorf("failed to get token: %w", err)
	}
	return userID, nil
}

// Delete 删除令牌（注销）
func (s *TokenStore) Delete(ctx context.Context, token string) error {
	ctx, span := tracer.Start(ctx, "tokenstore.Delete")
	defer span.End()

	if err := s.client.rdb.Del(ctx, tokenKey(token)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
