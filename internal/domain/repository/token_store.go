package repository

import (
	"context"
	"time"
)

// TokenStore 已签发令牌存储接口，用于登录态校验与注销
type TokenStore interface {
	// Save 保存令牌到用户的映射
	Save(ctx context.Context, token, userID string, ttl time.Duration) error

	// Get 根据令牌取回用户 ID，不存在时返回 ("", nil)
	Get(ctx context.Context, token string) (string, error)

	// Delete 删除令牌（注销）
	Delete(ctx context.Context, token string) error
}
