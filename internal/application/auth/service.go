// Package auth 实现用户注册、登录与注销。
package auth

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"z-novel-agent-api/internal/domain/entity"
	"z-novel-agent-api/internal/domain/repository"
	apperrors "z-novel-agent-api/pkg/errors"
	"z-novel-agent-api/pkg/utils"
)

var tracer = otel.Tracer("application.auth")

// Service 认证应用服务。
// 登录签发的 JWT 同时写入 TokenStore，注销时删除即可立刻失效。
type Service struct {
	userRepo   repository.UserRepository
	tokenStore repository.TokenStore
	tx         repository.Transactor
	jwtManager *utils.JWTManager
	tokenTTL   time.Duration
}

// NewService 创建认证服务
func NewService(
	userRepo repository.UserRepository,
	tokenStore repository.TokenStore,
	tx repository.Transactor,
	jwtManager *utils.JWTManager,
	tokenTTL time.Duration,
) *Service {
	return &Service{
		userRepo:   userRepo,
		tokenStore: tokenStore,
		tx:         tx,
		jwtManager: jwtManager,
		tokenTTL:   tokenTTL,
	}
}

// LoginResult 登录成功后的令牌信息。
type LoginResult struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Register 注册新用户。用户名查重与创建放在同一事务中，
// 配合唯一索引抵御并发注册。
func (s *Service) Register(ctx context.Context, username, password string) (*entity.User, error) {
	ctx, span := tracer.Start(ctx, "auth.Register")
	span.SetAttributes(attribute.String("username", username))
	defer span.End()

	user := entity.NewUser(username)
	if err := user.SetPassword(password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.userRepo.GetByUsername(txCtx, username)
		if err != nil {
			return fmt.Errorf("check username: %w", err)
		}
		if existing != nil {
			return apperrors.ErrUserExists
		}
		return s.userRepo.Create(txCtx, user)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return user, nil
}

// Login 校验凭据并签发令牌。
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	ctx, span := tracer.Start(ctx, "auth.Login")
	span.SetAttributes(attribute.String("username", username))
	defer span.End()

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil || !user.CheckPassword(password) {
		return nil, apperrors.ErrBadCredentials
	}

	token, err := s.jwtManager.GenerateToken(user.ID, user.Username, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	if err := s.tokenStore.Save(ctx, token, user.ID, s.tokenTTL); err != nil {
		return nil, fmt.Errorf("save token: %w", err)
	}

	return &LoginResult{
		Token:     token,
		UserID:    user.ID,
		Username:  user.Username,
		ExpiresAt: time.Now().Add(s.tokenTTL),
	}, nil
}

// Logout 注销令牌。
func (s *Service) Logout(ctx context.Context, token string) error {
	ctx, span := tracer.Start(ctx, "auth.Logout")
	defer span.End()

	return s.tokenStore.Delete(ctx, token)
}
