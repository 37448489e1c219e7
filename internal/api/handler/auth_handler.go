package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"job-agent-go/internal/logger"
	"job-agent-go/internal/storage"
)

// AuthHandler 账号注册与会话管理
type AuthHandler struct {
	storage *storage.Storage
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(storage *storage.Storage) *AuthHandler {
	return &AuthHandler{storage: storage}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// RegisterResponse 注册响应
type RegisterResponse struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse 登录响应，令牌后续放在 Authorization: Bearer 头中
type LoginResponse struct {
	Token  string `json:"token"`
	UserID uint   `json:"user_id"`
}

// HandleRegister 注册新用户
func (h *AuthHandler) HandleRegister(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, fmt.Errorf("用户名和密码不能为空")
	}
	if h.storage == nil || h.storage.MySQL == nil {
		return nil, fmt.Errorf("用户存储未初始化")
	}

	user, err := h.storage.MySQL.CreateUser(ctx, req.Username, req.Password, req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrUsernameTaken) {
			return nil, err
		}
		logger.Error().Err(err).Str("username", req.Username).Msg("创建用户失败")
		return nil, err
	}

	logger.Info().Uint("user_id", user.ID).Str("username", user.Username).Msg("用户注册成功")
	return &RegisterResponse{UserID: user.ID, Username: user.Username}, nil
}

// HandleLogin 校验凭据并签发会话令牌
func (h *AuthHandler) HandleLogin(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	if h.storage == nil || h.storage.MySQL == nil || h.storage.Redis == nil {
		return nil, fmt.Errorf("会话存储未初始化")
	}

	user, err := h.storage.MySQL.AuthenticateUser(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	token := uuid.NewString()
	if err := h.storage.Redis.SaveSession(ctx, token, user.ID); err != nil {
		logger.Error().Err(err).Uint("user_id", user.ID).Msg("写入会话失败")
		return nil, err
	}

	logger.Info().Uint("user_id", user.ID).Msg("用户登录成功")
	return &LoginResponse{Token: token, UserID: user.ID}, nil
}

// HandleLogout 注销会话令牌
func (h *AuthHandler) HandleLogout(ctx context.Context, token string) error {
	if h.storage == nil || h.storage.Redis == nil {
		return fmt.Errorf("会话存储未初始化")
	}
	return h.storage.Redis.DeleteSession(ctx, token)
}

// ValidateSession 校验会话令牌，返回用户ID
func (h *AuthHandler) ValidateSession(ctx context.Context, token string) (uint, error) {
	if h.storage == nil || h.storage.Redis == nil {
		return 0, fmt.Errorf("会话存储未初始化")
	}
	userID, err := h.storage.Redis.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, fmt.Errorf("会话不存在或已过期")
		}
		return 0, err
	}
	return userID, nil
}
