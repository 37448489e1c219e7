package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"job-agent-go/internal/config"
	"job-agent-go/internal/constants"
)

// ErrNotFound 键不存在。包装redis.Nil以屏蔽底层实现。
var ErrNotFound = redis.Nil

// Redis 提供登录会话存储
type Redis struct {
	Client *redis.Client
	cfg    *config.RedisConfig
}

// NewRedisAdapter 创建Redis客户端连接
func NewRedisAdapter(cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis配置不能为空")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis地址不能为空")
	}

	opt := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,

		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,

		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
	}

	client := redis.NewClient(opt)

	// 注册OpenTelemetry钩子，命令级追踪
	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("注册Redis追踪钩子失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("连接Redis失败: %w", err)
	}

	return &Redis{Client: client, cfg: cfg}, nil
}

// SessionTTL 返回配置的会话过期时间
func (r *Redis) SessionTTL() time.Duration {
	if r.cfg.SessionTTLMinutes <= 0 {
		return 2 * time.Hour
	}
	return time.Duration(r.cfg.SessionTTLMinutes) * time.Minute
}

// SaveSession 写入会话令牌到用户ID的映射，带过期时间
func (r *Redis) SaveSession(ctx context.Context, token string, userID uint) error {
	key := constants.KeySessionPrefix + token
	if err := r.Client.Set(ctx, key, strconv.FormatUint(uint64(userID), 10), r.SessionTTL()).Err(); err != nil {
		return fmt.Errorf("写入会话失败: %w", err)
	}
	return nil
}

// GetSession 查找会话令牌对应的用户ID并顺延过期时间。
// 令牌不存在或已过期返回 ErrNotFound。
func (r *Redis) GetSession(ctx context.Context, token string) (uint, error) {
	key := constants.KeySessionPrefix + token
	val, err := r.Client.Get(ctx, key).Result()
	if err != nil {
		return 0, err
	}

	userID, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("会话值损坏: %w", err)
	}

	// 活跃会话滑动续期，续期失败不影响本次鉴权
	_ = r.Client.Expire(ctx, key, r.SessionTTL()).Err()

	return uint(userID), nil
}

// DeleteSession 注销会话令牌
func (r *Redis) DeleteSession(ctx context.Context, token string) error {
	if err := r.Client.Del(ctx, constants.KeySessionPrefix+token).Err(); err != nil {
		return fmt.Errorf("删除会话失败: %w", err)
	}
	return nil
}

// Close 关闭Redis连接
func (r *Redis) Close() error {
	return r.Client.Close()
}
