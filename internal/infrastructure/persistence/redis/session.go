package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bookstore/orderflow/internal/application/user"
	apperrors "github.com/bookstore/orderflow/pkg/errors"
)

// Key设计:
//   session:{user_id}   用户会话(过期时间 = Refresh Token有效期)
//   blacklist:{token}   登出的Access Token(过期时间 = Access Token有效期)
const (
	sessionKeyPrefix   = "session:"
	blacklistKeyPrefix = "blacklist:"
)

// SessionStore 基于Redis的会话存储
type SessionStore struct {
	client redis.UniversalClient
}

// NewSessionStore 创建会话存储
func NewSessionStore(client redis.UniversalClient) *SessionStore {
	return &SessionStore{client: client}
}

var _ user.SessionStore = (*SessionStore)(nil)

// SaveSession 保存用户会话(登录时间、IP等)
// HSet与Expire放在同一个事务流水线中,避免留下永不过期的key
func (s *SessionStore) SaveSession(ctx context.Context, userID string, data map[string]interface{}, ttl time.Duration) error {
	key := sessionKeyPrefix + userID

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, data)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return apperrors.Wrap(err, "保存会话失败")
	}
	return nil
}

// GetSession 获取用户会话
func (s *SessionStore) GetSession(ctx context.Context, userID string) (map[string]string, error) {
	result, err := s.client.HGetAll(ctx, sessionKeyPrefix+userID).Result()
	if err != nil {
		return nil, apperrors.Wrap(err, "获取会话失败")
	}
	if len(result) == 0 {
		return nil, apperrors.ErrUnauthorized
	}
	return result, nil
}

// GetSessionField 读取会话中的单个字段,会话或字段不存在返回空字符串
func (s *SessionStore) GetSessionField(ctx context.Context, userID, field string) (string, error) {
	value, err := s.client.HGet(ctx, sessionKeyPrefix+userID, field).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", apperrors.Wrap(err, "获取会话失败")
	}
	return value, nil
}

// DeleteSession 删除用户会话(登出)
func (s *SessionStore) DeleteSession(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+userID).Err(); err != nil {
		return apperrors.Wrap(err, "删除会话失败")
	}
	return nil
}

// AddToBlacklist 将Token加入黑名单
func (s *SessionStore) AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error {
	if err := s.client.Set(ctx, blacklistKeyPrefix+token, "revoked", ttl).Err(); err != nil {
		return apperrors.Wrap(err, "添加Token到黑名单失败")
	}
	return nil
}

// IsInBlacklist 检查Token是否在黑名单中
func (s *SessionStore) IsInBlacklist(ctx context.Context, token string) (bool, error) {
	exists, err := s.client.Exists(ctx, blacklistKeyPrefix+token).Result()
	if err != nil {
		return false, apperrors.Wrap(err, "检查黑名单失败")
	}
	return exists > 0, nil
}
