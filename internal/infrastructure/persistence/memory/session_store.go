package memory

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// SessionStore 内存版会话与黑名单(redis.enabled=false时使用)
// 过期的条目在读取时惰性清理
type SessionStore struct {
	mu        sync.Mutex
	sessions  map[string]expiring
	blacklist map[string]expiring
	now       func() time.Time
}

type expiring struct {
	data     map[string]interface{}
	expireAt time.Time
}

// NewSessionStore 创建内存会话存储
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions:  make(map[string]expiring),
		blacklist: make(map[string]expiring),
		now:       time.Now,
	}
}

func (s *SessionStore) SaveSession(ctx context.Context, userID string, data map[string]interface{}, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = expiring{data: data, expireAt: s.now().Add(ttl)}
	return nil
}

// GetSession 会话不存在或已过期返回false
func (s *SessionStore) GetSession(ctx context.Context, userID string) (map[string]interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[userID]
	if !ok || !s.now().Before(e.expireAt) {
		delete(s.sessions, userID)
		return nil, false
	}
	return e.data, true
}

func (s *SessionStore) GetSessionField(ctx context.Context, userID, field string) (string, error) {
	data, ok := s.GetSession(ctx, userID)
	if !ok {
		return "", nil
	}
	v, ok := data[field]
	if !ok {
		return "", nil
	}
	return fmt.Sprint(v), nil
}

func (s *SessionStore) DeleteSession(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}

func (s *SessionStore) AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blacklist[token] = expiring{expireAt: s.now().Add(ttl)}
	return nil
}

func (s *SessionStore) IsInBlacklist(ctx context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.blacklist[token]
	if !ok {
		return false, nil
	}
	if !s.now().Before(e.expireAt) {
		delete(s.blacklist, token)
		return false, nil
	}
	return true, nil
}
