// Package session 管理登录会话令牌：token -> userID，带过期时间.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yeisme/filevault/pkg/cache"
	"github.com/yeisme/filevault/pkg/configs"
)

// Store 会话存储，底层为带前缀的缓存视图.
type Store struct {
	cache *cache.Cache
	ttl   time.Duration
}

// New 创建会话存储，ttl 非正时使用默认值.
func New(c *cache.Cache, cfg configs.AuthConfig) *Store {
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = configs.DefaultSessionTTL
	}

	prefix := cfg.SessionPrefix
	if prefix == "" {
		prefix = configs.DefaultSessionPrefix
	}

	return &Store{cache: c.WithPrefix(prefix), ttl: ttl}
}

// TTL 返回会话有效期.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Issue 为用户签发新令牌.
func (s *Store) Issue(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()

	if err := cache.Set(ctx, s.cache, token, userID, s.ttl); err != nil {
		return "", err
	}

	return token, nil
}

// Resolve 查找令牌对应的用户.
// 令牌不存在或已过期时 ok 为 false 且 err 为 nil；err 仅表示存储故障.
func (s *Store) Resolve(ctx context.Context, token string) (userID string, ok bool, err error) {
	if token == "" {
		return "", false, nil
	}

	userID, err = cache.Get[string](ctx, s.cache, token)
	if cache.IsMiss(err) {
		return "", false, nil
	}

	if err != nil {
		return "", false, err
	}

	return userID, userID != "", nil
}

// Revoke 删除令牌，令牌不存在时也返回 nil.
func (s *Store) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	return s.cache.Delete(ctx, token)
}

// Count 返回当前存储中的会话数.
func (s *Store) Count(ctx context.Context) (int, error) {
	keys, err := s.cache.Keys(ctx)
	if err != nil {
		return 0, err
	}

	return len(keys), nil
}
