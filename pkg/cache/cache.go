// Package cache 提供基于键值存储的泛型缓存实现.
//
// 值使用 sonic 编码后写入 kv.KVStore，TTL 交由底层存储处理.
// 未命中以 ErrMiss 表示，与存储不可用等错误区分开.
//
// 基本用法:
//
//	c := cache.NewCache(store)
//	_ = cache.Set(ctx, c, "auth_"+token, userID, 24*time.Hour)
//
//	userID, err := cache.Get[string](ctx, c, "auth_"+token)
//	if cache.IsMiss(err) {
//		// 会话不存在或已过期
//	}
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"github.com/yeisme/filevault/pkg/internal/storage/kv"
)

// ErrMiss 缓存未命中.
var ErrMiss = kv.ErrKeyNotFound

// Cache 基于KV存储的缓存实现.
type Cache struct {
	kvStore kv.KVStore
	prefix  string
}

// NewCache 创建一个新的缓存实例.
func NewCache(kvStore kv.KVStore) *Cache {
	return &Cache{kvStore: kvStore}
}

// WithPrefix 返回共享同一存储、键带前缀的缓存视图.
func (c *Cache) WithPrefix(prefix string) *Cache {
	return &Cache{kvStore: c.kvStore, prefix: c.prefix + prefix}
}

// Key 返回实际写入存储的键.
func (c *Cache) Key(key string) string {
	return c.prefix + key
}

// IsMiss 判断错误是否为未命中.
func IsMiss(err error) bool {
	return errors.Is(err, ErrMiss)
}

// Get 泛型获取缓存值.
func Get[T any](ctx context.Context, c *Cache, key string) (T, error) {
	var zero T

	data, err := c.kvStore.Get(ctx, c.Key(key))
	if err != nil {
		return zero, err
	}

	var value T
	if err := sonic.Unmarshal(data, &value); err != nil {
		return zero, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	return value, nil
}

// Set 泛型设置缓存值.
func Set[T any](ctx context.Context, c *Cache, key string, value T, ttl time.Duration) error {
	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	return c.kvStore.Set(ctx, c.Key(key), data, ttl)
}

// Delete 删除缓存键.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.kvStore.Delete(ctx, c.Key(key))
}

// Exists 检查缓存键是否存在.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	return c.kvStore.Exists(ctx, c.Key(key))
}

// Keys 列出当前前缀下的键（不含前缀）.
func (c *Cache) Keys(ctx context.Context) ([]string, error) {
	keys, err := c.kvStore.Keys(ctx, c.prefix+"*")
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k[len(c.prefix):])
	}

	return out, nil
}

// GetOrSet 获取缓存值，未命中时调用 getter 并回写.
// 存储错误会直接返回，回写失败不影响结果.
func GetOrSet[T any](ctx context.Context, c *Cache, key string, getter func() (T, error), ttl time.Duration) (T, error) {
	var zero T

	value, err := Get[T](ctx, c, key)
	if err == nil {
		return value, nil
	}

	if !IsMiss(err) {
		return zero, err
	}

	value, err = getter()
	if err != nil {
		return zero, err
	}

	_ = Set(ctx, c, key, value, ttl)

	return value, nil
}
