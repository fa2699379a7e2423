// Package kv 提供会话缓存所需的键值存储接口与实现（memory、redis、nats）.
package kv

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"time"

	"github.com/yeisme/filevault/pkg/configs"
)

// ErrKeyNotFound 键不存在或已过期.
var ErrKeyNotFound = errors.New("key not found")

// KVStore 定义键值存储接口.
type KVStore interface {
	// Get 获取键的值，未命中返回 ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set 设置键的值，ttl<=0 表示不过期.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete 删除键，键不存在不视为错误.
	Delete(ctx context.Context, key string) error
	// Exists 检查键是否存在.
	Exists(ctx context.Context, key string) (bool, error)
	// Keys 返回匹配 glob 模式的键，空模式表示全部.
	Keys(ctx context.Context, pattern string) ([]string, error)
	// Ping 检查后端是否可用.
	Ping(ctx context.Context) error
	// Close 关闭存储连接.
	Close() error
}

// Sweeper 由自身不支持按键过期的实现提供，用于定期清理过期键.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// KVFactory 定义创建 KVStore 的工厂函数类型.
type KVFactory func(ctx context.Context, cfg configs.KVConfig) (KVStore, error)

var kvFactories = make(map[configs.KVType]KVFactory)

// RegisterKVFactory 注册 KV 工厂函数.
func RegisterKVFactory(kvType configs.KVType, factory KVFactory) {
	kvFactories[kvType] = factory
}

// GetRegisteredKVTypes 返回已注册的 KV 类型列表.
func GetRegisteredKVTypes() []configs.KVType {
	types := make([]configs.KVType, 0, len(kvFactories))
	for kvType := range kvFactories {
		types = append(types, kvType)
	}

	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	return types
}

// New 根据配置创建 KVStore 实例.
func New(ctx context.Context, cfg configs.KVConfig) (KVStore, error) {
	factory, exists := kvFactories[cfg.Type]
	if !exists {
		return nil, fmt.Errorf("unsupported KV type: %s", cfg.Type)
	}

	return factory(ctx, cfg)
}

func notFound(key string) error {
	return fmt.Errorf("%w: %s", ErrKeyNotFound, key)
}

// matchKey 空模式匹配全部，其余按 glob 规则匹配.
func matchKey(pattern, key string) bool {
	if pattern == "" || pattern == "*" {
		return true
	}

	ok, err := path.Match(pattern, key)

	return err == nil && ok
}
