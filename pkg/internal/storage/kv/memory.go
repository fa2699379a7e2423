package kv

import (
	"context"
	"sync"
	"time"

	"github.com/yeisme/filevault/pkg/configs"
)

// memEntry 以指针形式存入 sync.Map，便于 CompareAndDelete 比较.
type memEntry struct {
	data []byte
}

// MemoryKV 基于 sync.Map 的内存 KV 实现，按值内嵌的过期时间惰性淘汰.
type MemoryKV struct {
	data sync.Map
	now  func() time.Time
}

// NewMemoryKV 创建内存 KV 实例.
func NewMemoryKV(_ context.Context, _ configs.KVConfig) (KVStore, error) {
	return &MemoryKV{now: time.Now}, nil
}

// Get 获取键的值.
func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	raw, exists := m.data.Load(key)
	if !exists {
		return nil, notFound(key)
	}

	val, expired, _, err := decodeWithTTL(raw.(*memEntry).data, m.now())
	if err != nil {
		return nil, err
	}

	if expired {
		m.data.CompareAndDelete(key, raw)

		return nil, notFound(key)
	}

	result := make([]byte, len(val))
	copy(result, val)

	return result, nil
}

// Set 设置键的值.
func (m *MemoryKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	encoded, _, err := encodeWithTTL(value, ttl, m.now())
	if err != nil {
		return err
	}

	data := make([]byte, len(encoded))
	copy(data, encoded)

	m.data.Store(key, &memEntry{data: data})

	return nil
}

// Delete 删除键.
func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.data.Delete(key)

	return nil
}

// Exists 检查键是否存在.
func (m *MemoryKV) Exists(ctx context.Context, key string) (bool, error) {
	if _, err := m.Get(ctx, key); err != nil {
		return false, nil
	}

	return true, nil
}

// Keys 获取匹配的未过期键.
func (m *MemoryKV) Keys(_ context.Context, pattern string) ([]string, error) {
	keys := make([]string, 0)
	now := m.now()

	m.data.Range(func(key, value any) bool {
		k, _ := key.(string)
		if !matchKey(pattern, k) {
			return true
		}

		if _, expired, _, err := decodeWithTTL(value.(*memEntry).data, now); err == nil && !expired {
			keys = append(keys, k)
		}

		return true
	})

	return keys, nil
}

// Sweep 删除全部过期键，返回删除数量.
func (m *MemoryKV) Sweep(_ context.Context) (int, error) {
	removed := 0
	now := m.now()

	m.data.Range(func(key, value any) bool {
		if _, expired, _, err := decodeWithTTL(value.(*memEntry).data, now); err == nil && expired {
			if m.data.CompareAndDelete(key, value) {
				removed++
			}
		}

		return true
	})

	return removed, nil
}

// Ping 内存实现始终可用.
func (m *MemoryKV) Ping(context.Context) error {
	return nil
}

// Close 关闭存储（内存实现无需操作）.
func (m *MemoryKV) Close() error {
	return nil
}

func init() {
	RegisterKVFactory(configs.KVTypeMemory, NewMemoryKV)
}
