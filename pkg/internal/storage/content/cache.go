package content

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/golang/groupcache"
)

var groupSeq atomic.Int64

// Cached 以 groupcache 为内容读取加一层进程内缓存.
// 内容路径由 uuid 生成且写入后不再修改，缓存无需失效.
type Cached struct {
	Store
	group *groupcache.Group
}

// NewCached 包装一个 Store.
func NewCached(inner Store, cacheBytes int64) *Cached {
	name := fmt.Sprintf("content-%d", groupSeq.Add(1))

	c := &Cached{Store: inner}
	c.group = groupcache.NewGroup(name, cacheBytes, groupcache.GetterFunc(
		func(ctx context.Context, key string, dest groupcache.Sink) error {
			data, err := inner.Get(ctx, key)
			if err != nil {
				return err
			}

			return dest.SetBytes(data)
		}))

	return c
}

// Get 优先读缓存，未命中时回源；回源错误原样返回.
func (c *Cached) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	if err := c.group.Get(ctx, key, groupcache.AllocatingByteSliceSink(&data)); err != nil {
		return nil, err
	}

	return data, nil
}

// Stats 返回缓存统计.
func (c *Cached) Stats() groupcache.Stats {
	return c.group.Stats
}

func (c *Cached) Backend() string {
	return c.Store.Backend() + "+groupcache"
}
