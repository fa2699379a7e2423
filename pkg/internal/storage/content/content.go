// Package content 提供文件内容的字节存储（本地文件系统或 S3），按生成的路径寻址.
package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/yeisme/filevault/pkg/configs"
	nlog "github.com/yeisme/filevault/pkg/log"
)

// ErrNotFound 内容不存在（包括尚未生成的缩略图）.
var ErrNotFound = errors.New("content not found")

// Store 内容存储.
type Store interface {
	// NewKey 在配置的根路径下生成唯一的存储路径.
	NewKey() string
	// Put 写入完整内容，写入过程中读者不会看到部分数据.
	Put(ctx context.Context, key string, data []byte) error
	// Get 读取内容，不存在返回 ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Ping 检查后端是否可用.
	Ping(ctx context.Context) error
	// Backend 返回后端名称.
	Backend() string
}

// VariantKey 返回指定宽度缩略图的存储路径.
func VariantKey(key string, width int) string {
	return fmt.Sprintf("%s_%d", key, width)
}

// New 按配置创建内容存储，CacheBytes>0 时在外层加 groupcache 读缓存.
func New(ctx context.Context, cfg configs.ContentConfig) (Store, error) {
	var (
		store Store
		err   error
	)

	switch cfg.Backend {
	case configs.ContentLocal, "":
		store, err = NewLocal(cfg.Root)
	case configs.ContentS3:
		store, err = NewS3(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported content backend: %s", cfg.Backend)
	}

	if err != nil {
		return nil, err
	}

	if cfg.CacheBytes > 0 {
		store = NewCached(store, cfg.CacheBytes)
	}

	nlog.Logger().Info().
		Str("backend", store.Backend()).
		Str("root", cfg.Root).
		Int64("cache_bytes", cfg.CacheBytes).
		Msg("content store ready")

	return store, nil
}
