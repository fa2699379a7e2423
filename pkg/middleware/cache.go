package middleware

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gin-gonic/gin"

	appcache "github.com/yeisme/filevault/pkg/cache"
	"github.com/yeisme/filevault/pkg/log"
)

const defaultResponseTTL = 5 * time.Second

// CacheConfig 响应缓存配置.
type CacheConfig struct {
	Cache *appcache.Cache // 必须，建议使用带前缀的视图
	TTL   time.Duration
	// VaryHeaders 参与缓存键的请求头
	VaryHeaders []string
}

// responseCacheEntry 序列化存储结构.
type responseCacheEntry struct {
	Status      int    `json:"s"`
	ContentType string `json:"c,omitempty"`
	Body        []byte `json:"b,omitempty"`
	ETag        string `json:"e"`
	StoredAt    int64  `json:"t"`
}

// CacheMiddleware 缓存 GET/HEAD 的 200 响应.
// 命中时带 X-Cache: HIT，支持 If-None-Match 返回 304；缓存读写失败不影响请求.
func CacheMiddleware(cfg CacheConfig) gin.HandlerFunc {
	if cfg.Cache == nil {
		panic("CacheMiddleware: Cache cannot be nil")
	}

	if cfg.TTL <= 0 {
		cfg.TTL = defaultResponseTTL
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.Next()
			return
		}

		key := cacheKey(c, cfg.VaryHeaders)

		if entry, err := appcache.Get[responseCacheEntry](c.Request.Context(), cfg.Cache, key); err == nil {
			writeEntry(c, &entry, "HIT")
			c.Abort()

			return
		}

		bw := &bufferedWriter{ResponseWriter: c.Writer}
		c.Writer = bw
		c.Next()
		c.Writer = bw.ResponseWriter

		entry := responseCacheEntry{
			Status:      bw.Status(),
			ContentType: bw.Header().Get("Content-Type"),
			Body:        bw.buf.Bytes(),
			ETag:        fmt.Sprintf("%q", fmt.Sprintf("%x", xxhash.Sum64(bw.buf.Bytes()))),
			StoredAt:    time.Now().UnixNano(),
		}

		if entry.Status != http.StatusOK {
			c.Status(entry.Status)
			c.Writer.WriteHeaderNow()
			_, _ = c.Writer.Write(entry.Body)

			return
		}

		ctx := context.WithoutCancel(c.Request.Context())
		if err := appcache.Set(ctx, cfg.Cache, key, entry, cfg.TTL); err != nil {
			log.Logger().Debug().Err(err).Str("key", key).Msg("store response cache failed")
		}

		writeEntry(c, &entry, "MISS")
	}
}

// cacheKey 由方法、路由、排序后的查询参数与 Vary 头计算.
// 键只包含 [0-9a-z_]，兼容全部 KV 后端.
func cacheKey(c *gin.Context, vary []string) string {
	var b strings.Builder

	b.WriteString(c.Request.Method)
	b.WriteByte(' ')

	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}

	b.WriteString(route)
	b.WriteByte('?')
	b.WriteString(c.Request.URL.Query().Encode())

	headers := slices.Clone(vary)
	slices.Sort(headers)

	for _, h := range headers {
		b.WriteByte('|')
		b.WriteString(h)
		b.WriteByte('=')
		b.WriteString(c.GetHeader(h))
	}

	return fmt.Sprintf("rc_%x", xxhash.Sum64String(b.String()))
}

func writeEntry(c *gin.Context, e *responseCacheEntry, state string) {
	h := c.Writer.Header()
	h.Set("ETag", e.ETag)
	h.Set("X-Cache", state)
	h.Set("Age", fmt.Sprintf("%.0f", time.Since(time.Unix(0, e.StoredAt)).Seconds()))

	if e.ContentType != "" {
		h.Set("Content-Type", e.ContentType)
	}

	if c.GetHeader("If-None-Match") == e.ETag {
		c.Status(http.StatusNotModified)
		c.Writer.WriteHeaderNow()

		return
	}

	c.Status(e.Status)
	c.Writer.WriteHeaderNow()

	if c.Request.Method != http.MethodHead {
		_, _ = c.Writer.Write(e.Body)
	}
}

// bufferedWriter 暂存响应，待计算 ETag 后再写出.
type bufferedWriter struct {
	gin.ResponseWriter

	buf    bytes.Buffer
	status int
}

func (w *bufferedWriter) WriteHeader(code int) {
	w.status = code
}

func (w *bufferedWriter) WriteHeaderNow() {}

func (w *bufferedWriter) Write(b []byte) (int, error) {
	return w.buf.Write(b)
}

func (w *bufferedWriter) WriteString(s string) (int, error) {
	return w.buf.WriteString(s)
}

func (w *bufferedWriter) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}

	return w.status
}

func (w *bufferedWriter) Written() bool {
	return w.buf.Len() > 0 || w.status != 0
}
