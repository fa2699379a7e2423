package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/yeisme/filevault/pkg/configs"
)

// NATSKV 基于 NATS JetStream KV 的实现.
// JetStream KV 不支持按键 TTL，过期时间写入值内并由 Sweep 清理.
type NATSKV struct {
	kv     nats.KeyValue
	bucket string
	conn   *nats.Conn
	now    func() time.Time
}

// NewNATSKV 创建 NATS KV 实例.
func NewNATSKV(_ context.Context, cfg configs.KVConfig) (KVStore, error) {
	natsConfig := cfg.NATS

	opts := []nats.Option{nats.Name(configs.AppName + "-kv")}
	if natsConfig.User != "" {
		opts = append(opts, nats.UserInfo(natsConfig.User, natsConfig.Password))
	}

	nc, err := nats.Connect(natsConfig.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()

		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	kv, err := js.KeyValue(natsConfig.Bucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{
			Bucket: natsConfig.Bucket,
			TTL:    configs.DefaultSessionTTL,
		})
	}

	if err != nil {
		nc.Close()

		return nil, fmt.Errorf("failed to create/get KV bucket: %w", err)
	}

	return &NATSKV{kv: kv, bucket: natsConfig.Bucket, conn: nc, now: time.Now}, nil
}

// Get 获取键的值.
func (n *NATSKV) Get(_ context.Context, key string) ([]byte, error) {
	entry, err := n.kv.Get(key)
	if errors.Is(err, nats.ErrKeyNotFound) {
		return nil, notFound(key)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get key: %w", err)
	}

	val, expired, _, derr := decodeWithTTL(entry.Value(), n.now())
	if derr != nil {
		return nil, derr
	}

	if expired {
		_ = n.kv.Delete(key)

		return nil, notFound(key)
	}

	return val, nil
}

// Set 设置键的值.
func (n *NATSKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	encoded, _, err := encodeWithTTL(value, ttl, n.now())
	if err != nil {
		return err
	}

	if _, err = n.kv.Put(key, encoded); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}

	return nil
}

// Delete 删除键.
func (n *NATSKV) Delete(_ context.Context, key string) error {
	err := n.kv.Delete(key)
	if err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
		return fmt.Errorf("failed to delete key: %w", err)
	}

	return nil
}

// Exists 检查键是否存在.
func (n *NATSKV) Exists(ctx context.Context, key string) (bool, error) {
	_, err := n.Get(ctx, key)
	if errors.Is(err, ErrKeyNotFound) {
		return false, nil
	}

	return err == nil, err
}

// Keys 获取匹配的未过期键.
func (n *NATSKV) Keys(ctx context.Context, pattern string) ([]string, error) {
	keys, err := n.kv.Keys()
	if errors.Is(err, nats.ErrNoKeysFound) {
		return []string{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get keys: %w", err)
	}

	result := make([]string, 0, len(keys))

	for _, key := range keys {
		if !matchKey(pattern, key) {
			continue
		}

		if ok, _ := n.Exists(ctx, key); ok {
			result = append(result, key)
		}
	}

	return result, nil
}

// Sweep 删除值内标记已过期的键.
func (n *NATSKV) Sweep(ctx context.Context) (int, error) {
	keys, err := n.kv.Keys()
	if errors.Is(err, nats.ErrNoKeysFound) {
		return 0, nil
	}

	if err != nil {
		return 0, fmt.Errorf("failed to get keys: %w", err)
	}

	removed := 0

	for _, key := range keys {
		if ctx.Err() != nil {
			return removed, ctx.Err()
		}

		entry, gerr := n.kv.Get(key)
		if gerr != nil {
			continue
		}

		if _, expired, _, derr := decodeWithTTL(entry.Value(), n.now()); derr == nil && expired {
			if n.kv.Delete(key) == nil {
				removed++
			}
		}
	}

	return removed, nil
}

// Ping 检查 NATS 连接状态.
func (n *NATSKV) Ping(_ context.Context) error {
	if !n.conn.IsConnected() {
		return fmt.Errorf("nats connection status: %s", n.conn.Status())
	}

	return nil
}

// Close 关闭 NATS 连接.
func (n *NATSKV) Close() error {
	n.conn.Close()

	return nil
}

func init() {
	RegisterKVFactory(configs.KVTypeNATS, NewNATSKV)
}
