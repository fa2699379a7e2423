package kv

import (
	"bytes"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
)

// ttlMagic 标记带过期时间的包装值，供不支持按键 TTL 的后端使用.
const ttlMagic = "FVTTL1:"

type ttlValue struct {
	V []byte `json:"v"`
	E int64  `json:"e,omitempty"` // 过期时刻（unix 毫秒），0 表示不过期
}

// encodeWithTTL ttl>0 时包装原值，否则原样返回.
func encodeWithTTL(value []byte, ttl time.Duration, now time.Time) ([]byte, bool, error) {
	if ttl <= 0 {
		return value, false, nil
	}

	b, err := sonic.Marshal(ttlValue{V: value, E: now.Add(ttl).UnixMilli()})
	if err != nil {
		return nil, false, fmt.Errorf("marshal ttl value: %w", err)
	}

	return append([]byte(ttlMagic), b...), true, nil
}

// decodeWithTTL 识别包装并判断是否过期，返回 (value, expired, wrapped, error).
func decodeWithTTL(b []byte, now time.Time) ([]byte, bool, bool, error) {
	if !bytes.HasPrefix(b, []byte(ttlMagic)) {
		return b, false, false, nil
	}

	var tv ttlValue
	if err := sonic.Unmarshal(b[len(ttlMagic):], &tv); err != nil {
		return nil, false, true, fmt.Errorf("unmarshal ttl value: %w", err)
	}

	if tv.E > 0 && now.UnixMilli() >= tv.E {
		return nil, true, true, nil
	}

	return tv.V, false, true, nil
}
