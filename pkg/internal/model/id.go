package model

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewID 生成按时间单调递增的记录标识（ULID）.
func NewID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// ValidID 判断字符串是否为语法合法的记录标识.
func ValidID(id string) bool {
	_, err := ulid.ParseStrict(id)

	return err == nil
}
