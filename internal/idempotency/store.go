package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrStoreUnavailable 存储不可用
var ErrStoreUnavailable = errors.New("idempotency store unavailable")

// Record 幂等键对应的请求指纹与响应快照
type Record struct {
	Fingerprint string    `json:"fingerprint"`
	Completed   bool      `json:"completed"`
	StatusCode  int       `json:"status_code"`
	ContentType string    `json:"content_type"`
	Body        []byte    `json:"body"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Expired 是否过期
func (r *Record) Expired(now time.Time) bool {
	return r == nil || (!r.ExpiresAt.IsZero() && now.After(r.ExpiresAt))
}

// Store 幂等记录存储
type Store interface {
	// Acquire 尝试占用 key；已存在未过期记录时返回该记录且 acquired=false
	Acquire(ctx context.Context, key, fingerprint string, ttl time.Duration) (existing *Record, acquired bool, err error)
	// Complete 写入最终响应
	Complete(ctx context.Context, key string, record *Record, ttl time.Duration) error
	// Release 放弃占用（处理失败时允许客户端重试）
	Release(ctx context.Context, key string) error
	Close() error
}

func encodeRecord(record *Record) ([]byte, error) {
	return json.Marshal(record)
}

func decodeRecord(raw []byte) (*Record, error) {
	var record Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, err
	}
	return &record, nil
}
