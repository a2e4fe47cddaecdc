package idempotency

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore 基于 Redis 的幂等记录存储
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(key string) string {
	return s.prefix + ":idem:" + key
}

// Acquire 使用 SETNX 占用 key
func (s *RedisStore) Acquire(ctx context.Context, key, fingerprint string, ttl time.Duration) (*Record, bool, error) {
	if s == nil || s.client == nil {
		return nil, false, ErrStoreUnavailable
	}
	pending, err := encodeRecord(&Record{Fingerprint: fingerprint, ExpiresAt: time.Now().Add(ttl)})
	if err != nil {
		return nil, false, err
	}
	ok, err := s.client.SetNX(ctx, s.key(key), pending, ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if ok {
		return nil, true, nil
	}
	raw, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err == redis.Nil {
		// 记录恰好过期，重试一次
		ok, err = s.client.SetNX(ctx, s.key(key), pending, ttl).Result()
		return nil, ok, err
	}
	if err != nil {
		return nil, false, err
	}
	record, err := decodeRecord(raw)
	if err != nil {
		return nil, false, err
	}
	return record, false, nil
}

// Complete 写入最终响应
func (s *RedisStore) Complete(ctx context.Context, key string, record *Record, ttl time.Duration) error {
	if s == nil || s.client == nil {
		return ErrStoreUnavailable
	}
	record.Completed = true
	record.ExpiresAt = time.Now().Add(ttl)
	raw, err := encodeRecord(record)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(key), raw, ttl).Err()
}

// Release 删除占用
func (s *RedisStore) Release(ctx context.Context, key string) error {
	if s == nil || s.client == nil {
		return ErrStoreUnavailable
	}
	return s.client.Del(ctx, s.key(key)).Err()
}

// Close Redis 客户端由 cache 包统一管理
func (s *RedisStore) Close() error {
	return nil
}
