package idempotency

import (
	"context"
	"os"
	"path/filepath"
	"time"

	bolt "github.com/boltdb/bolt"
)

const boltBucket = "idempotency_keys"

// BoltStore 基于本地 bolt 文件的幂等记录存储（Redis 未启用时使用）
type BoltStore struct {
	db  *bolt.DB
	now func() time.Time
}

// NewBoltStore 打开（或创建）bolt 文件并确保 bucket 存在
func NewBoltStore(path string) (*BoltStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(boltBucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BoltStore{db: db, now: time.Now}, nil
}

// Acquire 在单个写事务内完成检查与占用
func (s *BoltStore) Acquire(_ context.Context, key, fingerprint string, ttl time.Duration) (*Record, bool, error) {
	var existing *Record
	acquired := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(boltBucket))
		if raw := b.Get([]byte(key)); raw != nil {
			record, err := decodeRecord(raw)
			if err != nil {
				return err
			}
			if !record.Expired(s.now()) {
				existing = record
				return nil
			}
		}
		raw, err := encodeRecord(&Record{Fingerprint: fingerprint, ExpiresAt: s.now().Add(ttl)})
		if err != nil {
			return err
		}
		acquired = true
		return b.Put([]byte(key), raw)
	})
	if err != nil {
		return nil, false, err
	}
	return existing, acquired, nil
}

// Complete 写入最终响应
func (s *BoltStore) Complete(_ context.Context, key string, record *Record, ttl time.Duration) error {
	record.Completed = true
	record.ExpiresAt = s.now().Add(ttl)
	raw, err := encodeRecord(record)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(boltBucket)).Put([]byte(key), raw)
	})
}

// Release 删除占用，key 不存在时为无操作
func (s *BoltStore) Release(_ context.Context, key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(boltBucket)).Delete([]byte(key))
	})
}

// Close 释放文件锁
func (s *BoltStore) Close() error {
	return s.db.Close()
}
