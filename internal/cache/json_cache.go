package cache

import (
	"context"
	"fmt"
	"time"
)

// JSONCache 固定命名空间与 TTL 的类型化缓存，key 为 <namespace>:<id>
type JSONCache[T any] struct {
	namespace string
	ttl       time.Duration
}

// NewJSONCache 创建类型化缓存
func NewJSONCache[T any](namespace string, ttl time.Duration) JSONCache[T] {
	return JSONCache[T]{namespace: namespace, ttl: ttl}
}

func (c JSONCache[T]) key(id uint) string {
	return fmt.Sprintf("%s:%d", c.namespace, id)
}

// Get 读取缓存；解码失败按未命中处理并返回错误
func (c JSONCache[T]) Get(ctx context.Context, id uint) (*T, bool, error) {
	if id == 0 {
		return nil, false, nil
	}
	var value T
	hit, err := GetJSON(ctx, c.key(id), &value)
	if err != nil || !hit {
		return nil, false, err
	}
	return &value, true, nil
}

// Set 写入缓存
func (c JSONCache[T]) Set(ctx context.Context, id uint, value *T) error {
	if id == 0 || value == nil {
		return nil
	}
	return SetJSON(ctx, c.key(id), value, c.ttl)
}

// Del 删除缓存
func (c JSONCache[T]) Del(ctx context.Context, id uint) error {
	if id == 0 {
		return nil
	}
	return Del(ctx, c.key(id))
}
