package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/realcpa-hub/internal/config"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "cpa"

// Redis 为可选依赖：未启用或连接失败时所有操作都退化为空操作
var (
	mu          sync.RWMutex
	redisClient *redis.Client
	redisPrefix = defaultPrefix
)

// InitRedis 建立连接并 PING 一次，失败时保持禁用状态
func InitRedis(cfg *config.RedisConfig) error {
	_ = Close()
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(host, strconv.Itoa(port)),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("redis ping %s: %w", client.Options().Addr, err)
	}

	mu.Lock()
	defer mu.Unlock()
	redisClient = client
	redisPrefix = strings.TrimSpace(cfg.Prefix)
	if redisPrefix == "" {
		redisPrefix = defaultPrefix
	}
	return nil
}

// Close 关闭连接并回到禁用状态
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if redisClient == nil {
		return nil
	}
	err := redisClient.Close()
	redisClient = nil
	return err
}

// Enabled Redis 是否可用
func Enabled() bool {
	return Client() != nil
}

// Client 未启用时返回 nil
func Client() *redis.Client {
	mu.RLock()
	defer mu.RUnlock()
	return redisClient
}

// BuildKey 加上全局前缀
func BuildKey(key string) string {
	mu.RLock()
	prefix := redisPrefix
	mu.RUnlock()
	if key = strings.TrimSpace(key); key == "" {
		return prefix
	}
	return prefix + ":" + key
}

// GetJSON 读取并反序列化，返回是否命中
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	client := Client()
	if client == nil {
		return false, nil
	}
	raw, err := client.Get(ctx, BuildKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(raw, dest)
}

// SetJSON 序列化后写入
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	client := Client()
	if client == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return client.Set(ctx, BuildKey(key), payload, ttl).Err()
}

// SetNX 占位写入；未启用 Redis 时总是返回 true
func SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	client := Client()
	if client == nil {
		return true, nil
	}
	return client.SetNX(ctx, BuildKey(key), value, ttl).Result()
}

// Del 删除
func Del(ctx context.Context, key string) error {
	client := Client()
	if client == nil {
		return nil
	}
	return client.Del(ctx, BuildKey(key)).Err()
}
