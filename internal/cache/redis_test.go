package cache

import (
	"context"
	"testing"
	"time"

	"github.com/realcpa-hub/internal/config"
)

func TestDisabledCacheIsNoop(t *testing.T) {
	if err := InitRedis(&config.RedisConfig{Enabled: false}); err != nil {
		t.Fatalf("init disabled redis failed: %v", err)
	}
	ctx := context.Background()
	if Enabled() || Client() != nil {
		t.Fatalf("cache should be disabled")
	}
	var dest map[string]string
	hit, err := GetJSON(ctx, "k", &dest)
	if err != nil || hit {
		t.Fatalf("disabled GetJSON should miss: hit=%v err=%v", hit, err)
	}
	if err := SetJSON(ctx, "k", map[string]string{"a": "b"}, time.Minute); err != nil {
		t.Fatalf("disabled SetJSON should be noop: %v", err)
	}
	ok, err := SetNX(ctx, "k", "1", time.Minute)
	if err != nil || !ok {
		t.Fatalf("disabled SetNX should acquire: ok=%v err=%v", ok, err)
	}
	if err := Del(ctx, "k"); err != nil {
		t.Fatalf("disabled Del should be noop: %v", err)
	}
}

func TestBuildKeyUsesPrefix(t *testing.T) {
	old := redisPrefix
	t.Cleanup(func() { redisPrefix = old })
	redisPrefix = "cpa"
	if got := BuildKey(" offer:1 "); got != "cpa:offer:1" {
		t.Fatalf("unexpected key: %s", got)
	}
	if got := BuildKey(""); got != "cpa" {
		t.Fatalf("empty key should return prefix: %s", got)
	}
}
