package router

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/realcpa-hub/internal/config"
	"github.com/realcpa-hub/internal/http/response"
	"github.com/realcpa-hub/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitKeyFunc 从请求中提取限流维度
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 固定窗口计数规则
type RateLimitRule struct {
	Prefix        string
	WindowSeconds int
	MaxRequests   int
	MessageKey    string
}

// NewRateLimitRule 由配置生成限流规则，key 形如 <prefix>:rate:<scope>
func NewRateLimitRule(redisPrefix, scope string, cfg config.RateLimitConfig) RateLimitRule {
	prefix := strings.TrimSpace(redisPrefix)
	if prefix == "" {
		prefix = "cpa"
	}
	return RateLimitRule{
		Prefix:        strings.Join([]string{prefix, "rate", scope}, ":"),
		WindowSeconds: cfg.WindowSeconds,
		MaxRequests:   cfg.MaxRequests,
		MessageKey:    "error.rate_limited",
	}
}

func (r RateLimitRule) active() bool {
	return r.WindowSeconds > 0 && r.MaxRequests > 0
}

func (r RateLimitRule) messageKey() string {
	if key := strings.TrimSpace(r.MessageKey); key != "" {
		return key
	}
	return "error.rate_limited"
}

// retryAfter 剩余窗口秒数，至少为 1
func (r RateLimitRule) retryAfter(ttl time.Duration) int {
	wait := int(ttl / time.Second)
	if wait < 1 {
		wait = r.WindowSeconds
	}
	if wait < 1 {
		wait = 1
	}
	return wait
}

// RateLimitMiddleware Redis 计数限流；client 为空或规则未配置时直接放行
func RateLimitMiddleware(client *redis.Client, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || !rule.active() {
			c.Next()
			return
		}

		key := rateLimitKey(c, rule, keyFunc)
		window := time.Duration(rule.WindowSeconds) * time.Second

		var count *redis.IntCmd
		var ttl *redis.DurationCmd
		_, err := client.TxPipelined(c.Request.Context(), func(pipe redis.Pipeliner) error {
			count = pipe.Incr(c.Request.Context(), key)
			pipe.ExpireNX(c.Request.Context(), key, window)
			ttl = pipe.TTL(c.Request.Context(), key)
			return nil
		})
		if err != nil {
			// Redis 故障不阻断业务
			logger.Warnw("rate_limit_check_failed", "key", key, "error", err)
			c.Next()
			return
		}

		if count.Val() > int64(rule.MaxRequests) {
			wait := rule.retryAfter(ttl.Val())
			logger.Warnw("rate_limit_exceeded", "key", key, "count", count.Val(), "retry_after", wait)
			c.Header("Retry-After", strconv.Itoa(wait))
			response.Abort(c, response.CodeTooManyRequests, rule.messageKey(), wait)
			return
		}
		c.Next()
	}
}

func rateLimitKey(c *gin.Context, rule RateLimitRule, keyFunc RateLimitKeyFunc) string {
	key := ""
	if keyFunc != nil {
		key = strings.TrimSpace(keyFunc(c))
	}
	if key == "" {
		key = c.ClientIP()
	}
	if rule.Prefix == "" {
		return key
	}
	return rule.Prefix + ":" + key
}

// KeyByIP 按客户端 IP 限流
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// KeyByIPAndJSONField 按 JSON 字段（小写）加 IP 限流，字段缺失时退回 IP
func KeyByIPAndJSONField(field string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		value := strings.ToLower(peekJSONString(c, field))
		if value == "" {
			return c.ClientIP()
		}
		return value + "|" + c.ClientIP()
	}
}

// peekJSONString 读取请求体中的字符串字段，读完后把 body 放回去
func peekJSONString(c *gin.Context, field string) string {
	if c == nil || c.Request == nil || c.Request.Body == nil {
		return ""
	}
	body, err := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil || len(body) == 0 {
		return ""
	}
	var payload map[string]json.RawMessage
	if json.Unmarshal(body, &payload) != nil {
		return ""
	}
	var value string
	if json.Unmarshal(payload[field], &value) != nil {
		return ""
	}
	return strings.TrimSpace(value)
}
