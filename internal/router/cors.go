package router

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/realcpa-hub/internal/config"

	"github.com/gin-gonic/gin"
)

var (
	defaultCORSMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	defaultCORSHeaders = []string{
		"Content-Type", "Authorization", "Accept-Language",
		"Idempotency-Key", "X-Request-ID", "X-Requested-With", "Cache-Control",
	}
)

type corsPolicy struct {
	origins     []string
	anyOrigin   bool
	credentials bool
	methods     string
	headers     string
	maxAge      string
}

func newCORSPolicy(cfg config.CORSConfig) corsPolicy {
	p := corsPolicy{
		credentials: cfg.AllowCredentials,
		methods:     strings.Join(orDefaultList(cfg.AllowedMethods, defaultCORSMethods), ", "),
		headers:     strings.Join(orDefaultList(cfg.AllowedHeaders, defaultCORSHeaders), ", "),
	}
	for _, origin := range orDefaultList(cfg.AllowedOrigins, []string{"*"}) {
		if origin == "*" {
			p.anyOrigin = true
			continue
		}
		p.origins = append(p.origins, origin)
	}
	if cfg.MaxAge > 0 {
		p.maxAge = strconv.Itoa(cfg.MaxAge)
	}
	return p
}

// allowOrigin 返回 Access-Control-Allow-Origin 的值，空串表示不放行。
// 带凭证时不能回 *，改为回显请求来源
func (p corsPolicy) allowOrigin(origin string) string {
	if p.anyOrigin {
		if p.credentials && origin != "" {
			return origin
		}
		return "*"
	}
	for _, allowed := range p.origins {
		if origin != "" && strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// CORSMiddleware 跨域；OPTIONS 预检直接 204
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	policy := newCORSPolicy(cfg)
	return func(c *gin.Context) {
		h := c.Writer.Header()
		if allowed := policy.allowOrigin(c.GetHeader("Origin")); allowed != "" {
			h.Set("Access-Control-Allow-Origin", allowed)
			if allowed != "*" {
				h.Add("Vary", "Origin")
			}
		}
		if policy.credentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}
		h.Set("Access-Control-Allow-Methods", policy.methods)
		h.Set("Access-Control-Allow-Headers", policy.headers)
		h.Set("Access-Control-Expose-Headers", "X-Request-ID, Idempotent-Replayed, Retry-After")
		if policy.maxAge != "" {
			h.Set("Access-Control-Max-Age", policy.maxAge)
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func orDefaultList(values, fallback []string) []string {
	if len(values) == 0 {
		return fallback
	}
	return values
}
