package idempotency

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/realcpa-hub/internal/http/response"
	"github.com/realcpa-hub/internal/logger"

	"github.com/gin-gonic/gin"
)

// HeaderKey 请求头名称
const HeaderKey = "Idempotency-Key"

// HeaderReplayed 重放响应时附带的响应头
const HeaderReplayed = "Idempotent-Replayed"

const maxKeyLength = 128

type captureWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Middleware 对携带 Idempotency-Key 的写请求做去重与响应重放
// key 按 方法+路由+用户 隔离，匿名请求再按请求体中的推广链接隔离；同 key 不同请求体返回 409
func Middleware(store Store, ttl time.Duration) gin.HandlerFunc {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return func(c *gin.Context) {
		rawKey := strings.TrimSpace(c.GetHeader(HeaderKey))
		if store == nil || rawKey == "" {
			c.Next()
			return
		}
		if len(rawKey) > maxKeyLength {
			response.Abort(c, response.CodeBadRequest, "error.bad_request")
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			response.Abort(c, response.CodeBadRequest, "error.bad_request")
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		key := scopedKey(c, rawKey, body)
		fingerprint := fingerprintOf(c.Request.Method, c.FullPath(), body)
		existing, acquired, err := store.Acquire(c.Request.Context(), key, fingerprint, ttl)
		if err != nil {
			logger.Warnw("idempotency_acquire_failed", "key", key, "error", err)
			c.Next()
			return
		}
		if !acquired {
			switch {
			case existing == nil:
				c.Next()
			case existing.Fingerprint != fingerprint:
				response.Abort(c, response.CodeConflict, "error.idempotency_conflict")
			case !existing.Completed:
				response.Abort(c, response.CodeConflict, "error.idempotency_in_progress")
			default:
				c.Header(HeaderReplayed, "true")
				c.Data(existing.StatusCode, existing.ContentType, existing.Body)
				c.Abort()
			}
			return
		}

		writer := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = writer
		c.Next()

		status := writer.Status()
		if status >= http.StatusInternalServerError {
			if err := store.Release(c.Request.Context(), key); err != nil {
				logger.Warnw("idempotency_release_failed", "key", key, "error", err)
			}
			return
		}
		record := &Record{
			Fingerprint: fingerprint,
			StatusCode:  status,
			ContentType: writer.Header().Get("Content-Type"),
			Body:        writer.body.Bytes(),
		}
		if err := store.Complete(c.Request.Context(), key, record, ttl); err != nil {
			logger.Warnw("idempotency_complete_failed", "key", key, "error", err)
		}
	}
}

func scopedKey(c *gin.Context, rawKey string, body []byte) string {
	owner := "anon"
	if value, ok := c.Get("user_id"); ok {
		owner = fmt.Sprintf("%v", value)
	} else if scope := anonymousScope(body); scope != "" {
		owner = "anon:" + scope
	}
	return strings.Join([]string{c.Request.Method, c.FullPath(), owner, rawKey}, "|")
}

// anonymousScope 从回传请求体提取 token / tracking_link_id
func anonymousScope(body []byte) string {
	var target struct {
		Token          string          `json:"token"`
		TrackingLinkID json.RawMessage `json:"tracking_link_id"`
	}
	if len(body) == 0 || json.Unmarshal(body, &target) != nil {
		return ""
	}
	if token := strings.TrimSpace(target.Token); token != "" {
		return "token:" + token
	}
	if id := strings.Trim(strings.TrimSpace(string(target.TrackingLinkID)), `"`); id != "" && id != "null" {
		return "link:" + id
	}
	return ""
}

func fingerprintOf(method, route string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{0})
	h.Write([]byte(route))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
