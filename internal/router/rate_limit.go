package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	publichandlers "github.com/dfn-network/internal/http/handlers/public"
	"github.com/dfn-network/internal/http/response"
	"github.com/dfn-network/internal/i18n"
	"github.com/dfn-network/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitKeyFunc 生成限流 key 的函数
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 限流规则
// BlockSeconds > 0 时，超限后窗口延长为封禁时长
type RateLimitRule struct {
	Prefix        string
	WindowSeconds int
	MaxRequests   int
	BlockSeconds  int
	MessageKey    string
}

var rateLimitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
local block = tonumber(ARGV[3])
if block > 0 and current == tonumber(ARGV[2]) + 1 then
	redis.call("EXPIRE", KEYS[1], block)
end
local ttl = redis.call("TTL", KEYS[1])
return {current, ttl}
`)

// RateLimitMiddleware 固定窗口频率限制中间件
// client 为空或 Redis 执行失败时使用进程内计数
func RateLimitMiddleware(client *redis.Client, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	local := newLocalWindowLimiter()
	return func(c *gin.Context) {
		if rule.WindowSeconds <= 0 || rule.MaxRequests <= 0 {
			c.Next()
			return
		}

		key := ""
		if keyFunc != nil {
			key = strings.TrimSpace(keyFunc(c))
		}
		if key == "" {
			key = c.ClientIP()
		}
		if rule.Prefix != "" {
			key = fmt.Sprintf("%s:%s", rule.Prefix, key)
		}

		count, ttlSeconds, ok := int64(0), int64(0), false
		if client != nil {
			count, ttlSeconds, ok = hitRedisWindow(c, client, key, rule)
		}
		if !ok {
			count, ttlSeconds = local.hit(key, rule)
		}

		if count > int64(rule.MaxRequests) {
			waitSeconds := int(ttlSeconds)
			if waitSeconds < 1 {
				waitSeconds = rule.WindowSeconds
			}
			if waitSeconds < 1 {
				waitSeconds = 1
			}
			msgKey := strings.TrimSpace(rule.MessageKey)
			if msgKey == "" {
				msgKey = "error.rate_limited"
			}
			c.Header("Retry-After", fmt.Sprintf("%d", waitSeconds))
			msg := i18n.Sprintf(i18n.ResolveLocale(c), msgKey, waitSeconds)
			response.Error(c, response.CodeTooManyRequests, msg)
			c.Abort()
			return
		}

		c.Next()
	}
}

func hitRedisWindow(c *gin.Context, client *redis.Client, key string, rule RateLimitRule) (int64, int64, bool) {
	result, err := rateLimitScript.Run(c.Request.Context(), client, []string{key}, rule.WindowSeconds, rule.MaxRequests, rule.BlockSeconds).Result()
	if err != nil {
		logger.Warnw("rate_limit_redis_failed", "key", key, "error", err)
		return 0, 0, false
	}
	values, ok := result.([]interface{})
	if !ok || len(values) < 2 {
		logger.Warnw("rate_limit_redis_result_invalid", "key", key)
		return 0, 0, false
	}
	count, ok := toInt64(values[0])
	if !ok {
		return 0, 0, false
	}
	ttlSeconds, _ := toInt64(values[1])
	return count, ttlSeconds, true
}

type localWindow struct {
	count     int64
	expiresAt time.Time
}

// localWindowLimiter 进程内固定窗口计数，过期项定期清理
type localWindowLimiter struct {
	mu        sync.Mutex
	entries   map[string]*localWindow
	lastSweep time.Time
	now       func() time.Time
}

const localSweepInterval = time.Minute

func newLocalWindowLimiter() *localWindowLimiter {
	return &localWindowLimiter{
		entries: make(map[string]*localWindow),
		now:     time.Now,
	}
}

func (l *localWindowLimiter) hit(key string, rule RateLimitRule) (int64, int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= localSweepInterval {
		for k, entry := range l.entries {
			if !now.Before(entry.expiresAt) {
				delete(l.entries, k)
			}
		}
		l.lastSweep = now
	}

	entry, ok := l.entries[key]
	if !ok || !now.Before(entry.expiresAt) {
		entry = &localWindow{expiresAt: now.Add(time.Duration(rule.WindowSeconds) * time.Second)}
		l.entries[key] = entry
	}
	entry.count++
	if rule.BlockSeconds > 0 && entry.count == int64(rule.MaxRequests)+1 {
		entry.expiresAt = now.Add(time.Duration(rule.BlockSeconds) * time.Second)
	}
	ttl := int64(entry.expiresAt.Sub(now).Seconds())
	return entry.count, ttl
}

// KeyByIP 使用 IP 作为限流 key
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// KeyByUser 已登录用户按用户 ID 限流，否则按 IP
func KeyByUser(c *gin.Context) string {
	if value, ok := c.Get(publichandlers.ContextUserIDKey); ok {
		if uid, ok := value.(uint); ok && uid > 0 {
			return fmt.Sprintf("user:%d", uid)
		}
	}
	return "ip:" + c.ClientIP()
}

// KeyByIPAndJSONField 使用 IP + JSON 字段作为限流 key
func KeyByIPAndJSONField(field string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		value := strings.ToLower(strings.TrimSpace(readJSONField(c, field)))
		if value == "" {
			return c.ClientIP()
		}
		return fmt.Sprintf("%s|%s", value, c.ClientIP())
	}
}

func readJSONField(c *gin.Context, field string) string {
	if c == nil || c.Request == nil || c.Request.Body == nil {
		return ""
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
	if len(body) == 0 {
		return ""
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	value, ok := payload[field]
	if !ok {
		return ""
	}
	if text, ok := value.(string); ok {
		return strings.TrimSpace(text)
	}
	return ""
}

func toInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int16:
		return int64(v), true
	case int8:
		return int64(v), true
	case uint64:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint8:
		return int64(v), true
	case float64:
		return int64(v), true
	case float32:
		return int64(v), true
	default:
		return 0, false
	}
}
