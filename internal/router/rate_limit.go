package router

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/storefront-next/internal/http/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitKeyFunc 生成限流 key 的函数
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 限流规则：窗口内超过上限后封禁 BlockSeconds。
type RateLimitRule struct {
	Prefix        string
	WindowSeconds int
	MaxAttempts   int
	BlockSeconds  int
	Message       string
}

var rateLimitScript = redis.NewScript(`
local blocked = redis.call("EXISTS", KEYS[2])
if blocked == 1 then
	return {-1, redis.call("TTL", KEYS[2])}
end
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
if current > tonumber(ARGV[2]) and tonumber(ARGV[3]) > 0 then
	redis.call("SET", KEYS[2], 1, "EX", ARGV[3])
end
local ttl = redis.call("TTL", KEYS[1])
return {current, ttl}
`)

// RateLimitMiddleware 频率限制中间件。
// Redis 可用时跨实例共享计数，否则退化为单进程内存计数。
func RateLimitMiddleware(client *redis.Client, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	if rule.WindowSeconds <= 0 || rule.MaxAttempts <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	var memory *memoryRateLimiter
	if client == nil {
		memory = newMemoryRateLimiter()
	}

	return func(c *gin.Context) {
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

		var allowed bool
		var waitSeconds int
		if client != nil {
			allowed, waitSeconds = checkRedis(c, client, rule, key)
		} else {
			allowed, waitSeconds = memory.check(rule, key)
		}
		if !allowed {
			msg := rule.Message
			if msg == "" {
				msg = fmt.Sprintf("too many attempts, retry in %d seconds", waitSeconds)
			}
			response.Error(c, response.CodeTooManyRequests, msg)
			c.Abort()
			return
		}
		c.Next()
	}
}

func checkRedis(c *gin.Context, client *redis.Client, rule RateLimitRule, key string) (bool, int) {
	blockKey := key + ":block"
	result, err := rateLimitScript.Run(c.Request.Context(), client,
		[]string{key, blockKey},
		rule.WindowSeconds, rule.MaxAttempts, rule.BlockSeconds,
	).Result()
	if err != nil {
		// 限流不可用时放行，不阻断正常流量
		return true, 0
	}
	values, ok := result.([]interface{})
	if !ok || len(values) < 2 {
		return true, 0
	}
	count, ok := toInt64(values[0])
	if !ok {
		return true, 0
	}
	ttlSeconds, _ := toInt64(values[1])
	if count < 0 || count > int64(rule.MaxAttempts) {
		wait := int(ttlSeconds)
		if wait < 1 {
			wait = rule.WindowSeconds
		}
		return false, wait
	}
	return true, 0
}

// KeyByIP 使用 IP 作为限流 key
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// KeyByDraftSession 使用草稿会话 + IP 作为限流 key
func KeyByDraftSession(header string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		session := strings.TrimSpace(c.GetHeader(header))
		if session == "" {
			return c.ClientIP()
		}
		return fmt.Sprintf("%s|%s", session, c.ClientIP())
	}
}

// memoryRateLimiter 单进程内存限流，Redis 未启用时使用。
type memoryRateLimiter struct {
	mu      sync.Mutex
	windows map[string]*rateWindow
}

type rateWindow struct {
	count        int
	windowStart  time.Time
	blockedUntil time.Time
}

func newMemoryRateLimiter() *memoryRateLimiter {
	return &memoryRateLimiter{windows: make(map[string]*rateWindow)}
}

func (m *memoryRateLimiter) check(rule RateLimitRule, key string) (bool, int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	w, ok := m.windows[key]
	if !ok {
		w = &rateWindow{}
		m.windows[key] = w
	}
	if now.Before(w.blockedUntil) {
		return false, int(time.Until(w.blockedUntil).Seconds()) + 1
	}
	if now.Sub(w.windowStart) >= time.Duration(rule.WindowSeconds)*time.Second {
		w.windowStart = now
		w.count = 0
	}
	w.count++
	if w.count > rule.MaxAttempts {
		if rule.BlockSeconds > 0 {
			w.blockedUntil = now.Add(time.Duration(rule.BlockSeconds) * time.Second)
			return false, rule.BlockSeconds
		}
		remaining := rule.WindowSeconds - int(now.Sub(w.windowStart).Seconds())
		if remaining < 1 {
			remaining = 1
		}
		return false, remaining
	}
	return true, 0
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
