package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/paygate-next/internal/cache"
	"github.com/paygate-next/internal/config"
	"github.com/paygate-next/internal/http/response"
	"github.com/paygate-next/internal/i18n"
	"github.com/paygate-next/internal/logger"
	"github.com/paygate-next/internal/metrics"
	"github.com/paygate-next/internal/tenancy"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitKeyFunc 从请求中提取计数维度，返回空串时退回客户端 IP
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 固定窗口限流规则
type RateLimitRule struct {
	Name          string
	WindowSeconds int
	MaxRequests   int
	MessageKey    string
}

// NewRateLimitRule 由配置构建规则
func NewRateLimitRule(name, messageKey string, cfg config.RateLimitConfig) RateLimitRule {
	return RateLimitRule{
		Name:          name,
		WindowSeconds: cfg.WindowSeconds,
		MaxRequests:   cfg.MaxRequests,
		MessageKey:    messageKey,
	}
}

func (r RateLimitRule) enabled() bool {
	return r.WindowSeconds > 0 && r.MaxRequests > 0
}

// retryAfter 判断计数是否超限，超限时返回建议等待秒数
func (r RateLimitRule) retryAfter(count, ttlSeconds int64) (int, bool) {
	if count <= int64(r.MaxRequests) {
		return 0, false
	}
	wait := int(ttlSeconds)
	if wait < 1 {
		wait = r.WindowSeconds
	}
	if wait < 1 {
		wait = 1
	}
	return wait, true
}

var rateLimitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return {current, redis.call("TTL", KEYS[1])}
`)

// RateLimiter 基于 Redis 的固定窗口计数器，client 为空时放行
type RateLimiter struct {
	client *redis.Client
}

// NewRateLimiter 创建限流器
func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{client: client}
}

func (l *RateLimiter) hit(ctx context.Context, rule RateLimitRule, key string) (count, ttl int64, err error) {
	redisKey := cache.Key("rate", rule.Name, key)
	values, err := rateLimitScript.Run(ctx, l.client, []string{redisKey}, rule.WindowSeconds).Int64Slice()
	if err != nil {
		return 0, 0, err
	}
	if len(values) < 2 {
		return 0, 0, fmt.Errorf("unexpected rate limit reply: %v", values)
	}
	return values[0], values[1], nil
}

// Middleware 按规则限流，Redis 故障时返回 500 而不是放行
func (l *RateLimiter) Middleware(rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil || l.client == nil || !rule.enabled() {
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

		count, ttl, err := l.hit(c.Request.Context(), rule, key)
		if err != nil {
			logger.Errorw("rate_limit_unavailable", "rule", rule.Name, "error", err)
			abortWithKey(c, response.CodeInternal, "error.rate_limit_unavailable")
			return
		}
		wait, limited := rule.retryAfter(count, ttl)
		if !limited {
			c.Next()
			return
		}
		rejectRateLimited(c, rule, key, wait)
	}
}

func rejectRateLimited(c *gin.Context, rule RateLimitRule, key string, wait int) {
	metrics.ObserveRateLimited(rule.Name)
	logger.Warnw("rate_limited", "rule", rule.Name, "key", key, "retry_after", wait)
	msgKey := strings.TrimSpace(rule.MessageKey)
	if msgKey == "" {
		msgKey = "error.rate_limited"
	}
	c.Header("Retry-After", strconv.Itoa(wait))
	response.Error(c, response.CodeTooManyRequests, i18n.Sprintf(i18n.ResolveLocale(c), msgKey, wait))
	c.Abort()
}

// OnboardingKey 开通接口按 子域名+IP 计数，同一来源反复抢注同一子域名会被限制
func OnboardingKey(c *gin.Context) string {
	subdomain := strings.ToLower(peekJSONString(c, "subdomain"))
	if subdomain == "" {
		return c.ClientIP()
	}
	return subdomain + "|" + c.ClientIP()
}

// TenantKey 按已解析租户计数，需挂在租户中间件之后
func TenantKey(c *gin.Context) string {
	scope := tenancy.FromContext(c.Request.Context())
	if !scope.IsResolved() {
		return ""
	}
	return "tenant:" + strconv.FormatUint(uint64(scope.TenantID()), 10)
}

// peekJSONString 读取 JSON 请求体中的字符串字段并还原请求体
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
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	var value string
	if err := json.Unmarshal(payload[field], &value); err != nil {
		return ""
	}
	return strings.TrimSpace(value)
}
