package services

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/biolink-hub/biolink_api/dto"
	"github.com/biolink-hub/biolink_api/shared"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// RateLimitService is a fixed-window request counter per IP for the sensitive
// auth endpoints. The first request in a window sets the counter with a
// 10-second expiry; later requests increment it. Bursts straddling a window
// boundary can reach up to twice the nominal rate, which is accepted.
type RateLimitService struct {
	appContext.DefaultService

	kv          KeyValueStore
	maxRequests int64
	window      time.Duration

	redisSvc *RedisService
}

const RATE_LIMIT_SVC = "rate_limit_svc"

const rateLimitPrefix = "ratelimit:"

func (svc RateLimitService) Id() string {
	return RATE_LIMIT_SVC
}

func (svc *RateLimitService) Configure(ctx *appContext.Context) error {
	svc.maxRequests = 5
	svc.window = 10 * time.Second
	return svc.DefaultService.Configure(ctx)
}

func (svc *RateLimitService) Start() error {
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	svc.kv = svc.redisSvc
	return nil
}

// Limit counts one request against the key's current window and reports
// whether it is still within the allowance.
func (svc *RateLimitService) Limit(ctx context.Context, key string) (*dto.RateLimitInfo, error) {
	counterKey := rateLimitPrefix + key

	count, err := svc.kv.Increment(ctx, counterKey)
	if err != nil {
		return nil, err
	}

	if count == 1 {
		if err := svc.kv.Expire(ctx, counterKey, svc.window); err != nil {
			return nil, err
		}
	} else if count > svc.maxRequests {
		// If the first-hit Expire was lost the counter would otherwise
		// reject forever. A negative TTL means the key has no expiry.
		if ttl, err := svc.kv.TTL(ctx, counterKey); err == nil && ttl < 0 {
			if err := svc.kv.Expire(ctx, counterKey, svc.window); err != nil {
				return nil, err
			}
		}
	}

	info := &dto.RateLimitInfo{
		Allowed:   count <= svc.maxRequests,
		Remaining: int(svc.maxRequests - count),
	}
	if info.Remaining < 0 {
		info.Remaining = 0
	}

	resetTime := time.Now().Add(svc.window)
	info.ResetTime = &resetTime

	return info, nil
}

// Middleware guards an endpoint class with the per-IP window. A backend error
// fails open: blocking all logins because the cache is down is worse than
// briefly losing the limiter.
func (svc *RateLimitService) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := GetClientIP(c)

		info, err := svc.Limit(c.Context(), ip)
		if err != nil {
			log.WithError(err).WithField("ip", ip).Warn("Rate limit check failed, allowing request")
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.FormatInt(svc.maxRequests, 10))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		if info.ResetTime != nil {
			c.Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
		}

		if !info.Allowed {
			rateLimitRejectionsTotal.Inc()
			c.Set("Retry-After", strconv.Itoa(int(svc.window.Seconds())))
			return shared.ResponseJSON(c, http.StatusTooManyRequests,
				"Too many requests. Please try again later.", nil)
		}

		return c.Next()
	}
}

// GetClientIP resolves the caller's address, preferring proxy headers.
func GetClientIP(c *fiber.Ctx) string {
	forwarded := c.Get("X-Forwarded-For")
	if forwarded != "" {
		ips := strings.Split(forwarded, ",")
		if len(ips) > 0 {
			ip := strings.TrimSpace(ips[0])
			if ip != "" {
				return ip
			}
		}
	}

	realIP := c.Get("X-Real-IP")
	if realIP != "" {
		return realIP
	}

	cfIP := c.Get("CF-Connecting-IP")
	if cfIP != "" {
		return cfIP
	}

	ip, _, err := net.SplitHostPort(c.Context().RemoteAddr().String())
	if err != nil {
		return c.Context().RemoteAddr().String()
	}

	return ip
}
