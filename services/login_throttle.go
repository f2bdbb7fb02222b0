package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/biolink-hub/biolink_api/dto"
	log "github.com/sirupsen/logrus"
)

// LoginThrottleService tracks failed login attempts per (email, ip) pair and
// escalates lockouts through three tiers. The email is hashed before it
// becomes part of a cache key so raw addresses are never stored.
type LoginThrottleService struct {
	appContext.DefaultService

	kv  KeyValueStore
	now func() time.Time

	redisSvc *RedisService
}

const LOGIN_THROTTLE_SVC = "login_throttle_svc"

const (
	throttleFailPrefix  = "throttle:fail:"
	throttleBlockPrefix = "throttle:block:"

	// State expires 24h after the last write, whatever the lockout state.
	throttleStateTTL = 24 * time.Hour
)

// Lockout tiers, highest threshold first. Every failure at or above a
// threshold re-extends the lockout to now + that tier's duration.
var throttleTiers = []struct {
	Threshold int
	Duration  time.Duration
}{
	{8, time.Hour},
	{5, 5 * time.Minute},
	{3, 30 * time.Second},
}

func (svc LoginThrottleService) Id() string {
	return LOGIN_THROTTLE_SVC
}

func (svc *LoginThrottleService) Configure(ctx *appContext.Context) error {
	svc.now = time.Now
	return svc.DefaultService.Configure(ctx)
}

func (svc *LoginThrottleService) Start() error {
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	svc.kv = svc.redisSvc
	return nil
}

// throttleKey derives the per-pair key suffix. An absent IP collapses into a
// shared "unknown" bucket for that email.
func throttleKey(email, ip string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	if ip == "" {
		ip = "unknown"
	}
	return hex.EncodeToString(sum[:]) + ":" + ip
}

func lockoutDuration(count int) (time.Duration, bool) {
	for _, tier := range throttleTiers {
		if count >= tier.Threshold {
			return tier.Duration, true
		}
	}
	return 0, false
}

// CheckBlocked reports whether the pair is currently locked out, without
// mutating any state.
func (svc *LoginThrottleService) CheckBlocked(ctx context.Context, email, ip string) (*dto.ThrottleStatus, error) {
	key := throttleKey(email, ip)

	count, err := svc.failureCount(ctx, key)
	if err != nil {
		return nil, err
	}

	blockedUntil, err := svc.blockedUntil(ctx, key)
	if err != nil {
		return nil, err
	}

	status := &dto.ThrottleStatus{Count: count}
	if blockedUntil != nil && svc.now().Before(*blockedUntil) {
		status.Blocked = true
		status.BlockedUntil = blockedUntil
	}
	return status, nil
}

// RecordFailure increments the failure counter atomically and, once the count
// reaches a tier threshold, (re)extends the lockout to match the tier of the
// current count.
func (svc *LoginThrottleService) RecordFailure(ctx context.Context, email, ip string) (*dto.ThrottleStatus, error) {
	key := throttleKey(email, ip)

	count, err := svc.kv.Increment(ctx, throttleFailPrefix+key)
	if err != nil {
		return nil, err
	}
	if err := svc.kv.Expire(ctx, throttleFailPrefix+key, throttleStateTTL); err != nil {
		return nil, err
	}

	status := &dto.ThrottleStatus{Count: int(count)}

	duration, locked := lockoutDuration(int(count))
	if !locked {
		return status, nil
	}

	blockedUntil := svc.now().Add(duration)
	if err := svc.kv.Set(ctx, throttleBlockPrefix+key, strconv.FormatInt(blockedUntil.Unix(), 10), throttleStateTTL); err != nil {
		return nil, err
	}

	log.WithField("count", count).
		WithField("blocked_for", duration.String()).
		Warn("Login throttle lockout extended")

	status.Blocked = true
	status.BlockedUntil = &blockedUntil
	return status, nil
}

// Clear removes all throttle state for the pair. Called on successful
// authentication.
func (svc *LoginThrottleService) Clear(ctx context.Context, email, ip string) error {
	key := throttleKey(email, ip)
	return svc.kv.Delete(ctx, throttleFailPrefix+key, throttleBlockPrefix+key)
}

func (svc *LoginThrottleService) failureCount(ctx context.Context, key string) (int, error) {
	raw, err := svc.kv.Get(ctx, throttleFailPrefix+key)
	if err != nil {
		return 0, err
	}
	if raw == "" {
		return 0, nil
	}

	count, err := strconv.Atoi(raw)
	if err != nil {
		// Unparseable state reads as empty rather than erroring out.
		return 0, nil
	}
	return count, nil
}

func (svc *LoginThrottleService) blockedUntil(ctx context.Context, key string) (*time.Time, error) {
	raw, err := svc.kv.Get(ctx, throttleBlockPrefix+key)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}

	unix, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, nil
	}

	t := time.Unix(unix, 0)
	return &t, nil
}

// RetryAfter formats the wait hint attached to blocked login responses.
func (svc *LoginThrottleService) RetryAfter(status *dto.ThrottleStatus) string {
	if status == nil || status.BlockedUntil == nil {
		return ""
	}
	return fmt.Sprintf("%d", int(status.BlockedUntil.Sub(svc.now()).Seconds()))
}
