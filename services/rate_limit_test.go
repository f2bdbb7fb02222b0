package services

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

func newRateLimitForTest(kv KeyValueStore) *RateLimitService {
	return &RateLimitService{kv: kv, maxRequests: 5, window: 10 * time.Second}
}

func TestRateLimit_WindowAllowance(t *testing.T) {
	svc := newRateLimitForTest(newFakeKV())
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		info, err := svc.Limit(ctx, "1.2.3.4")
		if err != nil {
			t.Fatalf("Limit %d: %v", i, err)
		}
		if !info.Allowed {
			t.Fatalf("request %d should be allowed", i)
		}
		if info.Remaining != 5-i {
			t.Fatalf("request %d: expected remaining %d, got %d", i, 5-i, info.Remaining)
		}
	}

	info, err := svc.Limit(ctx, "1.2.3.4")
	if err != nil {
		t.Fatalf("Limit: %v", err)
	}
	if info.Allowed {
		t.Fatal("sixth request should be rejected")
	}
	if info.Remaining != 0 {
		t.Fatalf("expected remaining 0, got %d", info.Remaining)
	}
}

func TestRateLimit_ExpirySetOnFirstRequestOnly(t *testing.T) {
	kv := newFakeKV()
	svc := newRateLimitForTest(kv)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.Limit(ctx, "1.2.3.4"); err != nil {
			t.Fatalf("Limit: %v", err)
		}
	}

	if kv.expireCalls != 1 {
		t.Fatalf("expected a single expiry set per window, got %d", kv.expireCalls)
	}
	if ttl := kv.ttls[rateLimitPrefix+"1.2.3.4"]; ttl != 10*time.Second {
		t.Fatalf("expected a 10s window, got %v", ttl)
	}
}

func TestRateLimit_WindowReset(t *testing.T) {
	kv := newFakeKV()
	svc := newRateLimitForTest(kv)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		if _, err := svc.Limit(ctx, "1.2.3.4"); err != nil {
			t.Fatalf("Limit: %v", err)
		}
	}

	// Counter expiry resets the window.
	if err := kv.Delete(ctx, rateLimitPrefix+"1.2.3.4"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	info, err := svc.Limit(ctx, "1.2.3.4")
	if err != nil {
		t.Fatalf("Limit: %v", err)
	}
	if !info.Allowed || info.Remaining != 4 {
		t.Fatalf("expected a fresh window, got %+v", info)
	}
}

func TestRateLimit_KeysIsolated(t *testing.T) {
	svc := newRateLimitForTest(newFakeKV())
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		if _, err := svc.Limit(ctx, "1.2.3.4"); err != nil {
			t.Fatalf("Limit: %v", err)
		}
	}

	info, err := svc.Limit(ctx, "5.6.7.8")
	if err != nil {
		t.Fatalf("Limit: %v", err)
	}
	if !info.Allowed {
		t.Fatal("expected an unrelated IP to be unaffected")
	}
}

func TestRateLimit_Middleware(t *testing.T) {
	svc := newRateLimitForTest(newFakeKV())

	app := fiber.New()
	app.Post("/login", svc.Middleware(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for i := 1; i <= 5; i++ {
		req := httptest.NewRequest("POST", "/login", nil)
		req.Header.Set("X-Forwarded-For", "1.2.3.4")

		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, resp.StatusCode)
		}
		if resp.Header.Get("X-RateLimit-Limit") != "5" {
			t.Fatalf("request %d: missing limit header", i)
		}
	}

	req := httptest.NewRequest("POST", "/login", nil)
	req.Header.Set("X-Forwarded-For", "1.2.3.4")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Retry-After") != "10" {
		t.Fatalf("expected Retry-After 10, got %q", resp.Header.Get("Retry-After"))
	}
}

func TestRateLimit_MiddlewareFailsOpen(t *testing.T) {
	kv := newFakeKV()
	kv.incrErr = errors.New("backend down")
	svc := newRateLimitForTest(kv)

	app := fiber.New()
	app.Post("/login", svc.Middleware(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("POST", "/login", nil)
	req.Header.Set("X-Forwarded-For", "1.2.3.4")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected a backend error to fail open, got %d", resp.StatusCode)
	}
}

func TestRateLimit_ReArmsLostWindowExpiry(t *testing.T) {
	kv := newFakeKV()
	svc := newRateLimitForTest(kv)
	ctx := context.Background()

	// Counter already over the allowance but with no expiry, as left
	// behind when the first-hit Expire never landed.
	counterKey := rateLimitPrefix + "1.2.3.4"
	kv.data[counterKey] = "7"

	info, err := svc.Limit(ctx, "1.2.3.4")
	if err != nil {
		t.Fatalf("Limit: %v", err)
	}
	if info.Allowed {
		t.Fatal("expected the over-allowance request to be rejected")
	}
	if kv.ttls[counterKey] != 10*time.Second {
		t.Fatalf("expected the window expiry to be re-armed, got %v", kv.ttls[counterKey])
	}

	// A keyed counter that already carries an expiry is left alone.
	calls := kv.expireCalls
	if _, err := svc.Limit(ctx, "1.2.3.4"); err != nil {
		t.Fatalf("Limit: %v", err)
	}
	if kv.expireCalls != calls {
		t.Fatalf("expected no further Expire once the window is armed, got %d extra", kv.expireCalls-calls)
	}
}
