package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/Pvngu/tecnm-monorepo-sub000/internal/config"
)

// ---------------------------------------------------------------------------
// Config constructors
// ---------------------------------------------------------------------------

func TestRateLimitConfigFrom(t *testing.T) {
	tests := []struct {
		name      string
		in        config.RateLimitingConfig
		wantRPM   int
		wantBurst int
	}{
		{"zero values use defaults", config.RateLimitingConfig{}, 200, 50},
		{"explicit values win", config.RateLimitingConfig{RequestsPerMinute: 30, Burst: 3}, 30, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RateLimitConfigFrom(tt.in)
			if got.RequestsPerMinute != tt.wantRPM || got.BurstSize != tt.wantBurst {
				t.Errorf("RateLimitConfigFrom() = %+v, want rpm=%d burst=%d", got, tt.wantRPM, tt.wantBurst)
			}
		})
	}
}

func TestAuthRateLimitConfig(t *testing.T) {
	cfg := AuthRateLimitConfig()
	if cfg.RequestsPerMinute != 10 || cfg.BurstSize != 5 {
		t.Errorf("AuthRateLimitConfig() = %+v", cfg)
	}
}

func TestNewLimiter(t *testing.T) {
	cfg := DefaultRateLimitConfig()

	l, err := NewLimiter("memory", cfg, nil)
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	l.Stop()
	if _, ok := l.(*RateLimiter); !ok {
		t.Errorf("memory backend = %T, want *RateLimiter", l)
	}

	if _, err := NewLimiter("redis", cfg, nil); err == nil {
		t.Error("redis backend without client: expected error")
	}

	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()
	l, err = NewLimiter("redis", cfg, client)
	if err != nil {
		t.Fatalf("redis: %v", err)
	}
	if _, ok := l.(*RedisLimiter); !ok {
		t.Errorf("redis backend = %T, want *RedisLimiter", l)
	}

	if _, err := NewLimiter("memcached", cfg, nil); err == nil {
		t.Error("unknown backend: expected error")
	}
}

// ---------------------------------------------------------------------------
// RateLimiter.Allow
// ---------------------------------------------------------------------------

func newTestLimiter(rpm, burst int) *RateLimiter {
	return NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: rpm,
		BurstSize:         burst,
		CleanupInterval:   time.Hour,
	})
}

func allow(t *testing.T, l Limiter, key string) Decision {
	t.Helper()
	d, err := l.Allow(context.Background(), key)
	if err != nil {
		t.Fatalf("Allow(%q) error: %v", key, err)
	}
	return d
}

func TestRateLimiter_AllowsUpToBurst(t *testing.T) {
	rl := newTestLimiter(1, 3)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		d := allow(t, rl, "burst")
		if !d.Allowed {
			t.Fatalf("request %d denied within burst", i+1)
		}
		if d.Remaining != 2-i {
			t.Errorf("request %d remaining = %d, want %d", i+1, d.Remaining, 2-i)
		}
	}

	d := allow(t, rl, "burst")
	if d.Allowed {
		t.Fatal("request beyond burst was allowed")
	}
	if d.RetryAfter <= 0 {
		t.Errorf("RetryAfter = %v, want > 0", d.RetryAfter)
	}
}

func TestRateLimiter_TokensRefillOverTime(t *testing.T) {
	rl := newTestLimiter(6000, 1) // 100 tokens per second
	defer rl.Stop()

	if !allow(t, rl, "refill").Allowed {
		t.Fatal("first request denied")
	}
	if allow(t, rl, "refill").Allowed {
		t.Fatal("second immediate request allowed with burst 1")
	}
	time.Sleep(50 * time.Millisecond)
	if !allow(t, rl, "refill").Allowed {
		t.Error("request after refill interval denied")
	}
}

func TestRateLimiter_DifferentKeysAreIndependent(t *testing.T) {
	rl := newTestLimiter(1, 1)
	defer rl.Stop()

	allow(t, rl, "a")
	if allow(t, rl, "a").Allowed {
		t.Fatal("key a should be exhausted")
	}
	if !allow(t, rl, "b").Allowed {
		t.Error("key b should be unaffected by key a")
	}
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := newTestLimiter(60, 5)
	rl.Stop()
	rl.Stop()
}

func TestRateLimiter_CleanupRemovesStaleEntries(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{RequestsPerMinute: 60, BurstSize: 5, CleanupInterval: 10 * time.Millisecond})
	defer rl.Stop()

	allow(t, rl, "stale")
	rl.mu.Lock()
	rl.entries["stale"].lastUpdate = time.Now().Add(-11 * time.Minute)
	rl.mu.Unlock()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		rl.mu.Lock()
		_, ok := rl.entries["stale"]
		rl.mu.Unlock()
		if !ok {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("stale entry was not removed by cleanup")
}

// ---------------------------------------------------------------------------
// getRateLimitKey
// ---------------------------------------------------------------------------

func keyFor(setup func(c *gin.Context)) string {
	var key string
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		setup(c)
		key = getRateLimitKey(c)
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.8:5555"
	r.ServeHTTP(httptest.NewRecorder(), req)
	return key
}

func TestGetRateLimitKey(t *testing.T) {
	if got := keyFor(func(c *gin.Context) { c.Set(UserIDKey, int64(42)) }); got != "user:42" {
		t.Errorf("user key = %q, want user:42", got)
	}
	if got := keyFor(func(c *gin.Context) {}); got != "ip:10.0.0.8" {
		t.Errorf("ip key = %q, want ip:10.0.0.8", got)
	}
	if got := keyFor(func(c *gin.Context) { c.Set(UserIDKey, "42") }); got != "ip:10.0.0.8" {
		t.Errorf("non-int64 user id key = %q, want ip fallback", got)
	}
}

// ---------------------------------------------------------------------------
// RateLimitMiddleware
// ---------------------------------------------------------------------------

func newRateLimitRouter(limiter Limiter) *gin.Engine {
	r := gin.New()
	r.Use(RateLimitMiddleware(limiter))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestRateLimitMiddleware_AllowedThenBlocked(t *testing.T) {
	rl := newTestLimiter(30, 1)
	defer rl.Stop()
	r := newRateLimitRouter(rl)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("first status = %d, want 200", w.Code)
	}
	if got := w.Header().Get("X-RateLimit-Limit"); got != "30" {
		t.Errorf("X-RateLimit-Limit = %q, want 30", got)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d, want 429", w.Code)
	}
	retry, err := strconv.Atoi(w.Header().Get("Retry-After"))
	if err != nil || retry < 1 {
		t.Errorf("Retry-After = %q, want positive integer", w.Header().Get("Retry-After"))
	}
	if got := w.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Errorf("X-RateLimit-Remaining = %q, want 0", got)
	}
}

func TestRateLimitMiddleware_RedisUnavailableFailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	r := newRateLimitRouter(NewRedisLimiter(client, DefaultRateLimitConfig(), "test:"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 when the limiter backend is down", w.Code)
	}
}
