package middleware

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func TestKeyByClientIP_IgnoresAPIKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	keyFn := KeyByClientIP()

	ctxFor := func(target, header string) *gin.Context {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		req.RemoteAddr = net.JoinHostPort("203.0.113.9", "12345")
		if header != "" {
			req.Header.Set("X-API-Key", header)
		}
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = req
		return c
	}

	for _, c := range []*gin.Context{
		ctxFor("/", ""),
		ctxFor("/?apikey=secret-key", ""),
		ctxFor("/", "secret-key"),
	} {
		if got := keyFn(c); got != "ip:203.0.113.9" {
			t.Fatalf("bucket = %q; want ip:203.0.113.9", got)
		}
	}
}

func TestRateLimiter_MadeUpKeysShareTheClientBucket(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(1, 1, nil)
	now := time.Now()
	rl.now = func() time.Time { return now }

	r := gin.New()
	r.Use(rl.Handler())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	passed := 0
	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/?apikey=guess-%d", i), nil)
		req.RemoteAddr = "198.51.100.7:4000"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code == http.StatusOK {
			passed++
		}
	}
	if passed != 1 {
		t.Fatalf("%d/50 requests passed; want only the burst of 1", passed)
	}
	if rl.Len() != 1 {
		t.Fatalf("buckets = %d; want 1", rl.Len())
	}
}

func TestRateLimiter_RejectHooksRunOnlyOnRefusal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(0, 1, nil)

	var hooked []string
	r := gin.New()
	r.Use(rl.Handler(func(c *gin.Context) { hooked = append(hooked, c.Query("apikey")) }))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, k := range []string{"first", "second"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?apikey="+k, nil))
	}
	if len(hooked) != 1 || hooked[0] != "second" {
		t.Fatalf("hook calls = %v; want [second]", hooked)
	}
}

func TestNewRateLimiter_BurstCoercionAndReuse(t *testing.T) {
	rl := NewRateLimiter(2.0, 0, nil)
	if rl.burst != 1 || rl.keyFn == nil {
		t.Fatalf("defaults not applied: burst=%d", rl.burst)
	}

	now := time.Now()
	lim := rl.limiter("k1", now)
	if got := rl.limiter("k1", now); got != lim {
		t.Fatalf("expected same limiter instance to be reused")
	}
	if rl.Len() != 1 {
		t.Fatalf("Len = %d", rl.Len())
	}
}

func TestRateLimiter_SweepEvictsIdle(t *testing.T) {
	rl := NewRateLimiter(1.0, 1, nil)
	rl.ttl = time.Minute
	now := time.Now()

	rl.mu.Lock()
	rl.visitors["old"] = &visitor{limiter: rate.NewLimiter(1, 1), lastSeen: now.Add(-time.Hour)}
	rl.visitors["fresh"] = &visitor{limiter: rate.NewLimiter(1, 1), lastSeen: now}
	rl.lookups = sweepEvery - 1
	rl.mu.Unlock()

	_ = rl.limiter("new", now)

	rl.mu.Lock()
	_, old := rl.visitors["old"]
	_, fresh := rl.visitors["fresh"]
	_, created := rl.visitors["new"]
	lookups := rl.lookups
	rl.mu.Unlock()

	if old || !fresh || !created || lookups != 0 {
		t.Fatalf("old=%v fresh=%v new=%v lookups=%d", old, fresh, created, lookups)
	}
}

func TestRateLimiter_Handler_AllowDenyRetryAfter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// One token per 2s, burst 1.
	rl := NewRateLimiter(0.5, 1, nil)
	now := time.Now()
	rl.now = func() time.Time { return now }

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Header(requestIDHeader, "rid-1"); c.Next() })
	r.Use(rl.Handler())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	do := func(target string) *httptest.ResponseRecorder {
		return doFrom(r, target, "192.0.2.1:1234")
	}

	if w := do("/?apikey=a"); w.Code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", w.Code)
	}

	w := do("/?apikey=a")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request should be limited, got %d", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "2" {
		t.Fatalf("Retry-After = %q; want 2", got)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["code"] != "too_many_requests" || body["request_id"] != "rid-1" || body["status"] != "error" {
		t.Fatalf("unexpected body: %v", body)
	}

	// A denied request must not consume the next token.
	now = now.Add(3 * time.Second)
	if w := do("/?apikey=a"); w.Code != http.StatusOK {
		t.Fatalf("token should be back after the refill period, got %d", w.Code)
	}

	// Other clients have their own bucket.
	if w := doFrom(r, "/?apikey=a", "192.0.2.99:1234"); w.Code != http.StatusOK {
		t.Fatalf("independent client limited: %d", w.Code)
	}
}

func doFrom(r http.Handler, target, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_Handler_ZeroRate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(0, 1, nil)

	r := gin.New()
	r.Use(rl.Handler())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/", nil))
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/", nil))

	if w1.Code != http.StatusOK || w2.Code != http.StatusTooManyRequests {
		t.Fatalf("codes = %d, %d", w1.Code, w2.Code)
	}
	if w2.Header().Get("Retry-After") != "60" {
		t.Fatalf("Retry-After = %q", w2.Header().Get("Retry-After"))
	}
}
