package middleware

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"housemonitor/internal/security"
	"housemonitor/internal/session/domain"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	if SessionFrom(ctx) != nil || RequestIDFrom(ctx) != "" || ClientIPFrom(ctx) != "" {
		t.Fatal("empty context should yield zero values")
	}
	s := &domain.Session{ID: "sid"}
	ctx = WithSession(ctx, s)
	ctx = WithRequestID(ctx, "rid")
	ctx = WithClientIP(ctx, "10.0.0.1")
	if SessionFrom(ctx) != s {
		t.Error("SessionFrom did not return stored session")
	}
	if RequestIDFrom(ctx) != "rid" || ClientIPFrom(ctx) != "10.0.0.1" {
		t.Errorf("request id = %q, ip = %q", RequestIDFrom(ctx), ClientIPFrom(ctx))
	}
}

func TestRequireAPIKey(t *testing.T) {
	v := security.NewVerifier("node-secret", "", "", nil)
	h := RequireAPIKey(v)(okHandler)

	testCases := []struct {
		name string
		key  string
		want int
	}{
		{"valid", "node-secret", http.StatusOK},
		{"wrong", "other", http.StatusUnauthorized},
		{"missing", "", http.StatusUnauthorized},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/climate", nil)
			if tc.key != "" {
				req.Header.Set(APIKeyHeader, tc.key)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
			if tc.want == http.StatusUnauthorized && rec.Body.Len() != 0 {
				t.Errorf("401 body should be empty, got %q", rec.Body.String())
			}
		})
	}
}

func TestRequireAPIKey_Unconfigured(t *testing.T) {
	h := RequireAPIKey(security.NewVerifier("", "", "", nil))(okHandler)
	req := httptest.NewRequest(http.MethodPost, "/api/motion", nil)
	req.Header.Set(APIKeyHeader, "")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequestID(t *testing.T) {
	var gotID, gotIP string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = RequestIDFrom(r.Context())
		gotIP = ClientIPFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if gotID == "" || rec.Header().Get(RequestIDHeader) != gotID {
		t.Errorf("generated id = %q, header = %q", gotID, rec.Header().Get(RequestIDHeader))
	}
	if gotIP != "192.0.2.7" {
		t.Errorf("ip = %q, want 192.0.2.7", gotIP)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "upstream-1")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if gotID != "upstream-1" {
		t.Errorf("inbound id not reused: %q", gotID)
	}
}

func TestClientIP(t *testing.T) {
	testCases := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded header ignored", map[string]string{"X-Forwarded-For": "203.0.113.1, 10.0.0.1"}, "10.0.0.2:1", "10.0.0.2"},
		{"real ip ignored", map[string]string{"X-Real-Ip": "203.0.113.9"}, "10.0.0.2:1", "10.0.0.2"},
		{"remote addr", nil, "198.51.100.4:80", "198.51.100.4"},
		{"remote without port", nil, "198.51.100.4", "198.51.100.4"},
		{"nothing", nil, "", "unknown"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remote
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			if got := ClientIP(req); got != tc.want {
				t.Errorf("ClientIP = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := RequestID(Logger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("log entries = %d, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["method"] != "GET" || fields["path"] != "/dashboard" {
		t.Errorf("fields = %v", fields)
	}
	if fields["status"] != int64(http.StatusTeapot) {
		t.Errorf("status = %v", fields["status"])
	}
	if fields["request_id"] == "" {
		t.Error("request_id missing")
	}
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	want := map[string]string{
		"X-Content-Type-Options":    "nosniff",
		"X-Frame-Options":           "DENY",
		"X-XSS-Protection":          "1; mode=block",
		"Strict-Transport-Security": "max-age=31536000; includeSubDomains",
	}
	for k, v := range want {
		if got := rec.Header().Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
}

func TestRedirectHTTPS(t *testing.T) {
	h := RedirectHTTPS(okHandler)

	req := httptest.NewRequest(http.MethodGet, "http://house.local/dashboard?action=climate", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusMovedPermanently {
		t.Fatalf("status = %d, want 301", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "https://house.local/dashboard?action=climate" {
		t.Errorf("Location = %q", loc)
	}

	req = httptest.NewRequest(http.MethodGet, "http://house.local/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("forwarded https status = %d, want 200", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "https://house.local/", nil)
	req.TLS = &tls.ConnectionState{}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("tls status = %d, want 200", rec.Code)
	}
}

type memCounter struct {
	hits map[string]int64
	err  error
}

func (c *memCounter) Hit(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if c.err != nil {
		return 0, 0, c.err
	}
	if c.hits == nil {
		c.hits = map[string]int64{}
	}
	c.hits[key]++
	return c.hits[key], window, nil
}

func TestRateLimit(t *testing.T) {
	counter := &memCounter{}
	h := RateLimit(counter, 2, time.Minute, "login", zap.NewNop())(okHandler)

	do := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}
	for i := 0; i < 2; i++ {
		if rec := do("10.0.0.1"); rec.Code != http.StatusOK {
			t.Fatalf("attempt %d status = %d", i+1, rec.Code)
		}
	}
	rec := do("10.0.0.1")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third attempt status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q", rec.Header().Get("Retry-After"))
	}
	if rec := do("10.0.0.2"); rec.Code != http.StatusOK {
		t.Errorf("other client status = %d, want 200", rec.Code)
	}
	if _, ok := counter.hits["login:ip:10.0.0.1"]; !ok {
		t.Errorf("unexpected keys %v", counter.hits)
	}
}

func TestRateLimit_RotatingForwardedForSameSocket(t *testing.T) {
	h := RequestID(RateLimit(&memCounter{}, 2, time.Minute, "login", zap.NewNop())(okHandler))
	for i := 0; i < 6; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "203.0.113.9:40000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		req.Header.Set("X-Real-Ip", fmt.Sprintf("198.51.100.%d", i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		want := http.StatusOK
		if i >= 2 {
			want = http.StatusTooManyRequests
		}
		if rec.Code != want {
			t.Fatalf("attempt %d status = %d, want %d", i+1, rec.Code, want)
		}
	}
}

func TestParseTrustedProxies(t *testing.T) {
	nets, err := ParseTrustedProxies([]string{"10.0.0.1", " 172.16.0.0/12 ", "", "::1"})
	if err != nil {
		t.Fatalf("ParseTrustedProxies: %v", err)
	}
	if len(nets) != 3 {
		t.Fatalf("got %d networks, want 3", len(nets))
	}
	for _, bad := range []string{"proxy.local", "10.0.0.0/33"} {
		if _, err := ParseTrustedProxies([]string{bad}); err == nil {
			t.Errorf("ParseTrustedProxies(%q) should fail", bad)
		}
	}
}

func TestTrustProxies(t *testing.T) {
	trusted, err := ParseTrustedProxies([]string{"10.0.0.0/8"})
	if err != nil {
		t.Fatalf("ParseTrustedProxies: %v", err)
	}
	var gotIP string
	h := TrustProxies(trusted)(RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIP = ClientIPFrom(r.Context())
	})))

	testCases := []struct {
		name   string
		remote string
		xff    string
		want   string
	}{
		{"trusted proxy forwards client", "10.1.2.3:443", "203.0.113.5, 10.1.2.3", "203.0.113.5"},
		{"untrusted peer keeps socket ip", "198.51.100.7:5000", "203.0.113.5", "198.51.100.7"},
		{"trusted proxy without header", "10.1.2.3:443", "", "10.1.2.3"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remote
			if tc.xff != "" {
				req.Header.Set("X-Forwarded-For", tc.xff)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)
			if gotIP != tc.want {
				t.Errorf("client ip = %q, want %q", gotIP, tc.want)
			}
		})
	}
}

func TestTrustProxies_NoneConfigured(t *testing.T) {
	var gotIP string
	h := TrustProxies(nil)(RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIP = ClientIPFrom(r.Context())
	})))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.2.3:443"
	req.Header.Set("X-Forwarded-For", "203.0.113.5")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if gotIP != "10.1.2.3" {
		t.Errorf("client ip = %q, want 10.1.2.3", gotIP)
	}
}

func TestRateLimit_FailsOpen(t *testing.T) {
	h := RateLimit(&memCounter{err: errors.New("redis down")}, 1, time.Minute, "login", zap.NewNop())(okHandler)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRedisCounter(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping integration test")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not reachable: %v", err)
	}
	key := "hm:test:ratelimit:" + time.Now().Format("150405.000000")
	defer client.Del(ctx, key)

	c := NewRedisCounter(client)
	for want := int64(1); want <= 3; want++ {
		n, ttl, err := c.Hit(ctx, key, time.Minute)
		if err != nil {
			t.Fatalf("Hit: %v", err)
		}
		if n != want {
			t.Errorf("count = %d, want %d", n, want)
		}
		if ttl <= 0 || ttl > time.Minute {
			t.Errorf("ttl = %v", ttl)
		}
	}
}
