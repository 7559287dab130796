package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// mockClock is a controllable clock for testing.
type mockClock struct {
	mu  sync.Mutex
	now time.Time
}

func newMockClock() *mockClock {
	return &mockClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *mockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *mockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestAllow_BurstThenRefill(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		RequestsPerMinute: 30,
		Burst:             3,
		IdleTTL:           time.Minute,
		Clock:             clock,
	})

	ip := "203.0.113.10"
	for i := 0; i < 3; i++ {
		if result := limiter.Allow(ip); !result.Allowed {
			t.Fatalf("request %d should be allowed, got blocked: %s", i+1, result.Reason)
		}
	}

	result := limiter.Allow(ip)
	if result.Allowed {
		t.Fatal("request beyond burst should be blocked")
	}
	if result.Reason != "rate_limit" {
		t.Errorf("Expected reason 'rate_limit', got '%s'", result.Reason)
	}
	if result.RetryAfter <= 0 || result.RetryAfter > 2*time.Second {
		t.Errorf("RetryAfter = %v, want within (0, 2s]", result.RetryAfter)
	}

	// Denied requests must not push the refill further out.
	for i := 0; i < 5; i++ {
		limiter.Allow(ip)
	}

	clock.Advance(2 * time.Second)
	if result := limiter.Allow(ip); !result.Allowed {
		t.Fatalf("request after refill should be allowed, got blocked: %s", result.Reason)
	}
}

func TestAllow_ClientsAreIndependent(t *testing.T) {
	limiter := New(&Config{
		RequestsPerMinute: 1,
		Burst:             1,
		IdleTTL:           time.Minute,
		Clock:             newMockClock(),
	})

	if !limiter.Allow("203.0.113.1").Allowed {
		t.Fatal("first client should be allowed")
	}
	if limiter.Allow("203.0.113.1").Allowed {
		t.Fatal("first client should be blocked on second request")
	}
	if !limiter.Allow("203.0.113.2").Allowed {
		t.Fatal("second client should not share the first client's bucket")
	}
	if limiter.Len() != 2 {
		t.Errorf("Len() = %d, want 2", limiter.Len())
	}
}

func TestSweep(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		RequestsPerMinute: 30,
		Burst:             5,
		IdleTTL:           time.Minute,
		Clock:             clock,
	})

	limiter.Allow("203.0.113.1")
	clock.Advance(45 * time.Second)
	limiter.Allow("203.0.113.2")

	if removed := limiter.Sweep(); removed != 0 {
		t.Fatalf("Sweep() removed %d, want 0", removed)
	}

	clock.Advance(30 * time.Second)
	if removed := limiter.Sweep(); removed != 1 {
		t.Fatalf("Sweep() removed %d, want 1", removed)
	}
	if limiter.Len() != 1 {
		t.Errorf("Len() = %d, want 1", limiter.Len())
	}
}

func TestMiddleware(t *testing.T) {
	limiter := New(&Config{
		RequestsPerMinute: 1,
		Burst:             1,
		IdleTTL:           time.Minute,
		Clock:             newMockClock(),
	})

	calls := 0
	handler := limiter.Middleware(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))

	send := func() *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/api/v1/wrapped", nil)
		r.RemoteAddr = "203.0.113.7:4000"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w
	}

	if w := send(); w.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want %d", w.Code, http.StatusOK)
	}
	w := send()
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
	if got := w.Header().Get("Retry-After"); got != "60" {
		t.Errorf("Retry-After = %q, want %q", got, "60")
	}
	if calls != 1 {
		t.Errorf("handler called %d times, want 1", calls)
	}
}

func TestGetClientIP_TrustProxy(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		trustProxy bool
		expected   string
	}{
		{
			name:       "TrustProxy=true, XFF rightmost public IP",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.50, 10.0.0.1"},
			remoteAddr: "10.0.0.1:12345",
			trustProxy: true,
			expected:   "203.0.113.50",
		},
		{
			name:       "TrustProxy=true, XFF all private",
			headers:    map[string]string{"X-Forwarded-For": "192.168.1.1, 10.0.0.1"},
			remoteAddr: "10.0.0.1:12345",
			trustProxy: true,
			expected:   "10.0.0.1",
		},
		{
			name:       "TrustProxy=true, X-Real-IP",
			headers:    map[string]string{"X-Real-IP": "203.0.113.51"},
			remoteAddr: "10.0.0.1:12345",
			trustProxy: true,
			expected:   "203.0.113.51",
		},
		{
			name:       "TrustProxy=false, ignores XFF",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.50"},
			remoteAddr: "192.168.1.100:54321",
			trustProxy: false,
			expected:   "192.168.1.100",
		},
		{
			name:       "RemoteAddr without port",
			headers:    map[string]string{},
			remoteAddr: "192.168.1.100",
			trustProxy: false,
			expected:   "192.168.1.100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := http.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}

			got := GetClientIP(r, tt.trustProxy)
			if got != tt.expected {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestNew_NilConfig(t *testing.T) {
	limiter := New(nil)
	if limiter.config.RequestsPerMinute != 30 || limiter.config.Burst != 10 {
		t.Errorf("New(nil) config = %+v, want defaults", limiter.config)
	}
	if !limiter.Allow("203.0.113.1").Allowed {
		t.Error("first request with defaults should be allowed")
	}
}

func TestNew_DoesNotModifyCallerConfig(t *testing.T) {
	cfg := &Config{RequestsPerMinute: 0, Burst: 0}
	limiter := New(cfg)

	if cfg.RequestsPerMinute != 0 || cfg.Burst != 0 || cfg.IdleTTL != 0 {
		t.Errorf("caller config modified: %+v", cfg)
	}
	if limiter.config == cfg {
		t.Error("limiter must hold its own copy of the config")
	}
	if limiter.config.RequestsPerMinute != 30 || limiter.config.Burst != 10 || limiter.config.IdleTTL != 15*time.Minute {
		t.Errorf("limiter config = %+v, want defaults filled in", limiter.config)
	}
}

func TestConcurrentAccess(t *testing.T) {
	limiter := New(&Config{
		RequestsPerMinute: 60,
		Burst:             50,
		IdleTTL:           time.Minute,
		Clock:             newMockClock(),
	})

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Allow("203.0.113.9").Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 50 {
		t.Errorf("allowed = %d, want exactly the burst of 50", allowed)
	}
}

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		ip       string
		expected bool
	}{
		{"10.0.0.1", true},
		{"172.16.0.1", true},
		{"192.168.1.1", true},
		{"127.0.0.1", true},
		{"::1", true},
		{"fc00::1", true},
		{"fe80::1", true},
		{"::ffff:10.0.0.1", true},
		{"::ffff:8.8.8.8", false},
		{"203.0.113.50", false},
		{"2001:4860:4860::8888", false},
		{"invalid", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			got := isPrivateIP(tt.ip)
			if got != tt.expected {
				t.Errorf("isPrivateIP(%q) = %v, want %v", tt.ip, got, tt.expected)
			}
		})
	}
}
