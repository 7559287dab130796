// Package ratelimit throttles statistics uploads per client IP.
package ratelimit

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Clock interface for testing time-dependent behavior.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Config holds rate limit configuration.
type Config struct {
	RequestsPerMinute int           // Sustained uploads per client (default: 30)
	Burst             int           // Uploads allowed back to back (default: 10)
	IdleTTL           time.Duration // Clients idle this long are dropped by Sweep (default: 15m)

	// Clock for testing (nil uses real time)
	Clock Clock
}

// DefaultConfig returns production-ready defaults.
func DefaultConfig() *Config {
	return &Config{
		RequestsPerMinute: 30,
		Burst:             10,
		IdleTTL:           15 * time.Minute,
	}
}

// LimitResult contains the result of a rate limit check.
type LimitResult struct {
	Allowed    bool
	RetryAfter time.Duration
	Reason     string // For logging
}

type entry struct {
	bucket *rate.Limiter
	lastAt time.Time
}

// Limiter keeps one token bucket per client.
type Limiter struct {
	config *Config
	clock  Clock
	every  rate.Limit

	mu      sync.Mutex
	clients map[string]*entry // keyed by hash of the client IP
}

// New creates a new rate limiter with the given config.
func New(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg = withDefaults(*cfg)
	clock := cfg.Clock
	if clock == nil {
		clock = realClock{}
	}
	return &Limiter{
		config:  cfg,
		clock:   clock,
		every:   rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute)),
		clients: make(map[string]*entry),
	}
}

// withDefaults fills unset limits on a copy; the caller's Config is never
// modified.
func withDefaults(cfg Config) *Config {
	defaults := DefaultConfig()
	if cfg.RequestsPerMinute <= 0 || cfg.Burst <= 0 {
		cfg.RequestsPerMinute, cfg.Burst = defaults.RequestsPerMinute, defaults.Burst
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = defaults.IdleTTL
	}
	return &cfg
}

// Allow consumes one token for ip if available.
func (l *Limiter) Allow(ip string) LimitResult {
	now := l.clock.Now()
	key := hashKey("upload:ip:", ip)

	l.mu.Lock()
	defer l.mu.Unlock()

	e := l.clients[key]
	if e == nil {
		e = &entry{bucket: rate.NewLimiter(l.every, l.config.Burst)}
		l.clients[key] = e
	}
	e.lastAt = now

	reservation := e.bucket.ReserveN(now, 1)
	if !reservation.OK() {
		return LimitResult{Allowed: false, Reason: "burst_exceeded"}
	}
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return LimitResult{
			Allowed:    false,
			RetryAfter: delay,
			Reason:     "rate_limit",
		}
	}
	return LimitResult{Allowed: true}
}

// Sweep drops clients idle for longer than IdleTTL and returns how many
// were removed.
func (l *Limiter) Sweep() int {
	now := l.clock.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for k, e := range l.clients {
		if now.Sub(e.lastAt) > l.config.IdleTTL {
			delete(l.clients, k)
			removed++
		}
	}
	return removed
}

// Len is the number of tracked clients.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// Middleware rejects requests over the limit with 429 and a Retry-After header.
func (l *Limiter) Middleware(trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := GetClientIP(r, trustProxy)
			result := l.Allow(ip)
			if !result.Allowed {
				log.Ctx(r.Context()).Warn().
					Str("event", "rate_limit_exceeded").
					Str("ip", ip).
					Str("reason", result.Reason).
					Dur("retry_after", result.RetryAfter).
					Msg("Upload rate limit exceeded")

				seconds := int(result.RetryAfter.Round(time.Second) / time.Second)
				if seconds < 1 {
					seconds = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func hashKey(prefix, value string) string {
	hash := sha256.Sum256([]byte(value))
	return prefix + hex.EncodeToString(hash[:8])
}

// GetClientIP extracts the client IP from a request.
// When trustProxy is true, uses the rightmost public IP from X-Forwarded-For.
// When trustProxy is false, ignores forwarding headers entirely.
func GetClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			parts := strings.Split(xff, ",")
			for i := len(parts) - 1; i >= 0; i-- {
				ip := strings.TrimSpace(parts[i])
				if ip != "" && !isPrivateIP(ip) {
					return ip
				}
			}
			// All IPs are private, use the last one
			return strings.TrimSpace(parts[len(parts)-1])
		}

		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr might not have a port (e.g., Unix socket or malformed)
		return r.RemoteAddr
	}
	return ip
}

var privateNetworks []*net.IPNet

func init() {
	for _, cidr := range []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"127.0.0.0/8",
		"::1/128",
		"fc00::/7",
		"fe80::/10",
	} {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic("invalid private CIDR: " + cidr)
		}
		privateNetworks = append(privateNetworks, network)
	}
}

// isPrivateIP checks if an IP is in a private/reserved range, including
// IPv4-mapped IPv6 addresses.
func isPrivateIP(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}
	if ipv4 := ip.To4(); ipv4 != nil {
		ip = ipv4
	}
	for _, network := range privateNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
