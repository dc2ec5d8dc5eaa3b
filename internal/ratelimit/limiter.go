// Package ratelimit throttles expensive on-demand operations such as manual
// catalog refreshes.
package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Clock interface for testing time-dependent behavior.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Config holds rate limit configuration.
type Config struct {
	Cooldown        time.Duration // Minimum time between two operations from one client
	MaxPerHour      int           // Max operations per client per hour
	GlobalPerHour   int           // Max operations across all clients per hour, 0 disables
	TrustProxy      bool          // Read client IP from X-Forwarded-For / X-Real-IP
	CleanupInterval time.Duration

	// Clock for testing (nil uses real time)
	Clock Clock
}

// DefaultConfig returns defaults suited to catalog refreshes, which fan out to
// the remote origin.
func DefaultConfig() *Config {
	return &Config{
		Cooldown:        30 * time.Second,
		MaxPerHour:      10,
		GlobalPerHour:   60,
		CleanupInterval: 5 * time.Minute,
	}
}

// LimitResult contains the result of a rate limit check.
type LimitResult struct {
	Allowed    bool
	RetryAfter time.Duration
	Reason     string // For logging
}

type entry struct {
	count   int
	firstAt time.Time // First operation in window
	lastAt  time.Time // Most recent operation (for cooldown)
}

// Limiter tracks operations per client IP plus one global bucket.
type Limiter struct {
	config *Config
	clock  Clock
	mu     sync.RWMutex
	byIP   map[string]*entry
	global *entry

	cleanupCtx    context.Context
	cleanupCancel context.CancelFunc
	cleanupOnce   sync.Once
	cleanupWg     sync.WaitGroup
}

// New creates a new rate limiter with the given config.
func New(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = realClock{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Limiter{
		config:        cfg,
		clock:         clock,
		byIP:          make(map[string]*entry),
		cleanupCtx:    ctx,
		cleanupCancel: cancel,
	}
}

// Close stops the cleanup goroutine and releases resources.
func (l *Limiter) Close() {
	l.cleanupCancel()
	l.cleanupWg.Wait()
}

// Check reports whether an operation from ip is allowed.
// Does NOT record the attempt - call Record once the operation starts.
func (l *Limiter) Check(ip string) LimitResult {
	l.startCleanup()
	now := l.clock.Now()
	key := hashKey(ip)

	l.mu.RLock()
	defer l.mu.RUnlock()

	if e := l.byIP[key]; e != nil {
		if elapsed := now.Sub(e.lastAt); elapsed < l.config.Cooldown {
			return LimitResult{
				Allowed:    false,
				RetryAfter: l.config.Cooldown - elapsed,
				Reason:     "cooldown",
			}
		}
		if l.config.MaxPerHour > 0 && now.Sub(e.firstAt) < time.Hour && e.count >= l.config.MaxPerHour {
			return LimitResult{
				Allowed:    false,
				RetryAfter: time.Hour - now.Sub(e.firstAt),
				Reason:     "hourly_limit",
			}
		}
	}

	if e := l.global; e != nil && l.config.GlobalPerHour > 0 {
		if now.Sub(e.firstAt) < time.Hour && e.count >= l.config.GlobalPerHour {
			return LimitResult{
				Allowed:    false,
				RetryAfter: time.Hour - now.Sub(e.firstAt),
				Reason:     "global_hourly_limit",
			}
		}
	}

	return LimitResult{Allowed: true}
}

// Record counts an operation from ip.
func (l *Limiter) Record(ip string) {
	now := l.clock.Now()
	key := hashKey(ip)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.byIP[key] = bump(l.byIP[key], now)
	l.global = bump(l.global, now)
}

// Allow checks and, when allowed, records in one step.
func (l *Limiter) Allow(ip string) LimitResult {
	result := l.Check(ip)
	if result.Allowed {
		l.Record(ip)
	}
	return result
}

// ClientIP resolves the request's client address using the limiter's proxy setting.
func (l *Limiter) ClientIP(r *http.Request) string {
	return GetClientIP(r, l.config.TrustProxy)
}

func bump(e *entry, now time.Time) *entry {
	if e == nil || now.Sub(e.firstAt) >= time.Hour {
		return &entry{count: 1, firstAt: now, lastAt: now}
	}
	e.count++
	e.lastAt = now
	return e
}

func hashKey(value string) string {
	hash := sha256.Sum256([]byte(strings.TrimSpace(value)))
	return hex.EncodeToString(hash[:8])
}

func (l *Limiter) startCleanup() {
	l.cleanupOnce.Do(func() {
		interval := l.config.CleanupInterval
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		l.cleanupWg.Add(1)
		go func() {
			defer l.cleanupWg.Done()
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-l.cleanupCtx.Done():
					return
				case <-ticker.C:
					l.cleanup()
				}
			}
		}()
	})
}

func (l *Limiter) cleanup() {
	now := l.clock.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	for k, e := range l.byIP {
		if now.Sub(e.lastAt) > time.Hour {
			delete(l.byIP, k)
		}
	}
	if l.global != nil && now.Sub(l.global.firstAt) >= time.Hour {
		l.global = nil
	}
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
			return strings.TrimSpace(parts[len(parts)-1])
		}

		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		if parsed := net.ParseIP(r.RemoteAddr); parsed != nil {
			return r.RemoteAddr
		}
		if idx := strings.LastIndex(r.RemoteAddr, ":"); idx != -1 {
			candidate := r.RemoteAddr[:idx]
			if net.ParseIP(candidate) != nil {
				return candidate
			}
		}
		return r.RemoteAddr
	}
	return ip
}

var privateNetworks []*net.IPNet

func init() {
	privateRanges := []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"127.0.0.0/8",
		"::1/128",
		"fc00::/7",
		"fe80::/10",
	}
	for _, cidr := range privateRanges {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic("invalid private CIDR: " + cidr)
		}
		privateNetworks = append(privateNetworks, network)
	}
}

// isPrivateIP handles IPv4-mapped IPv6 addresses (::ffff:10.0.0.1).
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

// LogRateLimitExceeded logs a throttled operation.
func LogRateLimitExceeded(operation, ip, reason string) {
	log.Warn().
		Str("event", "rate_limit_exceeded").
		Str("operation", operation).
		Str("ip", ip).
		Str("reason", reason).
		Msg("Rate limit exceeded")
}
