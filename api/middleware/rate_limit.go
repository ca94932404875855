package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kabisoft/kabipos-backend/api/responses"
	"github.com/kabisoft/kabipos-backend/internal/tenants"
	pkgerrors "github.com/kabisoft/kabipos-backend/pkg/errors"
	"github.com/kabisoft/kabipos-backend/pkg/logger"
	"github.com/kabisoft/kabipos-backend/pkg/metrics"
)

const maxRateLimitBody = 1 << 16

// RateLimitStore is the counter surface of the Redis client.
type RateLimitStore interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	TTL(ctx context.Context, key string) (time.Duration, error)
	RateLimitKey(parts ...string) string
}

// RateLimitPolicy defines the throttling parameters for a traffic surface.
type RateLimitPolicy struct {
	name       string
	window     time.Duration
	ipLimit    int
	emailLimit int
}

// NewRateLimitPolicy builds a policy with the supplied window and limits. A
// zero limit disables that dimension.
func NewRateLimitPolicy(name string, window time.Duration, ipLimit, emailLimit int) RateLimitPolicy {
	return RateLimitPolicy{
		name:       strings.ToLower(strings.TrimSpace(name)),
		window:     window,
		ipLimit:    ipLimit,
		emailLimit: emailLimit,
	}
}

func (p RateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.emailLimit > 0)
}

func (p RateLimitPolicy) normalizedName() string {
	if p.name == "" {
		return "api"
	}
	return p.name
}

// RateLimiter enforces fixed-window counters in Redis. Store failures let
// the request through.
type RateLimiter struct {
	store   RateLimitStore
	logg    *logger.Logger
	metrics *metrics.AuthMetrics
}

// NewRateLimiter binds the counter store used by every policy.
func NewRateLimiter(store RateLimitStore, logg *logger.Logger, m *metrics.AuthMetrics) *RateLimiter {
	return &RateLimiter{store: store, logg: logg, metrics: m}
}

// Limit returns middleware applying policy per client IP and, when the
// policy has an email limit, per hashed email found in the JSON body.
func (l *RateLimiter) Limit(policy RateLimitPolicy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if l == nil || l.store == nil || !policy.enabled() {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if policy.ipLimit > 0 {
				if ip := clientIP(r); ip != "" {
					key := l.store.RateLimitKey("ip", policy.normalizedName(), ip)
					if !l.check(ctx, w, policy, key, "ip", policy.ipLimit) {
						return
					}
				}
			}

			if policy.emailLimit > 0 && r.Body != nil {
				body, err := io.ReadAll(io.LimitReader(r.Body, maxRateLimitBody))
				if err != nil {
					responses.WriteError(ctx, l.logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))

				if email := tenants.NormalizeEmail(extractEmail(body)); email != "" {
					key := l.store.RateLimitKey("email", policy.normalizedName(), hashValue(email))
					if !l.check(ctx, w, policy, key, "email", policy.emailLimit) {
						return
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// check increments key and reports whether the request may continue. It has
// already answered the request when it returns false.
func (l *RateLimiter) check(ctx context.Context, w http.ResponseWriter, policy RateLimitPolicy, key, scope string, limit int) bool {
	count, err := l.store.IncrWithTTL(ctx, key, policy.window)
	if err != nil {
		if l.logg != nil {
			logCtx := l.logg.WithFields(ctx, map[string]any{
				"policy": policy.normalizedName(),
				"scope":  scope,
				"error":  err.Error(),
			})
			l.logg.Warn(logCtx, "rate_limit.store_unavailable")
		}
		return true
	}
	if count <= int64(limit) {
		return true
	}

	retryAfter := policy.window
	if ttl, err := l.store.TTL(ctx, key); err == nil && ttl > 0 {
		retryAfter = ttl
	}
	seconds := int(retryAfter.Round(time.Second) / time.Second)
	if seconds < 1 {
		seconds = 1
	}

	l.metrics.RateLimited(policy.normalizedName())
	if l.logg != nil {
		logCtx := l.logg.WithFields(ctx, map[string]any{
			"scope":          scope,
			"policy":         policy.normalizedName(),
			"attempts":       count,
			"limit":          limit,
			"window_seconds": int(policy.window.Seconds()),
		})
		l.logg.Warn(logCtx, "rate_limit.blocked")
	}

	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many requests, please try again later").
		WithDetails(map[string]any{"retry_after_seconds": seconds}))
	return false
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func extractEmail(payload []byte) string {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return body.Email
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
