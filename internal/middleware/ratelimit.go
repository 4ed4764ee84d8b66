// AngelaMos | 2026
// ratelimit.go

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/carterperez-dev/staff-portal/internal/access"
	"github.com/carterperez-dev/staff-portal/internal/core"
)

// Limiter enforces request budgets in redis so they hold across instances.
// While redis is unreachable each instance falls back to its own
// token buckets.
type Limiter struct {
	remote *redis_rate.Limiter
	local  *localBuckets
}

// NewLimiter with a nil client limits in-process only.
func NewLimiter(ctx context.Context, rdb *redis.Client) *Limiter {
	l := &Limiter{local: newLocalBuckets()}
	if rdb != nil {
		l.remote = redis_rate.NewLimiter(rdb)
	}
	go l.local.sweep(ctx)
	return l
}

// PerIP applies one budget to each client address.
func (l *Limiter) PerIP(limit redis_rate.Limit) func(http.Handler) http.Handler {
	return l.middleware(func(r *http.Request) (string, redis_rate.Limit, bool) {
		return KeyByIP(r), limit, true
	})
}

// PerEndpoint is meant for unauthenticated routes that attract abuse, like
// login and anonymous feedback.
func (l *Limiter) PerEndpoint(limit redis_rate.Limit) func(http.Handler) http.Handler {
	return l.middleware(func(r *http.Request) (string, redis_rate.Limit, bool) {
		return KeyByIPAndEndpoint(r), limit, true
	})
}

// PerRole limits authenticated callers per user with a budget chosen by
// role. It must run after Authenticator; anonymous requests pass through.
func (l *Limiter) PerRole(limits map[access.Role]redis_rate.Limit) func(http.Handler) http.Handler {
	return l.middleware(func(r *http.Request) (string, redis_rate.Limit, bool) {
		id := GetIdentity(r.Context())
		if id.IsZero() {
			return "", redis_rate.Limit{}, false
		}
		limit, ok := limits[id.Role]
		if !ok {
			limit = limits[access.RoleUser]
		}
		return "ratelimit:user:" + id.UserID, limit, true
	})
}

func (l *Limiter) middleware(
	resolve func(*http.Request) (string, redis_rate.Limit, bool),
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, limit, ok := resolve(r)
			if !ok || limit.IsZero() {
				next.ServeHTTP(w, r)
				return
			}

			res := l.take(r.Context(), key, limit)
			writeRateLimitHeaders(w, res)

			if res.Allowed == 0 {
				writeRateLimited(w, res)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (l *Limiter) take(ctx context.Context, key string, limit redis_rate.Limit) *redis_rate.Result {
	if l.remote != nil {
		res, err := l.remote.Allow(ctx, key, limit)
		if err == nil {
			return res
		}
		slog.WarnContext(ctx, "redis rate limit unavailable, using local buckets",
			"key", key,
			"error", err,
		)
	}
	return l.local.take(key, limit)
}

// ClientIP prefers the address appended by the nearest proxy.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		return strings.TrimSpace(hops[len(hops)-1])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func KeyByIP(r *http.Request) string {
	return "ratelimit:ip:" + ClientIP(r)
}

// KeyByIPAndEndpoint collapses ids in the path so /feedback/{a} and
// /feedback/{b} share one budget.
func KeyByIPAndEndpoint(r *http.Request) string {
	return KeyByIP(r) + ":endpoint:" + normalizeEndpoint(r.URL.Path)
}

func normalizeEndpoint(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, seg := range segments {
		if isIdentifier(seg) {
			segments[i] = "{id}"
		}
	}
	return "/" + strings.Join(segments, "/")
}

func isIdentifier(seg string) bool {
	if _, err := uuid.Parse(seg); err == nil && len(seg) == 36 {
		return true
	}
	_, err := strconv.ParseUint(seg, 10, 64)
	return err == nil
}

func writeRateLimitHeaders(w http.ResponseWriter, res *redis_rate.Result) {
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit.Rate))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(res.ResetAfter).Unix(), 10))
	h.Set("RateLimit-Policy", fmt.Sprintf("%d;w=%d", res.Limit.Rate, int(res.Limit.Period.Seconds())))
}

func writeRateLimited(w http.ResponseWriter, res *redis_rate.Result) {
	retryAfter := max(int(res.RetryAfter.Seconds()), 1)

	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	core.JSONError(w, core.NewAppError(
		nil,
		fmt.Sprintf("rate limit exceeded, retry after %d seconds", retryAfter),
		http.StatusTooManyRequests,
		"RATE_LIMITED",
	))
}

const (
	bucketSweepInterval = 5 * time.Minute
	bucketIdleTTL       = 10 * time.Minute
)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type localBuckets struct {
	mu      sync.Mutex
	buckets map[string]*bucket
}

func newLocalBuckets() *localBuckets {
	return &localBuckets{buckets: make(map[string]*bucket)}
}

func (b *localBuckets) sweep(ctx context.Context) {
	ticker := time.NewTicker(bucketSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			b.mu.Lock()
			for key, bk := range b.buckets {
				if now.Sub(bk.lastSeen) > bucketIdleTTL {
					delete(b.buckets, key)
				}
			}
			b.mu.Unlock()
		}
	}
}

func (b *localBuckets) take(key string, limit redis_rate.Limit) *redis_rate.Result {
	perSecond := float64(limit.Rate) / limit.Period.Seconds()
	interval := time.Duration(float64(time.Second) / perSecond)

	b.mu.Lock()
	bk, ok := b.buckets[key]
	if !ok {
		bk = &bucket{limiter: rate.NewLimiter(rate.Limit(perSecond), limit.Burst)}
		b.buckets[key] = bk
	}
	bk.lastSeen = time.Now()
	allowed := bk.limiter.Allow()
	remaining := max(int(bk.limiter.Tokens()), 0)
	b.mu.Unlock()

	res := &redis_rate.Result{
		Limit:      limit,
		Remaining:  remaining,
		RetryAfter: -1,
		ResetAfter: interval,
	}
	if allowed {
		res.Allowed = 1
	} else {
		res.RetryAfter = interval
	}
	return res
}

// RoleLimits gives ADMIN twice and SUPERUSER four times the USER budget.
func RoleLimits(perMinute, burst int) map[access.Role]redis_rate.Limit {
	return map[access.Role]redis_rate.Limit{
		access.RoleUser:      PerMinute(perMinute, burst),
		access.RoleAdmin:     PerMinute(perMinute*2, burst*2),
		access.RoleSuperuser: PerMinute(perMinute*4, burst*4),
	}
}

func PerMinute(rate, burst int) redis_rate.Limit {
	return redis_rate.Limit{Rate: rate, Burst: burst, Period: time.Minute}
}

func PerHour(rate, burst int) redis_rate.Limit {
	return redis_rate.Limit{Rate: rate, Burst: burst, Period: time.Hour}
}
