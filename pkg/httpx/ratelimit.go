package httpx

import (
	"math"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/aussiebroadwan/taskgate/pkg/slogx"
	"golang.org/x/time/rate"
)

// RateLimitConfig is a token bucket: RequestsPerWindow refill evenly over
// Window, and at most Burst can be spent at once.
type RateLimitConfig struct {
	RequestsPerWindow int
	Window            time.Duration
	Burst             int
}

// Limit converts the config into a per-second refill rate.
func (c RateLimitConfig) Limit() rate.Limit {
	if c.Window <= 0 {
		return rate.Inf
	}
	return rate.Limit(float64(c.RequestsPerWindow) / c.Window.Seconds())
}

// RateLimits holds the per-route profiles and how client addresses are
// derived. Build it once from configuration and hand it to the router.
type RateLimits struct {
	// Strict guards login, register and refresh.
	Strict RateLimitConfig
	// Moderate guards logout and role listing.
	Moderate RateLimitConfig
	// Lenient guards the authenticated todo and userinfo endpoints.
	Lenient RateLimitConfig
	// Public guards health probes.
	Public RateLimitConfig

	// TrustProxy makes the client address come from X-Forwarded-For or
	// X-Real-IP. Only enable it behind a proxy that overwrites those
	// headers, otherwise clients pick their own bucket.
	TrustProxy bool
}

// DefaultRateLimits returns the built-in profiles with proxy headers ignored.
func DefaultRateLimits() RateLimits {
	return RateLimits{
		Strict:   RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5},
		Moderate: RateLimitConfig{RequestsPerWindow: 20, Window: time.Minute, Burst: 20},
		Lenient:  RateLimitConfig{RequestsPerWindow: 100, Window: time.Minute, Burst: 100},
		Public:   RateLimitConfig{RequestsPerWindow: 1000, Window: time.Minute, Burst: 1000},
	}
}

// RateLimitsFromEnv overlays RATELIMIT_{STRICT,MODERATE,LENIENT,PUBLIC}_* and
// RATELIMIT_TRUST_PROXY on def. Call it after any .env file is loaded.
func RateLimitsFromEnv(def RateLimits) RateLimits {
	out := RateLimits{
		Strict:     ParseRateLimitFromEnv("STRICT", def.Strict),
		Moderate:   ParseRateLimitFromEnv("MODERATE", def.Moderate),
		Lenient:    ParseRateLimitFromEnv("LENIENT", def.Lenient),
		Public:     ParseRateLimitFromEnv("PUBLIC", def.Public),
		TrustProxy: def.TrustProxy,
	}
	if v, err := strconv.ParseBool(os.Getenv("RATELIMIT_TRUST_PROXY")); err == nil {
		out.TrustProxy = v
	}
	return out
}

// ParseRateLimitFromEnv overlays RATELIMIT_{prefix}_* variables on def.
// Missing, malformed or non-positive values keep the default.
func ParseRateLimitFromEnv(prefix string, def RateLimitConfig) RateLimitConfig {
	cfg := def
	if n, ok := positiveEnvInt("RATELIMIT_" + prefix + "_REQUESTS"); ok {
		cfg.RequestsPerWindow = n
	}
	if n, ok := positiveEnvInt("RATELIMIT_" + prefix + "_WINDOW_SEC"); ok {
		cfg.Window = time.Duration(n) * time.Second
	}
	if n, ok := positiveEnvInt("RATELIMIT_" + prefix + "_BURST"); ok {
		cfg.Burst = n
	}
	return cfg
}

func positiveEnvInt(key string) (int, bool) {
	n, err := strconv.Atoi(os.Getenv(key))
	return n, err == nil && n > 0
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedLimiter holds one token bucket per key. Buckets idle for longer than
// the time it takes to refill completely are evicted, since a fresh bucket
// would behave the same.
type KeyedLimiter struct {
	cfg  RateLimitConfig
	now  func() time.Time
	idle time.Duration

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

// NewKeyedLimiter builds a limiter. now may be nil.
func NewKeyedLimiter(cfg RateLimitConfig, now func() time.Time) *KeyedLimiter {
	if now == nil {
		now = time.Now
	}
	idle := max(cfg.Window, time.Minute)
	return &KeyedLimiter{
		cfg:       cfg,
		now:       now,
		idle:      idle,
		buckets:   make(map[string]*bucket),
		lastSweep: now(),
	}
}

// Allow spends one token for key. When it refuses, retryAfter is how long
// until a token is available again.
func (l *KeyedLimiter) Allow(key string) (ok bool, remaining int, retryAfter time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	b, found := l.buckets[key]
	if !found {
		b = &bucket{limiter: rate.NewLimiter(l.cfg.Limit(), l.cfg.Burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now

	if b.limiter.AllowN(now, 1) {
		return true, int(b.limiter.TokensAt(now)), 0
	}

	missing := 1 - b.limiter.TokensAt(now)
	wait := time.Duration(math.Ceil(missing / float64(b.limiter.Limit()) * float64(time.Second)))
	return false, 0, wait
}

// Len reports how many buckets are held.
func (l *KeyedLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// sweep must be called with mu held.
func (l *KeyedLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.idle {
		return
	}
	l.lastSweep = now
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) >= l.idle {
			delete(l.buckets, key)
		}
	}
}

// RateLimitMiddleware rejects requests over the limit with 429. Requests
// for which keyFn yields no key are let through.
func RateLimitMiddleware(cfg RateLimitConfig, keyFn KeyExtractor) Middleware {
	return rateLimit(NewKeyedLimiter(cfg, nil), keyFn)
}

func rateLimit(l *KeyedLimiter, keyFn KeyExtractor) Middleware {
	limit := strconv.Itoa(l.cfg.RequestsPerWindow)
	window := l.cfg.Window.String()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFn(r)
			if key == "" {
				slogx.FromContext(r.Context()).Warn("rate limit: no key for request, allowing")
				next.ServeHTTP(w, r)
				return
			}

			ok, remaining, retryAfter := l.Allow(key)
			w.Header().Set("X-RateLimit-Limit", limit)
			w.Header().Set("X-RateLimit-Window", window)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if !ok {
				secs := max(int(math.Ceil(retryAfter.Seconds())), 1)
				w.Header().Set("Retry-After", strconv.Itoa(secs))

				slogx.FromContext(r.Context()).Warn("rate limit exceeded",
					"key", key,
					"endpoint", r.URL.Path,
					"retry_after", secs,
				)
				WriteError(w, r, http.StatusTooManyRequests, "Too many requests. Please try again later.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the address extractor matching TrustProxy.
func (l RateLimits) ClientIP() KeyExtractor {
	if l.TrustProxy {
		return ProxiedIPKeyExtractor
	}
	return IPKeyExtractor
}

// ByIP limits by client address.
func (l RateLimits) ByIP(cfg RateLimitConfig) Middleware {
	return RateLimitMiddleware(cfg, l.ClientIP())
}

// ByUser limits by authenticated user, falling back to the client address.
// It must run after Authenticate.
func (l RateLimits) ByUser(cfg RateLimitConfig) Middleware {
	return RateLimitMiddleware(cfg, FirstKey(UserIDKeyExtractor, l.ClientIP()))
}

// ByIPAndJSONField limits by client address plus a JSON body field. Login
// uses it with "email": guesses against one account from one address are
// throttled while other users behind the same NAT still get through.
func (l RateLimits) ByIPAndJSONField(cfg RateLimitConfig, fieldName string) Middleware {
	return RateLimitMiddleware(cfg, CompositeKeyExtractor(":",
		l.ClientIP(),
		JSONFieldKeyExtractor(fieldName),
	))
}
