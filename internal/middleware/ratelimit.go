package middleware

import (
    "fmt"
    "math"
    "net/http"
    "strconv"
    "strings"
    "sync"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "github.com/sirupsen/logrus"
    "golang.org/x/time/rate"

    "github.com/iliyamo/parking-registry/internal/config"
)

var limiterScript = redis.NewScript(`
    local key = KEYS[1]
    local now_ms = tonumber(ARGV[1])
    local capacity = tonumber(ARGV[2])
    local refill_tokens = tonumber(ARGV[3])
    local interval_ms = tonumber(ARGV[4])
    local ttl_seconds = tonumber(ARGV[5])

    local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
    local tokens = tonumber(state[1])
    local last_refill = tonumber(state[2])

    if tokens == nil or last_refill == nil then
        tokens = capacity
        last_refill = now_ms
    end

    if interval_ms > 0 and refill_tokens > 0 then
        local elapsed = math.max(0, now_ms - last_refill)
        local intervals = math.floor(elapsed / interval_ms)
        if intervals > 0 then
            tokens = math.min(capacity, tokens + (intervals * refill_tokens))
            last_refill = last_refill + (intervals * interval_ms)
        end
    end

    local allowed = 0
    local retry_after_ms = 0
    if tokens > 0 then
        allowed = 1
        tokens = tokens - 1
    else
        local until_next = interval_ms - (now_ms - last_refill)
        if until_next < 0 then until_next = 0 end
        retry_after_ms = until_next
    end

    redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
    redis.call('EXPIRE', key, ttl_seconds)

    return { allowed, tokens, retry_after_ms }
`)

// decision is the outcome of one bucket check.
type decision struct {
    allowed   bool
    remaining int64
    retry     time.Duration
}

// NewTokenBucket limits requests per key.  With a Redis client the bucket
// lives in Redis and is shared across instances; without one, or when a
// Redis call fails, a per-process x/time/rate limiter with the same
// capacity and refill rate is used.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, log *logrus.Logger) echo.MiddlewareFunc {
    if !cfg.Enabled {
        return passthrough
    }
    local := newLocalBuckets(cfg)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := buildRateKey(cfg, c)

            var (
                d   decision
                err error
            )
            if rdb != nil {
                d, err = redisTake(c, rdb, cfg, key)
                if err != nil {
                    log.WithError(err).WithField("key", key).Warn("ratelimit: redis unavailable, using local bucket")
                }
            }
            if rdb == nil || err != nil {
                d = local.take(key, time.Now())
            }

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(d.remaining, 10))
            if d.allowed {
                return next(c)
            }

            secs := int(math.Ceil(d.retry.Seconds()))
            if secs < 1 {
                secs = 1
            }
            h.Set("Retry-After", strconv.Itoa(secs))
            return c.JSON(http.StatusTooManyRequests, echo.Map{
                "error":       "rate limit exceeded",
                "retry_after": secs,
            })
        }
    }
}

func redisTake(c echo.Context, rdb *redis.Client, cfg config.RateLimitConfig, key string) (decision, error) {
    args := []interface{}{
        time.Now().UnixMilli(),
        cfg.Capacity,
        cfg.RefillTokens,
        cfg.RefillInterval.Milliseconds(),
        int64(cfg.TTL / time.Second),
    }
    vals, err := limiterScript.Run(c.Request().Context(), rdb, []string{key}, args...).Result()
    if err != nil {
        return decision{}, err
    }
    arr, ok := vals.([]interface{})
    if !ok || len(arr) != 3 {
        return decision{}, fmt.Errorf("unexpected script result %#v", vals)
    }
    return decision{
        allowed:   asInt64(arr[0]) == 1,
        remaining: asInt64(arr[1]),
        retry:     time.Duration(asInt64(arr[2])) * time.Millisecond,
    }, nil
}

func asInt64(v interface{}) int64 {
    switch t := v.(type) {
    case int64:
        return t
    case int:
        return int64(t)
    case float64:
        return int64(t)
    case string:
        if n, err := strconv.ParseInt(t, 10, 64); err == nil {
            return n
        }
    }
    return 0
}

// localBuckets keeps one rate.Limiter per key and evicts idle ones.
type localBuckets struct {
    mu      sync.Mutex
    limit   rate.Limit
    burst   int
    idle    time.Duration
    buckets map[string]*localBucket
    swept   time.Time
}

type localBucket struct {
    limiter  *rate.Limiter
    lastSeen time.Time
}

func newLocalBuckets(cfg config.RateLimitConfig) *localBuckets {
    return &localBuckets{
        limit:   rate.Limit(float64(cfg.RefillTokens) / cfg.RefillInterval.Seconds()),
        burst:   cfg.Capacity,
        idle:    cfg.TTL,
        buckets: make(map[string]*localBucket),
    }
}

func (l *localBuckets) take(key string, now time.Time) decision {
    l.mu.Lock()
    defer l.mu.Unlock()

    if now.Sub(l.swept) > l.idle {
        for k, b := range l.buckets {
            if now.Sub(b.lastSeen) > l.idle {
                delete(l.buckets, k)
            }
        }
        l.swept = now
    }

    b, ok := l.buckets[key]
    if !ok {
        b = &localBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
        l.buckets[key] = b
    }
    b.lastSeen = now

    if b.limiter.AllowN(now, 1) {
        return decision{allowed: true, remaining: int64(b.limiter.TokensAt(now))}
    }
    r := b.limiter.ReserveN(now, 1)
    retry := r.DelayFrom(now)
    r.CancelAt(now)
    return decision{retry: retry}
}

// buildRateKey derives the bucket key.  The limiter runs before AdminAuth, so
// only request attributes are available; unknown strategies use ip_route.
func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    route := c.Request().Method + " " + c.Path()

    parts := []string{cfg.Prefix}
    switch strings.ToLower(cfg.KeyStrategy) {
    case "ip":
        parts = append(parts, "ip", ip)
    case "route":
        parts = append(parts, "route", route)
    default:
        parts = append(parts, "ip", ip, "route", route)
    }
    return strings.Join(parts, ":")
}
