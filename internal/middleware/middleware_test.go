package middleware

import (
    "bytes"
    "io"
    "net/http"
    "net/http/httptest"
    "strconv"
    "strings"
    "testing"
    "time"

    "github.com/alicebob/miniredis/v2"
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/parking-registry/internal/config"
    "github.com/iliyamo/parking-registry/internal/utils"
)

func quietLogger() *logrus.Logger {
    l := logrus.New()
    l.SetOutput(io.Discard)
    return l
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
    t.Helper()
    mr := miniredis.RunT(t)
    rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
    t.Cleanup(func() { _ = rdb.Close() })
    return mr, rdb
}

func do(e *echo.Echo, method, path string, header http.Header) *httptest.ResponseRecorder {
    req := httptest.NewRequest(method, path, nil)
    for k, v := range header {
        req.Header[k] = v
    }
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec
}

func TestRedisCacheHitAndMiss(t *testing.T) {
    _, rdb := newRedis(t)
    cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute, Prefix: "test:cache"}

    calls := 0
    e := echo.New()
    e.GET("/clients/:id", func(c echo.Context) error {
        calls++
        if c.Param("id") == "404" {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
        }
        return c.JSON(http.StatusOK, echo.Map{"id": c.Param("id")})
    }, NewRedisCache(cfg, rdb, quietLogger()))

    first := do(e, http.MethodGet, "/clients/1", nil)
    if first.Header().Get("X-Cache") != "MISS" {
        t.Errorf("expected MISS, got %q", first.Header().Get("X-Cache"))
    }
    second := do(e, http.MethodGet, "/clients/1", nil)
    if second.Header().Get("X-Cache") != "HIT" {
        t.Errorf("expected HIT, got %q", second.Header().Get("X-Cache"))
    }
    if second.Body.String() != first.Body.String() {
        t.Errorf("expected identical bodies, got %q and %q", first.Body.String(), second.Body.String())
    }
    if second.Header().Get(echo.HeaderContentType) != echo.MIMEApplicationJSON {
        t.Errorf("expected content type restored, got %q", second.Header().Get(echo.HeaderContentType))
    }

    other := do(e, http.MethodGet, "/clients/2", nil)
    if other.Header().Get("X-Cache") != "MISS" {
        t.Errorf("expected a different id to miss, got %q", other.Header().Get("X-Cache"))
    }

    do(e, http.MethodGet, "/clients/404", nil)
    if rec := do(e, http.MethodGet, "/clients/404", nil); rec.Header().Get("X-Cache") != "MISS" {
        t.Error("expected non-200 responses to stay uncached")
    }
    if calls != 4 {
        t.Errorf("expected 4 handler calls, got %d", calls)
    }
}

func TestRedisCacheDisabledWithoutClient(t *testing.T) {
    cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}}
    e := echo.New()
    e.GET("/x", func(c echo.Context) error { return c.String(http.StatusOK, "ok") }, NewRedisCache(cfg, nil, quietLogger()))
    if rec := do(e, http.MethodGet, "/x", nil); rec.Header().Get("X-Cache") != "" {
        t.Errorf("expected no cache header, got %q", rec.Header().Get("X-Cache"))
    }
}

func TestPayloadRoundTrip(t *testing.T) {
    hdr := http.Header{"Content-Type": {"application/json"}}
    bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"id":1}`))
    if err != nil {
        t.Fatal(err)
    }
    status, got, body, ok := decodePayload(bs)
    if !ok || status != http.StatusOK || got.Get("Content-Type") != "application/json" || string(body) != `{"id":1}` {
        t.Errorf("unexpected decode: %d %v %q %v", status, got, body, ok)
    }
    if _, _, _, ok := decodePayload([]byte{0, 1}); ok {
        t.Error("expected short payload to fail")
    }
}

func rateConfig(capacity int) config.RateLimitConfig {
    return config.RateLimitConfig{
        Enabled:        true,
        Capacity:       capacity,
        RefillTokens:   1,
        RefillInterval: time.Hour,
        TTL:            5 * time.Hour,
        KeyStrategy:    "ip_route",
        Prefix:         "test:rl",
    }
}

func limitedEcho(mw echo.MiddlewareFunc) *echo.Echo {
    e := echo.New()
    e.Use(mw)
    e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
    return e
}

func TestTokenBucketRedis(t *testing.T) {
    mr, rdb := newRedis(t)
    e := limitedEcho(NewTokenBucket(rateConfig(2), rdb, quietLogger()))

    for i := 0; i < 2; i++ {
        if rec := do(e, http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
            t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
        }
    }
    rec := do(e, http.MethodGet, "/healthz", nil)
    if rec.Code != http.StatusTooManyRequests {
        t.Fatalf("expected 429, got %d", rec.Code)
    }
    if secs, _ := strconv.Atoi(rec.Header().Get("Retry-After")); secs < 1 {
        t.Errorf("expected positive Retry-After, got %q", rec.Header().Get("Retry-After"))
    }
    if len(mr.Keys()) != 1 {
        t.Errorf("expected one bucket key, got %v", mr.Keys())
    }
}

func TestTokenBucketFallsBackWhenRedisDown(t *testing.T) {
    mr, rdb := newRedis(t)
    mr.Close()
    e := limitedEcho(NewTokenBucket(rateConfig(1), rdb, quietLogger()))

    if rec := do(e, http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d", rec.Code)
    }
    if rec := do(e, http.MethodGet, "/healthz", nil); rec.Code != http.StatusTooManyRequests {
        t.Errorf("expected local bucket to block, got %d", rec.Code)
    }
}

func TestTokenBucketDisabled(t *testing.T) {
    cfg := rateConfig(1)
    cfg.Enabled = false
    e := limitedEcho(NewTokenBucket(cfg, nil, quietLogger()))
    for i := 0; i < 3; i++ {
        if rec := do(e, http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
            t.Errorf("expected 200, got %d", rec.Code)
        }
    }
}

func TestLocalBucketsRefill(t *testing.T) {
    cfg := rateConfig(1)
    cfg.RefillInterval = time.Second
    l := newLocalBuckets(cfg)
    now := time.Now()

    if d := l.take("k", now); !d.allowed {
        t.Fatal("expected first take to pass")
    }
    d := l.take("k", now)
    if d.allowed || d.retry <= 0 {
        t.Fatalf("expected block with retry, got %+v", d)
    }
    if d := l.take("k", now.Add(time.Second)); !d.allowed {
        t.Error("expected refill after one interval")
    }
}

func TestAdminAuth(t *testing.T) {
    e := echo.New()
    e.POST("/parkings", func(c echo.Context) error {
        return c.String(http.StatusCreated, subject(c))
    }, AdminAuth("secret"), RequireRole(true, utils.RoleAdmin))

    if rec := do(e, http.MethodPost, "/parkings", nil); rec.Code != http.StatusUnauthorized {
        t.Errorf("expected 401 without token, got %d", rec.Code)
    }
    bad := http.Header{"Authorization": {"Bearer nope"}}
    if rec := do(e, http.MethodPost, "/parkings", bad); rec.Code != http.StatusUnauthorized {
        t.Errorf("expected 401 with bad token, got %d", rec.Code)
    }

    other, _ := utils.NewAccessToken("secret", "bob", "viewer", time.Minute)
    if rec := do(e, http.MethodPost, "/parkings", http.Header{"Authorization": {"Bearer " + other.Token}}); rec.Code != http.StatusForbidden {
        t.Errorf("expected 403 for wrong role, got %d", rec.Code)
    }

    tok, _ := utils.NewAccessToken("secret", "admin", utils.RoleAdmin, time.Minute)
    rec := do(e, http.MethodPost, "/parkings", http.Header{"Authorization": {"Bearer " + tok.Token}})
    if rec.Code != http.StatusCreated || rec.Body.String() != "admin" {
        t.Errorf("expected 201 admin, got %d %q", rec.Code, rec.Body.String())
    }
}

func TestAdminAuthDisabled(t *testing.T) {
    e := echo.New()
    e.POST("/parkings", func(c echo.Context) error {
        return c.String(http.StatusCreated, subject(c))
    }, AdminAuth(""), RequireRole(false, utils.RoleAdmin))

    rec := do(e, http.MethodPost, "/parkings", nil)
    if rec.Code != http.StatusCreated || rec.Body.String() != "anon" {
        t.Errorf("expected open route, got %d %q", rec.Code, rec.Body.String())
    }
}

func TestBuildRateKey(t *testing.T) {
    e := echo.New()
    req := httptest.NewRequest(http.MethodPost, "/parkings", nil)
    req.RemoteAddr = "10.0.0.7:5000"
    c := e.NewContext(req, httptest.NewRecorder())
    c.SetPath("/parkings")
    c.Set(ctxSubject, "admin")

    cases := map[string]string{
        "ip":         "test:rl:ip:10.0.0.7",
        "route":      "test:rl:route:POST /parkings",
        "ip_route":   "test:rl:ip:10.0.0.7:route:POST /parkings",
        "IP_ROUTE":   "test:rl:ip:10.0.0.7:route:POST /parkings",
        "ip_subject": "test:rl:ip:10.0.0.7:route:POST /parkings",
        "":           "test:rl:ip:10.0.0.7:route:POST /parkings",
    }
    for strategy, want := range cases {
        cfg := rateConfig(1)
        cfg.KeyStrategy = strategy
        if got := buildRateKey(cfg, c); got != want {
            t.Errorf("%q: expected %q, got %q", strategy, want, got)
        }
    }
}

func TestRequestLoggerSubject(t *testing.T) {
    var buf bytes.Buffer
    log := logrus.New()
    log.SetOutput(&buf)
    log.SetFormatter(&logrus.JSONFormatter{})

    e := echo.New()
    e.Use(RequestLogger(log))
    e.POST("/parkings", func(c echo.Context) error {
        return c.NoContent(http.StatusCreated)
    }, AdminAuth("secret"))
    e.GET("/healthz", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

    tok, _ := utils.NewAccessToken("secret", "admin", utils.RoleAdmin, time.Minute)
    do(e, http.MethodPost, "/parkings", http.Header{"Authorization": {"Bearer " + tok.Token}})
    do(e, http.MethodGet, "/healthz", nil)

    lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
    if len(lines) != 2 {
        t.Fatalf("expected 2 log lines, got %d: %s", len(lines), buf.String())
    }
    if !strings.Contains(lines[0], `"subject":"admin"`) {
        t.Errorf("expected admin subject, got %s", lines[0])
    }
    if !strings.Contains(lines[1], `"subject":"anon"`) {
        t.Errorf("expected anon subject, got %s", lines[1])
    }
}
