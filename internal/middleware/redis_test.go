package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/lost-and-found/internal/config"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func serve(e *echo.Echo, method, target, ip string) *httptest.ResponseRecorder {
	var body *strings.Reader
	if method == http.MethodPost {
		body = strings.NewReader(`{}`)
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if ip != "" {
		req.Header.Set(echo.HeaderXRealIP, ip)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRedisCacheHitMissAndInvalidation(t *testing.T) {
	mr, rdb := newRedis(t)
	cfg := config.CacheConfig{
		Enabled:      true,
		Methods:      map[string]bool{http.MethodGet: true},
		TTL:          time.Minute,
		KeyStrategy:  "route_query",
		Prefix:       "lostfound:cache",
		MaxBodyBytes: 1 << 20,
	}

	calls := map[string]int{}
	titles := map[string]string{"1": "Keys", "2": "Wallet"}
	e := echo.New()
	e.Use(NewRedisCache(cfg, rdb, quietLogger()))
	e.GET("/items/lost/:id", func(c echo.Context) error {
		id := c.Param("id")
		calls[id]++
		return c.JSON(http.StatusOK, echo.Map{"id": id, "title": titles[id]})
	})
	e.POST("/items/lost", func(c echo.Context) error {
		titles["1"] = "Keys (renamed)"
		return c.JSON(http.StatusCreated, echo.Map{"message": "ok"})
	})
	e.POST("/items/fail", func(c echo.Context) error {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nope"})
	})

	rec := serve(e, http.MethodGet, "/items/lost/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Contains(t, rec.Body.String(), "Keys")

	rec = serve(e, http.MethodGet, "/items/lost/1", "")
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Equal(t, echo.MIMEApplicationJSON, rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Body.String(), "Keys")
	assert.Equal(t, 1, calls["1"])

	// a different id must not be served from the first id's entry
	rec = serve(e, http.MethodGet, "/items/lost/2", "")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Contains(t, rec.Body.String(), "Wallet")
	assert.Equal(t, 1, calls["2"])
	assert.Len(t, mr.Keys(), 2)

	// failed writes keep the cache
	rec = serve(e, http.MethodPost, "/items/fail", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, mr.Keys(), 2)

	rec = serve(e, http.MethodPost, "/items/lost", "")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, mr.Keys())

	rec = serve(e, http.MethodGet, "/items/lost/1", "")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Contains(t, rec.Body.String(), "Keys (renamed)")
	assert.Equal(t, 2, calls["1"])
}

func TestRedisCacheSkipsErrors(t *testing.T) {
	mr, rdb := newRedis(t)
	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{http.MethodGet: true}, Prefix: "c"}

	e := echo.New()
	e.Use(NewRedisCache(cfg, rdb, quietLogger()))
	e.GET("/items/lost/:id", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
	})

	rec := serve(e, http.MethodGet, "/items/lost/9", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, mr.Keys())
}

func TestInvalidateOnlyTouchesPrefix(t *testing.T) {
	mr, rdb := newRedis(t)
	for i := 0; i < 450; i++ {
		require.NoError(t, mr.Set(fmt.Sprintf("c:%d", i), "x"))
	}
	require.NoError(t, mr.Set("other:1", "x"))

	n, err := invalidate(t.Context(), rdb, "c")
	require.NoError(t, err)
	assert.Equal(t, 450, n)
	assert.Equal(t, []string{"other:1"}, mr.Keys())
}

func TestTokenBucketBlocksWhenEmpty(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            2 * time.Hour,
		KeyStrategy:    "ip",
		Prefix:         "lostfound:rl",
	}

	e := echo.New()
	e.Use(NewTokenBucket(cfg, rdb, quietLogger()))
	e.GET("/items", func(c echo.Context) error { return c.JSON(http.StatusOK, []int{}) })

	rec := serve(e, http.MethodGet, "/items", "10.0.0.1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))

	rec = serve(e, http.MethodGet, "/items", "10.0.0.1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = serve(e, http.MethodGet, "/items", "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "3600", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"rate limit exceeded","retry_after":3600}`, rec.Body.String())

	// other clients have their own bucket
	rec = serve(e, http.MethodGet, "/items", "10.0.0.2")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTokenBucketFailsOpenWhenRedisDown(t *testing.T) {
	mr, rdb := newRedis(t)
	mr.Close()

	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Hour, TTL: time.Hour, Prefix: "rl"}
	e := echo.New()
	e.Use(NewTokenBucket(cfg, rdb, quietLogger()))
	e.GET("/items", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/items", "").Code)
	}
}
