package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/lost-and-found/internal/config"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newContext(e *echo.Echo, method, target, route string) echo.Context {
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.7")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath(route)
	return c
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	c := newContext(e, http.MethodPost, "/items/3/claim", "/items/:id/claim")

	cases := map[string]string{
		"ip":       "rl:ip:10.0.0.7",
		"route":    "rl:route:POST /items/:id/claim",
		"ip_route": "rl:ip:10.0.0.7:route:POST /items/:id/claim",
		"":         "rl:ip:10.0.0.7:route:POST /items/:id/claim",
	}
	for strategy, want := range cases {
		got := buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: strategy}, c)
		assert.Equal(t, want, got, "strategy %q", strategy)
	}
}

func TestRetryAfterSeconds(t *testing.T) {
	assert.Equal(t, 0, retryAfterSeconds(0))
	assert.Equal(t, 1, retryAfterSeconds(1))
	assert.Equal(t, 2, retryAfterSeconds(1500))
	assert.Equal(t, 0, retryAfterSeconds(-20))
}

func TestCacheKeyDependsOnQuery(t *testing.T) {
	e := echo.New()
	cfg := config.CacheConfig{Prefix: "c", KeyStrategy: "route_query"}

	a := cacheKeyFrom(cfg, newContext(e, http.MethodGet, "/items/lost?q=phone", "/items/lost"))
	b := cacheKeyFrom(cfg, newContext(e, http.MethodGet, "/items/lost?q=wallet", "/items/lost"))
	a2 := cacheKeyFrom(cfg, newContext(e, http.MethodGet, "/items/lost?q=phone", "/items/lost"))

	assert.NotEqual(t, a, b)
	assert.Equal(t, a, a2)
	assert.Regexp(t, `^c:[0-9a-f]{40}$`, a)

	one := cacheKeyFrom(cfg, newContext(e, http.MethodGet, "/items/lost/1", "/items/lost/:id"))
	two := cacheKeyFrom(cfg, newContext(e, http.MethodGet, "/items/lost/2", "/items/lost/:id"))
	assert.NotEqual(t, one, two)

	cfg.KeyStrategy = "route"
	assert.Equal(t,
		cacheKeyFrom(cfg, newContext(e, http.MethodGet, "/items/lost?q=phone", "/items/lost")),
		cacheKeyFrom(cfg, newContext(e, http.MethodGet, "/items/lost?q=wallet", "/items/lost")))
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`[{"id":1}]`))
	require.NoError(t, err)

	status, gotHdr, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	assert.Equal(t, `[{"id":1}]`, string(body))

	_, _, _, ok = decodePayload([]byte{0, 0, 0, 200, 0, 0, 1, 0})
	assert.False(t, ok)
}

func TestCaptureWriterLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}
	_, _ = cw.Write([]byte("abc"))
	_, _ = cw.Write([]byte("defg"))

	assert.Equal(t, "abcd", cw.buf.String())
	assert.True(t, cw.truncated())
	assert.Equal(t, "abcdefg", rec.Body.String())
}

func TestDisabledMiddlewarePassesThrough(t *testing.T) {
	e := echo.New()
	called := 0
	h := func(c echo.Context) error { called++; return c.String(http.StatusOK, "ok") }

	rl := NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil, quietLogger())
	cache := NewRedisCache(config.CacheConfig{Enabled: true}, nil, quietLogger())

	c := newContext(e, http.MethodGet, "/items", "/items")
	require.NoError(t, rl(cache(h))(c))
	assert.Equal(t, 1, called)
	assert.Empty(t, c.Response().Header().Get("X-Cache"))
}

func TestRequestLogger(t *testing.T) {
	log, hook := test.NewNullLogger()
	e := echo.New()
	e.Use(RequestLogger(log))
	e.GET("/items", func(c echo.Context) error { return c.JSON(http.StatusOK, []int{}) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items", nil))
	rec2 := httptest.NewRecorder()
	e.ServeHTTP(rec2, httptest.NewRequest(http.MethodGet, "/nowhere", bytes.NewReader(nil)))

	require.Len(t, hook.AllEntries(), 2)
	first := hook.AllEntries()[0]
	assert.Equal(t, logrus.InfoLevel, first.Level)
	assert.Equal(t, http.StatusOK, first.Data["status"])
	assert.Equal(t, "/items", first.Data["route"])

	last := hook.LastEntry()
	assert.Equal(t, logrus.WarnLevel, last.Level)
	assert.Equal(t, http.StatusNotFound, last.Data["status"])
}
