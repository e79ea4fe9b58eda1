package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, ValidationError("x").Status())
	assert.Equal(t, http.StatusBadRequest, ConflictError("x").Status())
	assert.Equal(t, http.StatusUnauthorized, AuthError("x").Status())
	assert.Equal(t, http.StatusNotFound, NotFoundError("x").Status())
	assert.Equal(t, http.StatusInternalServerError, (&Error{}).Status())
}

func TestFailHidesInternalErrors(t *testing.T) {
	log, hook := test.NewNullLogger()
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/items", nil), rec)
	require.NoError(t, fail(c, log, errors.New("dial tcp: connection refused")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/items", nil), rec)
	wrapped := fmt.Errorf("claim: %w", ConflictError("item already claimed"))
	require.NoError(t, fail(c, log, wrapped))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"item already claimed"}`, rec.Body.String())
	assert.Len(t, hook.Entries, 1)
}

func TestHTTPErrorHandler(t *testing.T) {
	log, _ := test.NewNullLogger()
	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler(log)
	e.GET("/boom", func(c echo.Context) error { return errors.New("boom") })
	e.POST("/only-post", func(c echo.Context) error { return nil })

	cases := []struct {
		method, path string
		code         int
		body         string
	}{
		{http.MethodGet, "/missing", http.StatusNotFound, `{"error":"Not Found"}`},
		{http.MethodGet, "/only-post", http.StatusMethodNotAllowed, `{"error":"Method Not Allowed"}`},
		{http.MethodGet, "/boom", http.StatusInternalServerError, `{"error":"internal server error"}`},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, tc.code, rec.Code, tc.path)
		assert.JSONEq(t, tc.body, rec.Body.String(), tc.path)
	}
}

func TestPathID(t *testing.T) {
	e := echo.New()
	for raw, ok := range map[string]bool{"1": true, "42": true, "0": false, "-3": false, "abc": false, "": false} {
		c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), httptest.NewRecorder())
		c.SetParamNames("id")
		c.SetParamValues(raw)
		_, err := pathID(c)
		assert.Equal(t, ok, err == nil, "id %q", raw)
	}
}

func TestTrimmedOrNil(t *testing.T) {
	s := func(v string) *string { return &v }

	assert.Nil(t, trimmedOrNil(nil))
	assert.Nil(t, trimmedOrNil(s("   ")))
	assert.Equal(t, "hi", *trimmedOrNil(s("  hi ")))
}
