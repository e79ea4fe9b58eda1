package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health reports liveness with a plain "ok".  It does not touch the store.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
