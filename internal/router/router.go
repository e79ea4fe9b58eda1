package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/lost-and-found/internal/handler"
)

// Handlers groups the handlers served by the API.
type Handlers struct {
	Auth   *handler.AuthHandler
	Items  *handler.ItemHandler
	Claims *handler.ClaimHandler
}

// RegisterRoutes maps every endpoint onto e.  None of the routes require a
// session; user ids travel in request bodies.
func RegisterRoutes(e *echo.Echo, h Handlers) {
	// liveness probe for load balancers and monitoring
	e.GET("/healthz", handler.Health)

	e.POST("/register", h.Auth.Register)
	e.POST("/login", h.Auth.Login)

	items := e.Group("/items")
	items.GET("", h.Items.ListItems)
	items.POST("/lost", h.Items.ReportLost)
	items.GET("/lost", h.Items.SearchLost)
	items.GET("/lost/:id", h.Items.GetLost)
	items.POST("/found", h.Items.ReportFound)
	items.GET("/found", h.Items.SearchFound)
	items.GET("/found/:id", h.Items.GetFound)
	items.POST("/:id/claim", h.Claims.Claim)
}
