package http

import "github.com/labstack/echo/v4"

// Handler registers a route tree on the server's Echo instance. The API
// handler is injected through this so pkg/http stays free of domain imports.
type Handler interface {
	RegisterRoutes(e *echo.Echo)
}
