package middleware

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestLogging writes one line per completed request. The websocket route
// is skipped: its request lasts the whole connection, so a latency line on
// disconnect is noise.
func RequestLogging() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Path() == "/ws" {
				return next(c)
			}

			start := time.Now()
			err := next(c)

			log.Printf("%s %s from %s - %d in %s",
				c.Request().Method,
				c.Request().RequestURI,
				c.RealIP(),
				c.Response().Status,
				time.Since(start),
			)
			return err
		}
	}
}
