package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// CORS header values sent on every response.
const (
	AllowOrigin  = "*"
	AllowMethods = "GET, POST, PUT, DELETE, OPTIONS"
	AllowHeaders = "Content-Type, Authorization, X-API-Key"
	// MaxAge is the preflight cache lifetime in seconds (24h).
	MaxAge = "86400"
)

// SetCORSHeaders writes the shared CORS header set onto h.
func SetCORSHeaders(h http.Header) {
	h.Set(echo.HeaderAccessControlAllowOrigin, AllowOrigin)
	h.Set(echo.HeaderAccessControlAllowMethods, AllowMethods)
	h.Set(echo.HeaderAccessControlAllowHeaders, AllowHeaders)
}

// CORS answers every OPTIONS request with 200 and an empty body, and stamps
// the CORS header set on all other responses before the handler runs, so
// error responses written later carry it too.
//
// Register it with Echo#Pre: preflights must be answered before routing.
func CORS() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method == http.MethodOptions {
				return Preflight(c)
			}

			SetCORSHeaders(c.Response().Header())
			return next(c)
		}
	}
}

// Preflight writes the preflight answer: 200, CORS headers with max-age, no body.
func Preflight(c echo.Context) error {
	h := c.Response().Header()
	SetCORSHeaders(h)
	h.Set(echo.HeaderAccessControlMaxAge, MaxAge)
	return c.NoContent(http.StatusOK)
}
