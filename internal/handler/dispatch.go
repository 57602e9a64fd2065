// Package handler holds the HTTP entry points: the dispatcher and the
// proxy, static and health handlers it delegates to.
package handler

import (
	"github.com/labstack/echo/v4"

	"cors-devproxy/internal/config"
	"cors-devproxy/internal/middleware"
	"cors-devproxy/internal/route"
)

// Dispatcher sends each request to exactly one branch. It is a prefix test,
// not a router.
type Dispatcher struct {
	apiPrefix string
	proxy     *ProxyHandler
	static    *StaticHandler
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(cfg *config.Config, proxy *ProxyHandler, static *StaticHandler) *Dispatcher {
	return &Dispatcher{
		apiPrefix: cfg.Proxy.Prefix,
		proxy:     proxy,
		static:    static,
	}
}

// Handle delegates to the preflight responder, the proxy or the static server.
func (d *Dispatcher) Handle(c echo.Context) error {
	req := c.Request()
	switch route.Classify(req.Method, req.URL.Path, d.apiPrefix) {
	case route.Preflight:
		return middleware.Preflight(c)
	case route.Proxy:
		return d.proxy.Handle(c)
	default:
		return d.static.Handle(c)
	}
}
