package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"cors-devproxy/internal/model"
	"cors-devproxy/internal/service"
)

// ProxyHandler forwards API requests to the upstream origin.
type ProxyHandler struct {
	service *service.ProxyService
	logger  *slog.Logger
}

// NewProxyHandler creates a ProxyHandler.
func NewProxyHandler(svc *service.ProxyService, logger *slog.Logger) *ProxyHandler {
	return &ProxyHandler{
		service: svc,
		logger:  logger.With("component", "proxy_handler"),
	}
}

// Handle proxies the request to the upstream and streams the response back.
// CORS headers are already on the response (see middleware.CORS).
func (h *ProxyHandler) Handle(c echo.Context) error {
	req := c.Request()

	pr := &model.ProxyRequest{
		Ctx:           req.Context(),
		Method:        req.Method,
		Path:          req.URL.EscapedPath(),
		RawQuery:      req.URL.RawQuery,
		Header:        req.Header,
		Body:          req.Body,
		ContentLength: req.ContentLength,
	}

	resp, err := h.service.Forward(pr)
	if err != nil {
		return h.writeError(c, err)
	}
	defer func() { _ = resp.Body.Close() }()

	for key, vals := range resp.Header {
		for _, v := range vals {
			c.Response().Header().Add(key, v)
		}
	}

	c.Response().WriteHeader(resp.StatusCode)

	// If io.Copy fails mid-stream the status line is already out, so the
	// client sees a truncated body with the upstream status. Log it.
	if _, err := io.Copy(c.Response(), resp.Body); err != nil {
		h.logger.Error("streaming response body",
			"err", err,
			"path", req.URL.Path,
		)
	}

	return nil
}

// writeError answers a failed upstream exchange with 500 and a JSON error
// naming the underlying cause.
func (h *ProxyHandler) writeError(c echo.Context, err error) error {
	attrs := []any{"err", err, "path", c.Request().URL.Path}
	var upErr *service.UpstreamError
	if errors.As(err, &upErr) {
		attrs = append(attrs, "upstream_url", upErr.URL)
	}

	if errors.Is(err, context.Canceled) {
		h.logger.Warn("client went away before upstream responded", attrs...)
	} else {
		h.logger.Error("proxy error", attrs...)
	}

	return c.JSON(http.StatusInternalServerError, map[string]string{
		"error": "Proxy error: " + describe(err),
	})
}

// describe returns the innermost useful failure text, e.g.
// "dial tcp 127.0.0.1:1: connect: connection refused".
func describe(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if errors.Is(err, context.DeadlineExceeded) || urlErr.Timeout() {
			return "upstream request timed out: " + urlErr.Err.Error()
		}
		return urlErr.Err.Error()
	}
	return err.Error()
}
