// Package service implements the core proxy forwarding logic.
package service

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"cors-devproxy/internal/client"
	"cors-devproxy/internal/config"
	"cors-devproxy/internal/model"
)

// headerPolicy says how one request header reaches the upstream.
type headerPolicy struct {
	name  string
	value string // fixed value; empty means pass through when present
}

// forwardedRequestHeaders is the complete whitelist of request headers sent
// upstream. Everything else the browser sent (cookies, host, origin, ...) is dropped.
var forwardedRequestHeaders = []headerPolicy{
	{name: "Content-Type", value: "application/json"},
	{name: "Authorization"},
	{name: "X-API-Key"},
}

// defaultContentType is reported to the client when the upstream sends none.
const defaultContentType = "application/json"

const userAgent = "cors-devproxy/1.0"

// ProxyService handles the forwarding logic for proxy requests.
type ProxyService struct {
	client      *client.UpstreamClient
	logger      *slog.Logger
	baseURL     string
	prefix      string
	stripPrefix bool
}

// NewProxyService creates a ProxyService.
func NewProxyService(c *client.UpstreamClient, cfg *config.Config, logger *slog.Logger) *ProxyService {
	return &ProxyService{
		client:      c,
		logger:      logger.With("component", "proxy_service"),
		baseURL:     strings.TrimRight(cfg.Upstream.BaseURL, "/"),
		prefix:      cfg.Proxy.Prefix,
		stripPrefix: cfg.Upstream.StripPrefix,
	}
}

// Forward sends a ProxyRequest to the upstream origin and returns the response.
// The caller is responsible for closing the response body. The returned
// response header holds only Content-Type, defaulted when the upstream omits it.
//
// Exactly one upstream attempt is made; failures are returned, never retried.
func (s *ProxyService) Forward(pr *model.ProxyRequest) (*model.ProxyResponse, error) {
	upstreamURL := s.BuildUpstreamURL(pr.Path, pr.RawQuery)
	header := s.filterRequestHeaders(pr.Header)

	var body io.Reader
	contentLength := int64(0)
	if methodCarriesBody(pr.Method) && pr.Body != nil {
		body = pr.Body
		contentLength = pr.ContentLength
	}

	s.logger.Info("forwarding request",
		"method", pr.Method,
		"path", pr.Path,
		"upstream_url", upstreamURL,
	)

	resp, err := s.client.DoStream(pr.Ctx, pr.Method, upstreamURL, header, body, contentLength)
	if err != nil {
		return nil, &UpstreamError{URL: upstreamURL, Err: err}
	}

	resp.Header = responseHeaders(resp.Header)
	return resp, nil
}

// BuildUpstreamURL joins the upstream origin with the request path and query
// verbatim. With strip_prefix enabled the API prefix is replaced by "/".
func (s *ProxyService) BuildUpstreamURL(path, rawQuery string) string {
	if s.stripPrefix {
		path = "/" + strings.TrimPrefix(path, s.prefix)
	}

	u := s.baseURL + path
	if rawQuery != "" {
		u += "?" + rawQuery
	}
	return u
}

func (s *ProxyService) filterRequestHeaders(src http.Header) http.Header {
	dst := make(http.Header, len(forwardedRequestHeaders)+1)
	for _, p := range forwardedRequestHeaders {
		key := http.CanonicalHeaderKey(p.name)
		if p.value != "" {
			dst.Set(key, p.value)
			continue
		}
		if vals := src.Values(key); len(vals) > 0 {
			dst[key] = vals
		}
	}
	dst.Set("User-Agent", userAgent)
	return dst
}

func responseHeaders(src http.Header) http.Header {
	ct := src.Get("Content-Type")
	if ct == "" {
		ct = defaultContentType
	}
	dst := make(http.Header, 2)
	dst.Set("Content-Type", ct)
	if loc := src.Get("Location"); loc != "" {
		dst.Set("Location", loc)
	}
	return dst
}

// methodCarriesBody reports whether the inbound body is piped upstream.
func methodCarriesBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}

// UpstreamError reports a failed upstream exchange together with the URL
// that was being fetched.
type UpstreamError struct {
	URL string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("forward to %s: %v", e.URL, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
