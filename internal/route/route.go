// Package route decides which branch serves an inbound request.
package route

import (
	"net/http"
	"strings"
)

// Class identifies the handler branch for a request.
type Class string

const (
	Preflight Class = "preflight"
	Proxy     Class = "proxy"
	Static    Class = "static"
)

// Classify picks exactly one branch for method and path, checked in order:
// preflight method, API prefix match, static fallback. It never fails.
func Classify(method, path, apiPrefix string) Class {
	if method == http.MethodOptions {
		return Preflight
	}
	if strings.HasPrefix(path, apiPrefix) {
		return Proxy
	}
	return Static
}
