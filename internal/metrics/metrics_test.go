package metrics

import (
	"testing"
)

func TestNew_GathersMetrics(t *testing.T) {
	m := New("/api/")

	families, err := m.Registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	// Should include at least Go runtime and process collectors.
	if len(families) == 0 {
		t.Fatal("expected non-empty metric families from Gather()")
	}

	m.RequestsTotal.WithLabelValues("GET", "200", "proxy").Inc()
	m.UpstreamErrors.WithLabelValues("GET").Inc()

	families, err = m.Registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	want := map[string]bool{
		"devproxy_http_requests_total":   false,
		"devproxy_upstream_errors_total": false,
	}
	for _, f := range families {
		if _, ok := want[f.GetName()]; ok {
			want[f.GetName()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("expected %s in gathered metrics", name)
		}
	}
}

func TestNormalizeMethod(t *testing.T) {
	tests := []struct {
		method string
		want   string
	}{
		{"GET", "GET"},
		{"POST", "POST"},
		{"PUT", "PUT"},
		{"DELETE", "DELETE"},
		{"PATCH", "PATCH"},
		{"HEAD", "HEAD"},
		{"OPTIONS", "OPTIONS"},
		{"FOOBAR", "other"},
		{"get", "other"},
		{"", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			got := NormalizeMethod(tt.method)
			if got != tt.want {
				t.Errorf("NormalizeMethod(%q) = %q, want %q", tt.method, got, tt.want)
			}
		})
	}
}

func TestRouteLabel(t *testing.T) {
	m := New("/api/", "/_proxy/healthz", "/_proxy/metrics")

	tests := []struct {
		method string
		path   string
		want   string
	}{
		{"GET", "/api/courses", "proxy"},
		{"POST", "/api/orders", "proxy"},
		{"OPTIONS", "/api/orders", "preflight"},
		{"OPTIONS", "/_proxy/healthz", "preflight"},
		{"GET", "/_proxy/healthz", "ops"},
		{"GET", "/_proxy/metrics", "ops"},
		{"GET", "/_proxy/other", "static"},
		{"GET", "/", "static"},
		{"GET", "/js/main.js", "static"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			if got := m.RouteLabel(tt.method, tt.path); got != tt.want {
				t.Errorf("RouteLabel(%q, %q) = %q, want %q", tt.method, tt.path, got, tt.want)
			}
		})
	}
}
