package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"cors-devproxy/internal/metrics"
)

// requestLabels returns the label sets recorded on devproxy_http_requests_total.
func requestLabels(t *testing.T, m *metrics.Metrics) []map[string]string {
	t.Helper()
	families, err := m.Registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	var out []map[string]string
	for _, f := range families {
		if f.GetName() != "devproxy_http_requests_total" {
			continue
		}
		for _, metric := range f.GetMetric() {
			labels := make(map[string]string)
			for _, lp := range metric.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			out = append(out, labels)
		}
	}
	return out
}

func TestMetricsMiddleware_IncrementsCounter(t *testing.T) {
	m := metrics.New("/api/")

	e := echo.New()
	e.Use(MetricsMiddleware(m))
	e.GET("/api/courses", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/courses", http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	labels := requestLabels(t, m)
	if len(labels) != 1 {
		t.Fatalf("got %d series, want 1", len(labels))
	}
	if labels[0]["route"] != "proxy" || labels[0]["status_code"] != "200" || labels[0]["method"] != "GET" {
		t.Errorf("labels = %v, want route=proxy status_code=200 method=GET", labels[0])
	}
}

func TestMetricsMiddleware_PreflightLabel(t *testing.T) {
	m := metrics.New("/api/")

	e := echo.New()
	e.Pre(MetricsMiddleware(m), CORS())

	req := httptest.NewRequest(http.MethodOptions, "/api/orders", http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	labels := requestLabels(t, m)
	if len(labels) != 1 || labels[0]["route"] != "preflight" || labels[0]["status_code"] != "200" {
		t.Errorf("labels = %v, want one preflight series with status 200", labels)
	}
}

func TestMetricsMiddleware_OpsLabel(t *testing.T) {
	m := metrics.New("/api/", "/_proxy/healthz")

	e := echo.New()
	e.Use(MetricsMiddleware(m))
	e.GET("/_proxy/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/_proxy/healthz", http.NoBody)
	e.ServeHTTP(httptest.NewRecorder(), req)

	labels := requestLabels(t, m)
	if len(labels) != 1 || labels[0]["route"] != "ops" {
		t.Errorf("labels = %v, want route=ops", labels)
	}
}

func TestMetricsMiddleware_HTTPErrorStatus(t *testing.T) {
	m := metrics.New("/api/")

	e := echo.New()
	e.Use(MetricsMiddleware(m))
	e.GET("/api/test", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "too large")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/test", http.NoBody)
	e.ServeHTTP(httptest.NewRecorder(), req)

	labels := requestLabels(t, m)
	if len(labels) != 1 || labels[0]["status_code"] != "413" {
		t.Errorf("labels = %v, want status_code=413", labels)
	}
}

func TestMetricsMiddleware_UnknownMethodNormalized(t *testing.T) {
	m := metrics.New("/api/")

	e := echo.New()
	e.Any("/*", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.Use(MetricsMiddleware(m))

	req := httptest.NewRequest(http.MethodPatch, "/style.css", http.NoBody)
	e.ServeHTTP(httptest.NewRecorder(), req)
	req = httptest.NewRequest("XYZZY", "/style.css", http.NoBody)
	e.ServeHTTP(httptest.NewRecorder(), req)

	seen := map[string]bool{}
	for _, l := range requestLabels(t, m) {
		if l["route"] != "static" {
			t.Errorf("route = %q, want static", l["route"])
		}
		seen[l["method"]] = true
	}
	if !seen["PATCH"] || !seen["other"] {
		t.Errorf("methods seen = %v, want PATCH and other", seen)
	}
}

func TestMetricsMiddleware_InFlightReturnsToZero(t *testing.T) {
	m := metrics.New("/api/")

	e := echo.New()
	e.Use(MetricsMiddleware(m))
	e.GET("/x", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", http.NoBody))

	families, err := m.Registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, f := range families {
		if f.GetName() == "devproxy_http_requests_in_flight" {
			if v := f.GetMetric()[0].GetGauge().GetValue(); v != 0 {
				t.Errorf("in-flight = %v, want 0", v)
			}
			return
		}
	}
	t.Error("expected devproxy_http_requests_in_flight")
}
