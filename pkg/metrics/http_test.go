package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestHTTPMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	m.Observe("POST", "/api/orders", 201, 40*time.Millisecond)
	m.Observe("POST", "/api/orders", 409, 10*time.Millisecond)
	m.Observe("GET", "", 404, time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "storefront_http_requests_total", "status", "201"); err != nil || got != 1 {
		t.Fatalf("expected one 201, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "storefront_http_requests_total", "route", "unknown"); err != nil || got != 1 {
		t.Fatalf("expected unmatched route labelled unknown, got %f (%v)", got, err)
	}

	hist := findMetricFamily(mfs, "storefront_http_request_duration_seconds")
	if hist == nil {
		t.Fatal("expected duration histogram")
	}
	var samples uint64
	for _, metric := range hist.GetMetric() {
		samples += metric.GetHistogram().GetSampleCount()
	}
	if samples != 3 {
		t.Fatalf("expected 3 samples, got %d", samples)
	}
}

func TestHTTPMetricsNilSafe(t *testing.T) {
	var m *HTTPMetrics
	m.Observe("GET", "/", 200, time.Millisecond)
	NewHTTPMetrics(nil).Observe("GET", "/", 200, time.Millisecond)
}
