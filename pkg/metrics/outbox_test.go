package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestOutboxMetricsCountsByStreamAndReason(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOutboxMetrics(reg)
	m.ObservePublished("storefront.orders", "order.placed", time.Now().Add(-2*time.Second))
	m.ObservePublished("storefront.orders", "order.placed", time.Time{})
	m.IncFailure("retry")
	m.ObserveBatch(2)
	m.ObserveBatch(0)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "storefront_outbox_published_total", "event_type", "order.placed"); err != nil || got != 2 {
		t.Fatalf("expected 2 published, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "storefront_outbox_failures_total", "reason", "retry"); err != nil || got != 1 {
		t.Fatalf("expected 1 retry failure, got %f (%v)", got, err)
	}
	lag := findMetricFamily(mfs, "storefront_outbox_publish_lag_seconds")
	if lag == nil || lag.GetMetric()[0].GetHistogram().GetSampleCount() != 1 {
		t.Fatalf("expected one lag sample")
	}
	batches := findMetricFamily(mfs, "storefront_outbox_batch_size")
	if batches == nil || batches.GetMetric()[0].GetHistogram().GetSampleCount() != 1 {
		t.Fatalf("empty batches should not be observed")
	}
}
