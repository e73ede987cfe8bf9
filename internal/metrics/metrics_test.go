package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestReplyLifecycle(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ReplyScheduled()
	m.ReplyScheduled()
	m.ReplyDelivered()

	if got := testutil.ToFloat64(m.pendingReplies); got != 1 {
		t.Fatalf("expected 1 pending reply, got %v", got)
	}
	if got := testutil.ToFloat64(m.repliesDelivered); got != 1 {
		t.Fatalf("expected 1 delivered reply, got %v", got)
	}
}

func TestLoadFallbackByReason(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.LoadFallback("malformed")
	m.LoadFallback("malformed")
	m.LoadFallback("not_array")

	if got := testutil.ToFloat64(m.loadFallbacks.WithLabelValues("malformed")); got != 2 {
		t.Fatalf("expected 2 malformed fallbacks, got %v", got)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.MessageSent()
	m.ReplyScheduled()
	m.ReplyDelivered()
	m.PersistFailed()
	m.LoadFallback("backend")
	m.SendRejected()
}
