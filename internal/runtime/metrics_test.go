package runtime

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRecord(t *testing.T) {
	m := NewMetrics()
	m.ObserveAsk("success", 150*time.Millisecond)
	m.ObserveAsk("refused", 0)
	m.ObserveIngest("success", 7)
	m.ObserveEmbedding("error")
	m.QueryLogFailed()
	m.QueryLogsPruned(3)

	if got := testutil.ToFloat64(m.askRequests.WithLabelValues("success")); got != 1 {
		t.Fatalf("expected 1 success ask, got %v", got)
	}
	if got := testutil.ToFloat64(m.ingestChunks); got != 7 {
		t.Fatalf("expected 7 chunks, got %v", got)
	}
	if got := testutil.ToFloat64(m.queryLogsPruned); got != 3 {
		t.Fatalf("expected 3 pruned, got %v", got)
	}
	if n, err := testutil.GatherAndCount(m.Registry(), "opticqa_ask_latency_seconds"); err != nil || n != 1 {
		t.Fatalf("expected one latency series, got %d (%v)", n, err)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveAsk("success", time.Second)
	m.ObserveIngest("duplicate", 0)
	m.ObserveEmbedding("success")
	m.QueryLogFailed()
	m.QueryLogsPruned(10)
	if m.Handler() == nil {
		t.Fatalf("expected a handler even without metrics")
	}
}
